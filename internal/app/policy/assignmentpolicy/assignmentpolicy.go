// internal/app/policy/assignmentpolicy/assignmentpolicy.go

// Package assignmentpolicy decides whether a session may manage staff
// assignments for a given case.
package assignmentpolicy

import (
	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/domain/models"
)

// CanManageAssignments reports whether the caller may create or change
// assignments for a case in the given court division.
//
// The caller must hold CaseAssignmentManager, either directly on the
// session or through a process role granted by a workflow acting on the
// user's behalf, and the case's division must be in the caller's office
// list. Process roles never widen the office check.
func CanManageAssignments(sess *auth.SessionUser, processRoles []models.CamsRole, divisionCode string) (roleOK, officeOK bool) {
	roleOK = sess.HasRole(models.RoleCaseAssignmentManager) ||
		models.HasRole(processRoles, models.RoleCaseAssignmentManager)

	for _, code := range sess.DivisionCodes {
		if code == divisionCode {
			officeOK = true
			break
		}
	}
	return roleOK, officeOK
}
