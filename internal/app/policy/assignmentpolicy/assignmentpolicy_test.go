package assignmentpolicy_test

import (
	"testing"

	"github.com/trusteehub/cams/internal/app/policy/assignmentpolicy"
	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/domain/models"
)

func TestCanManageAssignments(t *testing.T) {
	tests := []struct {
		name         string
		roles        []models.CamsRole
		processRoles []models.CamsRole
		divisions    []string
		division     string
		wantRole     bool
		wantOffice   bool
	}{
		{
			name:       "manager in office",
			roles:      []models.CamsRole{models.RoleCaseAssignmentManager},
			divisions:  []string{"081"},
			division:   "081",
			wantRole:   true,
			wantOffice: true,
		},
		{
			name:       "manager wrong office",
			roles:      []models.CamsRole{models.RoleCaseAssignmentManager},
			divisions:  []string{"071"},
			division:   "081",
			wantRole:   true,
			wantOffice: false,
		},
		{
			name:       "attorney in office lacks role",
			roles:      []models.CamsRole{models.RoleTrialAttorney},
			divisions:  []string{"081"},
			division:   "081",
			wantRole:   false,
			wantOffice: true,
		},
		{
			name:         "process role grants manager",
			roles:        []models.CamsRole{models.RoleDataVerifier},
			processRoles: []models.CamsRole{models.RoleCaseAssignmentManager},
			divisions:    []string{"081"},
			division:     "081",
			wantRole:     true,
			wantOffice:   true,
		},
		{
			name:         "process role does not widen office",
			roles:        []models.CamsRole{models.RoleDataVerifier},
			processRoles: []models.CamsRole{models.RoleCaseAssignmentManager},
			divisions:    []string{"071"},
			division:     "081",
			wantRole:     true,
			wantOffice:   false,
		},
		{
			name:       "no divisions",
			roles:      []models.CamsRole{models.RoleCaseAssignmentManager},
			divisions:  nil,
			division:   "081",
			wantRole:   true,
			wantOffice: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &auth.SessionUser{
				ID:            "user-1",
				Name:          "Test User",
				Roles:         tt.roles,
				DivisionCodes: tt.divisions,
			}
			roleOK, officeOK := assignmentpolicy.CanManageAssignments(sess, tt.processRoles, tt.division)
			if roleOK != tt.wantRole {
				t.Errorf("roleOK = %v, want %v", roleOK, tt.wantRole)
			}
			if officeOK != tt.wantOffice {
				t.Errorf("officeOK = %v, want %v", officeOK, tt.wantOffice)
			}
		})
	}
}
