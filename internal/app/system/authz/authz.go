// internal/app/system/authz/authz.go

// Package authz provides request-level authorization helpers over the
// session user loaded by the auth middleware.
package authz

import (
	"net/http"

	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/domain/models"
)

// UserCtx returns the current user's roles, name, id, and a found flag.
// ok=false means no authenticated user is present on the request.
func UserCtx(r *http.Request) (roles []models.CamsRole, name string, userID string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return nil, "", "", false
	}
	return u.Roles, u.Name, u.ID, true
}

// HasAnyRole reports whether the current request's user holds any of the
// given roles. Returns false if no user is present.
func HasAnyRole(r *http.Request, want ...models.CamsRole) bool {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	for _, role := range want {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsCaseAssignmentManager reports whether the current user can manage case
// assignments.
func IsCaseAssignmentManager(r *http.Request) bool {
	return HasAnyRole(r, models.RoleCaseAssignmentManager)
}

// IsDataVerifier reports whether the current user can verify and act on
// court orders.
func IsDataVerifier(r *http.Request) bool {
	return HasAnyRole(r, models.RoleDataVerifier)
}

// CanAccessDivision reports whether the current user's office list includes
// the given court division code.
func CanAccessDivision(r *http.Request, divisionCode string) bool {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	for _, code := range u.DivisionCodes {
		if code == divisionCode {
			return true
		}
	}
	return false
}
