// internal/testutil/http.go
package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/domain/models"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID            string
	Name          string
	LoginID       string
	Roles         []models.CamsRole
	DivisionCodes []string
}

// ManagerUser returns a TestUser holding CaseAssignmentManager for the
// given divisions.
func ManagerUser(divisions ...string) TestUser {
	return TestUser{
		ID:            "test-manager",
		Name:          "Test Manager",
		LoginID:       "manager@ustp.test",
		Roles:         []models.CamsRole{models.RoleCaseAssignmentManager},
		DivisionCodes: divisions,
	}
}

// VerifierUser returns a TestUser holding DataVerifier for the given
// divisions.
func VerifierUser(divisions ...string) TestUser {
	return TestUser{
		ID:            "test-verifier",
		Name:          "Test Verifier",
		LoginID:       "verifier@ustp.test",
		Roles:         []models.CamsRole{models.RoleDataVerifier},
		DivisionCodes: divisions,
	}
}

// AttorneyUser returns a TestUser holding only TrialAttorney.
func AttorneyUser(divisions ...string) TestUser {
	return TestUser{
		ID:            "test-attorney",
		Name:          "Test Attorney",
		LoginID:       "attorney@ustp.test",
		Roles:         []models.CamsRole{models.RoleTrialAttorney},
		DivisionCodes: divisions,
	}
}

// WithUser adds a user to the request context, bypassing the session
// middleware for handler tests.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:            user.ID,
		Name:          user.Name,
		LoginID:       user.LoginID,
		Roles:         user.Roles,
		DivisionCodes: user.DivisionCodes,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}
