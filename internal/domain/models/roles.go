// internal/domain/models/roles.go
package models

import "fmt"

// CamsRole identifies a role a user can hold in the case-management system.
// Roles arrive as strings from the identity provider's group claims and from
// stored assignment documents; ParseRole is the only way to turn a string
// into a CamsRole, and it fails closed on anything unrecognized.
type CamsRole string

const (
	RoleTrialAttorney         CamsRole = "TrialAttorney"
	RoleCaseAssignmentManager CamsRole = "CaseAssignmentManager"
	RoleDataVerifier          CamsRole = "DataVerifier"
	RolePrivilegedIdentity    CamsRole = "PrivilegedIdentityUser"
)

// ParseRole maps a role string to a CamsRole. Unknown strings are rejected
// rather than passed through, so a mistyped or retired group name can never
// grant access.
func ParseRole(s string) (CamsRole, error) {
	switch CamsRole(s) {
	case RoleTrialAttorney:
		return RoleTrialAttorney, nil
	case RoleCaseAssignmentManager:
		return RoleCaseAssignmentManager, nil
	case RoleDataVerifier:
		return RoleDataVerifier, nil
	case RolePrivilegedIdentity:
		return RolePrivilegedIdentity, nil
	default:
		return "", fmt.Errorf("unrecognized role %q", s)
	}
}

// ParseRoles maps a list of role strings, silently dropping unrecognized
// entries. Used when translating identity-provider group claims, where a
// user's groups routinely include names that mean nothing to this system.
func ParseRoles(ss []string) []CamsRole {
	var roles []CamsRole
	for _, s := range ss {
		if r, err := ParseRole(s); err == nil {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRole reports whether want appears in roles.
func HasRole(roles []CamsRole, want CamsRole) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
