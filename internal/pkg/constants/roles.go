package constants

import "churchflow-backend/internal/domain"

const (
	Pastor = domain.RolePastor
)

// ValidRoles is the set of allowed values for Users.role.
var ValidRoles = []string{Pastor}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
