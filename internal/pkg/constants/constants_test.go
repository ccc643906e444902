package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRole(t *testing.T) {
	for perm := range PermissionRoles {
		assert.True(t, AllowedRole(perm, Pastor), perm)
		assert.False(t, AllowedRole(perm, "viewer"), perm)
	}
	assert.False(t, AllowedRole("unknown_permission", Pastor))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("PASTOR"))
	assert.False(t, IsValidRole("pastor"))
}
