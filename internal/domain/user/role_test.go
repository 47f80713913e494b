package user_test

import (
	"testing"

	"userhub-service/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Run("canonicalizes case and whitespace", func(t *testing.T) {
		for input, want := range map[string]user.Role{
			"admin":           user.RoleAdmin,
			"ADMIN":           user.RoleAdmin,
			" Manager ":       user.RoleManager,
			"authenticated":   user.RoleAuthenticated,
			"anonymous":       user.RoleAnonymous,
			"\tANONYMOUS\n":   user.RoleAnonymous,
			"mAnAgEr":         user.RoleManager,
			"AUTHENTICATED  ": user.RoleAuthenticated,
		} {
			got, err := user.ParseRole(input)
			require.NoError(t, err, "input %q", input)
			assert.Equal(t, want, got, "input %q", input)
		}
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		for _, input := range []string{"", "superadmin", "root", "ADMINS", "user"} {
			_, err := user.ParseRole(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestRoleValid(t *testing.T) {
	assert.True(t, user.RoleAdmin.Valid())
	assert.True(t, user.RoleAnonymous.Valid())
	assert.False(t, user.Role("ROOT").Valid())
	assert.False(t, user.Role("").Valid())
}

func TestRoleIn(t *testing.T) {
	t.Run("exact membership", func(t *testing.T) {
		assert.True(t, user.RoleManager.In(user.RoleAdmin, user.RoleManager))
		assert.True(t, user.RoleAdmin.In(user.RoleAdmin))
	})

	t.Run("no hierarchy", func(t *testing.T) {
		// ADMIN does not pass a MANAGER-only check; the set must name ADMIN.
		assert.False(t, user.RoleAdmin.In(user.RoleManager))
		assert.False(t, user.RoleManager.In(user.RoleAdmin))
		assert.False(t, user.RoleAuthenticated.In(user.RoleAdmin, user.RoleManager))
	})

	t.Run("empty set admits nobody", func(t *testing.T) {
		assert.False(t, user.RoleAdmin.In())
	})
}
