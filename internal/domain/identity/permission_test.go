package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolePermissions(t *testing.T) {
	t.Run("admin has every permission", func(t *testing.T) {
		for _, r := range Resources() {
			assert.True(t, HasPermission(RoleAdmin, Perm(r, ActionRead)), r)
			assert.True(t, HasPermission(RoleAdmin, Perm(r, ActionDelete)), r)
		}
		assert.True(t, HasPermission(RoleAdmin, "backup:run"))
	})

	t.Run("manager cannot manage users", func(t *testing.T) {
		assert.True(t, HasPermission(RoleManager, "user:read"))
		assert.False(t, HasPermission(RoleManager, "user:create"))
		assert.True(t, HasPermission(RoleManager, "invoice:send"))
	})

	t.Run("cashier operates registers but cannot delete invoices", func(t *testing.T) {
		assert.True(t, HasPermission(RoleCashier, "cash:open"))
		assert.True(t, HasPermission(RoleCashier, "cash:close"))
		assert.True(t, HasPermission(RoleCashier, "invoice:pay"))
		assert.False(t, HasPermission(RoleCashier, "invoice:delete"))
		assert.False(t, HasPermission(RoleCashier, "tax:read"))
	})

	t.Run("viewer is read only", func(t *testing.T) {
		for _, p := range PermissionsFor(RoleViewer) {
			assert.Contains(t, p, ":read")
		}
		assert.False(t, HasPermission(RoleViewer, "audit:read"))
	})

	t.Run("permissions are sorted", func(t *testing.T) {
		perms := PermissionsFor(RoleAccountant)
		require.NotEmpty(t, perms)
		for i := 1; i < len(perms); i++ {
			assert.LessOrEqual(t, perms[i-1], perms[i])
		}
	})
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, role)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
	assert.Len(t, Roles(), 5)
}
