package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T) *User {
	t.Helper()
	u, err := NewUser(uuid.New(), "Alice", "Alice@Example.com", "s3cretpass", RoleAccountant)
	require.NoError(t, err)
	return u
}

func TestNewUser(t *testing.T) {
	t.Run("creates active user with normalized fields", func(t *testing.T) {
		u := newTestUser(t)
		assert.Equal(t, "alice", u.Username)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.Equal(t, UserStatusActive, u.Status)
		assert.NotEqual(t, "s3cretpass", u.PasswordHash)
		assert.True(t, u.VerifyPassword("s3cretpass"))
		require.Len(t, u.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeUserCreated, u.GetDomainEvents()[0].EventType())
	})

	tests := []struct {
		name     string
		username string
		email    string
		password string
		role     Role
	}{
		{"short username", "ab", "", "s3cretpass", RoleViewer},
		{"bad username chars", "a b c", "", "s3cretpass", RoleViewer},
		{"bad email", "alice", "not-an-email", "s3cretpass", RoleViewer},
		{"short password", "alice", "", "short", RoleViewer},
		{"unknown role", "alice", "", "s3cretpass", Role("owner")},
	}
	for _, tt := range tests {
		t.Run("fails with "+tt.name, func(t *testing.T) {
			_, err := NewUser(uuid.New(), tt.username, tt.email, tt.password, tt.role)
			assert.Error(t, err)
		})
	}
}

func TestUser_ChangePassword(t *testing.T) {
	u := newTestUser(t)

	err := u.ChangePassword("wrong-password", "another-pass1")
	assert.Error(t, err)

	require.NoError(t, u.ChangePassword("s3cretpass", "another-pass1"))
	assert.True(t, u.VerifyPassword("another-pass1"))
	assert.False(t, u.VerifyPassword("s3cretpass"))
}

func TestUser_LoginLockout(t *testing.T) {
	u := newTestUser(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		assert.False(t, u.RecordLoginFailure(5, 15*time.Minute, now))
	}
	assert.True(t, u.RecordLoginFailure(5, 15*time.Minute, now))
	assert.True(t, u.IsLocked(now.Add(time.Minute)))
	assert.False(t, u.CanLogin(now.Add(time.Minute)))
	assert.True(t, u.CanLogin(now.Add(16*time.Minute)))

	u.RecordLoginSuccess("10.0.0.1", now.Add(16*time.Minute))
	assert.Nil(t, u.LockedUntil)
	assert.Equal(t, 0, u.FailedAttempts)
	assert.Equal(t, "10.0.0.1", u.LastLoginIP)
}

func TestUser_StatusTransitions(t *testing.T) {
	u := newTestUser(t)

	assert.Error(t, u.Activate())
	require.NoError(t, u.Deactivate())
	assert.False(t, u.CanLogin(time.Now()))
	assert.Error(t, u.Deactivate())
	require.NoError(t, u.Activate())
	assert.True(t, u.CanLogin(time.Now()))
}

func TestUser_ChangeRole(t *testing.T) {
	u := newTestUser(t)
	u.ClearDomainEvents()

	require.NoError(t, u.ChangeRole(RoleManager))
	assert.Equal(t, RoleManager, u.Role)
	assert.Len(t, u.GetDomainEvents(), 1)

	assert.Error(t, u.ChangeRole(Role("root")))
}

func TestNewTenant(t *testing.T) {
	tenant, err := NewTenant("  Acme & Sons Ltd ")
	require.NoError(t, err)
	assert.Equal(t, "Acme & Sons Ltd", tenant.Name)
	assert.Equal(t, "acme-sons-ltd", tenant.Slug)

	_, err = NewTenant("   ")
	assert.Error(t, err)
	_, err = NewTenant("!!!")
	assert.Error(t, err)
}
