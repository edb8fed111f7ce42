package identity

import (
	"context"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserService() (*UserService, *MockUserRepository, *auth.MemoryTokenBlacklist, *recordingPublisher) {
	repo := new(MockUserRepository)
	bl := auth.NewMemoryTokenBlacklist()
	pub := &recordingPublisher{}
	return NewUserService(repo, bl, time.Hour, pub, zap.NewNop()), repo, bl, pub
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID, actor := uuid.New(), uuid.New()

	t.Run("creates with display name", func(t *testing.T) {
		svc, repo, _, pub := newUserService()
		repo.On("ExistsByUsername", ctx, tenantID, "bob").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := svc.Create(ctx, tenantID, actor, CreateUserRequest{Username: "bob", Password: "password1", Role: "Accountant", DisplayName: "Bob B."})

		require.NoError(t, err)
		assert.Equal(t, "accountant", resp.Role)
		assert.Equal(t, "Bob B.", resp.DisplayName)
		require.NotEmpty(t, pub.events)
		assert.Equal(t, identity.EventTypeUserCreated, pub.events[0].EventType())
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, _, _, _ := newUserService()
		_, err := svc.Create(ctx, tenantID, actor, CreateUserRequest{Username: "bob", Password: "password1", Role: "root"})
		assertCode(t, err, "INVALID_ROLE")
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, repo, _, _ := newUserService()
		repo.On("ExistsByUsername", ctx, tenantID, "bob").Return(true, nil)
		_, err := svc.Create(ctx, tenantID, actor, CreateUserRequest{Username: "bob", Password: "password1", Role: "viewer"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	admin := newTestUser(t, identity.RoleAdmin)
	actor := uuid.New()

	t.Run("cannot delete yourself", func(t *testing.T) {
		svc, _, _, _ := newUserService()
		assertCode(t, svc.Delete(ctx, admin.TenantID, admin.ID, admin.ID), "CANNOT_DELETE_SELF")
	})

	t.Run("cannot delete the last admin", func(t *testing.T) {
		svc, repo, _, _ := newUserService()
		repo.On("FindByID", ctx, admin.TenantID, admin.ID).Return(admin, nil)
		repo.On("CountActiveByRole", ctx, admin.TenantID, identity.RoleAdmin).Return(int64(1), nil)

		assertCode(t, svc.Delete(ctx, admin.TenantID, actor, admin.ID), "LAST_ADMIN")
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes an admin when another remains", func(t *testing.T) {
		svc, repo, bl, pub := newUserService()
		repo.On("FindByID", ctx, admin.TenantID, admin.ID).Return(admin, nil)
		repo.On("CountActiveByRole", ctx, admin.TenantID, identity.RoleAdmin).Return(int64(2), nil)
		repo.On("Delete", ctx, admin.TenantID, admin.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, admin.TenantID, actor, admin.ID))
		require.Len(t, pub.events, 1)
		assert.Equal(t, identity.EventTypeUserDeleted, pub.events[0].EventType())
		revoked, _ := bl.IsUserRevoked(ctx, admin.ID.String(), time.Now().Add(-time.Minute))
		assert.True(t, revoked)
	})
}

func TestUserService_ChangeRole(t *testing.T) {
	ctx := context.Background()

	t.Run("demoting the last admin is refused", func(t *testing.T) {
		svc, repo, _, _ := newUserService()
		admin := newTestUser(t, identity.RoleAdmin)
		repo.On("FindByID", ctx, admin.TenantID, admin.ID).Return(admin, nil)
		repo.On("CountActiveByRole", ctx, admin.TenantID, identity.RoleAdmin).Return(int64(1), nil)

		_, err := svc.ChangeRole(ctx, admin.TenantID, admin.ID, ChangeRoleRequest{Role: "viewer"})
		assertCode(t, err, "LAST_ADMIN")
		assert.Equal(t, identity.RoleAdmin, admin.Role)
	})

	t.Run("promotion revokes existing tokens", func(t *testing.T) {
		svc, repo, bl, _ := newUserService()
		user := newTestUser(t, identity.RoleViewer)
		repo.On("FindByID", ctx, user.TenantID, user.ID).Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		resp, err := svc.ChangeRole(ctx, user.TenantID, user.ID, ChangeRoleRequest{Role: "manager"})
		require.NoError(t, err)
		assert.Equal(t, "manager", resp.Role)
		revoked, _ := bl.IsUserRevoked(ctx, user.ID.String(), time.Now().Add(-time.Minute))
		assert.True(t, revoked)
	})
}

func TestUserService_Roles(t *testing.T) {
	svc, _, _, _ := newUserService()
	roles := svc.Roles()
	require.Len(t, roles, 5)
	assert.Equal(t, "admin", roles[0].Code)
	assert.Contains(t, roles[0].Permissions, "backup:run")
}
