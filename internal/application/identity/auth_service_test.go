package identity

import (
	"context"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/auth"
	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByLogin(ctx context.Context, login string) (*identity.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.User, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) FindByRole(ctx context.Context, tenantID uuid.UUID, role identity.Role) ([]identity.User, error) {
	args := m.Called(ctx, tenantID, role)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error) {
	args := m.Called(ctx, tenantID, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountActiveByRole(ctx context.Context, tenantID uuid.UUID, role identity.Role) (int64, error) {
	args := m.Called(ctx, tenantID, role)
	return args.Get(0).(int64), args.Error(1)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindBySlug(ctx context.Context, slug string) (*identity.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAllActive(ctx context.Context) ([]identity.Tenant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	return m.Called(ctx, tenant).Error(0)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, tenantID uuid.UUID) (*settings.CompanySettings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.CompanySettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, s *settings.CompanySettings) error {
	return m.Called(ctx, s).Error(0)
}

type recordedAudit struct {
	action  string
	details map[string]any
}

type recordingAuditor struct {
	entries []recordedAudit
}

func (a *recordingAuditor) Record(_ context.Context, _ uuid.UUID, _ *uuid.UUID, action, _ string, _ *uuid.UUID, details map[string]any) error {
	a.entries = append(a.entries, recordedAudit{action: action, details: details})
	return nil
}

func (a *recordingAuditor) actions() []string {
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.action
	}
	return out
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type authFixture struct {
	svc       *AuthService
	users     *MockUserRepository
	tenants   *MockTenantRepository
	settings  *MockSettingsRepository
	auditor   *recordingAuditor
	blacklist *auth.MemoryTokenBlacklist
	jwt       *auth.JWTService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:     new(MockUserRepository),
		tenants:   new(MockTenantRepository),
		settings:  new(MockSettingsRepository),
		auditor:   &recordingAuditor{},
		blacklist: auth.NewMemoryTokenBlacklist(),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-that-is-long-enough-32",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "bizdesk-test",
			MaxRefreshCount:        10,
		}),
	}
	f.svc = NewAuthService(f.users, f.tenants, f.settings, f.jwt, f.blacklist, f.auditor, &recordingPublisher{}, DefaultAuthServiceConfig(), zap.NewNop())
	return f
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser(uuid.New(), "alice", "alice@example.com", "correct-horse", role)
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues tokens carrying role permissions", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, identity.RoleCashier)
		f.users.On("FindByLogin", ctx, "alice").Return(user, nil)
		f.users.On("Save", ctx, user).Return(nil)

		result, err := f.svc.Login(ctx, LoginInput{Login: "alice", Password: "correct-horse", IP: "10.0.0.9"})

		require.NoError(t, err)
		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.TenantID, claims.TenantUUID())
		assert.Equal(t, "cashier", claims.Role)
		assert.True(t, claims.HasPermission("cash:open"))
		assert.False(t, claims.HasPermission("user:delete"))
		assert.Equal(t, "10.0.0.9", user.LastLoginIP)
		assert.Equal(t, []string{audit.ActionLoginSucceeded}, f.auditor.actions())
	})

	t.Run("unknown login gives invalid credentials", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByLogin", ctx, "ghost").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginInput{Login: "ghost", Password: "whatever1"})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_CREDENTIALS", de.Code)
	})

	t.Run("locks after five failures", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, identity.RoleViewer)
		f.users.On("FindByLogin", ctx, "alice").Return(user, nil)
		f.users.On("Save", ctx, user).Return(nil)

		var err error
		for i := 0; i < 5; i++ {
			_, err = f.svc.Login(ctx, LoginInput{Login: "alice", Password: "wrong-pass"})
		}
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "ACCOUNT_LOCKED", de.Code)

		_, err = f.svc.Login(ctx, LoginInput{Login: "alice", Password: "correct-horse"})
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "ACCOUNT_LOCKED", de.Code)
		assert.Len(t, f.auditor.entries, 6)

		f.svc.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
		_, err = f.svc.Login(ctx, LoginInput{Login: "alice", Password: "correct-horse"})
		assert.NoError(t, err)
	})

	t.Run("company slug scopes the lookup", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, identity.RoleAdmin)
		tenant, err := identity.NewTenant("Acme Corp")
		require.NoError(t, err)
		f.tenants.On("FindBySlug", ctx, "acme-corp").Return(tenant, nil)
		f.users.On("FindByUsername", ctx, tenant.ID, "alice").Return(user, nil)
		f.users.On("Save", ctx, user).Return(nil)

		_, err = f.svc.Login(ctx, LoginInput{Login: "alice", Password: "correct-horse", Company: "acme-corp"})
		require.NoError(t, err)
		f.users.AssertNotCalled(t, "FindByLogin", mock.Anything, mock.Anything)
	})
}

func TestAuthService_RefreshRotatesAndRevokes(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newTestUser(t, identity.RoleManager)
	f.users.On("FindByLogin", ctx, "alice").Return(user, nil)
	f.users.On("FindByID", ctx, user.TenantID, user.ID).Return(user, nil)
	f.users.On("Save", ctx, user).Return(nil)

	login, err := f.svc.Login(ctx, LoginInput{Login: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = f.svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "TOKEN_REVOKED", de.Code)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newTestUser(t, identity.RoleViewer)
	pair, err := f.jwt.GenerateTokenPair(subjectOf(user))
	require.NoError(t, err)
	access, err := f.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := f.jwt.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	err = f.svc.Logout(ctx, LogoutInput{
		UserID:          user.ID,
		TenantID:        user.TenantID,
		AccessTokenID:   access.ID,
		AccessExpiresAt: pair.AccessTokenExpiresAt,
		RefreshToken:    pair.RefreshToken,
	})
	require.NoError(t, err)

	revoked, _ := f.blacklist.IsRevoked(ctx, access.ID)
	assert.True(t, revoked)
	revoked, _ = f.blacklist.IsRevoked(ctx, refresh.ID)
	assert.True(t, revoked)
	assert.Equal(t, []string{audit.ActionLogout}, f.auditor.actions())
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates tenant, admin and settings", func(t *testing.T) {
		f := newAuthFixture()
		f.tenants.On("FindBySlug", ctx, "dupont-fils").Return(nil, shared.ErrNotFound)
		f.tenants.On("Save", ctx, mock.AnythingOfType("*identity.Tenant")).Return(nil)
		f.users.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)
		f.settings.On("Save", ctx, mock.MatchedBy(func(s *settings.CompanySettings) bool {
			return s.CompanyName == "Dupont & Fils" && s.InvoicePrefix == "INV"
		})).Return(nil)

		result, err := f.svc.Register(ctx, RegisterInput{CompanyName: "Dupont & Fils", Username: "owner", Email: "owner@dupont.fr", Password: "s3cret-pass"})

		require.NoError(t, err)
		assert.Equal(t, "admin", result.User.Role)
		assert.Contains(t, result.User.Permissions, "user:create")
		f.settings.AssertExpectations(t)
	})

	t.Run("refuses a company that has users", func(t *testing.T) {
		f := newAuthFixture()
		tenant, err := identity.NewTenant("Acme")
		require.NoError(t, err)
		f.tenants.On("FindBySlug", ctx, "acme").Return(tenant, nil)
		f.users.On("CountByTenant", ctx, tenant.ID).Return(int64(2), nil)

		_, err = f.svc.Register(ctx, RegisterInput{CompanyName: "Acme", Username: "owner", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestAuthService_ChangePasswordRevokesOldTokens(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newTestUser(t, identity.RoleViewer)
	f.users.On("FindByID", ctx, user.TenantID, user.ID).Return(user, nil)
	f.users.On("Save", ctx, user).Return(nil)

	issuedBefore := time.Now().Add(-time.Minute)
	err := f.svc.ChangePassword(ctx, ChangePasswordInput{TenantID: user.TenantID, UserID: user.ID, OldPassword: "correct-horse", NewPassword: "battery-staple"})
	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("battery-staple"))

	revoked, _ := f.blacklist.IsUserRevoked(ctx, user.ID.String(), issuedBefore)
	assert.True(t, revoked)

	err = f.svc.ChangePassword(ctx, ChangePasswordInput{TenantID: user.TenantID, UserID: user.ID, OldPassword: "nope-nope", NewPassword: "another-one"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PASSWORD", de.Code)
}
