package identity

import (
	"context"
	"errors"
	"time"

	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// Auditor records authentication events that have no domain event behind them
type Auditor interface {
	Record(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, action, entityType string, entityID *uuid.UUID, details map[string]any) error
}

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// AuthService handles authentication operations
type AuthService struct {
	userRepo     identity.UserRepository
	tenantRepo   identity.TenantRepository
	settingsRepo settings.Repository
	jwtService   *auth.JWTService
	blacklist    auth.TokenBlacklist
	auditor      Auditor
	publisher    shared.EventPublisher
	config       AuthServiceConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	tenantRepo identity.TenantRepository,
	settingsRepo settings.Repository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	auditor Auditor,
	publisher shared.EventPublisher,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tenantRepo:   tenantRepo,
		settingsRepo: settingsRepo,
		jwtService:   jwtService,
		blacklist:    blacklist,
		auditor:      auditor,
		publisher:    publisher,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("login", input.Login), zap.String("company", input.Company))

	user, err := s.findLoginUser(ctx, input)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during login", zap.String("login", input.Login))
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if !user.CanLogin(now) {
		if user.IsLocked(now) {
			s.logger.Warn("Login attempt for locked account", zap.String("username", user.Username))
			s.audit(ctx, user, audit.ActionLoginFailed, map[string]any{"reason": "locked"})
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact an administrator")
		}
		s.logger.Warn("Login attempt for disabled account", zap.String("username", user.Username))
		s.audit(ctx, user, audit.ActionLoginFailed, map[string]any{"reason": "disabled"})
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration, now)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", user.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			s.audit(ctx, user, audit.ActionLoginFailed, map[string]any{"reason": "bad_password", "locked": true})
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("username", user.Username),
			zap.Int("failed_attempts", user.FailedAttempts))
		s.audit(ctx, user, audit.ActionLoginFailed, map[string]any{"reason": "bad_password"})
		return nil, errInvalidCredentials
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(subjectOf(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLoginSuccess(input.IP, now)
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Don't fail the login over bookkeeping
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}
	s.audit(ctx, user, audit.ActionLoginSucceeded, map[string]any{"ip": input.IP})

	s.logger.Info("User logged in successfully",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	return loginResult(tokenPair, user), nil
}

func (s *AuthService) findLoginUser(ctx context.Context, input LoginInput) (*identity.User, error) {
	if input.Company == "" {
		return s.userRepo.FindByLogin(ctx, input.Login)
	}
	tenant, err := s.tenantRepo.FindBySlug(ctx, input.Company)
	if err != nil {
		return nil, err
	}
	if !tenant.Active {
		return nil, shared.ErrNotFound
	}
	return s.userRepo.FindByUsername(ctx, tenant.ID, input.Login)
}

// RefreshToken rotates a token pair. The previous refresh token is revoked
// so it cannot be replayed.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.TenantUUID(), claims.UserUUID())
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", claims.UserID))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if !user.CanLogin(s.now()) {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", claims.UserID))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	tokenPair, err := s.jwtService.RotateTokenPair(claims, subjectOf(user))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if s.blacklist != nil {
		if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
			s.logger.Error("Failed to revoke rotated refresh token", zap.Error(err))
		}
	}

	s.logger.Info("Token refreshed successfully", zap.String("user_id", claims.UserID))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("User logout",
		zap.String("user_id", input.UserID.String()),
		zap.String("tenant_id", input.TenantID.String()))

	if s.blacklist != nil {
		if input.AccessTokenID != "" {
			if err := s.blacklist.Revoke(ctx, input.AccessTokenID, input.AccessExpiresAt.Sub(s.now())); err != nil {
				return err
			}
		}
		if input.RefreshToken != "" {
			// an already invalid refresh token has nothing left to revoke
			if claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken); err == nil && claims.UserID == input.UserID.String() {
				if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
					return err
				}
			}
		}
	}

	if s.auditor != nil {
		userID := input.UserID
		if err := s.auditor.Record(ctx, input.TenantID, &userID, audit.ActionLogout, identity.AggregateTypeUser, &userID, nil); err != nil {
			s.logger.Warn("Failed to audit logout", zap.Error(err))
		}
	}
	return nil
}

// Me returns the current user's information
func (s *AuthService) Me(ctx context.Context, tenantID, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	info := toUserInfo(user)
	return &info, nil
}

// ChangePassword changes the caller's password and revokes every token
// issued before the change.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.TenantID, input.UserID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		return err
	}
	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
			s.logger.Error("Failed to revoke tokens after password change", zap.Error(err))
		}
	}

	s.logger.Info("User password changed", zap.String("user_id", input.UserID.String()))
	return nil
}

// Register creates a company workspace with its first admin and default
// settings, then signs the admin in. A company that already has users
// cannot be registered again.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	tenant, err := identity.NewTenant(input.CompanyName)
	if err != nil {
		return nil, err
	}

	existing, err := s.tenantRepo.FindBySlug(ctx, tenant.Slug)
	switch {
	case err == nil:
		count, err := s.userRepo.CountByTenant(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "This company is already registered")
		}
		tenant = existing
	case errors.Is(err, shared.ErrNotFound):
		if err := s.tenantRepo.Save(ctx, tenant); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	admin, err := identity.NewUser(tenant.ID, input.Username, input.Email, input.Password, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	admin.SetCreatedBy(admin.ID)
	admin.RecordLoginSuccess(input.IP, s.now())
	if err := s.userRepo.Save(ctx, admin); err != nil {
		return nil, err
	}
	if err := s.settingsRepo.Save(ctx, settings.Defaults(tenant.ID, tenant.Name)); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, admin); err != nil {
		return nil, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(subjectOf(admin))
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	s.audit(ctx, admin, audit.ActionLoginSucceeded, map[string]any{"ip": input.IP, "registration": true})

	s.logger.Info("Company registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
		zap.String("admin", admin.Username))

	return loginResult(tokenPair, admin), nil
}

func (s *AuthService) audit(ctx context.Context, user *identity.User, action string, details map[string]any) {
	if s.auditor == nil {
		return
	}
	id := user.ID
	if err := s.auditor.Record(ctx, user.TenantID, &id, action, identity.AggregateTypeUser, &id, details); err != nil {
		s.logger.Warn("Failed to audit authentication event", zap.String("action", action), zap.Error(err))
	}
}

func subjectOf(u *identity.User) auth.Subject {
	return auth.Subject{
		TenantID:    u.TenantID,
		UserID:      u.ID,
		Username:    u.Username,
		Role:        string(u.Role),
		Permissions: identity.PermissionsFor(u.Role),
	}
}

func loginResult(pair *auth.TokenPair, u *identity.User) *LoginResult {
	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  toUserInfo(u),
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrInvalidClaims):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
