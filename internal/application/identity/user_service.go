package identity

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errLastAdmin = shared.NewDomainError("LAST_ADMIN", "The last active administrator cannot be removed, disabled or demoted")

// UserService handles user administration within a tenant
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	tokenTTL  time.Duration
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService creates a new UserService. tokenTTL bounds how long a
// user-wide revocation has to be remembered (the refresh token lifetime).
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	tokenTTL time.Duration,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		tokenTTL:  tokenTTL,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, tenantID, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username already exists")
	}

	user, err := identity.NewUser(tenantID, req.Username, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != "" {
		if err := user.UpdateProfile(req.DisplayName, user.Email); err != nil {
			return nil, err
		}
	}
	user.SetCreatedBy(actorID)

	s.logger.Info("Creating user",
		zap.String("tenant_id", tenantID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(role)))
	return s.save(ctx, user)
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user, s.now())
	return &response, nil
}

// List retrieves users matching the filter
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, filter UserListFilter) ([]UserResponse, int64, error) {
	users, total, err := s.userRepo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i], now)
	}
	return responses, total, nil
}

// Update updates a user's profile
func (s *UserService) Update(ctx context.Context, tenantID, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	displayName, email := user.DisplayName, user.Email
	if req.DisplayName != nil {
		displayName = *req.DisplayName
	}
	if req.Email != nil {
		email = *req.Email
	}
	if err := user.UpdateProfile(displayName, email); err != nil {
		return nil, err
	}
	return s.save(ctx, user)
}

// ChangeRole assigns another role. Demoting the last admin is refused.
func (s *UserService) ChangeRole(ctx context.Context, tenantID, userID uuid.UUID, req ChangeRoleRequest) (*UserResponse, error) {
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == identity.RoleAdmin && role != identity.RoleAdmin {
		if err := s.ensureOtherAdmin(ctx, user); err != nil {
			return nil, err
		}
	}
	previous := user.Role
	if err := user.ChangeRole(role); err != nil {
		return nil, err
	}
	response, err := s.save(ctx, user)
	if err != nil {
		return nil, err
	}
	if previous != role {
		// tokens carry the permission set of the old role
		s.revokeTokens(ctx, user)
	}
	return response, nil
}

// Activate activates a user
func (s *UserService) Activate(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Activate(); err != nil {
		return nil, err
	}
	return s.save(ctx, user)
}

// Deactivate disables a user and revokes their tokens
func (s *UserService) Deactivate(ctx context.Context, tenantID, actorID, userID uuid.UUID) (*UserResponse, error) {
	if actorID == userID {
		return nil, shared.NewDomainError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account")
	}
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == identity.RoleAdmin {
		if err := s.ensureOtherAdmin(ctx, user); err != nil {
			return nil, err
		}
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	response, err := s.save(ctx, user)
	if err != nil {
		return nil, err
	}
	s.revokeTokens(ctx, user)
	return response, nil
}

// ResetPassword sets a new password without the current one
func (s *UserService) ResetPassword(ctx context.Context, tenantID, userID uuid.UUID, req ResetPasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if err := user.SetPassword(req.Password); err != nil {
		return err
	}
	if _, err := s.save(ctx, user); err != nil {
		return err
	}
	s.revokeTokens(ctx, user)
	s.logger.Info("User password reset", zap.String("user_id", userID.String()))
	return nil
}

// Delete removes a user. Users cannot delete themselves or the last admin.
func (s *UserService) Delete(ctx context.Context, tenantID, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete your own account")
	}
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if user.Role == identity.RoleAdmin {
		if err := s.ensureOtherAdmin(ctx, user); err != nil {
			return err
		}
	}
	if err := s.userRepo.Delete(ctx, tenantID, userID); err != nil {
		return err
	}
	s.revokeTokens(ctx, user)
	if s.publisher != nil {
		return s.publisher.Publish(ctx, identity.NewUserEvent(identity.EventTypeUserDeleted, user))
	}
	return nil
}

// Roles lists the role lookup table
func (s *UserService) Roles() []RoleResponse {
	roles := identity.Roles()
	out := make([]RoleResponse, len(roles))
	for i, r := range roles {
		out[i] = RoleResponse{Code: string(r), Permissions: identity.PermissionsFor(r)}
	}
	return out
}

func (s *UserService) ensureOtherAdmin(ctx context.Context, user *identity.User) error {
	if user.Status != identity.UserStatusActive {
		return nil
	}
	count, err := s.userRepo.CountActiveByRole(ctx, user.TenantID, identity.RoleAdmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return errLastAdmin
	}
	return nil
}

func (s *UserService) revokeTokens(ctx context.Context, user *identity.User) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.tokenTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}

func (s *UserService) save(ctx context.Context, user *identity.User) (*UserResponse, error) {
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		return nil, err
	}
	response := ToUserResponse(user, s.now())
	return &response, nil
}
