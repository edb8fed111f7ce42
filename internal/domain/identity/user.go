package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// User is an account able to sign in to a tenant workspace
type User struct {
	shared.TenantAggregateRoot
	Username       string
	Email          string
	DisplayName    string
	Role           Role
	Status         UserStatus
	PasswordHash   string
	FailedAttempts int
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
	LastLoginIP    string
}

// NewUser creates an active user with a hashed password
func NewUser(tenantID uuid.UUID, username, email, password string, role Role) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, invalidRoleError(string(role))
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Username:            strings.ToLower(strings.TrimSpace(username)),
		Email:               strings.ToLower(strings.TrimSpace(email)),
		Role:                role,
		Status:              UserStatusActive,
		PasswordHash:        hash,
	}
	u.AddDomainEvent(NewUserEvent(EventTypeUserCreated, u))
	return u, nil
}

// UpdateProfile changes display name and email
func (u *User) UpdateProfile(displayName, email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if len(displayName) > 100 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 100 characters")
	}
	u.DisplayName = strings.TrimSpace(displayName)
	u.Email = strings.ToLower(strings.TrimSpace(email))
	u.Touch()
	u.AddDomainEvent(NewUserEvent(EventTypeUserUpdated, u))
	return nil
}

// ChangeRole assigns a different role from the lookup table
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return invalidRoleError(string(role))
	}
	if u.Role == role {
		return nil
	}
	u.Role = role
	u.Touch()
	u.AddDomainEvent(NewUserEvent(EventTypeUserRoleChanged, u))
	return nil
}

// ChangePassword verifies the current password before setting the new one
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(next)
}

// SetPassword replaces the password without checking the old one (admin reset)
func (u *User) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()
	u.AddDomainEvent(NewUserEvent(EventTypeUserPasswordChanged, u))
	return nil
}

func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewInvalidStateError("User is already active")
	}
	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()
	u.AddDomainEvent(NewUserEvent(EventTypeUserActivated, u))
	return nil
}

func (u *User) Deactivate() error {
	if u.Status == UserStatusDisabled {
		return shared.NewInvalidStateError("User is already disabled")
	}
	u.Status = UserStatusDisabled
	u.Touch()
	u.AddDomainEvent(NewUserEvent(EventTypeUserDeactivated, u))
	return nil
}

// RecordLoginSuccess resets the failure counter
func (u *User) RecordLoginSuccess(ip string, at time.Time) {
	u.LastLoginAt = &at
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()
}

// RecordLoginFailure counts a failed attempt and locks the account once
// maxAttempts is reached. Returns true when the account got locked.
func (u *User) RecordLoginFailure(maxAttempts int, lockFor time.Duration, at time.Time) bool {
	u.FailedAttempts++
	u.Touch()
	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := at.Add(lockFor)
		u.LockedUntil = &until
		u.FailedAttempts = 0
		return true
	}
	return false
}

// IsLocked reports whether a lock is in effect at the given time
func (u *User) IsLocked(at time.Time) bool {
	return u.LockedUntil != nil && at.Before(*u.LockedUntil)
}

// CanLogin returns true if the user is active and not locked
func (u *User) CanLogin(at time.Time) bool {
	return u.Status == UserStatusActive && !u.IsLocked(at)
}

// Name returns display name if set, otherwise username
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 50 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be between 3 and 50 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if len(email) > 200 || !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	// bcrypt ignores everything past 72 bytes
	if len(password) < 8 || len(password) > 72 {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password must be between 8 and 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}

func invalidRoleError(role string) error {
	return shared.NewDomainError("INVALID_ROLE", "Unknown role: "+role)
}
