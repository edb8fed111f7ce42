package identity

import "github.com/bizdesk/backend/internal/domain/shared"

const AggregateTypeUser = "user"

const (
	EventTypeUserCreated         = "user.created"
	EventTypeUserUpdated         = "user.updated"
	EventTypeUserRoleChanged     = "user.role_changed"
	EventTypeUserPasswordChanged = "user.password_changed"
	EventTypeUserActivated       = "user.activated"
	EventTypeUserDeactivated     = "user.deactivated"
	EventTypeUserDeleted         = "user.deleted"
)

// UserEvent is raised on every user change. Password hashes are never carried.
type UserEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Status   string `json:"status"`
}

func NewUserEvent(eventType string, u *User) *UserEvent {
	return &UserEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeUser, u.ID, u.TenantID),
		Username:        u.Username,
		Role:            u.Role,
		Status:          string(u.Status),
	}
}
