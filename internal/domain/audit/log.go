// Package audit records who changed what in a tenant workspace.
package audit

import (
	"context"
	"maps"
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Actions written for authentication outside the domain event stream
const (
	ActionLoginSucceeded  = "login_succeeded"
	ActionLoginFailed     = "login_failed"
	ActionLogout          = "logout"
	ActionValidationAlert = "validation_alert"
)

// Log is an immutable audit entry
type Log struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	UserID     *uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Changes    map[string]any
	IPAddress  string
	UserAgent  string
	RequestID  string
	OccurredAt time.Time
}

// Source describes the request an entry originates from
type Source struct {
	UserID    *uuid.UUID
	IPAddress string
	UserAgent string
	RequestID string
}

func NewLog(tenantID uuid.UUID, action, entityType string, entityID *uuid.UUID, changes map[string]any, src Source, at time.Time) (*Log, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, shared.NewDomainError("INVALID_AUDIT_ACTION", "Audit action cannot be empty")
	}
	if entityType == "" {
		return nil, shared.NewDomainError("INVALID_AUDIT_ENTITY", "Audit entity type cannot be empty")
	}
	c := make(map[string]any, len(changes))
	maps.Copy(c, changes)
	return &Log{
		ID:         uuid.New(),
		TenantID:   tenantID,
		UserID:     src.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    c,
		IPAddress:  src.IPAddress,
		UserAgent:  truncate(src.UserAgent, 500),
		RequestID:  src.RequestID,
		OccurredAt: at,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Query narrows a log search. Zero values are ignored.
type Query struct {
	EntityType string
	EntityID   *uuid.UUID
	UserID     *uuid.UUID
	Action     string
	From       *time.Time
	To         *time.Time
}

type Repository interface {
	Save(ctx context.Context, l *Log) error
	Find(ctx context.Context, tenantID uuid.UUID, q Query, filter shared.Filter) ([]Log, int64, error)
}
