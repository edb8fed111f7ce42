package audit

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LogFilter represents the query parameters of the audit log search
type LogFilter struct {
	EntityType string     `form:"entity_type"`
	EntityID   *uuid.UUID `form:"entity_id"`
	UserID     *uuid.UUID `form:"user_id"`
	Action     string     `form:"action"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f LogFilter) toDomain() (audit.Query, shared.Filter) {
	q := audit.Query{
		EntityType: f.EntityType,
		EntityID:   f.EntityID,
		UserID:     f.UserID,
		Action:     f.Action,
		From:       f.From,
	}
	if f.To != nil {
		// a date-only upper bound includes the whole day
		end := f.To.AddDate(0, 0, 1)
		q.To = &end
	}
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "occurred_at",
		OrderDir: f.OrderDir,
	}
	return q, filter.Normalize()
}

// LogResponse represents an audit entry in API responses
type LogResponse struct {
	ID         uuid.UUID      `json:"id"`
	UserID     *uuid.UUID     `json:"user_id,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *uuid.UUID     `json:"entity_id,omitempty"`
	Changes    map[string]any `json:"changes"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	RequestID  string         `json:"request_id"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func ToLogResponse(l *audit.Log) LogResponse {
	return LogResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		Action:     l.Action,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Changes:    l.Changes,
		IPAddress:  l.IPAddress,
		UserAgent:  l.UserAgent,
		RequestID:  l.RequestID,
		OccurredAt: l.OccurredAt,
	}
}
