package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// envelope fields already stored in dedicated columns
var eventEnvelopeFields = []string{"id", "type", "timestamp", "aggregate_id", "aggregate_type", "tenant_id", "actor_id"}

// Service writes and queries the audit trail. It is subscribed to every
// domain event on the bus and is called directly for authentication events.
type Service struct {
	repo   audit.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new audit service
func NewService(repo audit.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// EventTypes subscribes to everything
func (s *Service) EventTypes() []string {
	return []string{"*"}
}

// Handle turns a domain event into an audit entry
func (s *Service) Handle(ctx context.Context, event shared.DomainEvent) error {
	src := SourceFrom(ctx)
	if ae, ok := event.(shared.ActorEvent); ok && ae.ActorID() != nil {
		src.UserID = ae.ActorID()
	}
	id := event.AggregateID()
	entry, err := audit.NewLog(
		event.TenantID(),
		shared.EventAction(event.EventType()),
		event.AggregateType(),
		&id,
		eventChanges(event),
		src,
		event.OccurredAt(),
	)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		s.logger.Error("Failed to write audit entry",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", id.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// Record writes an entry that has no domain event behind it
func (s *Service) Record(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, action, entityType string, entityID *uuid.UUID, details map[string]any) error {
	src := SourceFrom(ctx)
	if userID != nil {
		src.UserID = userID
	}
	entry, err := audit.NewLog(tenantID, action, entityType, entityID, details, src, s.now())
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		s.logger.Error("Failed to write audit entry", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

// List searches the audit trail of a tenant, newest first by default
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter LogFilter) ([]LogResponse, int64, error) {
	q, f := filter.toDomain()
	logs, total, err := s.repo.Find(ctx, tenantID, q, f)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]LogResponse, len(logs))
	for i := range logs {
		responses[i] = ToLogResponse(&logs[i])
	}
	return responses, total, nil
}

func eventChanges(event shared.DomainEvent) map[string]any {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil
	}
	var changes map[string]any
	if err := json.Unmarshal(raw, &changes); err != nil {
		return nil
	}
	for _, k := range eventEnvelopeFields {
		delete(changes, k)
	}
	return changes
}

var _ shared.EventHandler = (*Service)(nil)
