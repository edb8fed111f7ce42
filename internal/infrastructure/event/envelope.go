package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Envelope is the wire form of a domain event for external sinks
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	ActorID       *uuid.UUID      `json:"actor_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(ev shared.DomainEvent) (*Envelope, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.EventType(), err)
	}
	env := &Envelope{
		ID:            ev.EventID(),
		Type:          ev.EventType(),
		AggregateType: ev.AggregateType(),
		AggregateID:   ev.AggregateID(),
		TenantID:      ev.TenantID(),
		OccurredAt:    ev.OccurredAt(),
		Payload:       payload,
	}
	if a, ok := ev.(shared.ActorEvent); ok {
		env.ActorID = a.ActorID()
	}
	return env, nil
}

func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
