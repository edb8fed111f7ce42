package subscription

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeSubscription = "subscription"

const (
	EventTypeSubscriptionCreated   = "subscription.created"
	EventTypeSubscriptionUpdated   = "subscription.updated"
	EventTypeSubscriptionPaused    = "subscription.paused"
	EventTypeSubscriptionResumed   = "subscription.resumed"
	EventTypeSubscriptionCancelled = "subscription.cancelled"
	EventTypeSubscriptionBilled    = "subscription.billed"
	EventTypeSubscriptionDeleted   = "subscription.deleted"
)

type SubscriptionEvent struct {
	shared.BaseDomainEvent
	ClientID        uuid.UUID  `json:"client_id"`
	Name            string     `json:"name"`
	Status          Status     `json:"status"`
	NextBillingDate time.Time  `json:"next_billing_date"`
	LastInvoiceID   *uuid.UUID `json:"last_invoice_id,omitempty"`
}

func newSubscriptionEvent(eventType string, s *Subscription) *SubscriptionEvent {
	return &SubscriptionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeSubscription, s.ID, s.TenantID),
		ClientID:        s.ClientID,
		Name:            s.Name,
		Status:          s.Status,
		NextBillingDate: s.NextBillingDate,
		LastInvoiceID:   s.LastInvoiceID,
	}
}

func NewSubscriptionDeletedEvent(s *Subscription) *SubscriptionEvent {
	return newSubscriptionEvent(EventTypeSubscriptionDeleted, s)
}
