package settings

import (
	"github.com/bizdesk/backend/internal/domain/shared"
)

const (
	AggregateTypeSettings = "settings"

	EventTypeSettingsUpdated = "settings.updated"
)

// UpdatedEvent is published after the company settings change.
// The aggregate id is the tenant id since there is one row per tenant.
type UpdatedEvent struct {
	shared.BaseDomainEvent
	CompanyName   string `json:"company_name"`
	Currency      string `json:"currency"`
	InvoicePrefix string `json:"invoice_prefix"`
	QuotePrefix   string `json:"quote_prefix"`
}

func NewUpdatedEvent(s *CompanySettings) *UpdatedEvent {
	return &UpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettingsUpdated, AggregateTypeSettings, s.TenantID, s.TenantID),
		CompanyName:     s.CompanyName,
		Currency:        s.Currency,
		InvoicePrefix:   s.InvoicePrefix,
		QuotePrefix:     s.QuotePrefix,
	}
}
