package market

import (
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeMarket = "market"

const (
	EventTypeMarketCreated       = "market.created"
	EventTypeMarketUpdated       = "market.updated"
	EventTypeMarketStatusChanged = "market.status_changed"
	EventTypeMarketCharged       = "market.charged"
	EventTypeMarketReleased      = "market.released"
	EventTypeMarketDeleted       = "market.deleted"
)

type MarketEvent struct {
	shared.BaseDomainEvent
	Reference      string          `json:"reference"`
	Status         Status          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	InvoicedAmount decimal.Decimal `json:"invoiced_amount"`
}

func newMarketEvent(eventType string, m *Market) *MarketEvent {
	return &MarketEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeMarket, m.ID, m.TenantID),
		Reference:       m.Reference,
		Status:          m.Status,
		Amount:          m.Amount,
		InvoicedAmount:  m.InvoicedAmount,
	}
}

func NewMarketDeletedEvent(m *Market) *MarketEvent {
	return newMarketEvent(EventTypeMarketDeleted, m)
}
