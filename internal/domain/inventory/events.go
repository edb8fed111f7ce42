package inventory

import (
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeStock = "stock"

const (
	EventTypeStockChanged = "stock.changed"
	EventTypeStockLow     = "stock.low"
)

// StockChangedEvent is raised for every movement
type StockChangedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID       `json:"product_id"`
	MovementID    uuid.UUID       `json:"movement_id"`
	MovementType  MovementType    `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	QuantityAfter decimal.Decimal `json:"quantity_after"`
}

func newStockChangedEvent(s *StockLevel, m *StockMovement) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeStock, s.ID, s.TenantID),
		ProductID:       s.ProductID,
		MovementID:      m.ID,
		MovementType:    m.Type,
		Quantity:        m.Quantity,
		QuantityAfter:   m.QuantityAfter,
	}
}

// StockLowEvent is raised when a level crosses its reorder threshold
type StockLowEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

func newStockLowEvent(s *StockLevel) *StockLowEvent {
	return &StockLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLow, AggregateTypeStock, s.ID, s.TenantID),
		ProductID:       s.ProductID,
		Quantity:        s.Quantity,
		MinQuantity:     s.MinQuantity,
	}
}
