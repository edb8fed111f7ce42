package inventory

import (
	"strings"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

// StockLevel is the on-hand quantity of one product. The aggregate id is
// independent from the product id; ProductID is unique per tenant.
type StockLevel struct {
	shared.TenantAggregateRoot
	ProductID   uuid.UUID
	Quantity    decimal.Decimal
	MinQuantity decimal.Decimal
}

// StockMovement is an append-only record of a quantity change
type StockMovement struct {
	shared.BaseEntity
	TenantID       uuid.UUID
	ProductID      uuid.UUID
	Type           MovementType
	Quantity       decimal.Decimal
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	Reason         string
	ReferenceType  string
	ReferenceID    *uuid.UUID
	CreatedBy      *uuid.UUID
}

// Reference points a movement at the document that caused it
type Reference struct {
	Type string
	ID   *uuid.UUID
}

func NewStockLevel(tenantID, productID uuid.UUID) *StockLevel {
	return &StockLevel{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		Quantity:            decimal.Zero,
		MinQuantity:         decimal.Zero,
	}
}

// Receive adds quantity to stock
func (s *StockLevel) Receive(qty decimal.Decimal, reason string, ref Reference) (*StockMovement, error) {
	if !qty.IsPositive() {
		return nil, invalidQuantity()
	}
	return s.apply(MovementIn, qty, s.Quantity.Add(qty), reason, ref), nil
}

// Issue removes quantity from stock. Stock can never go negative.
func (s *StockLevel) Issue(qty decimal.Decimal, reason string, ref Reference) (*StockMovement, error) {
	if !qty.IsPositive() {
		return nil, invalidQuantity()
	}
	if s.Quantity.LessThan(qty) {
		return nil, shared.ErrInsufficientStock
	}
	return s.apply(MovementOut, qty, s.Quantity.Sub(qty), reason, ref), nil
}

// Adjust sets the quantity to a counted value. The movement carries the
// signed difference.
func (s *StockLevel) Adjust(counted decimal.Decimal, reason string, ref Reference) (*StockMovement, error) {
	if counted.IsNegative() {
		return nil, invalidQuantity()
	}
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	if counted.Equal(s.Quantity) {
		return nil, shared.NewDomainError("NO_CHANGE", "Counted quantity equals current quantity")
	}
	return s.apply(MovementAdjustment, counted.Sub(s.Quantity), counted, reason, ref), nil
}

func (s *StockLevel) SetMinQuantity(min decimal.Decimal) error {
	if min.IsNegative() {
		return invalidQuantity()
	}
	s.MinQuantity = min
	s.Touch()
	return nil
}

// IsLow reports whether the quantity dropped to or below the reorder threshold
func (s *StockLevel) IsLow() bool {
	return s.MinQuantity.IsPositive() && s.Quantity.LessThanOrEqual(s.MinQuantity)
}

func (s *StockLevel) apply(t MovementType, qty, after decimal.Decimal, reason string, ref Reference) *StockMovement {
	before := s.Quantity
	s.Quantity = after
	s.Touch()

	m := &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       s.TenantID,
		ProductID:      s.ProductID,
		Type:           t,
		Quantity:       qty,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reason:         strings.TrimSpace(reason),
		ReferenceType:  ref.Type,
		ReferenceID:    ref.ID,
	}
	s.AddDomainEvent(newStockChangedEvent(s, m))
	if s.IsLow() && !before.LessThanOrEqual(s.MinQuantity) {
		s.AddDomainEvent(newStockLowEvent(s))
	}
	return m
}

func invalidQuantity() error {
	return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
}
