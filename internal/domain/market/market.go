// Package market models framework contracts ("markets") signed with a
// client: a ceiling amount invoiced progressively over a period.
package market

import (
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Market struct {
	shared.TenantAggregateRoot
	Reference      string
	Title          string
	ClientID       uuid.UUID
	Description    string
	StartDate      time.Time
	EndDate        time.Time
	Amount         decimal.Decimal
	InvoicedAmount decimal.Decimal
	Status         Status
}

func NewMarket(tenantID, clientID uuid.UUID, reference, title string, start, end time.Time, amount decimal.Decimal) (*Market, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if reference == "" || len(reference) > 50 {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference must be between 1 and 50 characters")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client is required")
	}
	m := &Market{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		ClientID:            clientID,
		InvoicedAmount:      decimal.Zero,
		Status:              StatusDraft,
	}
	if err := m.apply(title, "", start, end, amount); err != nil {
		return nil, err
	}
	m.AddDomainEvent(newMarketEvent(EventTypeMarketCreated, m))
	return m, nil
}

// Update changes the contract terms. The ceiling can never drop below what
// has already been invoiced.
func (m *Market) Update(title, description string, start, end time.Time, amount decimal.Decimal) error {
	if m.Status == StatusCompleted || m.Status == StatusCancelled {
		return shared.NewInvalidStateError("Completed or cancelled markets cannot be edited")
	}
	if err := m.apply(title, description, start, end, amount); err != nil {
		return err
	}
	m.Touch()
	m.AddDomainEvent(newMarketEvent(EventTypeMarketUpdated, m))
	return nil
}

func (m *Market) apply(title, description string, start, end time.Time, amount decimal.Decimal) error {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title must be between 1 and 200 characters")
	}
	if start.IsZero() || end.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Start and end dates are required")
	}
	if end.Before(start) {
		return shared.NewDomainError("INVALID_DATE", "End date cannot be before start date")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if amount.LessThan(m.InvoicedAmount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be lower than the invoiced amount")
	}
	m.Title = title
	m.Description = description
	m.StartDate = start
	m.EndDate = end
	m.Amount = shared.RoundMoney(amount)
	return nil
}

func (m *Market) Activate() error {
	if m.Status != StatusDraft {
		return shared.NewInvalidStateError("Only draft markets can be activated")
	}
	return m.transition(StatusActive)
}

func (m *Market) Complete() error {
	if m.Status != StatusActive {
		return shared.NewInvalidStateError("Only active markets can be completed")
	}
	return m.transition(StatusCompleted)
}

func (m *Market) Cancel() error {
	if m.Status == StatusCompleted || m.Status == StatusCancelled {
		return shared.NewInvalidStateError("Market is already closed")
	}
	return m.transition(StatusCancelled)
}

func (m *Market) transition(to Status) error {
	m.Status = to
	m.Touch()
	m.AddDomainEvent(newMarketEvent(EventTypeMarketStatusChanged, m))
	return nil
}

// Remaining is what can still be invoiced under the contract
func (m *Market) Remaining() decimal.Decimal {
	return m.Amount.Sub(m.InvoicedAmount)
}

// ConsumptionRate is the invoiced share of the ceiling in percent
func (m *Market) ConsumptionRate() decimal.Decimal {
	return shared.SafeRatio(m.InvoicedAmount, m.Amount)
}

// Charge books an invoice amount against the ceiling
func (m *Market) Charge(amount decimal.Decimal) error {
	if m.Status != StatusActive {
		return shared.NewInvalidStateError("Only active markets can be invoiced")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if amount.GreaterThan(m.Remaining()) {
		return shared.NewDomainError("MARKET_CEILING_EXCEEDED", "Invoice exceeds the remaining market amount")
	}
	m.InvoicedAmount = m.InvoicedAmount.Add(amount)
	m.Touch()
	m.AddDomainEvent(newMarketEvent(EventTypeMarketCharged, m))
	return nil
}

// Release gives back an amount previously charged (cancelled invoice)
func (m *Market) Release(amount decimal.Decimal) {
	m.InvoicedAmount = m.InvoicedAmount.Sub(amount)
	if m.InvoicedAmount.IsNegative() {
		m.InvoicedAmount = decimal.Zero
	}
	m.Touch()
	m.AddDomainEvent(newMarketEvent(EventTypeMarketReleased, m))
}

func (m *Market) CanDelete() bool {
	return m.Status == StatusDraft && m.InvoicedAmount.IsZero()
}
