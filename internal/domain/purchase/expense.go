package purchase

import (
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a purchase or cost, optionally from a known vendor. Its VAT is
// deductible in tax declarations.
type Expense struct {
	shared.TenantAggregateRoot
	VendorID      *uuid.UUID
	Category      string
	Description   string
	Date          time.Time
	NetAmount     decimal.Decimal
	VATRate       decimal.Decimal
	VATAmount     decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	Reference     string
}

// ExpenseInput carries the editable fields of an expense
type ExpenseInput struct {
	VendorID      *uuid.UUID
	Category      string
	Description   string
	Date          time.Time
	NetAmount     decimal.Decimal
	VATRate       decimal.Decimal
	PaymentMethod string
	Reference     string
}

func NewExpense(tenantID uuid.UUID, in ExpenseInput) (*Expense, error) {
	e := &Expense{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	if err := e.apply(in); err != nil {
		return nil, err
	}
	e.AddDomainEvent(newExpenseEvent(EventTypeExpenseCreated, e))
	return e, nil
}

func (e *Expense) Update(in ExpenseInput) error {
	if err := e.apply(in); err != nil {
		return err
	}
	e.Touch()
	e.AddDomainEvent(newExpenseEvent(EventTypeExpenseUpdated, e))
	return nil
}

func (e *Expense) apply(in ExpenseInput) error {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" || len(in.Description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description must be between 1 and 500 characters")
	}
	if in.Date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Expense date is required")
	}
	if in.NetAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if !shared.ValidateRate(in.VATRate) {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be between 0 and 100")
	}
	y, m, d := in.Date.Date()
	e.VendorID = in.VendorID
	e.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if e.Category == "" {
		e.Category = "general"
	}
	e.Description = in.Description
	e.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	e.NetAmount = shared.RoundMoney(in.NetAmount)
	e.VATRate = in.VATRate
	e.VATAmount = shared.Percent(e.NetAmount, e.VATRate)
	e.Total = e.NetAmount.Add(e.VATAmount)
	e.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	e.Reference = strings.TrimSpace(in.Reference)
	return nil
}
