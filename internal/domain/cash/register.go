// Package cash models point-of-sale cash drawers: opening, movements and
// end-of-day closing with counted cash reconciliation.
package cash

import (
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterStatus string

const (
	RegisterStatusClosed RegisterStatus = "closed"
	RegisterStatusOpen   RegisterStatus = "open"
)

type MovementType string

const (
	MovementSale       MovementType = "sale"
	MovementRefund     MovementType = "refund"
	MovementDeposit    MovementType = "deposit"
	MovementWithdrawal MovementType = "withdrawal"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementSale, MovementRefund, MovementDeposit, MovementWithdrawal:
		return true
	}
	return false
}

// inflow reports whether the movement adds money to the drawer
func (t MovementType) inflow() bool {
	return t == MovementSale || t == MovementDeposit
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCheck    PaymentMethod = "check"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCheck:
		return true
	}
	return false
}

// Register is a cash drawer. Only cash movements change its balance.
type Register struct {
	shared.TenantAggregateRoot
	Name           string
	Location       string
	Status         RegisterStatus
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	OpenedAt       *time.Time
	OpenedBy       *uuid.UUID
	ClosedAt       *time.Time
}

// Movement is one entry in a register session
type Movement struct {
	shared.BaseEntity
	TenantID     uuid.UUID
	RegisterID   uuid.UUID
	Type         MovementType
	Amount       decimal.Decimal
	Method       PaymentMethod
	Reference    string
	InvoiceID    *uuid.UUID
	BalanceAfter decimal.Decimal
	CreatedBy    *uuid.UUID
}

// Closing is the reconciliation made when a register closes
type Closing struct {
	shared.BaseEntity
	TenantID       uuid.UUID
	RegisterID     uuid.UUID
	OpenedAt       time.Time
	ClosedAt       time.Time
	OpeningBalance decimal.Decimal
	Expected       decimal.Decimal
	Counted        decimal.Decimal
	Difference     decimal.Decimal
	ClosedBy       *uuid.UUID
	Notes          string
}

func NewRegister(tenantID uuid.UUID, name, location string) (*Register, error) {
	r := &Register{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Status:              RegisterStatusClosed,
		OpeningBalance:      decimal.Zero,
		CurrentBalance:      decimal.Zero,
	}
	if err := r.Rename(name, location); err != nil {
		return nil, err
	}
	r.AddDomainEvent(newRegisterEvent(EventTypeRegisterCreated, r))
	return r, nil
}

func (r *Register) Rename(name, location string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Register name must be between 1 and 100 characters")
	}
	r.Name = name
	r.Location = strings.TrimSpace(location)
	r.Touch()
	return nil
}

// Open starts a session with the cash put in the drawer
func (r *Register) Open(openingBalance decimal.Decimal, by uuid.UUID, at time.Time) error {
	if r.Status == RegisterStatusOpen {
		return shared.NewInvalidStateError("Register is already open")
	}
	if openingBalance.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Opening balance cannot be negative")
	}
	r.Status = RegisterStatusOpen
	r.OpeningBalance = shared.RoundMoney(openingBalance)
	r.CurrentBalance = r.OpeningBalance
	r.OpenedAt = &at
	r.OpenedBy = &by
	r.ClosedAt = nil
	r.Touch()
	r.AddDomainEvent(newRegisterEvent(EventTypeRegisterOpened, r))
	return nil
}

// Record adds a movement to the open session. Cash leaving the drawer can
// never make the balance negative.
func (r *Register) Record(t MovementType, amount decimal.Decimal, method PaymentMethod, reference string, invoiceID *uuid.UUID, by *uuid.UUID) (*Movement, error) {
	if r.Status != RegisterStatusOpen {
		return nil, shared.NewInvalidStateError("Register is closed")
	}
	if !t.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if (t == MovementDeposit || t == MovementWithdrawal) && method != PaymentMethodCash {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Deposits and withdrawals are cash only")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	amount = shared.RoundMoney(amount)

	balance := r.CurrentBalance
	if method == PaymentMethodCash {
		if t.inflow() {
			balance = balance.Add(amount)
		} else {
			if balance.LessThan(amount) {
				return nil, shared.ErrInsufficientBalance
			}
			balance = balance.Sub(amount)
		}
	}
	r.CurrentBalance = balance
	r.Touch()

	m := &Movement{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     r.TenantID,
		RegisterID:   r.ID,
		Type:         t,
		Amount:       amount,
		Method:       method,
		Reference:    strings.TrimSpace(reference),
		InvoiceID:    invoiceID,
		BalanceAfter: balance,
		CreatedBy:    by,
	}
	r.AddDomainEvent(newMovementEvent(r, m))
	return m, nil
}

// Close ends the session and reconciles counted cash against the expected balance
func (r *Register) Close(counted decimal.Decimal, notes string, by uuid.UUID, at time.Time) (*Closing, error) {
	if r.Status != RegisterStatusOpen {
		return nil, shared.NewInvalidStateError("Register is not open")
	}
	if counted.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Counted amount cannot be negative")
	}
	counted = shared.RoundMoney(counted)
	c := &Closing{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       r.TenantID,
		RegisterID:     r.ID,
		OpeningBalance: r.OpeningBalance,
		ClosedAt:       at,
		Expected:       r.CurrentBalance,
		Counted:        counted,
		Difference:     counted.Sub(r.CurrentBalance),
		ClosedBy:       &by,
		Notes:          strings.TrimSpace(notes),
	}
	if r.OpenedAt != nil {
		c.OpenedAt = *r.OpenedAt
	}

	r.Status = RegisterStatusClosed
	r.CurrentBalance = counted
	r.ClosedAt = &at
	r.Touch()
	r.AddDomainEvent(newClosedEvent(r, c))
	return c, nil
}

func (r *Register) IsOpen() bool {
	return r.Status == RegisterStatusOpen
}
