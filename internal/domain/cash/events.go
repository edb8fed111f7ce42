package cash

import (
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeRegister = "cash_register"

const (
	EventTypeRegisterCreated  = "cash_register.created"
	EventTypeRegisterUpdated  = "cash_register.updated"
	EventTypeRegisterOpened   = "cash_register.opened"
	EventTypeRegisterClosed   = "cash_register.closed"
	EventTypeRegisterDeleted  = "cash_register.deleted"
	EventTypeMovementRecorded = "cash_register.movement_recorded"
)

type RegisterEvent struct {
	shared.BaseDomainEvent
	Name    string          `json:"name"`
	Status  RegisterStatus  `json:"status"`
	Balance decimal.Decimal `json:"balance"`
}

func newRegisterEvent(eventType string, r *Register) *RegisterEvent {
	return &RegisterEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeRegister, r.ID, r.TenantID),
		Name:            r.Name,
		Status:          r.Status,
		Balance:         r.CurrentBalance,
	}
}

func NewRegisterDeletedEvent(r *Register) *RegisterEvent {
	return newRegisterEvent(EventTypeRegisterDeleted, r)
}

func NewRegisterUpdatedEvent(r *Register) *RegisterEvent {
	return newRegisterEvent(EventTypeRegisterUpdated, r)
}

type MovementEvent struct {
	shared.BaseDomainEvent
	MovementID uuid.UUID       `json:"movement_id"`
	Type       MovementType    `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"method"`
	Balance    decimal.Decimal `json:"balance"`
}

func newMovementEvent(r *Register, m *Movement) *MovementEvent {
	return &MovementEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementRecorded, AggregateTypeRegister, r.ID, r.TenantID),
		MovementID:      m.ID,
		Type:            m.Type,
		Amount:          m.Amount,
		Method:          m.Method,
		Balance:         m.BalanceAfter,
	}
}

type ClosedEvent struct {
	shared.BaseDomainEvent
	ClosingID  uuid.UUID       `json:"closing_id"`
	Expected   decimal.Decimal `json:"expected"`
	Counted    decimal.Decimal `json:"counted"`
	Difference decimal.Decimal `json:"difference"`
}

func newClosedEvent(r *Register, c *Closing) *ClosedEvent {
	return &ClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegisterClosed, AggregateTypeRegister, r.ID, r.TenantID),
		ClosingID:       c.ID,
		Expected:        c.Expected,
		Counted:         c.Counted,
		Difference:      c.Difference,
	}
}
