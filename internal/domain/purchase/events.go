package purchase

import (
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeExpense = "expense"

const (
	EventTypeExpenseCreated = "expense.created"
	EventTypeExpenseUpdated = "expense.updated"
	EventTypeExpenseDeleted = "expense.deleted"
)

type ExpenseEvent struct {
	shared.BaseDomainEvent
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

func newExpenseEvent(eventType string, e *Expense) *ExpenseEvent {
	return &ExpenseEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeExpense, e.ID, e.TenantID),
		Category:        e.Category,
		Total:           e.Total,
	}
}

func NewExpenseDeletedEvent(e *Expense) *ExpenseEvent {
	return newExpenseEvent(EventTypeExpenseDeleted, e)
}
