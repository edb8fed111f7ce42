package billing

import (
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeInvoice  = "invoice"
	AggregateTypeQuote    = "quote"
	AggregateTypeReminder = "reminder"
)

const (
	EventTypeInvoiceCreated         = "invoice.created"
	EventTypeInvoiceUpdated         = "invoice.updated"
	EventTypeInvoiceSent            = "invoice.sent"
	EventTypeInvoicePaymentRecorded = "invoice.payment_recorded"
	EventTypeInvoicePaid            = "invoice.paid"
	EventTypeInvoiceOverdue         = "invoice.overdue"
	EventTypeInvoiceCancelled       = "invoice.cancelled"
	EventTypeInvoiceDeleted         = "invoice.deleted"

	EventTypeQuoteCreated   = "quote.created"
	EventTypeQuoteUpdated   = "quote.updated"
	EventTypeQuoteSent      = "quote.sent"
	EventTypeQuoteAccepted  = "quote.accepted"
	EventTypeQuoteRejected  = "quote.rejected"
	EventTypeQuoteExpired   = "quote.expired"
	EventTypeQuoteConverted = "quote.converted"
	EventTypeQuoteDeleted   = "quote.deleted"

	EventTypeReminderCreated = "reminder.created"
	EventTypeReminderSent    = "reminder.sent"
	EventTypeReminderFailed  = "reminder.failed"
)

// LineRef is a product quantity carried on invoice events
type LineRef struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// InvoiceEvent describes an invoice state change. PreviousStatus lets
// handlers tell whether the invoice had been issued before.
type InvoiceEvent struct {
	shared.BaseDomainEvent
	Number         string          `json:"number"`
	ClientID       uuid.UUID       `json:"client_id"`
	MarketID       *uuid.UUID      `json:"market_id,omitempty"`
	Status         InvoiceStatus   `json:"status"`
	PreviousStatus InvoiceStatus   `json:"previous_status,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Lines          []LineRef       `json:"lines,omitempty"`
}

func newInvoiceEvent(eventType string, i *Invoice, previous InvoiceStatus) *InvoiceEvent {
	return &InvoiceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInvoice, i.ID, i.TenantID),
		Number:          i.Number,
		ClientID:        i.ClientID,
		MarketID:        i.MarketID,
		Status:          i.Status,
		PreviousStatus:  previous,
		Total:           i.Totals.Total,
		Lines:           i.LineRefs(),
	}
}

func NewInvoiceDeletedEvent(i *Invoice) *InvoiceEvent {
	return newInvoiceEvent(EventTypeInvoiceDeleted, i, i.Status)
}

// PaymentRecordedEvent is raised for every payment
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	Number         string          `json:"number"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         PaymentMethod   `json:"method"`
	CashRegisterID *uuid.UUID      `json:"cash_register_id,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
}

func newPaymentRecordedEvent(i *Invoice, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRecorded, AggregateTypeInvoice, i.ID, i.TenantID),
		Number:          i.Number,
		PaymentID:       p.ID,
		Amount:          p.Amount,
		Method:          p.Method,
		CashRegisterID:  p.CashRegisterID,
		Balance:         i.Balance(),
	}
}

type QuoteEvent struct {
	shared.BaseDomainEvent
	Number   string          `json:"number"`
	ClientID uuid.UUID       `json:"client_id"`
	Status   QuoteStatus     `json:"status"`
	Total    decimal.Decimal `json:"total"`
}

func newQuoteEvent(eventType string, q *Quote) *QuoteEvent {
	return &QuoteEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeQuote, q.ID, q.TenantID),
		Number:          q.Number,
		ClientID:        q.ClientID,
		Status:          q.Status,
		Total:           q.Totals.Total,
	}
}

func NewQuoteDeletedEvent(q *Quote) *QuoteEvent {
	return newQuoteEvent(EventTypeQuoteDeleted, q)
}

type ReminderEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID      `json:"invoice_id"`
	Level     int            `json:"level"`
	Status    ReminderStatus `json:"status"`
}

func newReminderEvent(eventType string, r *Reminder) *ReminderEvent {
	return &ReminderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeReminder, r.ID, r.TenantID),
		InvoiceID:       r.InvoiceID,
		Level:           r.Level,
		Status:          r.Status,
	}
}
