package billing

import (
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// IsValid checks the status is a known value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Issued reports whether the invoice counts as a real sale (stock, tax, market)
func (s InvoiceStatus) Issued() bool {
	return s != InvoiceStatusDraft && s != InvoiceStatusCancelled
}

// PaymentMethod is how money was received
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

// Payment is money received against an invoice
type Payment struct {
	ID             uuid.UUID
	Amount         decimal.Decimal
	Method         PaymentMethod
	Reference      string
	CashRegisterID *uuid.UUID
	PaidAt         time.Time
}

// Invoice is a billing document sent to a client
type Invoice struct {
	shared.TenantAggregateRoot
	Document
	DueDate        time.Time
	Status         InvoiceStatus
	AmountPaid     decimal.Decimal
	Payments       []Payment
	QuoteID        *uuid.UUID
	SubscriptionID *uuid.UUID
	MarketID       *uuid.UUID
	SentAt         *time.Time
	PaidAt         *time.Time
	CancelledAt    *time.Time
}

// NewInvoice creates a draft invoice. A zero due date means due on issue.
func NewInvoice(tenantID uuid.UUID, number string, clientID uuid.UUID, issueDate, dueDate time.Time, currency string) (*Invoice, error) {
	doc, err := newDocument(number, clientID, issueDate, currency)
	if err != nil {
		return nil, err
	}
	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Document:            doc,
		Status:              InvoiceStatusDraft,
		AmountPaid:          decimal.Zero,
	}
	if err := inv.setDueDate(dueDate); err != nil {
		return nil, err
	}
	inv.AddDomainEvent(newInvoiceEvent(EventTypeInvoiceCreated, inv, ""))
	return inv, nil
}

// SetLines replaces the lines of a draft invoice
func (i *Invoice) SetLines(lines []Line) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateError("Only draft invoices can be edited")
	}
	if err := i.setLines(lines); err != nil {
		return err
	}
	i.Touch()
	return nil
}

// UpdateDetails changes dates and notes of a draft invoice
func (i *Invoice) UpdateDetails(issueDate, dueDate time.Time, notes string) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateError("Only draft invoices can be edited")
	}
	if !issueDate.IsZero() {
		i.IssueDate = truncateDay(issueDate)
	}
	if err := i.setDueDate(dueDate); err != nil {
		return err
	}
	i.Notes = strings.TrimSpace(notes)
	i.Touch()
	i.AddDomainEvent(newInvoiceEvent(EventTypeInvoiceUpdated, i, ""))
	return nil
}

// Link attaches the invoice to the documents it originates from
func (i *Invoice) Link(quoteID, subscriptionID, marketID *uuid.UUID) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateError("Only draft invoices can be linked")
	}
	i.QuoteID = quoteID
	i.SubscriptionID = subscriptionID
	i.MarketID = marketID
	return nil
}

// Send issues the invoice to the client
func (i *Invoice) Send(at time.Time) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateError("Only draft invoices can be sent")
	}
	if len(i.Lines) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "Cannot send an invoice without lines")
	}
	i.Status = InvoiceStatusSent
	i.SentAt = &at
	i.Touch()
	i.AddDomainEvent(newInvoiceEvent(EventTypeInvoiceSent, i, InvoiceStatusDraft))
	return nil
}

// RecordPayment registers money received. The invoice becomes paid once the
// balance reaches zero; overpayment is refused.
func (i *Invoice) RecordPayment(amount decimal.Decimal, method PaymentMethod, reference string, cashRegisterID *uuid.UUID, at time.Time) (*Payment, error) {
	switch i.Status {
	case InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue:
	default:
		return nil, shared.NewInvalidStateError("Payments can only be recorded on sent, partially paid or overdue invoices")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	amount = shared.RoundMoney(amount)
	if amount.GreaterThan(i.Balance()) {
		return nil, shared.NewDomainError("OVERPAYMENT", "Payment exceeds the remaining balance")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	p := Payment{
		ID:             uuid.New(),
		Amount:         amount,
		Method:         method,
		Reference:      strings.TrimSpace(reference),
		CashRegisterID: cashRegisterID,
		PaidAt:         at,
	}
	previous := i.Status
	i.Payments = append(i.Payments, p)
	i.AmountPaid = i.AmountPaid.Add(amount)
	if i.Balance().IsZero() {
		i.Status = InvoiceStatusPaid
		i.PaidAt = &at
	} else {
		i.Status = InvoiceStatusPartiallyPaid
	}
	i.Touch()

	evt := newPaymentRecordedEvent(i, &p)
	i.AddDomainEvent(evt)
	if i.Status == InvoiceStatusPaid {
		i.AddDomainEvent(newInvoiceEvent(EventTypeInvoicePaid, i, previous))
	}
	return &p, nil
}

// Cancel voids an invoice that has not received any payment
func (i *Invoice) Cancel(at time.Time) error {
	if i.Status == InvoiceStatusCancelled || i.Status == InvoiceStatusPaid {
		return shared.NewInvalidStateError("Paid or cancelled invoices cannot be cancelled")
	}
	if i.AmountPaid.IsPositive() {
		return shared.NewInvalidStateError("Invoices with recorded payments cannot be cancelled")
	}
	previous := i.Status
	i.Status = InvoiceStatusCancelled
	i.CancelledAt = &at
	i.Touch()
	i.AddDomainEvent(newInvoiceEvent(EventTypeInvoiceCancelled, i, previous))
	return nil
}

// MarkOverdue flags an unpaid invoice whose due date has passed.
// Returns false when nothing changed.
func (i *Invoice) MarkOverdue(now time.Time) bool {
	if i.Status != InvoiceStatusSent && i.Status != InvoiceStatusPartiallyPaid {
		return false
	}
	if !truncateDay(now).After(i.DueDate) {
		return false
	}
	previous := i.Status
	i.Status = InvoiceStatusOverdue
	i.Touch()
	i.AddDomainEvent(newInvoiceEvent(EventTypeInvoiceOverdue, i, previous))
	return true
}

// Balance is what the client still owes
func (i *Invoice) Balance() decimal.Decimal {
	return i.Totals.Total.Sub(i.AmountPaid)
}

// DaysOverdue counts whole days past the due date, zero when not due yet
func (i *Invoice) DaysOverdue(now time.Time) int {
	days := int(truncateDay(now).Sub(i.DueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (i *Invoice) CanDelete() bool {
	return i.Status == InvoiceStatusDraft
}

func (i *Invoice) setDueDate(due time.Time) error {
	if due.IsZero() {
		i.DueDate = i.IssueDate
		return nil
	}
	due = truncateDay(due)
	if due.Before(i.IssueDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}
	i.DueDate = due
	return nil
}
