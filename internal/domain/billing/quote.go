package billing

import (
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QuoteStatus is the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusExpired   QuoteStatus = "expired"
	QuoteStatusConverted QuoteStatus = "converted"
)

func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected,
		QuoteStatusExpired, QuoteStatusConverted:
		return true
	}
	return false
}

// Quote is a priced offer that may become an invoice
type Quote struct {
	shared.TenantAggregateRoot
	Document
	ValidUntil         time.Time
	Status             QuoteStatus
	SentAt             *time.Time
	DecidedAt          *time.Time
	ConvertedInvoiceID *uuid.UUID
}

func NewQuote(tenantID uuid.UUID, number string, clientID uuid.UUID, issueDate, validUntil time.Time, currency string) (*Quote, error) {
	doc, err := newDocument(number, clientID, issueDate, currency)
	if err != nil {
		return nil, err
	}
	q := &Quote{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Document:            doc,
		Status:              QuoteStatusDraft,
	}
	if err := q.setValidUntil(validUntil); err != nil {
		return nil, err
	}
	q.AddDomainEvent(newQuoteEvent(EventTypeQuoteCreated, q))
	return q, nil
}

func (q *Quote) editable() error {
	if q.Status != QuoteStatusDraft && q.Status != QuoteStatusSent {
		return shared.NewInvalidStateError("Only draft or sent quotes can be edited")
	}
	return nil
}

func (q *Quote) SetLines(lines []Line) error {
	if err := q.editable(); err != nil {
		return err
	}
	if err := q.setLines(lines); err != nil {
		return err
	}
	q.Touch()
	return nil
}

func (q *Quote) UpdateDetails(issueDate, validUntil time.Time, notes string) error {
	if err := q.editable(); err != nil {
		return err
	}
	if !issueDate.IsZero() {
		q.IssueDate = truncateDay(issueDate)
	}
	if err := q.setValidUntil(validUntil); err != nil {
		return err
	}
	q.Notes = strings.TrimSpace(notes)
	q.Touch()
	q.AddDomainEvent(newQuoteEvent(EventTypeQuoteUpdated, q))
	return nil
}

func (q *Quote) Send(at time.Time) error {
	if q.Status != QuoteStatusDraft {
		return shared.NewInvalidStateError("Only draft quotes can be sent")
	}
	if len(q.Lines) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "Cannot send a quote without lines")
	}
	q.Status = QuoteStatusSent
	q.SentAt = &at
	q.Touch()
	q.AddDomainEvent(newQuoteEvent(EventTypeQuoteSent, q))
	return nil
}

// Accept records the client's approval. Expired offers cannot be accepted.
func (q *Quote) Accept(at time.Time) error {
	if q.Status != QuoteStatusSent {
		return shared.NewInvalidStateError("Only sent quotes can be accepted")
	}
	if truncateDay(at).After(q.ValidUntil) {
		return shared.NewInvalidStateError("Quote validity has expired")
	}
	q.Status = QuoteStatusAccepted
	q.DecidedAt = &at
	q.Touch()
	q.AddDomainEvent(newQuoteEvent(EventTypeQuoteAccepted, q))
	return nil
}

func (q *Quote) Reject(at time.Time) error {
	if q.Status != QuoteStatusSent {
		return shared.NewInvalidStateError("Only sent quotes can be rejected")
	}
	q.Status = QuoteStatusRejected
	q.DecidedAt = &at
	q.Touch()
	q.AddDomainEvent(newQuoteEvent(EventTypeQuoteRejected, q))
	return nil
}

// Expire closes a sent quote past its validity date. Returns false when nothing changed.
func (q *Quote) Expire(now time.Time) bool {
	if q.Status != QuoteStatusSent || !truncateDay(now).After(q.ValidUntil) {
		return false
	}
	q.Status = QuoteStatusExpired
	q.Touch()
	q.AddDomainEvent(newQuoteEvent(EventTypeQuoteExpired, q))
	return true
}

// CanConvert reports whether an invoice may be created from the quote
func (q *Quote) CanConvert() error {
	if q.Status != QuoteStatusSent && q.Status != QuoteStatusAccepted {
		return shared.NewInvalidStateError("Only sent or accepted quotes can be converted")
	}
	if len(q.Lines) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "Cannot convert a quote without lines")
	}
	return nil
}

// MarkConverted links the quote to the invoice created from it
func (q *Quote) MarkConverted(invoiceID uuid.UUID) error {
	if err := q.CanConvert(); err != nil {
		return err
	}
	q.Status = QuoteStatusConverted
	q.ConvertedInvoiceID = &invoiceID
	q.Touch()
	q.AddDomainEvent(newQuoteEvent(EventTypeQuoteConverted, q))
	return nil
}

func (q *Quote) CanDelete() bool {
	return q.Status == QuoteStatusDraft
}

func (q *Quote) setValidUntil(validUntil time.Time) error {
	if validUntil.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Validity date is required")
	}
	validUntil = truncateDay(validUntil)
	if validUntil.Before(q.IssueDate) {
		return shared.NewDomainError("INVALID_DATE", "Validity date cannot be before issue date")
	}
	q.ValidUntil = validUntil
	return nil
}
