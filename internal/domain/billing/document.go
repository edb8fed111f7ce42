package billing

import (
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Document holds what quotes and invoices have in common
type Document struct {
	Number    string
	ClientID  uuid.UUID
	IssueDate time.Time
	Currency  string
	Notes     string
	Lines     []Line
	Totals    Totals
}

func newDocument(number string, clientID uuid.UUID, issueDate time.Time, currency string) (Document, error) {
	if _, _, _, err := ParseDocumentNumber(number); err != nil {
		return Document{}, err
	}
	if clientID == uuid.Nil {
		return Document{}, shared.NewDomainError("INVALID_CLIENT", "Client is required")
	}
	if issueDate.IsZero() {
		return Document{}, shared.NewDomainError("INVALID_DATE", "Issue date is required")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Document{}, shared.NewDomainError("INVALID_CURRENCY", "Currency must be an ISO 4217 code")
	}
	return Document{
		Number:    number,
		ClientID:  clientID,
		IssueDate: truncateDay(issueDate),
		Currency:  currency,
		Lines:     []Line{},
		Totals:    ComputeTotals(nil),
	}, nil
}

func (d *Document) setLines(lines []Line) error {
	if len(lines) > 200 {
		return shared.NewDomainError("TOO_MANY_LINES", "A document cannot have more than 200 lines")
	}
	for i := range lines {
		if err := lines[i].validate(); err != nil {
			return err
		}
		lines[i].compute()
	}
	d.Lines = lines
	d.Totals = ComputeTotals(lines)
	return nil
}

// LineRefs returns the product quantities of the document, skipping free-text lines
func (d *Document) LineRefs() []LineRef {
	refs := make([]LineRef, 0, len(d.Lines))
	for _, l := range d.Lines {
		if l.ProductID != nil {
			refs = append(refs, LineRef{ProductID: *l.ProductID, Quantity: l.Quantity})
		}
	}
	return refs
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
