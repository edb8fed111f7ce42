package billing

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository persists invoices with their lines and payments.
// Filters: status, client_id, market_id, subscription_id, date_from, date_to.
type InvoiceRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, int64, error)
	// FindDueForOverdue returns sent or partially paid invoices due before asOf.
	FindDueForOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Invoice, error)
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status InvoiceStatus) ([]Invoice, error)
	// FindIssuedBetween returns issued (non draft, non cancelled) invoices dated in [from, to].
	FindIssuedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Invoice, error)
	ExistsForClient(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// QuoteRepository persists quotes. Filters: status, client_id, date_from, date_to.
type QuoteRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Quote, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Quote, int64, error)
	FindExpirable(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Quote, error)
	Save(ctx context.Context, quote *Quote) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ReminderRepository persists reminders. Filters: status, invoice_id, level.
type ReminderRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Reminder, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Reminder, int64, error)
	// MaxLevelForInvoice returns the highest level already created, 0 if none.
	MaxLevelForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int, error)
	Save(ctx context.Context, reminder *Reminder) error
}
