package billing

import (
	"context"
	"errors"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/catalog"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionScope runs fn in one database transaction. Repositories called
// with the ctx handed to fn take part in it.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// directScope runs fn without a transaction
type directScope struct{}

func (directScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// CashRecorder books a cash register sale for a payment received at the counter
type CashRecorder interface {
	RecordSale(ctx context.Context, tenantID, registerID uuid.UUID, sale CashSale) error
}

// CashSale is the register side of an invoice payment
type CashSale struct {
	InvoiceID uuid.UUID
	Number    string
	Amount    decimal.Decimal
	Method    string
	CreatedBy *uuid.UUID
}

// Notifier emails documents and reminders to clients
type Notifier interface {
	InvoiceSent(ctx context.Context, invoice *billing.Invoice, pdfURL string) error
	QuoteSent(ctx context.Context, quote *billing.Quote, pdfURL string) error
	PaymentReminder(ctx context.Context, invoice *billing.Invoice, reminder *billing.Reminder) error
}

// DocumentLinker renders a document and returns a temporary download link.
// An empty link means storage is not configured.
type DocumentLinker interface {
	InvoiceLink(ctx context.Context, invoice *billing.Invoice) (string, error)
	QuoteLink(ctx context.Context, quote *billing.Quote) (string, error)
}

// MetricsRecorder receives business counters
type MetricsRecorder interface {
	DocumentIssued(docType string)
	PaymentRecorded(method string, amount decimal.Decimal)
}

// numberer hands out document numbers from the tenant prefixes
type numberer struct {
	settingsRepo settings.Repository
	sequence     billing.NumberSequence
}

// companySettings falls back to defaults for tenants that never saved settings
func (n numberer) companySettings(ctx context.Context, tenantID uuid.UUID) (*settings.CompanySettings, error) {
	cfg, err := n.settingsRepo.Get(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		return settings.Defaults(tenantID, ""), nil
	}
	return cfg, err
}

func (n numberer) next(ctx context.Context, tenantID uuid.UUID, docType billing.DocumentType, prefix string, year int) (string, error) {
	seq, err := n.sequence.Next(ctx, tenantID, docType, year)
	if err != nil {
		return "", err
	}
	return billing.GenerateDocumentNumber(prefix, year, seq), nil
}

// lineBuilder turns line requests into domain lines, filling product defaults
type lineBuilder struct {
	productRepo catalog.ProductRepository
}

func (b lineBuilder) build(ctx context.Context, tenantID uuid.UUID, reqs []LineRequest, defaultVAT decimal.Decimal) ([]billing.Line, error) {
	var ids []uuid.UUID
	for _, r := range reqs {
		if r.ProductID != nil {
			ids = append(ids, *r.ProductID)
		}
	}
	products := map[uuid.UUID]*catalog.Product{}
	if len(ids) > 0 {
		found, err := b.productRepo.FindByIDs(ctx, tenantID, ids)
		if err != nil {
			return nil, err
		}
		for i := range found {
			products[found[i].ID] = &found[i]
		}
	}

	lines := make([]billing.Line, 0, len(reqs))
	for _, r := range reqs {
		description := r.Description
		price := decimal.Zero
		vat := defaultVAT
		if r.ProductID != nil {
			p, ok := products[*r.ProductID]
			if !ok {
				return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found: "+r.ProductID.String())
			}
			if description == "" {
				description = p.Name
			}
			price = p.UnitPrice
			vat = p.VATRate
		}
		if r.UnitPrice != nil {
			price = *r.UnitPrice
		}
		if r.VATRate != nil {
			vat = *r.VATRate
		}
		line, err := billing.NewLine(r.ProductID, description, r.Quantity, price, vat, r.DiscountPercent)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
