package billing

import (
	"context"
	"strings"
	"time"

	appaudit "github.com/bizdesk/backend/internal/application/audit"
	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/catalog"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuoteService handles quote-related business operations
type QuoteService struct {
	quoteRepo billing.QuoteRepository
	invoices  *InvoiceService
	numbers   numberer
	lines     lineBuilder
	notifier  Notifier
	linker    DocumentLinker
	metrics   MetricsRecorder
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuoteService creates a new QuoteService. Converted quotes become drafts
// through the invoice service, which also lends its optional collaborators.
func NewQuoteService(
	quoteRepo billing.QuoteRepository,
	invoices *InvoiceService,
	productRepo catalog.ProductRepository,
	settingsRepo settings.Repository,
	sequence billing.NumberSequence,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
		invoices:  invoices,
		numbers:   numberer{settingsRepo: settingsRepo, sequence: sequence},
		lines:     lineBuilder{productRepo: productRepo},
		notifier:  invoices.notifier,
		linker:    invoices.linker,
		metrics:   invoices.metrics,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create creates a draft quote valid for the company's default validity period
func (s *QuoteService) Create(ctx context.Context, tenantID uuid.UUID, req CreateQuoteRequest) (*QuoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quote", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrClientID, req.ClientID.String(),
	)

	if err := s.invoices.checkClient(ctx, tenantID, req.ClientID); err != nil {
		return nil, err
	}
	cfg, err := s.numbers.companySettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	lines, err := s.lines.build(ctx, tenantID, req.Lines, cfg.DefaultVATRate)
	if err != nil {
		return nil, err
	}

	issue := s.now()
	if req.IssueDate != nil {
		issue = *req.IssueDate
	}
	validUntil := issue.AddDate(0, 0, cfg.QuoteValidityDays)
	if req.ValidUntil != nil {
		validUntil = *req.ValidUntil
	}
	currency := req.Currency
	if currency == "" {
		currency = cfg.Currency
	}

	number, err := s.numbers.next(ctx, tenantID, billing.DocumentTypeQuote, cfg.QuotePrefix, issue.Year())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	quote, err := billing.NewQuote(tenantID, number, req.ClientID, issue, validUntil, currency)
	if err != nil {
		return nil, err
	}
	if err := quote.SetLines(lines); err != nil {
		return nil, err
	}
	quote.Notes = strings.TrimSpace(req.Notes)
	if by := appaudit.SourceFrom(ctx).UserID; by != nil {
		quote.SetCreatedBy(*by)
	}
	return s.save(ctx, quote)
}

// GetByID retrieves a quote by ID
func (s *QuoteService) GetByID(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(quote)
	return &response, nil
}

// Find returns the quote aggregate, for exports
func (s *QuoteService) Find(ctx context.Context, tenantID, quoteID uuid.UUID) (*billing.Quote, error) {
	return s.quoteRepo.FindByID(ctx, tenantID, quoteID)
}

// List retrieves quotes matching the filter
func (s *QuoteService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]QuoteResponse, int64, error) {
	quotes, total, err := s.quoteRepo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		responses[i] = ToQuoteResponse(&quotes[i])
	}
	return responses, total, nil
}

// Update changes a draft or sent quote
func (s *QuoteService) Update(ctx context.Context, tenantID, quoteID uuid.UUID, req UpdateQuoteRequest) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if req.Lines != nil {
		cfg, err := s.numbers.companySettings(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		lines, err := s.lines.build(ctx, tenantID, req.Lines, cfg.DefaultVATRate)
		if err != nil {
			return nil, err
		}
		if err := quote.SetLines(lines); err != nil {
			return nil, err
		}
	}
	issue, validUntil, notes := quote.IssueDate, quote.ValidUntil, quote.Notes
	if req.IssueDate != nil {
		issue = *req.IssueDate
	}
	if req.ValidUntil != nil {
		validUntil = *req.ValidUntil
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := quote.UpdateDetails(issue, validUntil, notes); err != nil {
		return nil, err
	}
	return s.save(ctx, quote)
}

// Send marks the quote as sent and optionally emails it to the client
func (s *QuoteService) Send(ctx context.Context, tenantID, quoteID uuid.UUID, req SendRequest) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := quote.Send(s.now()); err != nil {
		return nil, err
	}
	response, err := s.save(ctx, quote)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.DocumentIssued(string(billing.DocumentTypeQuote))
	}
	if req.Notify && s.notifier != nil {
		var link string
		if s.linker != nil {
			if link, err = s.linker.QuoteLink(ctx, quote); err != nil {
				s.logger.Warn("Failed to prepare quote PDF link", zap.String("quote", quote.Number), zap.Error(err))
			}
		}
		if err := s.notifier.QuoteSent(ctx, quote, link); err != nil {
			s.logger.Warn("Failed to email quote", zap.String("quote", quote.Number), zap.Error(err))
		}
	}
	return response, nil
}

// Accept records the client's approval
func (s *QuoteService) Accept(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := quote.Accept(s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, quote)
}

// Reject records the client's refusal
func (s *QuoteService) Reject(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := quote.Reject(s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, quote)
}

// Convert creates a draft invoice carrying the quote lines and marks the quote converted
func (s *QuoteService) Convert(ctx context.Context, tenantID, quoteID uuid.UUID) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quote", "convert")
	defer span.End()

	quote, err := s.quoteRepo.FindByID(ctx, tenantID, quoteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := quote.CanConvert(); err != nil {
		return nil, err
	}

	lines := make([]billing.Line, len(quote.Lines))
	copy(lines, quote.Lines)
	quoteRef := quote.ID
	invoice, err := s.invoices.CreateDraft(ctx, tenantID, DraftInvoice{
		ClientID: quote.ClientID,
		Currency: quote.Currency,
		Notes:    quote.Notes,
		Lines:    lines,
		QuoteID:  &quoteRef,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := quote.MarkConverted(invoice.ID); err != nil {
		return nil, err
	}
	if _, err := s.save(ctx, quote); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentNumber, quote.Number,
		telemetry.SpanAttrInvoiceID, invoice.ID.String(),
	)
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Delete deletes a draft quote
func (s *QuoteService) Delete(ctx context.Context, tenantID, quoteID uuid.UUID) error {
	quote, err := s.quoteRepo.FindByID(ctx, tenantID, quoteID)
	if err != nil {
		return err
	}
	if !quote.CanDelete() {
		return shared.NewInvalidStateError("Only draft quotes can be deleted")
	}
	if err := s.quoteRepo.Delete(ctx, tenantID, quoteID); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, billing.NewQuoteDeletedEvent(quote))
	}
	return nil
}

// ExpireQuotes closes every sent quote of the tenant past its validity date
func (s *QuoteService) ExpireQuotes(ctx context.Context, tenantID uuid.UUID) (SweepResult, error) {
	now := s.now()
	quotes, err := s.quoteRepo.FindExpirable(ctx, tenantID, now)
	if err != nil {
		return SweepResult{}, err
	}
	var result SweepResult
	for i := range quotes {
		quote := &quotes[i]
		if !quote.Expire(now) {
			continue
		}
		if _, err := s.save(ctx, quote); err != nil {
			result.Failed++
			s.logger.Error("Failed to expire quote", zap.String("quote", quote.Number), zap.Error(err))
			continue
		}
		result.Processed++
	}
	return result, nil
}

func (s *QuoteService) save(ctx context.Context, quote *billing.Quote) (*QuoteResponse, error) {
	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, quote); err != nil {
		return nil, err
	}
	response := ToQuoteResponse(quote)
	return &response, nil
}
