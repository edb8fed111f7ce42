package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	appaudit "github.com/bizdesk/backend/internal/application/audit"
	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/catalog"
	"github.com/bizdesk/backend/internal/domain/market"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceOption configures optional collaborators of the InvoiceService
type InvoiceOption func(*InvoiceService)

// WithCashRecorder books cash register sales for payments that name a register
func WithCashRecorder(c CashRecorder) InvoiceOption {
	return func(s *InvoiceService) { s.cash = c }
}

// WithTransactionScope makes an invoice and the market or register it touches
// commit together
func WithTransactionScope(tx TransactionScope) InvoiceOption {
	return func(s *InvoiceService) { s.tx = tx }
}

// WithNotifier enables client emails
func WithNotifier(n Notifier) InvoiceOption {
	return func(s *InvoiceService) { s.notifier = n }
}

// WithDocumentLinker attaches PDF download links to emails
func WithDocumentLinker(l DocumentLinker) InvoiceOption {
	return func(s *InvoiceService) { s.linker = l }
}

// WithMetrics records issued documents and payments
func WithMetrics(m MetricsRecorder) InvoiceOption {
	return func(s *InvoiceService) { s.metrics = m }
}

// DraftInvoice is an invoice built by another workflow (quote, subscription)
type DraftInvoice struct {
	ClientID       uuid.UUID
	IssueDate      time.Time
	DueDate        time.Time
	Currency       string
	Notes          string
	Lines          []billing.Line
	QuoteID        *uuid.UUID
	SubscriptionID *uuid.UUID
	MarketID       *uuid.UUID
}

// InvoiceService handles invoice-related business operations
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	clientRepo  partner.ClientRepository
	marketRepo  market.Repository
	numbers     numberer
	lines       lineBuilder
	cash        CashRecorder
	tx          TransactionScope
	notifier    Notifier
	linker      DocumentLinker
	metrics     MetricsRecorder
	publisher   shared.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	clientRepo partner.ClientRepository,
	productRepo catalog.ProductRepository,
	marketRepo market.Repository,
	settingsRepo settings.Repository,
	sequence billing.NumberSequence,
	publisher shared.EventPublisher,
	logger *zap.Logger,
	opts ...InvoiceOption,
) *InvoiceService {
	s := &InvoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		marketRepo:  marketRepo,
		numbers:     numberer{settingsRepo: settingsRepo, sequence: sequence},
		lines:       lineBuilder{productRepo: productRepo},
		tx:          directScope{},
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a draft invoice and assigns its number
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrClientID, req.ClientID.String(),
	)

	cfg, err := s.numbers.companySettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	lines, err := s.lines.build(ctx, tenantID, req.Lines, cfg.DefaultVATRate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	draft := DraftInvoice{
		ClientID: req.ClientID,
		Currency: req.Currency,
		Notes:    req.Notes,
		Lines:    lines,
		MarketID: req.MarketID,
	}
	if req.IssueDate != nil {
		draft.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		draft.DueDate = *req.DueDate
	}

	invoice, err := s.createDraft(ctx, tenantID, cfg, draft)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrDocumentNumber, invoice.Number)
	return s.save(ctx, invoice)
}

// BuildLines resolves line requests against the catalog and the company VAT default
func (s *InvoiceService) BuildLines(ctx context.Context, tenantID uuid.UUID, reqs []LineRequest) ([]billing.Line, error) {
	cfg, err := s.numbers.companySettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.lines.build(ctx, tenantID, reqs, cfg.DefaultVATRate)
}

// CheckClient fails unless the client exists and is active
func (s *InvoiceService) CheckClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return s.checkClient(ctx, tenantID, clientID)
}

// CreateDraft stores a draft invoice prepared by another workflow
func (s *InvoiceService) CreateDraft(ctx context.Context, tenantID uuid.UUID, draft DraftInvoice) (*billing.Invoice, error) {
	cfg, err := s.numbers.companySettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.createDraft(ctx, tenantID, cfg, draft)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) createDraft(ctx context.Context, tenantID uuid.UUID, cfg *settings.CompanySettings, draft DraftInvoice) (*billing.Invoice, error) {
	if err := s.checkClient(ctx, tenantID, draft.ClientID); err != nil {
		return nil, err
	}
	if draft.MarketID != nil {
		if err := s.checkMarket(ctx, tenantID, *draft.MarketID, draft.ClientID); err != nil {
			return nil, err
		}
	}

	issue := draft.IssueDate
	if issue.IsZero() {
		issue = s.now()
	}
	due := draft.DueDate
	if due.IsZero() {
		due = issue.AddDate(0, 0, cfg.PaymentTermsDays)
	}
	currency := draft.Currency
	if currency == "" {
		currency = cfg.Currency
	}

	number, err := s.numbers.next(ctx, tenantID, billing.DocumentTypeInvoice, cfg.InvoicePrefix, issue.Year())
	if err != nil {
		return nil, err
	}
	invoice, err := billing.NewInvoice(tenantID, number, draft.ClientID, issue, due, currency)
	if err != nil {
		return nil, err
	}
	if err := invoice.SetLines(draft.Lines); err != nil {
		return nil, err
	}
	if err := invoice.Link(draft.QuoteID, draft.SubscriptionID, draft.MarketID); err != nil {
		return nil, err
	}
	invoice.Notes = strings.TrimSpace(draft.Notes)
	if by := appaudit.SourceFrom(ctx).UserID; by != nil {
		invoice.SetCreatedBy(*by)
	}
	return invoice, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Find returns the invoice aggregate, for exports
func (s *InvoiceService) Find(ctx context.Context, tenantID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
}

// List retrieves invoices matching the filter
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]InvoiceResponse, int64, error) {
	invoices, total, err := s.invoiceRepo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses, total, nil
}

// Update changes a draft invoice
func (s *InvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
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
		if err := invoice.SetLines(lines); err != nil {
			return nil, err
		}
	}

	issue, due, notes := invoice.IssueDate, invoice.DueDate, invoice.Notes
	if req.IssueDate != nil {
		issue = *req.IssueDate
	}
	if req.DueDate != nil {
		due = *req.DueDate
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := invoice.UpdateDetails(issue, due, notes); err != nil {
		return nil, err
	}
	return s.save(ctx, invoice)
}

// Send issues a draft invoice. A linked market is charged with the total in
// the same transaction and the sale is refused when it exceeds the ceiling.
func (s *InvoiceService) Send(ctx context.Context, tenantID, invoiceID uuid.UUID, req SendRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "send")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
	)

	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := invoice.Send(s.now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var charged *market.Market
	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		// the invoice version check goes first so a lost race never charges the market
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return err
		}
		if invoice.MarketID == nil {
			return nil
		}
		m, err := s.marketRepo.FindByID(ctx, tenantID, *invoice.MarketID)
		if err != nil {
			return err
		}
		if err := m.Charge(invoice.Totals.Total); err != nil {
			return err
		}
		if err := s.marketRepo.Save(ctx, m); err != nil {
			return err
		}
		charged = m
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if charged != nil {
		if err := shared.PublishAndClear(ctx, s.publisher, charged); err != nil {
			return nil, err
		}
	}
	response, err := s.publish(ctx, invoice)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.DocumentIssued(string(billing.DocumentTypeInvoice))
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentNumber, invoice.Number,
		telemetry.SpanAttrAmount, invoice.Totals.Total.String(),
	)

	if req.Notify {
		s.notifyInvoice(ctx, invoice)
	}
	return response, nil
}

// notifyInvoice emails the client; the invoice is already issued so failures are only logged
func (s *InvoiceService) notifyInvoice(ctx context.Context, invoice *billing.Invoice) {
	if s.notifier == nil {
		return
	}
	var link string
	if s.linker != nil {
		var err error
		link, err = s.linker.InvoiceLink(ctx, invoice)
		if err != nil {
			s.logger.Warn("Failed to prepare invoice PDF link",
				zap.String("invoice", invoice.Number), zap.Error(err))
		}
	}
	if err := s.notifier.InvoiceSent(ctx, invoice, link); err != nil {
		s.logger.Warn("Failed to email invoice",
			zap.String("invoice", invoice.Number), zap.Error(err))
	}
}

// RecordPayment registers money received. Payments naming a cash register
// are booked on the register in the same transaction; a closed register
// refuses the payment.
func (s *InvoiceService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "record_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if req.CashRegisterID != nil && s.cash == nil {
		return nil, shared.NewDomainError("CASH_UNAVAILABLE", "Cash registers are not available")
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	at := s.now()
	if req.PaidAt != nil {
		at = *req.PaidAt
	}
	payment, err := invoice.RecordPayment(req.Amount, billing.PaymentMethod(req.Method), req.Reference, req.CashRegisterID, at)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return err
		}
		if req.CashRegisterID == nil {
			return nil
		}
		return s.cash.RecordSale(ctx, tenantID, *req.CashRegisterID, CashSale{
			InvoiceID: invoice.ID,
			Number:    invoice.Number,
			Amount:    payment.Amount,
			Method:    string(payment.Method),
			CreatedBy: appaudit.SourceFrom(ctx).UserID,
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	response, err := s.publish(ctx, invoice)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.PaymentRecorded(string(payment.Method), payment.Amount)
	}
	return response, nil
}

// Cancel voids an unpaid invoice and gives back what it charged on its market
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	wasIssued := invoice.Status.Issued()
	if err := invoice.Cancel(s.now()); err != nil {
		return nil, err
	}

	var released *market.Market
	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return err
		}
		if !wasIssued || invoice.MarketID == nil {
			return nil
		}
		m, err := s.marketRepo.FindByID(ctx, tenantID, *invoice.MarketID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			s.logger.Warn("Market of cancelled invoice no longer exists", zap.String("invoice", invoice.Number))
			return nil
		case err != nil:
			return err
		}
		m.Release(invoice.Totals.Total)
		if err := s.marketRepo.Save(ctx, m); err != nil {
			return err
		}
		released = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if released != nil {
		if err := shared.PublishAndClear(ctx, s.publisher, released); err != nil {
			return nil, err
		}
	}
	return s.publish(ctx, invoice)
}

// Delete deletes a draft invoice
func (s *InvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}
	if !invoice.CanDelete() {
		return shared.NewInvalidStateError("Only draft invoices can be deleted; cancel it instead")
	}
	if err := s.invoiceRepo.Delete(ctx, tenantID, invoiceID); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, billing.NewInvoiceDeletedEvent(invoice))
	}
	return nil
}

// MarkOverdue flags every unpaid invoice of the tenant whose due date has passed
func (s *InvoiceService) MarkOverdue(ctx context.Context, tenantID uuid.UUID) (SweepResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "mark_overdue")
	defer span.End()

	now := s.now()
	invoices, err := s.invoiceRepo.FindDueForOverdue(ctx, tenantID, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return SweepResult{}, err
	}
	var result SweepResult
	for i := range invoices {
		invoice := &invoices[i]
		if !invoice.MarkOverdue(now) {
			continue
		}
		if _, err := s.save(ctx, invoice); err != nil {
			result.Failed++
			s.logger.Error("Failed to mark invoice overdue",
				zap.String("invoice", invoice.Number), zap.Error(err))
			continue
		}
		result.Processed++
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrCount, result.Processed)
	return result, nil
}

func (s *InvoiceService) checkClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("INVALID_CLIENT", "Client not found")
	}
	if err != nil {
		return err
	}
	if !client.IsActive() {
		return shared.NewDomainError("CLIENT_INACTIVE", "Client is inactive")
	}
	return nil
}

func (s *InvoiceService) checkMarket(ctx context.Context, tenantID, marketID, clientID uuid.UUID) error {
	m, err := s.marketRepo.FindByID(ctx, tenantID, marketID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("INVALID_MARKET", "Market not found")
	}
	if err != nil {
		return err
	}
	if m.ClientID != clientID {
		return shared.NewDomainError("INVALID_MARKET", "Market belongs to another client")
	}
	return nil
}

func (s *InvoiceService) save(ctx context.Context, invoice *billing.Invoice) (*InvoiceResponse, error) {
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return s.publish(ctx, invoice)
}

// publish sends the invoice events once its changes are stored
func (s *InvoiceService) publish(ctx context.Context, invoice *billing.Invoice) (*InvoiceResponse, error) {
	if err := shared.PublishAndClear(ctx, s.publisher, invoice); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}
