package tax

import (
	"context"
	"errors"
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/purchase"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/domain/tax"
	"github.com/bizdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service prepares and submits VAT declarations. Collected VAT is taken on
// an accrual basis: invoices count in the period they are issued.
type Service struct {
	repo        tax.Repository
	invoiceRepo billing.InvoiceRepository
	expenseRepo purchase.ExpenseRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new tax Service
func NewService(
	repo tax.Repository,
	invoiceRepo billing.InvoiceRepository,
	expenseRepo purchase.ExpenseRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		invoiceRepo: invoiceRepo,
		expenseRepo: expenseRepo,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// Generate computes the declaration of a period, replacing an existing draft
func (s *Service) Generate(ctx context.Context, tenantID uuid.UUID, req GenerateRequest) (*DeclarationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tax", "generate")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrTenantID, tenantID.String())

	period, err := tax.NewPeriod(tax.Frequency(req.Frequency), req.Year, req.Number)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByPeriod(ctx, tenantID, period.Frequency, period.Start)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if existing != nil && existing.Status != tax.StatusDraft {
		return nil, shared.NewInvalidStateError("The declaration of this period was already submitted")
	}

	sales, invoiceCount, err := s.salesItems(ctx, tenantID, period)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	purchases, err := s.purchaseItems(ctx, tenantID, period)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	declaration := existing
	if declaration == nil {
		declaration = tax.Compute(tenantID, period, sales, invoiceCount, purchases, s.now())
	} else if err := declaration.Regenerate(sales, invoiceCount, purchases, s.now()); err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCount, invoiceCount,
		telemetry.SpanAttrAmount, declaration.NetVATDue.String(),
	)
	s.logger.Info("Tax declaration generated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("period", period.Label()),
		zap.String("net_vat_due", declaration.NetVATDue.StringFixed(2)))
	return s.save(ctx, declaration)
}

// Submit freezes a draft declaration
func (s *Service) Submit(ctx context.Context, tenantID, id uuid.UUID) (*DeclarationResponse, error) {
	declaration, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := declaration.Submit(s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, declaration)
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*DeclarationResponse, error) {
	declaration, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToDeclarationResponse(declaration)
	return &response, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter DeclarationListFilter) ([]DeclarationResponse, int64, error) {
	declarations, total, err := s.repo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]DeclarationResponse, len(declarations))
	for i := range declarations {
		responses[i] = ToDeclarationResponse(&declarations[i])
	}
	return responses, total, nil
}

// Delete deletes a draft declaration
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	declaration, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !declaration.CanDelete() {
		return shared.NewInvalidStateError("Submitted declarations cannot be deleted")
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, tax.NewDeclarationDeletedEvent(declaration))
	}
	return nil
}

// salesItems flattens the VAT breakdown of every issued invoice of the period
func (s *Service) salesItems(ctx context.Context, tenantID uuid.UUID, period tax.Period) ([]tax.TaxableItem, int, error) {
	invoices, err := s.invoiceRepo.FindIssuedBetween(ctx, tenantID, period.Start, period.End)
	if err != nil {
		return nil, 0, err
	}
	var items []tax.TaxableItem
	count := 0
	for i := range invoices {
		if !invoices[i].Status.Issued() {
			continue
		}
		count++
		for _, b := range invoices[i].Totals.Breakdown {
			items = append(items, tax.TaxableItem{Rate: b.Rate, Base: b.Base, VAT: b.VAT})
		}
	}
	return items, count, nil
}

func (s *Service) purchaseItems(ctx context.Context, tenantID uuid.UUID, period tax.Period) ([]tax.TaxableItem, error) {
	expenses, err := s.expenseRepo.FindBetween(ctx, tenantID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	items := make([]tax.TaxableItem, len(expenses))
	for i, e := range expenses {
		items[i] = tax.TaxableItem{Rate: e.VATRate, Base: e.NetAmount, VAT: e.VATAmount}
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, declaration *tax.Declaration) (*DeclarationResponse, error) {
	if err := s.repo.Save(ctx, declaration); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, declaration); err != nil {
		return nil, err
	}
	response := ToDeclarationResponse(declaration)
	return &response, nil
}
