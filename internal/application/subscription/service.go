package subscription

import (
	"context"
	"fmt"
	"time"

	appaudit "github.com/bizdesk/backend/internal/application/audit"
	appbilling "github.com/bizdesk/backend/internal/application/billing"
	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/domain/subscription"
	"github.com/bizdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	claimPrefix = "subscription-billing:"
	// a claimed period whose invoice failed is retried once the claim expires
	claimTTL = 48 * time.Hour
	// bounds catch-up for subscriptions started far in the past
	maxPeriodsPerRun = 36
)

// InvoiceIssuer is the part of the invoice service used to bill subscriptions
type InvoiceIssuer interface {
	CheckClient(ctx context.Context, tenantID, clientID uuid.UUID) error
	BuildLines(ctx context.Context, tenantID uuid.UUID, reqs []appbilling.LineRequest) ([]billing.Line, error)
	CreateDraft(ctx context.Context, tenantID uuid.UUID, draft appbilling.DraftInvoice) (*billing.Invoice, error)
	Send(ctx context.Context, tenantID, invoiceID uuid.UUID, req appbilling.SendRequest) (*appbilling.InvoiceResponse, error)
	Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error
}

// Service handles subscriptions and their periodic invoicing
type Service struct {
	repo      subscription.Repository
	invoices  InvoiceIssuer
	claims    shared.IdempotencyStore
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new subscription Service
func NewService(
	repo subscription.Repository,
	invoices InvoiceIssuer,
	claims shared.IdempotencyStore,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		invoices:  invoices,
		claims:    claims,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create creates an active subscription billed from its start date
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateSubscriptionRequest) (*SubscriptionResponse, error) {
	if err := s.invoices.CheckClient(ctx, tenantID, req.ClientID); err != nil {
		return nil, err
	}
	lines, err := s.invoices.BuildLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}
	sub, err := subscription.NewSubscription(tenantID, req.ClientID, req.Name, subscription.Interval(req.Interval), req.StartDate, lines)
	if err != nil {
		return nil, err
	}
	if err := sub.SetTerms(req.EndDate, req.AutoSend); err != nil {
		return nil, err
	}
	if by := appaudit.SourceFrom(ctx).UserID; by != nil {
		sub.SetCreatedBy(*by)
	}
	return s.save(ctx, sub)
}

// GetByID retrieves a subscription by ID
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*SubscriptionResponse, error) {
	sub, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// List retrieves subscriptions matching the filter
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter SubscriptionListFilter) ([]SubscriptionResponse, int64, error) {
	subs, total, err := s.repo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		responses[i] = ToSubscriptionResponse(&subs[i])
	}
	return responses, total, nil
}

// Update replaces the billed content and terms
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateSubscriptionRequest) (*SubscriptionResponse, error) {
	sub, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.invoices.BuildLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}
	if err := sub.Update(req.Name, subscription.Interval(req.Interval), req.EndDate, lines, req.AutoSend); err != nil {
		return nil, err
	}
	return s.save(ctx, sub)
}

func (s *Service) Pause(ctx context.Context, tenantID, id uuid.UUID) (*SubscriptionResponse, error) {
	return s.transition(ctx, tenantID, id, func(sub *subscription.Subscription) error { return sub.Pause() })
}

// Resume reactivates a paused subscription from the next period boundary
func (s *Service) Resume(ctx context.Context, tenantID, id uuid.UUID) (*SubscriptionResponse, error) {
	return s.transition(ctx, tenantID, id, func(sub *subscription.Subscription) error { return sub.Resume(s.now()) })
}

func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*SubscriptionResponse, error) {
	return s.transition(ctx, tenantID, id, func(sub *subscription.Subscription) error { return sub.Cancel() })
}

// Delete removes a subscription. Invoices already generated are kept.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	sub, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, subscription.NewSubscriptionDeletedEvent(sub))
	}
	return nil
}

// GenerateDueInvoices bills every period due on or before asOf. A subscription
// behind by several periods gets one invoice per missed period. Each period is
// claimed in the idempotency store first, so overlapping runs never bill it twice.
func (s *Service) GenerateDueInvoices(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (GenerationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "subscription", "generate_due_invoices")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrTenantID, tenantID.String())

	subs, err := s.repo.FindDue(ctx, tenantID, asOf)
	if err != nil {
		telemetry.RecordError(span, err)
		return GenerationResult{}, err
	}
	result := GenerationResult{InvoiceIDs: []uuid.UUID{}}
	for i := range subs {
		result.Subscriptions++
		if err := s.billSubscription(ctx, &subs[i], asOf, &result); err != nil {
			s.logger.Error("Subscription billing failed",
				zap.String("tenant_id", tenantID.String()),
				zap.String("subscription_id", subs[i].ID.String()),
				zap.Error(err))
			result.Failed++
		}
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrCount, result.Invoices)
	if result.Invoices > 0 {
		s.logger.Info("Subscription invoices generated",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("invoices", result.Invoices),
			zap.Int("sent", result.Sent))
	}
	return result, nil
}

func (s *Service) billSubscription(ctx context.Context, sub *subscription.Subscription, asOf time.Time, result *GenerationResult) error {
	for n := 0; n < maxPeriodsPerRun && sub.IsDue(asOf); n++ {
		key := claimPrefix + sub.PeriodKey()
		claimed, err := s.claims.MarkProcessed(ctx, key, claimTTL)
		if err != nil {
			return err
		}
		if !claimed {
			result.Skipped++
			return nil
		}

		period := sub.NextBillingDate
		lines := make([]billing.Line, len(sub.Lines))
		copy(lines, sub.Lines)
		subID := sub.ID
		invoice, err := s.invoices.CreateDraft(ctx, sub.TenantID, appbilling.DraftInvoice{
			ClientID:       sub.ClientID,
			IssueDate:      period,
			Notes:          fmt.Sprintf("%s, period starting %s", sub.Name, period.Format("2006-01-02")),
			Lines:          lines,
			SubscriptionID: &subID,
		})
		if err != nil {
			s.release(ctx, key)
			return fmt.Errorf("create invoice for period %s: %w", period.Format("2006-01-02"), err)
		}
		sub.MarkBilled(invoice.ID, s.now())
		if err := s.repo.Save(ctx, sub); err != nil {
			s.discard(ctx, invoice, key)
			return fmt.Errorf("save subscription after invoice %s: %w", invoice.Number, err)
		}
		if err := shared.PublishAndClear(ctx, s.publisher, sub); err != nil {
			return err
		}
		result.Invoices++
		result.InvoiceIDs = append(result.InvoiceIDs, invoice.ID)

		if sub.AutoSend {
			if _, err := s.invoices.Send(ctx, sub.TenantID, invoice.ID, appbilling.SendRequest{Notify: true}); err != nil {
				s.logger.Warn("Generated invoice left as draft",
					zap.String("invoice", invoice.Number),
					zap.Error(err))
				continue
			}
			result.Sent++
		}
	}
	return nil
}

// release frees a period claim so the next run bills it again
func (s *Service) release(ctx context.Context, key string) {
	if err := s.claims.Release(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Error("Failed to release billing claim", zap.String("key", key), zap.Error(err))
	}
}

// discard deletes the draft of a period whose subscription could not be
// advanced, then frees the claim. A draft that cannot be deleted keeps the
// claim so the period is not invoiced twice.
func (s *Service) discard(ctx context.Context, invoice *billing.Invoice, key string) {
	if err := s.invoices.Delete(context.WithoutCancel(ctx), invoice.TenantID, invoice.ID); err != nil {
		s.logger.Error("Orphan subscription invoice kept",
			zap.String("invoice", invoice.Number),
			zap.Error(err))
		return
	}
	s.release(ctx, key)
}

func (s *Service) transition(ctx context.Context, tenantID, id uuid.UUID, fn func(*subscription.Subscription) error) (*SubscriptionResponse, error) {
	sub, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sub); err != nil {
		return nil, err
	}
	return s.save(ctx, sub)
}

func (s *Service) save(ctx context.Context, sub *subscription.Subscription) (*SubscriptionResponse, error) {
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, sub); err != nil {
		return nil, err
	}
	response := ToSubscriptionResponse(sub)
	return &response, nil
}

var _ InvoiceIssuer = (*appbilling.InvoiceService)(nil)
