// Package report serves the dashboard figures.
package report

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/cash"
	"github.com/bizdesk/backend/internal/domain/inventory"
	"github.com/bizdesk/backend/internal/domain/report"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/domain/subscription"
	"github.com/bizdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ReportService computes the tenant dashboard
type ReportService struct {
	reader           report.Reader
	subscriptionRepo subscription.Repository
	stockRepo        inventory.StockRepository
	registerRepo     cash.RegisterRepository
	now              func() time.Time
}

func NewReportService(
	reader report.Reader,
	subscriptionRepo subscription.Repository,
	stockRepo inventory.StockRepository,
	registerRepo cash.RegisterRepository,
) *ReportService {
	return &ReportService{
		reader:           reader,
		subscriptionRepo: subscriptionRepo,
		stockRepo:        stockRepo,
		registerRepo:     registerRepo,
		now:              time.Now,
	}
}

// Dashboard runs the independent aggregate queries concurrently. Revenue is
// cash received: payments on paid and partially paid invoices.
func (s *ReportService) Dashboard(ctx context.Context, tenantID uuid.UUID) (*report.Dashboard, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "dashboard")
	defer span.End()

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)

	d := &report.Dashboard{GeneratedAt: now}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.RevenueMonth, err = s.reader.PaymentsBetween(ctx, tenantID, monthStart, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		d.RevenueYear, err = s.reader.PaymentsBetween(ctx, tenantID, yearStart, tomorrow)
		return err
	})
	g.Go(func() error {
		r, err := s.reader.Receivables(ctx, tenantID, now)
		if err != nil {
			return err
		}
		d.OutstandingReceivables = r.Outstanding
		d.OverdueCount = r.OverdueCount
		d.OverdueAmount = r.OverdueAmount
		return nil
	})
	g.Go(func() (err error) {
		d.OpenQuotesCount, d.OpenQuotesAmount, err = s.reader.OpenQuotes(ctx, tenantID)
		return err
	})
	g.Go(func() error {
		subs, err := s.subscriptionRepo.FindActive(ctx, tenantID)
		if err != nil {
			return err
		}
		mrr := decimal.Zero
		for i := range subs {
			mrr = mrr.Add(subs[i].MonthlyAmount())
		}
		d.ActiveSubscriptions = int64(len(subs))
		d.MRR = shared.RoundMoney(mrr)
		return nil
	})
	g.Go(func() (err error) {
		d.LowStockProducts, err = s.stockRepo.CountLow(ctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		d.OpenCashRegisters, err = s.registerRepo.CountOpen(ctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		d.ActiveClients, err = s.reader.CountActiveClients(ctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		d.DraftInvoicesCount, err = s.reader.CountDraftInvoices(ctx, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return d, nil
}
