package main

import (
	"context"
	"errors"
	"time"

	"github.com/bizdesk/backend/internal/infrastructure/metrics"
	"github.com/bizdesk/backend/internal/infrastructure/scheduler"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (a *app) registerJobs(s *services, m *metrics.Metrics) error {
	cfg, log := a.cfg.Scheduler, a.log
	perTenant := func(fn func(ctx context.Context, tenantID uuid.UUID) error) scheduler.JobFunc {
		return scheduler.ForEachTenant(a.tenants, log, fn)
	}

	jobs := []struct {
		name string
		spec string
		fn   scheduler.JobFunc
	}{
		{"subscription_billing", cfg.SubscriptionBilling, perTenant(func(ctx context.Context, tenantID uuid.UUID) error {
			result, err := s.subscription.GenerateDueInvoices(ctx, tenantID, time.Now())
			if result.Invoices > 0 || result.Failed > 0 {
				log.Info("Subscription invoices generated",
					zap.String("tenant_id", tenantID.String()),
					zap.Int("invoices", result.Invoices),
					zap.Int("sent", result.Sent),
					zap.Int("failed", result.Failed))
			}
			return err
		})},
		{"overdue_sweep", cfg.OverdueSweep, perTenant(func(ctx context.Context, tenantID uuid.UUID) error {
			overdue, err := s.invoices.MarkOverdue(ctx, tenantID)
			if err != nil {
				return err
			}
			reminded, err := s.reminders.SendDueReminders(ctx, tenantID)
			if overdue.Processed > 0 || reminded.Processed > 0 {
				log.Info("Overdue sweep finished",
					zap.String("tenant_id", tenantID.String()),
					zap.Int("overdue", overdue.Processed),
					zap.Int("reminded", reminded.Processed),
					zap.Int("failed", overdue.Failed+reminded.Failed))
			}
			return err
		})},
		{"quote_expiry", cfg.QuoteExpiry, perTenant(func(ctx context.Context, tenantID uuid.UUID) error {
			_, err := s.quotes.ExpireQuotes(ctx, tenantID)
			return err
		})},
		{"presence_prune", cfg.PresencePrune, func(ctx context.Context) error {
			if _, err := s.presence.Prune(ctx); err != nil {
				return err
			}
			s.alerts.Prune()
			return a.countOnline(ctx, s, m)
		}},
	}
	if cfg.BackupEnabled {
		jobs = append(jobs, struct {
			name string
			spec string
			fn   scheduler.JobFunc
		}{"backup", cfg.Backup, perTenant(s.backup.RunScheduled)})
	}

	for _, j := range jobs {
		if err := a.scheduler.Register(j.name, j.spec, j.fn); err != nil {
			return err
		}
	}
	return nil
}

// countOnline refreshes the online users gauge across all tenants
func (a *app) countOnline(ctx context.Context, s *services, m *metrics.Metrics) error {
	tenantIDs, err := a.tenants.GetAllActiveTenantIDs(ctx)
	if err != nil {
		return err
	}
	total := 0
	var errs []error
	for _, tenantID := range tenantIDs {
		online, err := s.presence.Online(ctx, tenantID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += len(online)
	}
	m.SetOnlineUsers(total)
	return errors.Join(errs...)
}
