package persistence

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/forecast"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/report"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var openInvoiceStatuses = []billing.InvoiceStatus{
	billing.InvoiceStatusSent,
	billing.InvoiceStatusPartiallyPaid,
	billing.InvoiceStatusOverdue,
}

// GormReportReader implements report.Reader with aggregate queries
type GormReportReader struct {
	db *gorm.DB
}

func NewGormReportReader(db *gorm.DB) *GormReportReader {
	return &GormReportReader{db: db}
}

func (r *GormReportReader) PaymentsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.InvoicePaymentModel{}).Scopes(tenantScope(tenantID)).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&sum)
	return sum, err
}

// Receivables counts an open invoice as overdue once its due date has passed,
// even before the daily sweep flips its status.
func (r *GormReportReader) Receivables(ctx context.Context, tenantID uuid.UUID, now time.Time) (report.Receivables, error) {
	var out report.Receivables
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(tenantScope(tenantID)).
		Where("status IN ?", openInvoiceStatuses).
		Select(`COALESCE(SUM(total - amount_paid), 0),
			COUNT(CASE WHEN status = ? OR due_date < ? THEN 1 END),
			COALESCE(SUM(CASE WHEN status = ? OR due_date < ? THEN total - amount_paid ELSE 0 END), 0)`,
			billing.InvoiceStatusOverdue, now, billing.InvoiceStatusOverdue, now).
		Row().Scan(&out.Outstanding, &out.OverdueCount, &out.OverdueAmount)
	return out, err
}

func (r *GormReportReader) OpenQuotes(ctx context.Context, tenantID uuid.UUID) (int64, decimal.Decimal, error) {
	var (
		count int64
		sum   decimal.Decimal
	)
	err := r.db.WithContext(ctx).Model(&models.QuoteModel{}).Scopes(tenantScope(tenantID)).
		Where("status IN ?", []billing.QuoteStatus{billing.QuoteStatusSent, billing.QuoteStatusAccepted}).
		Select("COUNT(*), COALESCE(SUM(total), 0)").
		Row().Scan(&count, &sum)
	return count, sum, err
}

func (r *GormReportReader) CountDraftInvoices(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(tenantScope(tenantID)).
		Where("status = ?", billing.InvoiceStatusDraft).Count(&count).Error
	return count, err
}

func (r *GormReportReader) CountActiveClients(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ClientModel{}).Scopes(tenantScope(tenantID)).
		Where("status = ?", partner.StatusActive).Count(&count).Error
	return count, err
}

// RevenueByMonth groups in Go; month extraction differs between Postgres and SQLite
func (r *GormReportReader) RevenueByMonth(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[string]decimal.Decimal, error) {
	var rows []struct {
		IssueDate time.Time
		Total     decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(tenantScope(tenantID)).
		Where("status IN ?", issuedInvoiceStatuses).
		Where("issue_date >= ? AND issue_date < ?", from, to).
		Select("issue_date, total").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make(map[string]decimal.Decimal)
	for _, row := range rows {
		key := forecast.MonthLabel(row.IssueDate)
		totals[key] = totals[key].Add(row.Total)
	}
	return totals, nil
}
