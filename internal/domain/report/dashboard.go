// Package report holds read models computed straight from the database.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dashboard is the tenant overview shown on the home page
type Dashboard struct {
	GeneratedAt time.Time `json:"generated_at"`

	RevenueMonth decimal.Decimal `json:"revenue_month"`
	RevenueYear  decimal.Decimal `json:"revenue_year"`

	OutstandingReceivables decimal.Decimal `json:"outstanding_receivables"`
	OverdueCount           int64           `json:"overdue_count"`
	OverdueAmount          decimal.Decimal `json:"overdue_amount"`

	OpenQuotesCount  int64           `json:"open_quotes_count"`
	OpenQuotesAmount decimal.Decimal `json:"open_quotes_amount"`

	ActiveSubscriptions int64           `json:"active_subscriptions"`
	MRR                 decimal.Decimal `json:"mrr"`

	LowStockProducts   int64 `json:"low_stock_products"`
	OpenCashRegisters  int64 `json:"open_cash_registers"`
	ActiveClients      int64 `json:"active_clients"`
	DraftInvoicesCount int64 `json:"draft_invoices_count"`
}

// Receivables is the unpaid balance of issued invoices
type Receivables struct {
	Outstanding   decimal.Decimal
	OverdueCount  int64
	OverdueAmount decimal.Decimal
}

// Reader runs the aggregate queries behind reports
type Reader interface {
	// PaymentsBetween sums payments received in [from, to)
	PaymentsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	Receivables(ctx context.Context, tenantID uuid.UUID, now time.Time) (Receivables, error)
	OpenQuotes(ctx context.Context, tenantID uuid.UUID) (int64, decimal.Decimal, error)
	CountDraftInvoices(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountActiveClients(ctx context.Context, tenantID uuid.UUID) (int64, error)
	// RevenueByMonth totals non-cancelled, non-draft invoices by issue month (YYYY-MM) in [from, to)
	RevenueByMonth(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[string]decimal.Decimal, error)
}
