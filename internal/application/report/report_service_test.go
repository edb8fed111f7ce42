package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/cash"
	"github.com/bizdesk/backend/internal/domain/inventory"
	"github.com/bizdesk/backend/internal/domain/report"
	"github.com/bizdesk/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReader struct {
	mock.Mock
}

func (m *MockReader) PaymentsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReader) Receivables(ctx context.Context, tenantID uuid.UUID, now time.Time) (report.Receivables, error) {
	args := m.Called(ctx, tenantID, now)
	return args.Get(0).(report.Receivables), args.Error(1)
}

func (m *MockReader) OpenQuotes(ctx context.Context, tenantID uuid.UUID) (int64, decimal.Decimal, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockReader) CountDraftInvoices(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReader) CountActiveClients(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReader) RevenueByMonth(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

type MockSubscriptionRepository struct {
	mock.Mock
	subscription.Repository
}

func (m *MockSubscriptionRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]subscription.Subscription, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]subscription.Subscription), args.Error(1)
}

type MockStockRepository struct {
	mock.Mock
	inventory.StockRepository
}

func (m *MockStockRepository) CountLow(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

type MockRegisterRepository struct {
	mock.Mock
	cash.RegisterRepository
}

func (m *MockRegisterRepository) CountOpen(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func subscriptionOf(t *testing.T, tenantID uuid.UUID, interval subscription.Interval, price int64) subscription.Subscription {
	t.Helper()
	l, err := billing.NewLine(nil, "Hosting", decimal.NewFromInt(1), decimal.NewFromInt(price), decimal.NewFromInt(20), decimal.Zero)
	require.NoError(t, err)
	s, err := subscription.NewSubscription(tenantID, uuid.New(), "Hosting", interval, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), []billing.Line{l})
	require.NoError(t, err)
	return *s
}

func TestReportService_Dashboard(t *testing.T) {
	tenantID := uuid.New()
	now := time.Date(2026, 8, 14, 16, 30, 0, 0, time.UTC)
	monthStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	setup := func() (*MockReader, *MockSubscriptionRepository, *MockStockRepository, *MockRegisterRepository, *ReportService) {
		reader := new(MockReader)
		subs := new(MockSubscriptionRepository)
		stock := new(MockStockRepository)
		registers := new(MockRegisterRepository)
		svc := NewReportService(reader, subs, stock, registers)
		svc.now = func() time.Time { return now }
		return reader, subs, stock, registers, svc
	}

	t.Run("collects every figure", func(t *testing.T) {
		reader, subs, stock, registers, svc := setup()
		reader.On("PaymentsBetween", mock.Anything, tenantID, monthStart, tomorrow).Return(decimal.NewFromInt(1200), nil)
		reader.On("PaymentsBetween", mock.Anything, tenantID, yearStart, tomorrow).Return(decimal.NewFromInt(9800), nil)
		reader.On("Receivables", mock.Anything, tenantID, now).Return(report.Receivables{
			Outstanding: decimal.NewFromInt(4000), OverdueCount: 2, OverdueAmount: decimal.NewFromInt(1500),
		}, nil)
		reader.On("OpenQuotes", mock.Anything, tenantID).Return(int64(3), decimal.NewFromInt(2700), nil)
		reader.On("CountActiveClients", mock.Anything, tenantID).Return(int64(12), nil)
		reader.On("CountDraftInvoices", mock.Anything, tenantID).Return(int64(1), nil)
		subs.On("FindActive", mock.Anything, tenantID).Return([]subscription.Subscription{
			subscriptionOf(t, tenantID, subscription.IntervalMonthly, 50),
			subscriptionOf(t, tenantID, subscription.IntervalYearly, 1200),
		}, nil)
		stock.On("CountLow", mock.Anything, tenantID).Return(int64(4), nil)
		registers.On("CountOpen", mock.Anything, tenantID).Return(int64(1), nil)

		d, err := svc.Dashboard(context.Background(), tenantID)

		require.NoError(t, err)
		assert.True(t, d.RevenueMonth.Equal(decimal.NewFromInt(1200)))
		assert.True(t, d.RevenueYear.Equal(decimal.NewFromInt(9800)))
		assert.Equal(t, int64(2), d.OverdueCount)
		assert.Equal(t, int64(3), d.OpenQuotesCount)
		assert.Equal(t, int64(2), d.ActiveSubscriptions)
		assert.True(t, d.MRR.Equal(decimal.NewFromInt(150)), d.MRR.String())
		assert.Equal(t, int64(4), d.LowStockProducts)
		assert.Equal(t, int64(1), d.OpenCashRegisters)
		assert.Equal(t, int64(12), d.ActiveClients)
	})

	t.Run("any failing query fails the dashboard", func(t *testing.T) {
		reader, subs, stock, registers, svc := setup()
		boom := errors.New("db down")
		reader.On("PaymentsBetween", mock.Anything, tenantID, mock.Anything, mock.Anything).Return(decimal.Zero, nil)
		reader.On("Receivables", mock.Anything, tenantID, now).Return(report.Receivables{}, nil)
		reader.On("OpenQuotes", mock.Anything, tenantID).Return(int64(0), decimal.Zero, nil)
		reader.On("CountActiveClients", mock.Anything, tenantID).Return(int64(0), nil)
		reader.On("CountDraftInvoices", mock.Anything, tenantID).Return(int64(0), nil)
		subs.On("FindActive", mock.Anything, tenantID).Return([]subscription.Subscription{}, nil)
		stock.On("CountLow", mock.Anything, tenantID).Return(int64(0), boom)
		registers.On("CountOpen", mock.Anything, tenantID).Return(int64(0), nil)

		_, err := svc.Dashboard(context.Background(), tenantID)

		assert.ErrorIs(t, err, boom)
	})
}
