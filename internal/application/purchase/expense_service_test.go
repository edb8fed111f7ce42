package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/purchase"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*purchase.Expense, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchase.Expense, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]purchase.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseRepository) FindBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]purchase.Expense, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]purchase.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, e *purchase.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockVendorRepository struct {
	mock.Mock
	partner.VendorRepository
}

func (m *MockVendorRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Vendor, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Vendor), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, tenantID uuid.UUID) (*settings.CompanySettings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.CompanySettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, s *settings.CompanySettings) error {
	return m.Called(ctx, s).Error(0)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func TestExpenseService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	req := ExpenseRequest{
		Category:    "Office",
		Description: "Toner",
		Date:        time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		NetAmount:   decimal.NewFromInt(80),
	}

	t.Run("company VAT rate applies by default", func(t *testing.T) {
		repo, vendors, cfg := new(MockExpenseRepository), new(MockVendorRepository), new(MockSettingsRepository)
		company := settings.Defaults(tenantID, "Acme")
		company.DefaultVATRate = decimal.NewFromInt(10)
		cfg.On("Get", ctx, tenantID).Return(company, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*purchase.Expense")).Return(nil)
		pub := &recordingPublisher{}

		resp, err := NewExpenseService(repo, vendors, cfg, pub).Create(ctx, tenantID, req)

		require.NoError(t, err)
		assert.Equal(t, "office", resp.Category)
		assert.True(t, resp.VATAmount.Equal(decimal.NewFromInt(8)))
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(88)))
		require.Len(t, pub.events, 1)
		assert.Equal(t, purchase.EventTypeExpenseCreated, pub.events[0].EventType())
	})

	t.Run("unknown vendor", func(t *testing.T) {
		repo, vendors, cfg := new(MockExpenseRepository), new(MockVendorRepository), new(MockSettingsRepository)
		vendorID := uuid.New()
		vendors.On("FindByID", ctx, tenantID, vendorID).Return(nil, shared.ErrNotFound)
		withVendor := req
		withVendor.VendorID = &vendorID

		_, err := NewExpenseService(repo, vendors, cfg, &recordingPublisher{}).Create(ctx, tenantID, withVendor)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_VENDOR", de.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("explicit rate skips settings", func(t *testing.T) {
		repo, vendors, cfg := new(MockExpenseRepository), new(MockVendorRepository), new(MockSettingsRepository)
		repo.On("Save", ctx, mock.AnythingOfType("*purchase.Expense")).Return(nil)
		zero := decimal.Zero
		exempt := req
		exempt.VATRate = &zero

		resp, err := NewExpenseService(repo, vendors, cfg, &recordingPublisher{}).Create(ctx, tenantID, exempt)

		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(80)))
		cfg.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestExpenseService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	e, err := purchase.NewExpense(tenantID, purchase.ExpenseInput{
		Description: "Taxi", Date: time.Now(), NetAmount: decimal.NewFromInt(25), VATRate: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	repo := new(MockExpenseRepository)
	repo.On("FindByID", ctx, tenantID, e.ID).Return(e, nil)
	repo.On("Delete", ctx, tenantID, e.ID).Return(nil)
	pub := &recordingPublisher{}

	require.NoError(t, NewExpenseService(repo, new(MockVendorRepository), new(MockSettingsRepository), pub).Delete(ctx, tenantID, e.ID))

	require.Len(t, pub.events, 1)
	assert.Equal(t, purchase.EventTypeExpenseDeleted, pub.events[0].EventType())
}
