package catalog

import (
	"context"
	"testing"

	"github.com/bizdesk/backend/internal/domain/catalog"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	args := m.Called(ctx, tenantID, sku)
	return args.Bool(0), args.Error(1)
}

type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Vendor, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Vendor, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Vendor), args.Get(1).(int64), args.Error(2)
}

func (m *MockVendorRepository) Save(ctx context.Context, v *partner.Vendor) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVendorRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockVendorRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
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

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func newTestService() (*ProductService, *MockProductRepository, *MockVendorRepository, *MockSettingsRepository, *recordingPublisher) {
	products := new(MockProductRepository)
	vendors := new(MockVendorRepository)
	cfg := new(MockSettingsRepository)
	pub := &recordingPublisher{}
	return NewProductService(products, vendors, cfg, pub), products, vendors, cfg, pub
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("uses company default VAT rate", func(t *testing.T) {
		svc, products, _, cfg, pub := newTestService()
		products.On("ExistsBySKU", ctx, tenantID, "sku-1").Return(false, nil)
		cfg.On("Get", ctx, tenantID).Return(settings.Defaults(tenantID, "Acme"), nil)
		products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.Create(ctx, tenantID, CreateProductRequest{
			SKU:       "sku-1",
			Name:      "Widget",
			UnitPrice: decimal.NewFromInt(12),
		})

		require.NoError(t, err)
		assert.Equal(t, "SKU-1", resp.SKU)
		assert.True(t, resp.VATRate.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, "unit", resp.Unit)
		assert.Contains(t, pub.types(), catalog.EventTypeProductCreated)
		products.AssertExpectations(t)
	})

	t.Run("rejects duplicate SKU", func(t *testing.T) {
		svc, products, _, _, _ := newTestService()
		products.On("ExistsBySKU", ctx, tenantID, "DUP").Return(true, nil)

		_, err := svc.Create(ctx, tenantID, CreateProductRequest{SKU: "DUP", Name: "x"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown vendor", func(t *testing.T) {
		svc, products, vendors, _, _ := newTestService()
		vendorID := uuid.New()
		rate := decimal.NewFromInt(10)
		products.On("ExistsBySKU", ctx, tenantID, "A1").Return(false, nil)
		vendors.On("FindByID", ctx, tenantID, vendorID).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, tenantID, CreateProductRequest{SKU: "A1", Name: "x", VATRate: &rate, VendorID: &vendorID})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_VENDOR", de.Code)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		svc, products, _, _, _ := newTestService()
		rate := decimal.NewFromInt(10)
		products.On("ExistsBySKU", ctx, tenantID, "A2").Return(false, nil)

		_, err := svc.Create(ctx, tenantID, CreateProductRequest{SKU: "A2", Name: "x", VATRate: &rate, UnitPrice: decimal.NewFromInt(-1)})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_PRICE", de.Code)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	svc, products, _, _, pub := newTestService()

	existing, err := catalog.NewProduct(tenantID, "P1", "Old", decimal.NewFromInt(5), decimal.NewFromInt(20))
	require.NoError(t, err)
	existing.ClearDomainEvents()

	products.On("FindByID", ctx, tenantID, existing.ID).Return(existing, nil)
	products.On("Save", ctx, existing).Return(nil)

	name := "New"
	price := decimal.RequireFromString("7.50")
	track := true
	resp, err := svc.Update(ctx, tenantID, existing.ID, UpdateProductRequest{Name: &name, UnitPrice: &price, TrackStock: &track})

	require.NoError(t, err)
	assert.Equal(t, "New", resp.Name)
	assert.True(t, resp.UnitPrice.Equal(price))
	assert.True(t, resp.TrackStock)
	assert.Contains(t, pub.types(), catalog.EventTypeProductUpdated)
}

func TestProductService_DeactivateAndDelete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	svc, products, _, _, pub := newTestService()

	p, err := catalog.NewProduct(tenantID, "P2", "Thing", decimal.NewFromInt(1), decimal.Zero)
	require.NoError(t, err)
	p.ClearDomainEvents()

	products.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)
	products.On("Save", ctx, p).Return(nil)
	products.On("Delete", ctx, tenantID, p.ID).Return(nil)

	resp, err := svc.Deactivate(ctx, tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)

	_, err = svc.Deactivate(ctx, tenantID, p.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	require.NoError(t, svc.Delete(ctx, tenantID, p.ID))
	assert.Equal(t, []string{catalog.EventTypeProductStatusChanged, catalog.EventTypeProductDeleted}, pub.types())
}

func TestProductListFilter_toDomain(t *testing.T) {
	track := true
	f := ProductListFilter{Search: "bolt", Status: "active", Category: "hardware", TrackStock: &track, PageSize: 500}.toDomain()

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, shared.MaxPageSize, f.PageSize)
	assert.Equal(t, "desc", f.OrderDir)
	assert.Equal(t, "active", f.Filters["status"])
	assert.Equal(t, "hardware", f.Filters["category"])
	assert.Equal(t, true, f.Filters["track_stock"])
}
