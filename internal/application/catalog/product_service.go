package catalog

import (
	"context"
	"errors"

	"github.com/bizdesk/backend/internal/domain/catalog"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	vendorRepo   partner.VendorRepository
	settingsRepo settings.Repository
	publisher    shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	vendorRepo partner.VendorRepository,
	settingsRepo settings.Repository,
	publisher shared.EventPublisher,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		vendorRepo:   vendorRepo,
		settingsRepo: settingsRepo,
		publisher:    publisher,
	}
}

// Create creates a new product. Without a VAT rate the company default applies.
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsBySKU(ctx, tenantID, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}

	vatRate, err := s.vatRateOrDefault(ctx, tenantID, req.VATRate)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(tenantID, req.SKU, req.Name, req.UnitPrice, vatRate)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		product.SetCreatedBy(*req.CreatedBy)
	}
	if err := product.Update(req.Name, req.Description, req.Category, req.Unit); err != nil {
		return nil, err
	}
	if req.PurchasePrice != nil {
		if err := product.SetPricing(req.UnitPrice, *req.PurchasePrice, vatRate); err != nil {
			return nil, err
		}
	}
	if req.VendorID != nil {
		if err := s.ensureVendor(ctx, tenantID, *req.VendorID); err != nil {
			return nil, err
		}
		product.SetVendor(req.VendorID)
	}
	product.SetTrackStock(req.TrackStock)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a list of products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses, total, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	name, description, category, unit := product.Name, product.Description, product.Category, product.Unit
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Category != nil {
		category = *req.Category
	}
	if req.Unit != nil {
		unit = *req.Unit
	}
	if err := product.Update(name, description, category, unit); err != nil {
		return nil, err
	}

	if req.UnitPrice != nil || req.PurchasePrice != nil || req.VATRate != nil {
		unitPrice, purchasePrice, vatRate := product.UnitPrice, product.PurchasePrice, product.VATRate
		if req.UnitPrice != nil {
			unitPrice = *req.UnitPrice
		}
		if req.PurchasePrice != nil {
			purchasePrice = *req.PurchasePrice
		}
		if req.VATRate != nil {
			vatRate = *req.VATRate
		}
		if err := product.SetPricing(unitPrice, purchasePrice, vatRate); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearVendor:
		product.SetVendor(nil)
	case req.VendorID != nil:
		if err := s.ensureVendor(ctx, tenantID, *req.VendorID); err != nil {
			return nil, err
		}
		product.SetVendor(req.VendorID)
	}
	if req.TrackStock != nil {
		product.SetTrackStock(*req.TrackStock)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Activate activates a product
func (s *ProductService) Activate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.transition(ctx, tenantID, productID, (*catalog.Product).Activate)
}

// Deactivate deactivates a product
func (s *ProductService) Deactivate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.transition(ctx, tenantID, productID, (*catalog.Product).Deactivate)
}

func (s *ProductService) transition(ctx context.Context, tenantID, productID uuid.UUID, fn func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if err := fn(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, product); err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, tenantID, productID); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, catalog.NewProductDeletedEvent(product))
	}
	return nil
}

func (s *ProductService) ensureVendor(ctx context.Context, tenantID, vendorID uuid.UUID) error {
	if _, err := s.vendorRepo.FindByID(ctx, tenantID, vendorID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_VENDOR", "Vendor not found")
		}
		return err
	}
	return nil
}

func (s *ProductService) vatRateOrDefault(ctx context.Context, tenantID uuid.UUID, rate *decimal.Decimal) (decimal.Decimal, error) {
	if rate != nil {
		return *rate, nil
	}
	cs, err := s.settingsRepo.Get(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		cs = settings.Defaults(tenantID, "")
	} else if err != nil {
		return decimal.Zero, err
	}
	return cs.DefaultVATRate, nil
}
