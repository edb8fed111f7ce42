package catalog

import (
	"regexp"
	"strings"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var skuRegex = regexp.MustCompile(`^[A-Z0-9_\-.]+$`)

// ProductStatus represents whether a product can be sold
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is an item or service that can appear on quotes and invoices
type Product struct {
	shared.TenantAggregateRoot
	SKU           string
	Name          string
	Description   string
	Category      string
	Unit          string
	UnitPrice     decimal.Decimal
	PurchasePrice decimal.Decimal
	VATRate       decimal.Decimal
	VendorID      *uuid.UUID
	TrackStock    bool
	Status        ProductStatus
}

// NewProduct creates an active product
func NewProduct(tenantID uuid.UUID, sku, name string, unitPrice, vatRate decimal.Decimal) (*Product, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" || len(sku) > 50 || !skuRegex.MatchString(sku) {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU must be 1-50 letters, numbers, dots, underscores or hyphens")
	}
	p := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		Unit:                "unit",
		Status:              ProductStatusActive,
	}
	if err := p.setName(name); err != nil {
		return nil, err
	}
	if err := p.setPricing(unitPrice, decimal.Zero, vatRate); err != nil {
		return nil, err
	}
	p.AddDomainEvent(newProductEvent(EventTypeProductCreated, p))
	return p, nil
}

// Update changes the descriptive fields
func (p *Product) Update(name, description, category, unit string) error {
	if err := p.setName(name); err != nil {
		return err
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = "unit"
	}
	if len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	p.Description = description
	p.Category = strings.TrimSpace(category)
	p.Unit = unit
	p.Touch()
	p.AddDomainEvent(newProductEvent(EventTypeProductUpdated, p))
	return nil
}

// SetPricing changes selling price, purchase price and VAT rate
func (p *Product) SetPricing(unitPrice, purchasePrice, vatRate decimal.Decimal) error {
	if err := p.setPricing(unitPrice, purchasePrice, vatRate); err != nil {
		return err
	}
	p.Touch()
	p.AddDomainEvent(newProductEvent(EventTypeProductUpdated, p))
	return nil
}

// SetVendor links the product to its usual supplier (nil clears it)
func (p *Product) SetVendor(vendorID *uuid.UUID) {
	p.VendorID = vendorID
	p.Touch()
}

// SetTrackStock enables or disables stock tracking
func (p *Product) SetTrackStock(track bool) {
	p.TrackStock = track
	p.Touch()
}

func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewInvalidStateError("Product is already active")
	}
	p.Status = ProductStatusActive
	p.Touch()
	p.AddDomainEvent(newProductEvent(EventTypeProductStatusChanged, p))
	return nil
}

func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewInvalidStateError("Product is already inactive")
	}
	p.Status = ProductStatusInactive
	p.Touch()
	p.AddDomainEvent(newProductEvent(EventTypeProductStatusChanged, p))
	return nil
}

func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func (p *Product) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name must be between 1 and 200 characters")
	}
	p.Name = name
	return nil
}

func (p *Product) setPricing(unitPrice, purchasePrice, vatRate decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if purchasePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Purchase price cannot be negative")
	}
	if !shared.ValidateRate(vatRate) {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be between 0 and 100")
	}
	p.UnitPrice = unitPrice
	p.PurchasePrice = purchasePrice
	p.VATRate = vatRate
	return nil
}
