package catalog

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/catalog"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	SKU           string           `json:"sku" binding:"required,min=1,max=50"`
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Description   string           `json:"description" binding:"max=2000"`
	Category      string           `json:"category" binding:"max=100"`
	Unit          string           `json:"unit" binding:"max=20"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	VATRate       *decimal.Decimal `json:"vat_rate"`
	VendorID      *uuid.UUID       `json:"vendor_id"`
	TrackStock    bool             `json:"track_stock"`
	CreatedBy     *uuid.UUID       `json:"-"`
}

// UpdateProductRequest represents a request to update a product. Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	Category      *string          `json:"category" binding:"omitempty,max=100"`
	Unit          *string          `json:"unit" binding:"omitempty,max=20"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	VATRate       *decimal.Decimal `json:"vat_rate"`
	VendorID      *uuid.UUID       `json:"vendor_id"`
	ClearVendor   bool             `json:"clear_vendor"`
	TrackStock    *bool            `json:"track_stock"`
}

// ProductListFilter represents the query parameters of the product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=active inactive"`
	Category   string     `form:"category"`
	VendorID   *uuid.UUID `form:"vendor_id"`
	TrackStock *bool      `form:"track_stock"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f ProductListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]interface{}{},
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.Category != "" {
		filter.Filters["category"] = f.Category
	}
	if f.VendorID != nil {
		filter.Filters["vendor_id"] = *f.VendorID
	}
	if f.TrackStock != nil {
		filter.Filters["track_stock"] = *f.TrackStock
	}
	return filter.Normalize()
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	Margin        decimal.Decimal `json:"margin"`
	VendorID      *uuid.UUID      `json:"vendor_id,omitempty"`
	TrackStock    bool            `json:"track_stock"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Unit:          p.Unit,
		UnitPrice:     p.UnitPrice,
		PurchasePrice: p.PurchasePrice,
		VATRate:       p.VATRate,
		Margin:        p.UnitPrice.Sub(p.PurchasePrice),
		VendorID:      p.VendorID,
		TrackStock:    p.TrackStock,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}
