package inventory

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/inventory"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockOperationRequest receives or issues a quantity of one product
type StockOperationRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Reason        string          `json:"reason" binding:"max=500"`
	ReferenceType string          `json:"reference_type" binding:"max=50"`
	ReferenceID   *uuid.UUID      `json:"reference_id"`
	CreatedBy     *uuid.UUID      `json:"-"`
}

// AdjustStockRequest sets the quantity to a counted value
type AdjustStockRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	Reason          string          `json:"reason" binding:"required,max=500"`
	CreatedBy       *uuid.UUID      `json:"-"`
}

// SetMinQuantityRequest changes the reorder threshold
type SetMinQuantityRequest struct {
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

// LevelFilter represents the query parameters of the stock level list
type LevelFilter struct {
	Search   string `form:"search"`
	LowStock bool   `form:"low_stock"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f LevelFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]interface{}{},
	}
	if f.LowStock {
		filter.Filters["low_stock"] = true
	}
	return filter.Normalize()
}

// MovementFilter represents the query parameters of the movement list
type MovementFilter struct {
	ProductID   *uuid.UUID `form:"product_id"`
	Type        string     `form:"type" binding:"omitempty,oneof=in out adjustment"`
	ReferenceID *uuid.UUID `form:"reference_id"`
	DateFrom    *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo      *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f MovementFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "created_at",
		OrderDir: f.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if f.ProductID != nil {
		filter.Filters["product_id"] = *f.ProductID
	}
	if f.Type != "" {
		filter.Filters["type"] = f.Type
	}
	if f.ReferenceID != nil {
		filter.Filters["reference_id"] = *f.ReferenceID
	}
	if f.DateFrom != nil {
		filter.Filters["date_from"] = *f.DateFrom
	}
	if f.DateTo != nil {
		filter.Filters["date_to"] = f.DateTo.AddDate(0, 0, 1)
	}
	return filter.Normalize()
}

// StockLevelResponse represents a stock level in API responses
type StockLevelResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	IsLow       bool            `json:"is_low"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

func ToStockLevelResponse(l *inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ProductID:   l.ProductID,
		Quantity:    l.Quantity,
		MinQuantity: l.MinQuantity,
		IsLow:       l.IsLow(),
		UpdatedAt:   l.UpdatedAt,
		Version:     l.Version,
	}
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Reason         string          `json:"reason"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	ReferenceID    *uuid.UUID      `json:"reference_id,omitempty"`
	CreatedBy      *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		Type:           string(m.Type),
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}
