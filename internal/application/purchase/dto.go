package purchase

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/purchase"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseRequest represents a request to create or replace an expense
type ExpenseRequest struct {
	VendorID      *uuid.UUID       `json:"vendor_id"`
	Category      string           `json:"category" binding:"max=100"`
	Description   string           `json:"description" binding:"required,min=1,max=500"`
	Date          time.Time        `json:"date" binding:"required"`
	NetAmount     decimal.Decimal  `json:"net_amount"`
	VATRate       *decimal.Decimal `json:"vat_rate"`
	PaymentMethod string           `json:"payment_method" binding:"omitempty,oneof=cash card transfer check"`
	Reference     string           `json:"reference" binding:"max=100"`
}

// ExpenseListFilter represents the query parameters of the expense list
type ExpenseListFilter struct {
	Search   string     `form:"search"`
	VendorID *uuid.UUID `form:"vendor_id"`
	Category string     `form:"category"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f ExpenseListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]interface{}{},
	}
	if f.VendorID != nil {
		filter.Filters["vendor_id"] = *f.VendorID
	}
	if f.Category != "" {
		filter.Filters["category"] = f.Category
	}
	if f.DateFrom != nil {
		filter.Filters["date_from"] = *f.DateFrom
	}
	if f.DateTo != nil {
		filter.Filters["date_to"] = *f.DateTo
	}
	return filter.Normalize()
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID            uuid.UUID       `json:"id"`
	VendorID      *uuid.UUID      `json:"vendor_id,omitempty"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Reference     string          `json:"reference"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

func ToExpenseResponse(e *purchase.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		VendorID:      e.VendorID,
		Category:      e.Category,
		Description:   e.Description,
		Date:          e.Date,
		NetAmount:     e.NetAmount,
		VATRate:       e.VATRate,
		VATAmount:     e.VATAmount,
		Total:         e.Total,
		PaymentMethod: e.PaymentMethod,
		Reference:     e.Reference,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		Version:       e.Version,
	}
}
