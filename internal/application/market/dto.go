package market

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/market"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateMarketRequest represents a request to create a market contract
type CreateMarketRequest struct {
	Reference   string          `json:"reference" binding:"required,min=1,max=50"`
	Title       string          `json:"title" binding:"required,min=1,max=200"`
	ClientID    uuid.UUID       `json:"client_id" binding:"required"`
	Description string          `json:"description" binding:"max=2000"`
	StartDate   time.Time       `json:"start_date" binding:"required"`
	EndDate     time.Time       `json:"end_date" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

// UpdateMarketRequest represents a request to update a market contract
type UpdateMarketRequest struct {
	Title       string          `json:"title" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	StartDate   time.Time       `json:"start_date" binding:"required"`
	EndDate     time.Time       `json:"end_date" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

// MarketListFilter represents the query parameters of the market list
type MarketListFilter struct {
	Search   string     `form:"search"`
	Status   string     `form:"status" binding:"omitempty,oneof=draft active completed cancelled"`
	ClientID *uuid.UUID `form:"client_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f MarketListFilter) toDomain() shared.Filter {
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
	if f.ClientID != nil {
		filter.Filters["client_id"] = *f.ClientID
	}
	return filter.Normalize()
}

// MarketResponse represents a market in API responses
type MarketResponse struct {
	ID              uuid.UUID       `json:"id"`
	Reference       string          `json:"reference"`
	Title           string          `json:"title"`
	ClientID        uuid.UUID       `json:"client_id"`
	Description     string          `json:"description"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Amount          decimal.Decimal `json:"amount"`
	InvoicedAmount  decimal.Decimal `json:"invoiced_amount"`
	Remaining       decimal.Decimal `json:"remaining"`
	ConsumptionRate decimal.Decimal `json:"consumption_rate"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

func ToMarketResponse(m *market.Market) MarketResponse {
	return MarketResponse{
		ID:              m.ID,
		Reference:       m.Reference,
		Title:           m.Title,
		ClientID:        m.ClientID,
		Description:     m.Description,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		Amount:          m.Amount,
		InvoicedAmount:  m.InvoicedAmount,
		Remaining:       m.Remaining(),
		ConsumptionRate: m.ConsumptionRate(),
		Status:          string(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		Version:         m.Version,
	}
}
