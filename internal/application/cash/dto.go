package cash

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/cash"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRegisterRequest represents a request to create a cash register
type CreateRegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Location string `json:"location" binding:"max=200"`
}

// UpdateRegisterRequest represents a request to rename a cash register
type UpdateRegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Location string `json:"location" binding:"max=200"`
}

// OpenRegisterRequest starts a session
type OpenRegisterRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// RecordMovementRequest adds a movement to an open register
type RecordMovementRequest struct {
	Type      string          `json:"type" binding:"required,oneof=sale refund deposit withdrawal"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"required,oneof=cash card transfer check"`
	Reference string          `json:"reference" binding:"max=100"`
	InvoiceID *uuid.UUID      `json:"invoice_id"`
}

// CloseRegisterRequest ends a session with the counted cash
type CloseRegisterRequest struct {
	Counted decimal.Decimal `json:"counted"`
	Notes   string          `json:"notes" binding:"max=1000"`
}

// RegisterListFilter represents the query parameters of the register list
type RegisterListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=open closed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f RegisterListFilter) toDomain() shared.Filter {
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
	return filter.Normalize()
}

// MovementFilter represents the query parameters of the movement and closing lists
type MovementFilter struct {
	Search    string     `form:"search"`
	Type      string     `form:"type" binding:"omitempty,oneof=sale refund deposit withdrawal"`
	Method    string     `form:"method" binding:"omitempty,oneof=cash card transfer check"`
	InvoiceID *uuid.UUID `form:"invoice_id"`
	DateFrom  *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo    *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f MovementFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]interface{}{},
	}
	if f.Type != "" {
		filter.Filters["type"] = f.Type
	}
	if f.Method != "" {
		filter.Filters["method"] = f.Method
	}
	if f.InvoiceID != nil {
		filter.Filters["invoice_id"] = *f.InvoiceID
	}
	if f.DateFrom != nil {
		filter.Filters["date_from"] = *f.DateFrom
	}
	if f.DateTo != nil {
		filter.Filters["date_to"] = f.DateTo.AddDate(0, 0, 1)
	}
	return filter.Normalize()
}

// RegisterResponse represents a cash register in API responses
type RegisterResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	Status         string          `json:"status"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	OpenedAt       *time.Time      `json:"opened_at,omitempty"`
	OpenedBy       *uuid.UUID      `json:"opened_by,omitempty"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

func ToRegisterResponse(r *cash.Register) RegisterResponse {
	return RegisterResponse{
		ID:             r.ID,
		Name:           r.Name,
		Location:       r.Location,
		Status:         string(r.Status),
		OpeningBalance: r.OpeningBalance,
		CurrentBalance: r.CurrentBalance,
		OpenedAt:       r.OpenedAt,
		OpenedBy:       r.OpenedBy,
		ClosedAt:       r.ClosedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Version:        r.Version,
	}
}

// MovementResponse represents a cash movement in API responses
type MovementResponse struct {
	ID           uuid.UUID       `json:"id"`
	RegisterID   uuid.UUID       `json:"register_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	Reference    string          `json:"reference"`
	InvoiceID    *uuid.UUID      `json:"invoice_id,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func ToMovementResponse(m *cash.Movement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		RegisterID:   m.RegisterID,
		Type:         string(m.Type),
		Amount:       m.Amount,
		Method:       string(m.Method),
		Reference:    m.Reference,
		InvoiceID:    m.InvoiceID,
		BalanceAfter: m.BalanceAfter,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}

// ClosingResponse represents a register closing in API responses
type ClosingResponse struct {
	ID             uuid.UUID       `json:"id"`
	RegisterID     uuid.UUID       `json:"register_id"`
	OpenedAt       time.Time       `json:"opened_at"`
	ClosedAt       time.Time       `json:"closed_at"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Expected       decimal.Decimal `json:"expected"`
	Counted        decimal.Decimal `json:"counted"`
	Difference     decimal.Decimal `json:"difference"`
	ClosedBy       *uuid.UUID      `json:"closed_by,omitempty"`
	Notes          string          `json:"notes"`
}

func ToClosingResponse(c *cash.Closing) ClosingResponse {
	return ClosingResponse{
		ID:             c.ID,
		RegisterID:     c.RegisterID,
		OpenedAt:       c.OpenedAt,
		ClosedAt:       c.ClosedAt,
		OpeningBalance: c.OpeningBalance,
		Expected:       c.Expected,
		Counted:        c.Counted,
		Difference:     c.Difference,
		ClosedBy:       c.ClosedBy,
		Notes:          c.Notes,
	}
}
