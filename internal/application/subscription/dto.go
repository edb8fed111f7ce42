package subscription

import (
	"time"

	appbilling "github.com/bizdesk/backend/internal/application/billing"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSubscriptionRequest represents a request to create a subscription
type CreateSubscriptionRequest struct {
	ClientID  uuid.UUID                `json:"client_id" binding:"required"`
	Name      string                   `json:"name" binding:"required,min=1,max=200"`
	Interval  string                   `json:"interval" binding:"required,oneof=monthly quarterly yearly"`
	StartDate time.Time                `json:"start_date" binding:"required"`
	EndDate   *time.Time               `json:"end_date"`
	AutoSend  bool                     `json:"auto_send"`
	Lines     []appbilling.LineRequest `json:"lines" binding:"required,min=1,max=100,dive"`
}

// UpdateSubscriptionRequest represents a request to update a subscription
type UpdateSubscriptionRequest struct {
	Name     string                   `json:"name" binding:"required,min=1,max=200"`
	Interval string                   `json:"interval" binding:"required,oneof=monthly quarterly yearly"`
	EndDate  *time.Time               `json:"end_date"`
	AutoSend bool                     `json:"auto_send"`
	Lines    []appbilling.LineRequest `json:"lines" binding:"required,min=1,max=100,dive"`
}

// GenerateRequest triggers invoice generation on demand
type GenerateRequest struct {
	AsOf *time.Time `json:"as_of"`
}

// SubscriptionListFilter represents the query parameters of the subscription list
type SubscriptionListFilter struct {
	Search   string     `form:"search"`
	Status   string     `form:"status" binding:"omitempty,oneof=active paused cancelled ended"`
	Interval string     `form:"interval" binding:"omitempty,oneof=monthly quarterly yearly"`
	ClientID *uuid.UUID `form:"client_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f SubscriptionListFilter) toDomain() shared.Filter {
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
	if f.Interval != "" {
		filter.Filters["interval"] = f.Interval
	}
	if f.ClientID != nil {
		filter.Filters["client_id"] = *f.ClientID
	}
	return filter.Normalize()
}

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	ID              uuid.UUID                 `json:"id"`
	ClientID        uuid.UUID                 `json:"client_id"`
	Name            string                    `json:"name"`
	Interval        string                    `json:"interval"`
	StartDate       time.Time                 `json:"start_date"`
	EndDate         *time.Time                `json:"end_date,omitempty"`
	NextBillingDate time.Time                 `json:"next_billing_date"`
	Status          string                    `json:"status"`
	AutoSend        bool                      `json:"auto_send"`
	Lines           []appbilling.LineResponse `json:"lines"`
	MonthlyAmount   decimal.Decimal           `json:"monthly_amount"`
	LastInvoiceID   *uuid.UUID                `json:"last_invoice_id,omitempty"`
	LastBilledAt    *time.Time                `json:"last_billed_at,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
	Version         int                       `json:"version"`
}

func ToSubscriptionResponse(s *subscription.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:              s.ID,
		ClientID:        s.ClientID,
		Name:            s.Name,
		Interval:        string(s.Interval),
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		NextBillingDate: s.NextBillingDate,
		Status:          string(s.Status),
		AutoSend:        s.AutoSend,
		Lines:           appbilling.ToLineResponses(s.Lines),
		MonthlyAmount:   s.MonthlyAmount(),
		LastInvoiceID:   s.LastInvoiceID,
		LastBilledAt:    s.LastBilledAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		Version:         s.Version,
	}
}

// GenerationResult summarizes one invoice generation run
type GenerationResult struct {
	Subscriptions int         `json:"subscriptions"`
	Invoices      int         `json:"invoices"`
	Sent          int         `json:"sent"`
	Skipped       int         `json:"skipped"`
	Failed        int         `json:"failed"`
	InvoiceIDs    []uuid.UUID `json:"invoice_ids"`
}
