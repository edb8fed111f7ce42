package billing

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineRequest is one document line. When ProductID is set, missing
// description, price and VAT rate are taken from the product.
type LineRequest struct {
	ProductID       *uuid.UUID       `json:"product_id"`
	Description     string           `json:"description" binding:"max=500"`
	Quantity        decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	VATRate         *decimal.Decimal `json:"vat_rate"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
}

// CreateInvoiceRequest represents a request to create a draft invoice
type CreateInvoiceRequest struct {
	ClientID  uuid.UUID     `json:"client_id" binding:"required"`
	IssueDate *time.Time    `json:"issue_date"`
	DueDate   *time.Time    `json:"due_date"`
	Currency  string        `json:"currency" binding:"omitempty,len=3"`
	Notes     string        `json:"notes" binding:"max=2000"`
	MarketID  *uuid.UUID    `json:"market_id"`
	Lines     []LineRequest `json:"lines" binding:"max=200,dive"`
}

// UpdateInvoiceRequest represents a request to update a draft invoice
type UpdateInvoiceRequest struct {
	IssueDate *time.Time    `json:"issue_date"`
	DueDate   *time.Time    `json:"due_date"`
	Notes     *string       `json:"notes" binding:"omitempty,max=2000"`
	Lines     []LineRequest `json:"lines" binding:"omitempty,max=200,dive"`
}

// SendRequest controls delivery when a document is sent
type SendRequest struct {
	Notify bool `json:"notify"`
}

// RecordPaymentRequest represents a payment received for an invoice
type RecordPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Method         string          `json:"method" binding:"required,oneof=cash card transfer check"`
	Reference      string          `json:"reference" binding:"max=100"`
	CashRegisterID *uuid.UUID      `json:"cash_register_id"`
	PaidAt         *time.Time      `json:"paid_at"`
}

// DocumentFilter represents the query parameters of the invoice and quote lists
type DocumentFilter struct {
	Search         string     `form:"search"`
	Status         string     `form:"status"`
	ClientID       *uuid.UUID `form:"client_id"`
	MarketID       *uuid.UUID `form:"market_id"`
	SubscriptionID *uuid.UUID `form:"subscription_id"`
	DateFrom       *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo         *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page           int        `form:"page" binding:"omitempty,min=1"`
	PageSize       int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string     `form:"order_by"`
	OrderDir       string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f DocumentFilter) toDomain() shared.Filter {
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
	if f.MarketID != nil {
		filter.Filters["market_id"] = *f.MarketID
	}
	if f.SubscriptionID != nil {
		filter.Filters["subscription_id"] = *f.SubscriptionID
	}
	if f.DateFrom != nil {
		filter.Filters["date_from"] = *f.DateFrom
	}
	if f.DateTo != nil {
		filter.Filters["date_to"] = *f.DateTo
	}
	return filter.Normalize()
}

type LineResponse struct {
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	VATRate         decimal.Decimal `json:"vat_rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

type VATLineResponse struct {
	Rate decimal.Decimal `json:"rate"`
	Base decimal.Decimal `json:"base"`
	VAT  decimal.Decimal `json:"vat"`
}

type TotalsResponse struct {
	Subtotal  decimal.Decimal   `json:"subtotal"`
	VATTotal  decimal.Decimal   `json:"vat_total"`
	Total     decimal.Decimal   `json:"total"`
	Breakdown []VATLineResponse `json:"breakdown"`
}

func ToLineResponses(lines []billing.Line) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i, l := range lines {
		out[i] = LineResponse{
			ProductID:       l.ProductID,
			Description:     l.Description,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			VATRate:         l.VATRate,
			DiscountPercent: l.DiscountPercent,
			NetAmount:       l.NetAmount,
			VATAmount:       l.VATAmount,
			TotalAmount:     l.TotalAmount,
		}
	}
	return out
}

func toTotalsResponse(t billing.Totals) TotalsResponse {
	breakdown := make([]VATLineResponse, len(t.Breakdown))
	for i, b := range t.Breakdown {
		breakdown[i] = VATLineResponse(b)
	}
	return TotalsResponse{Subtotal: t.Subtotal, VATTotal: t.VATTotal, Total: t.Total, Breakdown: breakdown}
}

type PaymentResponse struct {
	ID             uuid.UUID       `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	Reference      string          `json:"reference"`
	CashRegisterID *uuid.UUID      `json:"cash_register_id,omitempty"`
	PaidAt         time.Time       `json:"paid_at"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID         `json:"id"`
	Number         string            `json:"number"`
	ClientID       uuid.UUID         `json:"client_id"`
	QuoteID        *uuid.UUID        `json:"quote_id,omitempty"`
	SubscriptionID *uuid.UUID        `json:"subscription_id,omitempty"`
	MarketID       *uuid.UUID        `json:"market_id,omitempty"`
	IssueDate      time.Time         `json:"issue_date"`
	DueDate        time.Time         `json:"due_date"`
	Status         string            `json:"status"`
	Currency       string            `json:"currency"`
	Notes          string            `json:"notes"`
	Lines          []LineResponse    `json:"lines"`
	Totals         TotalsResponse    `json:"totals"`
	AmountPaid     decimal.Decimal   `json:"amount_paid"`
	Balance        decimal.Decimal   `json:"balance"`
	Payments       []PaymentResponse `json:"payments"`
	SentAt         *time.Time        `json:"sent_at,omitempty"`
	PaidAt         *time.Time        `json:"paid_at,omitempty"`
	CancelledAt    *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Version        int               `json:"version"`
}

func ToInvoiceResponse(i *billing.Invoice) InvoiceResponse {
	payments := make([]PaymentResponse, len(i.Payments))
	for k, p := range i.Payments {
		payments[k] = PaymentResponse{
			ID:             p.ID,
			Amount:         p.Amount,
			Method:         string(p.Method),
			Reference:      p.Reference,
			CashRegisterID: p.CashRegisterID,
			PaidAt:         p.PaidAt,
		}
	}
	return InvoiceResponse{
		ID:             i.ID,
		Number:         i.Number,
		ClientID:       i.ClientID,
		QuoteID:        i.QuoteID,
		SubscriptionID: i.SubscriptionID,
		MarketID:       i.MarketID,
		IssueDate:      i.IssueDate,
		DueDate:        i.DueDate,
		Status:         string(i.Status),
		Currency:       i.Currency,
		Notes:          i.Notes,
		Lines:          ToLineResponses(i.Lines),
		Totals:         toTotalsResponse(i.Totals),
		AmountPaid:     i.AmountPaid,
		Balance:        i.Balance(),
		Payments:       payments,
		SentAt:         i.SentAt,
		PaidAt:         i.PaidAt,
		CancelledAt:    i.CancelledAt,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
		Version:        i.Version,
	}
}

// CreateQuoteRequest represents a request to create a draft quote
type CreateQuoteRequest struct {
	ClientID   uuid.UUID     `json:"client_id" binding:"required"`
	IssueDate  *time.Time    `json:"issue_date"`
	ValidUntil *time.Time    `json:"valid_until"`
	Currency   string        `json:"currency" binding:"omitempty,len=3"`
	Notes      string        `json:"notes" binding:"max=2000"`
	Lines      []LineRequest `json:"lines" binding:"max=200,dive"`
}

// UpdateQuoteRequest represents a request to update a draft or sent quote
type UpdateQuoteRequest struct {
	IssueDate  *time.Time    `json:"issue_date"`
	ValidUntil *time.Time    `json:"valid_until"`
	Notes      *string       `json:"notes" binding:"omitempty,max=2000"`
	Lines      []LineRequest `json:"lines" binding:"omitempty,max=200,dive"`
}

// QuoteResponse represents a quote in API responses
type QuoteResponse struct {
	ID                 uuid.UUID      `json:"id"`
	Number             string         `json:"number"`
	ClientID           uuid.UUID      `json:"client_id"`
	IssueDate          time.Time      `json:"issue_date"`
	ValidUntil         time.Time      `json:"valid_until"`
	Status             string         `json:"status"`
	Currency           string         `json:"currency"`
	Notes              string         `json:"notes"`
	Lines              []LineResponse `json:"lines"`
	Totals             TotalsResponse `json:"totals"`
	SentAt             *time.Time     `json:"sent_at,omitempty"`
	DecidedAt          *time.Time     `json:"decided_at,omitempty"`
	ConvertedInvoiceID *uuid.UUID     `json:"converted_invoice_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Version            int            `json:"version"`
}

func ToQuoteResponse(q *billing.Quote) QuoteResponse {
	return QuoteResponse{
		ID:                 q.ID,
		Number:             q.Number,
		ClientID:           q.ClientID,
		IssueDate:          q.IssueDate,
		ValidUntil:         q.ValidUntil,
		Status:             string(q.Status),
		Currency:           q.Currency,
		Notes:              q.Notes,
		Lines:              ToLineResponses(q.Lines),
		Totals:             toTotalsResponse(q.Totals),
		SentAt:             q.SentAt,
		DecidedAt:          q.DecidedAt,
		ConvertedInvoiceID: q.ConvertedInvoiceID,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
		Version:            q.Version,
	}
}

// CreateReminderRequest creates a manual reminder. Level defaults to the next one.
type CreateReminderRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id" binding:"required"`
	Level     int       `json:"level" binding:"omitempty,min=1,max=3"`
	Message   string    `json:"message" binding:"max=2000"`
	SendNow   bool      `json:"send_now"`
}

// ReminderFilter represents the query parameters of the reminder list
type ReminderFilter struct {
	Status    string     `form:"status" binding:"omitempty,oneof=pending sent failed"`
	InvoiceID *uuid.UUID `form:"invoice_id"`
	Level     int        `form:"level" binding:"omitempty,min=1,max=3"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f ReminderFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "scheduled_for",
		OrderDir: f.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.InvoiceID != nil {
		filter.Filters["invoice_id"] = *f.InvoiceID
	}
	if f.Level > 0 {
		filter.Filters["level"] = f.Level
	}
	return filter.Normalize()
}

// ReminderResponse represents a reminder in API responses
type ReminderResponse struct {
	ID           uuid.UUID  `json:"id"`
	InvoiceID    uuid.UUID  `json:"invoice_id"`
	ClientID     uuid.UUID  `json:"client_id"`
	Level        int        `json:"level"`
	Status       string     `json:"status"`
	Channel      string     `json:"channel"`
	Message      string     `json:"message"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	Attempts     int        `json:"attempts"`
	LastError    string     `json:"last_error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ToReminderResponse(r *billing.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:           r.ID,
		InvoiceID:    r.InvoiceID,
		ClientID:     r.ClientID,
		Level:        r.Level,
		Status:       string(r.Status),
		Channel:      r.Channel,
		Message:      r.Message,
		ScheduledFor: r.ScheduledFor,
		SentAt:       r.SentAt,
		Attempts:     r.Attempts,
		LastError:    r.LastError,
		CreatedAt:    r.CreatedAt,
	}
}

// SweepResult summarises a scheduled pass over one tenant
type SweepResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}
