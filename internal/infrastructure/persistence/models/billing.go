package models

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DocumentColumns are shared by invoices and quotes. Lines and the VAT
// breakdown are stored as JSON and re-derived on load.
type DocumentColumns struct {
	Number       string                                    `gorm:"type:varchar(50);not null"`
	ClientID     uuid.UUID                                 `gorm:"type:uuid;not null;index"`
	IssueDate    time.Time                                 `gorm:"type:date;not null"`
	Currency     string                                    `gorm:"type:char(3);not null"`
	Notes        string                                    `gorm:"type:text"`
	Lines        datatypes.JSONSlice[billing.Line]         `gorm:"type:jsonb;not null"`
	Subtotal     decimal.Decimal                           `gorm:"type:numeric(15,2);not null"`
	VATTotal     decimal.Decimal                           `gorm:"column:vat_total;type:numeric(15,2);not null"`
	Total        decimal.Decimal                           `gorm:"type:numeric(15,2);not null"`
	VATBreakdown datatypes.JSONSlice[billing.VATBreakdown] `gorm:"column:vat_breakdown;type:jsonb"`
}

func documentColumns(d billing.Document) DocumentColumns {
	return DocumentColumns{
		Number:       d.Number,
		ClientID:     d.ClientID,
		IssueDate:    d.IssueDate,
		Currency:     d.Currency,
		Notes:        d.Notes,
		Lines:        datatypes.NewJSONSlice(d.Lines),
		Subtotal:     d.Totals.Subtotal,
		VATTotal:     d.Totals.VATTotal,
		Total:        d.Totals.Total,
		VATBreakdown: datatypes.NewJSONSlice(d.Totals.Breakdown),
	}
}

func (c DocumentColumns) toDomain() billing.Document {
	lines := billing.RecomputeLines(c.Lines)
	return billing.Document{
		Number:    c.Number,
		ClientID:  c.ClientID,
		IssueDate: c.IssueDate,
		Currency:  c.Currency,
		Notes:     c.Notes,
		Lines:     lines,
		Totals:    billing.ComputeTotals(lines),
	}
}

type InvoiceModel struct {
	TenantAggregateModel
	DocumentColumns
	DueDate        time.Time       `gorm:"type:date;not null"`
	Status         string          `gorm:"type:varchar(20);not null;index"`
	AmountPaid     decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	QuoteID        *uuid.UUID      `gorm:"type:uuid"`
	SubscriptionID *uuid.UUID      `gorm:"type:uuid"`
	MarketID       *uuid.UUID      `gorm:"type:uuid"`
	SentAt         *time.Time
	PaidAt         *time.Time
	CancelledAt    *time.Time
	Payments       []InvoicePaymentModel `gorm:"foreignKey:InvoiceID"`
}

func (InvoiceModel) TableName() string { return "invoices" }

func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		DocumentColumns: documentColumns(inv.Document),
		DueDate:         inv.DueDate,
		Status:          string(inv.Status),
		AmountPaid:      inv.AmountPaid,
		QuoteID:         inv.QuoteID,
		SubscriptionID:  inv.SubscriptionID,
		MarketID:        inv.MarketID,
		SentAt:          inv.SentAt,
		PaidAt:          inv.PaidAt,
		CancelledAt:     inv.CancelledAt,
	}
	m.fromTenantAggregate(inv.TenantAggregateRoot)
	for _, p := range inv.Payments {
		m.Payments = append(m.Payments, InvoicePaymentModel{
			ID:             p.ID,
			TenantID:       inv.TenantID,
			InvoiceID:      inv.ID,
			Amount:         p.Amount,
			Method:         string(p.Method),
			Reference:      p.Reference,
			CashRegisterID: p.CashRegisterID,
			PaidAt:         p.PaidAt,
		})
	}
	return m
}

func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		TenantAggregateRoot: m.toTenantAggregate(),
		Document:            m.DocumentColumns.toDomain(),
		DueDate:             m.DueDate,
		Status:              billing.InvoiceStatus(m.Status),
		AmountPaid:          m.AmountPaid,
		QuoteID:             m.QuoteID,
		SubscriptionID:      m.SubscriptionID,
		MarketID:            m.MarketID,
		SentAt:              m.SentAt,
		PaidAt:              m.PaidAt,
		CancelledAt:         m.CancelledAt,
	}
	for _, p := range m.Payments {
		inv.Payments = append(inv.Payments, billing.Payment{
			ID:             p.ID,
			Amount:         p.Amount,
			Method:         billing.PaymentMethod(p.Method),
			Reference:      p.Reference,
			CashRegisterID: p.CashRegisterID,
			PaidAt:         p.PaidAt,
		})
	}
	return inv
}

// InvoicePaymentModel rows are append-only
type InvoicePaymentModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Method         string          `gorm:"type:varchar(20);not null"`
	Reference      string          `gorm:"type:varchar(100)"`
	CashRegisterID *uuid.UUID      `gorm:"type:uuid"`
	PaidAt         time.Time       `gorm:"not null"`
}

func (InvoicePaymentModel) TableName() string { return "invoice_payments" }

type QuoteModel struct {
	TenantAggregateModel
	DocumentColumns
	ValidUntil         time.Time `gorm:"type:date;not null"`
	Status             string    `gorm:"type:varchar(20);not null;index"`
	SentAt             *time.Time
	DecidedAt          *time.Time
	ConvertedInvoiceID *uuid.UUID `gorm:"type:uuid"`
}

func (QuoteModel) TableName() string { return "quotes" }

func QuoteModelFromDomain(q *billing.Quote) *QuoteModel {
	m := &QuoteModel{
		DocumentColumns:    documentColumns(q.Document),
		ValidUntil:         q.ValidUntil,
		Status:             string(q.Status),
		SentAt:             q.SentAt,
		DecidedAt:          q.DecidedAt,
		ConvertedInvoiceID: q.ConvertedInvoiceID,
	}
	m.fromTenantAggregate(q.TenantAggregateRoot)
	return m
}

func (m *QuoteModel) ToDomain() *billing.Quote {
	return &billing.Quote{
		TenantAggregateRoot: m.toTenantAggregate(),
		Document:            m.DocumentColumns.toDomain(),
		ValidUntil:          m.ValidUntil,
		Status:              billing.QuoteStatus(m.Status),
		SentAt:              m.SentAt,
		DecidedAt:           m.DecidedAt,
		ConvertedInvoiceID:  m.ConvertedInvoiceID,
	}
}

type ReminderModel struct {
	TenantAggregateModel
	InvoiceID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ClientID     uuid.UUID `gorm:"type:uuid;not null"`
	Level        int       `gorm:"not null"`
	Status       string    `gorm:"type:varchar(20);not null"`
	Channel      string    `gorm:"type:varchar(20);not null"`
	Message      string    `gorm:"type:text"`
	ScheduledFor time.Time `gorm:"not null"`
	SentAt       *time.Time
	Attempts     int    `gorm:"not null"`
	LastError    string `gorm:"type:text"`
}

func (ReminderModel) TableName() string { return "payment_reminders" }

func ReminderModelFromDomain(r *billing.Reminder) *ReminderModel {
	m := &ReminderModel{
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
	}
	m.fromTenantAggregate(r.TenantAggregateRoot)
	return m
}

func (m *ReminderModel) ToDomain() *billing.Reminder {
	return &billing.Reminder{
		TenantAggregateRoot: m.toTenantAggregate(),
		InvoiceID:           m.InvoiceID,
		ClientID:            m.ClientID,
		Level:               m.Level,
		Status:              billing.ReminderStatus(m.Status),
		Channel:             m.Channel,
		Message:             m.Message,
		ScheduledFor:        m.ScheduledFor,
		SentAt:              m.SentAt,
		Attempts:            m.Attempts,
		LastError:           m.LastError,
	}
}

// DocumentSequenceModel holds the last number handed out per tenant,
// document type and year
type DocumentSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocType   string    `gorm:"type:varchar(20);primaryKey"`
	Year      int       `gorm:"primaryKey"`
	LastValue int       `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (DocumentSequenceModel) TableName() string { return "document_sequences" }
