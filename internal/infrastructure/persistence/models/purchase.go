package models

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/purchase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseModel struct {
	TenantAggregateModel
	VendorID      *uuid.UUID      `gorm:"type:uuid"`
	Category      string          `gorm:"type:varchar(100)"`
	Description   string          `gorm:"type:varchar(500);not null"`
	Date          time.Time       `gorm:"column:expense_date;type:date;not null;index"`
	NetAmount     decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	VATRate       decimal.Decimal `gorm:"column:vat_rate;type:numeric(5,2);not null"`
	VATAmount     decimal.Decimal `gorm:"column:vat_amount;type:numeric(15,2);not null"`
	Total         decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20)"`
	Reference     string          `gorm:"type:varchar(100)"`
}

func (ExpenseModel) TableName() string { return "expenses" }

func ExpenseModelFromDomain(e *purchase.Expense) *ExpenseModel {
	m := &ExpenseModel{
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
	}
	m.fromTenantAggregate(e.TenantAggregateRoot)
	return m
}

func (m *ExpenseModel) ToDomain() *purchase.Expense {
	return &purchase.Expense{
		TenantAggregateRoot: m.toTenantAggregate(),
		VendorID:            m.VendorID,
		Category:            m.Category,
		Description:         m.Description,
		Date:                m.Date,
		NetAmount:           m.NetAmount,
		VATRate:             m.VATRate,
		VATAmount:           m.VATAmount,
		Total:               m.Total,
		PaymentMethod:       m.PaymentMethod,
		Reference:           m.Reference,
	}
}
