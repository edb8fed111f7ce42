package models

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/cash"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CashRegisterModel struct {
	TenantAggregateModel
	Name           string          `gorm:"type:varchar(100);not null"`
	Location       string          `gorm:"type:varchar(200)"`
	Status         string          `gorm:"type:varchar(20);not null"`
	OpeningBalance decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	OpenedAt       *time.Time
	OpenedBy       *uuid.UUID `gorm:"type:uuid"`
	ClosedAt       *time.Time
}

func (CashRegisterModel) TableName() string { return "cash_registers" }

func CashRegisterModelFromDomain(r *cash.Register) *CashRegisterModel {
	m := &CashRegisterModel{
		Name:           r.Name,
		Location:       r.Location,
		Status:         string(r.Status),
		OpeningBalance: r.OpeningBalance,
		CurrentBalance: r.CurrentBalance,
		OpenedAt:       r.OpenedAt,
		OpenedBy:       r.OpenedBy,
		ClosedAt:       r.ClosedAt,
	}
	m.fromTenantAggregate(r.TenantAggregateRoot)
	return m
}

func (m *CashRegisterModel) ToDomain() *cash.Register {
	return &cash.Register{
		TenantAggregateRoot: m.toTenantAggregate(),
		Name:                m.Name,
		Location:            m.Location,
		Status:              cash.RegisterStatus(m.Status),
		OpeningBalance:      m.OpeningBalance,
		CurrentBalance:      m.CurrentBalance,
		OpenedAt:            m.OpenedAt,
		OpenedBy:            m.OpenedBy,
		ClosedAt:            m.ClosedAt,
	}
}

type CashMovementModel struct {
	BaseModel
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	RegisterID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type         string          `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Method       string          `gorm:"type:varchar(20);not null"`
	Reference    string          `gorm:"type:varchar(100)"`
	InvoiceID    *uuid.UUID      `gorm:"type:uuid"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid"`
}

func (CashMovementModel) TableName() string { return "cash_movements" }

func CashMovementModelFromDomain(mv *cash.Movement) *CashMovementModel {
	m := &CashMovementModel{
		TenantID:     mv.TenantID,
		RegisterID:   mv.RegisterID,
		Type:         string(mv.Type),
		Amount:       mv.Amount,
		Method:       string(mv.Method),
		Reference:    mv.Reference,
		InvoiceID:    mv.InvoiceID,
		BalanceAfter: mv.BalanceAfter,
		CreatedBy:    mv.CreatedBy,
	}
	m.fromEntity(mv.BaseEntity)
	return m
}

func (m *CashMovementModel) ToDomain() *cash.Movement {
	return &cash.Movement{
		BaseEntity:   m.toEntity(),
		TenantID:     m.TenantID,
		RegisterID:   m.RegisterID,
		Type:         cash.MovementType(m.Type),
		Amount:       m.Amount,
		Method:       cash.PaymentMethod(m.Method),
		Reference:    m.Reference,
		InvoiceID:    m.InvoiceID,
		BalanceAfter: m.BalanceAfter,
		CreatedBy:    m.CreatedBy,
	}
}

type CashClosingModel struct {
	BaseModel
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	RegisterID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	OpenedAt       time.Time       `gorm:"not null"`
	ClosedAt       time.Time       `gorm:"not null"`
	OpeningBalance decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Expected       decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Counted        decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Difference     decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	ClosedBy       *uuid.UUID      `gorm:"type:uuid"`
	Notes          string          `gorm:"type:text"`
}

func (CashClosingModel) TableName() string { return "cash_closings" }

func CashClosingModelFromDomain(c *cash.Closing) *CashClosingModel {
	m := &CashClosingModel{
		TenantID:       c.TenantID,
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
	m.fromEntity(c.BaseEntity)
	return m
}

func (m *CashClosingModel) ToDomain() *cash.Closing {
	return &cash.Closing{
		BaseEntity:     m.toEntity(),
		TenantID:       m.TenantID,
		RegisterID:     m.RegisterID,
		OpenedAt:       m.OpenedAt,
		ClosedAt:       m.ClosedAt,
		OpeningBalance: m.OpeningBalance,
		Expected:       m.Expected,
		Counted:        m.Counted,
		Difference:     m.Difference,
		ClosedBy:       m.ClosedBy,
		Notes:          m.Notes,
	}
}
