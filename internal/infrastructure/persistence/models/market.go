package models

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/market"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MarketModel struct {
	TenantAggregateModel
	Reference      string          `gorm:"type:varchar(50);not null"`
	Title          string          `gorm:"type:varchar(200);not null"`
	ClientID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description    string          `gorm:"type:text"`
	StartDate      time.Time       `gorm:"type:date;not null"`
	EndDate        time.Time       `gorm:"type:date;not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	InvoicedAmount decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Status         string          `gorm:"type:varchar(20);not null"`
}

func (MarketModel) TableName() string { return "markets" }

func MarketModelFromDomain(mk *market.Market) *MarketModel {
	m := &MarketModel{
		Reference:      mk.Reference,
		Title:          mk.Title,
		ClientID:       mk.ClientID,
		Description:    mk.Description,
		StartDate:      mk.StartDate,
		EndDate:        mk.EndDate,
		Amount:         mk.Amount,
		InvoicedAmount: mk.InvoicedAmount,
		Status:         string(mk.Status),
	}
	m.fromTenantAggregate(mk.TenantAggregateRoot)
	return m
}

func (m *MarketModel) ToDomain() *market.Market {
	return &market.Market{
		TenantAggregateRoot: m.toTenantAggregate(),
		Reference:           m.Reference,
		Title:               m.Title,
		ClientID:            m.ClientID,
		Description:         m.Description,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		Amount:              m.Amount,
		InvoicedAmount:      m.InvoicedAmount,
		Status:              market.Status(m.Status),
	}
}
