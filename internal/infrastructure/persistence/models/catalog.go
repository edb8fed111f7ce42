package models

import (
	"github.com/bizdesk/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductModel struct {
	TenantAggregateModel
	SKU           string          `gorm:"column:sku;type:varchar(50);not null"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	Category      string          `gorm:"type:varchar(100)"`
	Unit          string          `gorm:"type:varchar(20)"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	VATRate       decimal.Decimal `gorm:"column:vat_rate;type:numeric(5,2);not null"`
	VendorID      *uuid.UUID      `gorm:"type:uuid"`
	TrackStock    bool            `gorm:"not null"`
	Status        string          `gorm:"type:varchar(20);not null"`
}

func (ProductModel) TableName() string { return "products" }

func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Unit:          p.Unit,
		UnitPrice:     p.UnitPrice,
		PurchasePrice: p.PurchasePrice,
		VATRate:       p.VATRate,
		VendorID:      p.VendorID,
		TrackStock:    p.TrackStock,
		Status:        string(p.Status),
	}
	m.fromTenantAggregate(p.TenantAggregateRoot)
	return m
}

func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.toTenantAggregate(),
		SKU:                 m.SKU,
		Name:                m.Name,
		Description:         m.Description,
		Category:            m.Category,
		Unit:                m.Unit,
		UnitPrice:           m.UnitPrice,
		PurchasePrice:       m.PurchasePrice,
		VATRate:             m.VATRate,
		VendorID:            m.VendorID,
		TrackStock:          m.TrackStock,
		Status:              catalog.ProductStatus(m.Status),
	}
}
