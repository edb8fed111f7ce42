package models

import (
	"github.com/bizdesk/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StockLevelModel struct {
	TenantAggregateModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric(15,3);not null"`
	MinQuantity decimal.Decimal `gorm:"type:numeric(15,3);not null"`
}

func (StockLevelModel) TableName() string { return "stock_levels" }

func StockLevelModelFromDomain(l *inventory.StockLevel) *StockLevelModel {
	m := &StockLevelModel{ProductID: l.ProductID, Quantity: l.Quantity, MinQuantity: l.MinQuantity}
	m.fromTenantAggregate(l.TenantAggregateRoot)
	return m
}

func (m *StockLevelModel) ToDomain() *inventory.StockLevel {
	return &inventory.StockLevel{
		TenantAggregateRoot: m.toTenantAggregate(),
		ProductID:           m.ProductID,
		Quantity:            m.Quantity,
		MinQuantity:         m.MinQuantity,
	}
}

type StockMovementModel struct {
	BaseModel
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	Type           string          `gorm:"type:varchar(20);not null"`
	Quantity       decimal.Decimal `gorm:"type:numeric(15,3);not null"`
	QuantityBefore decimal.Decimal `gorm:"type:numeric(15,3);not null"`
	QuantityAfter  decimal.Decimal `gorm:"type:numeric(15,3);not null"`
	Reason         string          `gorm:"type:varchar(255)"`
	ReferenceType  string          `gorm:"type:varchar(50)"`
	ReferenceID    *uuid.UUID      `gorm:"type:uuid"`
	CreatedBy      *uuid.UUID      `gorm:"type:uuid"`
}

func (StockMovementModel) TableName() string { return "stock_movements" }

func StockMovementModelFromDomain(mv *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{
		TenantID:       mv.TenantID,
		ProductID:      mv.ProductID,
		Type:           string(mv.Type),
		Quantity:       mv.Quantity,
		QuantityBefore: mv.QuantityBefore,
		QuantityAfter:  mv.QuantityAfter,
		Reason:         mv.Reason,
		ReferenceType:  mv.ReferenceType,
		ReferenceID:    mv.ReferenceID,
		CreatedBy:      mv.CreatedBy,
	}
	m.fromEntity(mv.BaseEntity)
	return m
}

func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		BaseEntity:     m.toEntity(),
		TenantID:       m.TenantID,
		ProductID:      m.ProductID,
		Type:           inventory.MovementType(m.Type),
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		CreatedBy:      m.CreatedBy,
	}
}
