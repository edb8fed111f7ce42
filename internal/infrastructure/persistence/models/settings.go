package models

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CompanySettingsModel struct {
	TenantID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyName       string          `gorm:"type:varchar(200)"`
	Address           string          `gorm:"type:text"`
	Email             string          `gorm:"type:varchar(200)"`
	Phone             string          `gorm:"type:varchar(50)"`
	TaxID             string          `gorm:"type:varchar(50)"`
	Currency          string          `gorm:"type:char(3);not null"`
	InvoicePrefix     string          `gorm:"type:varchar(10);not null"`
	QuotePrefix       string          `gorm:"type:varchar(10);not null"`
	PaymentTermsDays  int             `gorm:"not null"`
	DefaultVATRate    decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	QuoteValidityDays int             `gorm:"not null"`
	FooterNote        string          `gorm:"type:text"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

func (CompanySettingsModel) TableName() string { return "company_settings" }

func CompanySettingsModelFromDomain(s *settings.CompanySettings) *CompanySettingsModel {
	return &CompanySettingsModel{
		TenantID:          s.TenantID,
		CompanyName:       s.CompanyName,
		Address:           s.Address,
		Email:             s.Email,
		Phone:             s.Phone,
		TaxID:             s.TaxID,
		Currency:          s.Currency,
		InvoicePrefix:     s.InvoicePrefix,
		QuotePrefix:       s.QuotePrefix,
		PaymentTermsDays:  s.PaymentTermsDays,
		DefaultVATRate:    s.DefaultVATRate,
		QuoteValidityDays: s.QuoteValidityDays,
		FooterNote:        s.FooterNote,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (m *CompanySettingsModel) ToDomain() *settings.CompanySettings {
	return &settings.CompanySettings{
		TenantID:          m.TenantID,
		CompanyName:       m.CompanyName,
		Address:           m.Address,
		Email:             m.Email,
		Phone:             m.Phone,
		TaxID:             m.TaxID,
		Currency:          m.Currency,
		InvoicePrefix:     m.InvoicePrefix,
		QuotePrefix:       m.QuotePrefix,
		PaymentTermsDays:  m.PaymentTermsDays,
		DefaultVATRate:    m.DefaultVATRate,
		QuoteValidityDays: m.QuoteValidityDays,
		FooterNote:        m.FooterNote,
		UpdatedAt:         m.UpdatedAt,
	}
}
