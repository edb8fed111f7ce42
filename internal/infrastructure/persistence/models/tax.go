package models

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TaxDeclarationModel struct {
	TenantAggregateModel
	Frequency     string                            `gorm:"type:varchar(20);not null"`
	PeriodStart   time.Time                         `gorm:"type:date;not null"`
	PeriodEnd     time.Time                         `gorm:"type:date;not null"`
	Status        string                            `gorm:"type:varchar(20);not null"`
	CollectedVAT  decimal.Decimal                   `gorm:"column:collected_vat;type:numeric(15,2);not null"`
	DeductibleVAT decimal.Decimal                   `gorm:"column:deductible_vat;type:numeric(15,2);not null"`
	TaxableBase   decimal.Decimal                   `gorm:"type:numeric(15,2);not null"`
	NetVATDue     decimal.Decimal                   `gorm:"column:net_vat_due;type:numeric(15,2);not null"`
	CreditCarried decimal.Decimal                   `gorm:"type:numeric(15,2);not null"`
	EffectiveRate decimal.Decimal                   `gorm:"type:numeric(7,2);not null"`
	Breakdown     datatypes.JSONSlice[tax.RateLine] `gorm:"type:jsonb"`
	InvoiceCount  int                               `gorm:"not null"`
	ExpenseCount  int                               `gorm:"not null"`
	GeneratedAt   time.Time                         `gorm:"not null"`
	SubmittedAt   *time.Time
}

func (TaxDeclarationModel) TableName() string { return "tax_declarations" }

func TaxDeclarationModelFromDomain(d *tax.Declaration) *TaxDeclarationModel {
	m := &TaxDeclarationModel{
		Frequency:     string(d.Period.Frequency),
		PeriodStart:   d.Period.Start,
		PeriodEnd:     d.Period.End,
		Status:        string(d.Status),
		CollectedVAT:  d.CollectedVAT,
		DeductibleVAT: d.DeductibleVAT,
		TaxableBase:   d.TaxableBase,
		NetVATDue:     d.NetVATDue,
		CreditCarried: d.CreditCarried,
		EffectiveRate: d.EffectiveRate,
		Breakdown:     datatypes.NewJSONSlice(d.Breakdown),
		InvoiceCount:  d.InvoiceCount,
		ExpenseCount:  d.ExpenseCount,
		GeneratedAt:   d.GeneratedAt,
		SubmittedAt:   d.SubmittedAt,
	}
	m.fromTenantAggregate(d.TenantAggregateRoot)
	return m
}

func (m *TaxDeclarationModel) ToDomain() *tax.Declaration {
	return &tax.Declaration{
		TenantAggregateRoot: m.toTenantAggregate(),
		Period: tax.Period{
			Frequency: tax.Frequency(m.Frequency),
			Start:     m.PeriodStart,
			End:       m.PeriodEnd,
		},
		Status:        tax.Status(m.Status),
		CollectedVAT:  m.CollectedVAT,
		DeductibleVAT: m.DeductibleVAT,
		TaxableBase:   m.TaxableBase,
		NetVATDue:     m.NetVATDue,
		CreditCarried: m.CreditCarried,
		EffectiveRate: m.EffectiveRate,
		Breakdown:     m.Breakdown,
		InvoiceCount:  m.InvoiceCount,
		ExpenseCount:  m.ExpenseCount,
		GeneratedAt:   m.GeneratedAt,
		SubmittedAt:   m.SubmittedAt,
	}
}
