package models

import (
	"github.com/bizdesk/backend/internal/domain/partner"
)

// ContactColumns is embedded in client and vendor rows
type ContactColumns struct {
	Email      string `gorm:"type:varchar(200)"`
	Phone      string `gorm:"type:varchar(50)"`
	Address    string `gorm:"type:text"`
	City       string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
	Country    string `gorm:"type:varchar(2)"`
}

func contactColumns(c partner.ContactInfo) ContactColumns {
	return ContactColumns{Email: c.Email, Phone: c.Phone, Address: c.Address, City: c.City, PostalCode: c.PostalCode, Country: c.Country}
}

func (c ContactColumns) toDomain() partner.ContactInfo {
	return partner.ContactInfo{Email: c.Email, Phone: c.Phone, Address: c.Address, City: c.City, PostalCode: c.PostalCode, Country: c.Country}
}

type ClientModel struct {
	TenantAggregateModel
	Code string `gorm:"type:varchar(50);not null"`
	Name string `gorm:"type:varchar(200);not null"`
	Type string `gorm:"type:varchar(20);not null"`
	ContactColumns
	TaxID  string `gorm:"type:varchar(50)"`
	Notes  string `gorm:"type:text"`
	Status string `gorm:"type:varchar(20);not null"`
}

func (ClientModel) TableName() string { return "clients" }

func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{
		Code:           c.Code,
		Name:           c.Name,
		Type:           string(c.Type),
		ContactColumns: contactColumns(c.Contact),
		TaxID:          c.TaxID,
		Notes:          c.Notes,
		Status:         string(c.Status),
	}
	m.fromTenantAggregate(c.TenantAggregateRoot)
	return m
}

func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		TenantAggregateRoot: m.toTenantAggregate(),
		Code:                m.Code,
		Name:                m.Name,
		Type:                partner.ClientType(m.Type),
		Contact:             m.ContactColumns.toDomain(),
		TaxID:               m.TaxID,
		Notes:               m.Notes,
		Status:              partner.Status(m.Status),
	}
}

type VendorModel struct {
	TenantAggregateModel
	Code        string `gorm:"type:varchar(50);not null"`
	Name        string `gorm:"type:varchar(200);not null"`
	ContactName string `gorm:"type:varchar(100)"`
	ContactColumns
	TaxID            string `gorm:"type:varchar(50)"`
	PaymentTermsDays int    `gorm:"not null"`
	Notes            string `gorm:"type:text"`
	Status           string `gorm:"type:varchar(20);not null"`
}

func (VendorModel) TableName() string { return "vendors" }

func VendorModelFromDomain(v *partner.Vendor) *VendorModel {
	m := &VendorModel{
		Code:             v.Code,
		Name:             v.Name,
		ContactName:      v.ContactName,
		ContactColumns:   contactColumns(v.Contact),
		TaxID:            v.TaxID,
		PaymentTermsDays: v.PaymentTermsDays,
		Notes:            v.Notes,
		Status:           string(v.Status),
	}
	m.fromTenantAggregate(v.TenantAggregateRoot)
	return m
}

func (m *VendorModel) ToDomain() *partner.Vendor {
	return &partner.Vendor{
		TenantAggregateRoot: m.toTenantAggregate(),
		Code:                m.Code,
		Name:                m.Name,
		ContactName:         m.ContactName,
		Contact:             m.ContactColumns.toDomain(),
		TaxID:               m.TaxID,
		PaymentTermsDays:    m.PaymentTermsDays,
		Notes:               m.Notes,
		Status:              partner.Status(m.Status),
	}
}
