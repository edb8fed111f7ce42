package settings

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
)

// UpdateSettingsRequest carries the editable company settings.
// Nil fields keep their current value.
type UpdateSettingsRequest struct {
	CompanyName       *string          `json:"company_name" binding:"omitempty,min=1,max=200"`
	Address           *string          `json:"address" binding:"omitempty,max=500"`
	Email             *string          `json:"email" binding:"omitempty,email,max=200"`
	Phone             *string          `json:"phone" binding:"omitempty,max=50"`
	TaxID             *string          `json:"tax_id" binding:"omitempty,max=50"`
	Currency          *string          `json:"currency" binding:"omitempty,len=3"`
	InvoicePrefix     *string          `json:"invoice_prefix" binding:"omitempty,min=1,max=10"`
	QuotePrefix       *string          `json:"quote_prefix" binding:"omitempty,min=1,max=10"`
	PaymentTermsDays  *int             `json:"payment_terms_days" binding:"omitempty,min=0,max=365"`
	DefaultVATRate    *decimal.Decimal `json:"default_vat_rate"`
	QuoteValidityDays *int             `json:"quote_validity_days" binding:"omitempty,min=1,max=365"`
	FooterNote        *string          `json:"footer_note" binding:"omitempty,max=2000"`
}

// SettingsResponse represents the company settings in API responses
type SettingsResponse struct {
	CompanyName       string          `json:"company_name"`
	Address           string          `json:"address"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	TaxID             string          `json:"tax_id"`
	Currency          string          `json:"currency"`
	InvoicePrefix     string          `json:"invoice_prefix"`
	QuotePrefix       string          `json:"quote_prefix"`
	PaymentTermsDays  int             `json:"payment_terms_days"`
	DefaultVATRate    decimal.Decimal `json:"default_vat_rate"`
	QuoteValidityDays int             `json:"quote_validity_days"`
	FooterNote        string          `json:"footer_note"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func ToSettingsResponse(s *settings.CompanySettings) SettingsResponse {
	return SettingsResponse{
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
