// Package settings holds the per-company configuration used when numbering
// and rendering documents.
package settings

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	prefixRegex   = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)
)

// CompanySettings is keyed by tenant; there is exactly one row per tenant.
type CompanySettings struct {
	TenantID          uuid.UUID
	CompanyName       string
	Address           string
	Email             string
	Phone             string
	TaxID             string
	Currency          string
	InvoicePrefix     string
	QuotePrefix       string
	PaymentTermsDays  int
	DefaultVATRate    decimal.Decimal
	QuoteValidityDays int
	FooterNote        string
	UpdatedAt         time.Time
}

// Defaults returns the settings a new tenant starts with
func Defaults(tenantID uuid.UUID, companyName string) *CompanySettings {
	return &CompanySettings{
		TenantID:          tenantID,
		CompanyName:       companyName,
		Currency:          "EUR",
		InvoicePrefix:     "INV",
		QuotePrefix:       "QUO",
		PaymentTermsDays:  30,
		DefaultVATRate:    decimal.NewFromInt(20),
		QuoteValidityDays: 30,
		UpdatedAt:         time.Now(),
	}
}

// Validate normalizes and checks the settings
func (s *CompanySettings) Validate() error {
	s.CompanyName = strings.TrimSpace(s.CompanyName)
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	s.InvoicePrefix = strings.ToUpper(strings.TrimSpace(s.InvoicePrefix))
	s.QuotePrefix = strings.ToUpper(strings.TrimSpace(s.QuotePrefix))

	if s.CompanyName == "" {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if !currencyRegex.MatchString(s.Currency) {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be an ISO 4217 code")
	}
	if !prefixRegex.MatchString(s.InvoicePrefix) || !prefixRegex.MatchString(s.QuotePrefix) {
		return shared.NewDomainError("INVALID_PREFIX", "Document prefixes must be 1-10 uppercase letters or digits")
	}
	if s.InvoicePrefix == s.QuotePrefix {
		return shared.NewDomainError("INVALID_PREFIX", "Invoice and quote prefixes must differ")
	}
	if s.PaymentTermsDays < 0 || s.PaymentTermsDays > 365 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms must be between 0 and 365 days")
	}
	if s.QuoteValidityDays < 1 || s.QuoteValidityDays > 365 {
		return shared.NewDomainError("INVALID_QUOTE_VALIDITY", "Quote validity must be between 1 and 365 days")
	}
	if !shared.ValidateRate(s.DefaultVATRate) {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be between 0 and 100")
	}
	s.UpdatedAt = time.Now()
	return nil
}

// Repository persists company settings
type Repository interface {
	// Get returns the settings of a tenant, or defaults when none were saved.
	Get(ctx context.Context, tenantID uuid.UUID) (*CompanySettings, error)
	Save(ctx context.Context, s *CompanySettings) error
}
