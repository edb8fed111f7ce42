package tax

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateRequest selects the period to declare: a month (1-12) or a quarter (1-4)
type GenerateRequest struct {
	Frequency string `json:"frequency" binding:"required,oneof=monthly quarterly"`
	Year      int    `json:"year" binding:"required,min=2000,max=2100"`
	Number    int    `json:"number" binding:"required,min=1,max=12"`
}

// DeclarationListFilter represents the query parameters of the declaration list
type DeclarationListFilter struct {
	Status    string `form:"status" binding:"omitempty,oneof=draft submitted"`
	Frequency string `form:"frequency" binding:"omitempty,oneof=monthly quarterly"`
	Year      int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f DeclarationListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "period_start",
		OrderDir: f.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.Frequency != "" {
		filter.Filters["frequency"] = f.Frequency
	}
	if f.Year != 0 {
		filter.Filters["year"] = f.Year
	}
	return filter.Normalize()
}

// DeclarationResponse represents a VAT declaration in API responses
type DeclarationResponse struct {
	ID            uuid.UUID       `json:"id"`
	Period        string          `json:"period"`
	Frequency     string          `json:"frequency"`
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	Status        string          `json:"status"`
	CollectedVAT  decimal.Decimal `json:"collected_vat"`
	DeductibleVAT decimal.Decimal `json:"deductible_vat"`
	TaxableBase   decimal.Decimal `json:"taxable_base"`
	NetVATDue     decimal.Decimal `json:"net_vat_due"`
	CreditCarried decimal.Decimal `json:"credit_carried"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
	Breakdown     []tax.RateLine  `json:"breakdown"`
	InvoiceCount  int             `json:"invoice_count"`
	ExpenseCount  int             `json:"expense_count"`
	GeneratedAt   time.Time       `json:"generated_at"`
	SubmittedAt   *time.Time      `json:"submitted_at,omitempty"`
	Version       int             `json:"version"`
}

func ToDeclarationResponse(d *tax.Declaration) DeclarationResponse {
	breakdown := d.Breakdown
	if breakdown == nil {
		breakdown = []tax.RateLine{}
	}
	return DeclarationResponse{
		ID:            d.ID,
		Period:        d.Period.Label(),
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
		Breakdown:     breakdown,
		InvoiceCount:  d.InvoiceCount,
		ExpenseCount:  d.ExpenseCount,
		GeneratedAt:   d.GeneratedAt,
		SubmittedAt:   d.SubmittedAt,
		Version:       d.Version,
	}
}
