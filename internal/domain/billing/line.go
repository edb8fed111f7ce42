package billing

import (
	"sort"
	"strings"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line is one row of a quote, invoice or subscription. Amounts are derived
// from quantity, unit price, discount and VAT rate and are never set directly.
type Line struct {
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	VATRate         decimal.Decimal `json:"vat_rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// NewLine validates a line and computes its amounts
func NewLine(productID *uuid.UUID, description string, quantity, unitPrice, vatRate, discountPercent decimal.Decimal) (Line, error) {
	l := Line{
		ProductID:       productID,
		Description:     strings.TrimSpace(description),
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		VATRate:         vatRate,
		DiscountPercent: discountPercent,
	}
	if err := l.validate(); err != nil {
		return Line{}, err
	}
	l.compute()
	return l, nil
}

func (l *Line) validate() error {
	if l.Description == "" || len(l.Description) > 500 {
		return shared.NewDomainError("INVALID_LINE", "Line description must be between 1 and 500 characters")
	}
	if !l.Quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if l.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if !shared.ValidateRate(l.VATRate) {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be between 0 and 100")
	}
	if !shared.ValidateRate(l.DiscountPercent) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 100")
	}
	return nil
}

func (l *Line) compute() {
	gross := l.Quantity.Mul(l.UnitPrice)
	discount := gross.Mul(l.DiscountPercent).Div(hundred)
	l.NetAmount = shared.RoundMoney(gross.Sub(discount))
	l.VATAmount = shared.Percent(l.NetAmount, l.VATRate)
	l.TotalAmount = l.NetAmount.Add(l.VATAmount)
}

// VATBreakdown sums taxable base and VAT for one rate
type VATBreakdown struct {
	Rate decimal.Decimal `json:"rate"`
	Base decimal.Decimal `json:"base"`
	VAT  decimal.Decimal `json:"vat"`
}

// Totals of a document
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	VATTotal  decimal.Decimal `json:"vat_total"`
	Total     decimal.Decimal `json:"total"`
	Breakdown []VATBreakdown  `json:"breakdown"`
}

// ComputeTotals sums the lines. The breakdown is ordered by ascending rate.
func ComputeTotals(lines []Line) Totals {
	t := Totals{Subtotal: decimal.Zero, VATTotal: decimal.Zero, Total: decimal.Zero}
	byRate := map[string]*VATBreakdown{}
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.NetAmount)
		t.VATTotal = t.VATTotal.Add(l.VATAmount)
		key := l.VATRate.String()
		b, ok := byRate[key]
		if !ok {
			b = &VATBreakdown{Rate: l.VATRate, Base: decimal.Zero, VAT: decimal.Zero}
			byRate[key] = b
		}
		b.Base = b.Base.Add(l.NetAmount)
		b.VAT = b.VAT.Add(l.VATAmount)
	}
	t.Total = t.Subtotal.Add(t.VATTotal)
	for _, b := range byRate {
		t.Breakdown = append(t.Breakdown, *b)
	}
	sort.Slice(t.Breakdown, func(i, j int) bool {
		return t.Breakdown[i].Rate.LessThan(t.Breakdown[j].Rate)
	})
	return t
}

// RecomputeLines re-derives amounts of lines loaded from storage
func RecomputeLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		l.compute()
		out[i] = l
	}
	return out
}
