// Package tax computes VAT declarations from issued invoices (collected VAT)
// and expenses (deductible VAT).
package tax

import (
	"fmt"
	"sort"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

// Period is an inclusive date range [Start, End]
type Period struct {
	Frequency Frequency
	Start     time.Time
	End       time.Time
}

// NewPeriod builds month (1-12) or quarter (1-4) number of a year
func NewPeriod(frequency Frequency, year, number int) (Period, error) {
	if year < 2000 || year > 2100 {
		return Period{}, shared.NewDomainError("INVALID_PERIOD", "Year is out of range")
	}
	var months int
	switch frequency {
	case FrequencyMonthly:
		if number < 1 || number > 12 {
			return Period{}, shared.NewDomainError("INVALID_PERIOD", "Month must be between 1 and 12")
		}
		months = 1
	case FrequencyQuarterly:
		if number < 1 || number > 4 {
			return Period{}, shared.NewDomainError("INVALID_PERIOD", "Quarter must be between 1 and 4")
		}
		months = 3
	default:
		return Period{}, shared.NewDomainError("INVALID_FREQUENCY", "Frequency must be monthly or quarterly")
	}
	start := time.Date(year, time.Month((number-1)*months+1), 1, 0, 0, 0, 0, time.UTC)
	return Period{Frequency: frequency, Start: start, End: start.AddDate(0, months, -1)}, nil
}

// Label returns a human readable period name, e.g. 2026-03 or 2026-Q1
func (p Period) Label() string {
	if p.Frequency == FrequencyQuarterly {
		return fmt.Sprintf("%d-Q%d", p.Start.Year(), (int(p.Start.Month())-1)/3+1)
	}
	return p.Start.Format("2006-01")
}

// TaxableItem is one VAT-bearing amount fed into a declaration
type TaxableItem struct {
	Rate decimal.Decimal
	Base decimal.Decimal
	VAT  decimal.Decimal
}

// RateLine is the per-rate breakdown of collected VAT
type RateLine struct {
	Rate decimal.Decimal `json:"rate"`
	Base decimal.Decimal `json:"base"`
	VAT  decimal.Decimal `json:"vat"`
}

// Declaration is a VAT return for one period
type Declaration struct {
	shared.TenantAggregateRoot
	Period        Period
	Status        Status
	CollectedVAT  decimal.Decimal
	DeductibleVAT decimal.Decimal
	TaxableBase   decimal.Decimal
	NetVATDue     decimal.Decimal
	CreditCarried decimal.Decimal
	EffectiveRate decimal.Decimal
	Breakdown     []RateLine
	InvoiceCount  int
	ExpenseCount  int
	GeneratedAt   time.Time
	SubmittedAt   *time.Time
}

// Compute builds a draft declaration. Collected VAT comes from sales items,
// deductible VAT from purchase items. A negative balance is reported as a
// credit and nothing is due.
func Compute(tenantID uuid.UUID, period Period, sales []TaxableItem, invoiceCount int, purchases []TaxableItem, at time.Time) *Declaration {
	d := &Declaration{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Period:              period,
		Status:              StatusDraft,
		InvoiceCount:        invoiceCount,
		ExpenseCount:        len(purchases),
		GeneratedAt:         at,
	}
	d.recompute(sales, purchases)
	d.AddDomainEvent(newDeclarationEvent(EventTypeDeclarationGenerated, d))
	return d
}

// Regenerate replaces the figures of a draft with freshly computed ones
func (d *Declaration) Regenerate(sales []TaxableItem, invoiceCount int, purchases []TaxableItem, at time.Time) error {
	if d.Status != StatusDraft {
		return shared.NewInvalidStateError("Submitted declarations cannot be regenerated")
	}
	d.InvoiceCount = invoiceCount
	d.ExpenseCount = len(purchases)
	d.GeneratedAt = at
	d.recompute(sales, purchases)
	d.Touch()
	d.AddDomainEvent(newDeclarationEvent(EventTypeDeclarationGenerated, d))
	return nil
}

func (d *Declaration) recompute(sales, purchases []TaxableItem) {
	collected := decimal.Zero
	base := decimal.Zero
	byRate := map[string]*RateLine{}
	for _, it := range sales {
		collected = collected.Add(it.VAT)
		base = base.Add(it.Base)
		key := it.Rate.String()
		line, ok := byRate[key]
		if !ok {
			line = &RateLine{Rate: it.Rate, Base: decimal.Zero, VAT: decimal.Zero}
			byRate[key] = line
		}
		line.Base = line.Base.Add(it.Base)
		line.VAT = line.VAT.Add(it.VAT)
	}
	deductible := decimal.Zero
	for _, it := range purchases {
		deductible = deductible.Add(it.VAT)
	}

	d.Breakdown = d.Breakdown[:0]
	for _, line := range byRate {
		d.Breakdown = append(d.Breakdown, *line)
	}
	sort.Slice(d.Breakdown, func(i, j int) bool { return d.Breakdown[i].Rate.LessThan(d.Breakdown[j].Rate) })

	d.CollectedVAT = shared.RoundMoney(collected)
	d.DeductibleVAT = shared.RoundMoney(deductible)
	d.TaxableBase = shared.RoundMoney(base)
	net := d.CollectedVAT.Sub(d.DeductibleVAT)
	if net.IsNegative() {
		d.NetVATDue = decimal.Zero
		d.CreditCarried = net.Abs()
	} else {
		d.NetVATDue = net
		d.CreditCarried = decimal.Zero
	}
	d.EffectiveRate = shared.SafeRatio(d.CollectedVAT, d.TaxableBase)
}

// Submit freezes the declaration
func (d *Declaration) Submit(at time.Time) error {
	if d.Status != StatusDraft {
		return shared.NewInvalidStateError("Declaration was already submitted")
	}
	d.Status = StatusSubmitted
	d.SubmittedAt = &at
	d.Touch()
	d.AddDomainEvent(newDeclarationEvent(EventTypeDeclarationSubmitted, d))
	return nil
}

func (d *Declaration) CanDelete() bool {
	return d.Status == StatusDraft
}
