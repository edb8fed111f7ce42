// Package forecast projects monthly revenue. A language model produces the
// forecast when available; a least-squares trend is the fallback.
package forecast

import (
	"fmt"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	DefaultHistoryMonths = 12
	MaxHistoryMonths     = 36
	DefaultHorizon       = 3
	MaxHorizon           = 12
)

type Source string

const (
	SourceLLM      Source = "llm"
	SourceBaseline Source = "baseline"
)

const monthLayout = "2006-01"

// Point is the revenue of one calendar month
type Point struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Forecast is the result returned to callers
type Forecast struct {
	Source    Source  `json:"source"`
	Model     string  `json:"model,omitempty"`
	History   []Point `json:"history"`
	Points    []Point `json:"forecast"`
	Summary   string  `json:"summary"`
	Generated time.Time
}

// ValidateHorizon checks 1..MaxHorizon
func ValidateHorizon(h int) error {
	if h < 1 || h > MaxHorizon {
		return shared.NewDomainError("INVALID_HORIZON", fmt.Sprintf("Horizon must be between 1 and %d months", MaxHorizon))
	}
	return nil
}

// MonthStart truncates t to the first day of its month in UTC
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabel formats a month as YYYY-MM
func MonthLabel(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// ParseMonth parses YYYY-MM
func ParseMonth(s string) (time.Time, error) {
	return time.Parse(monthLayout, s)
}

// HistoryMonths returns the n month labels ending with the month before now
func HistoryMonths(now time.Time, n int) []string {
	first := MonthStart(now).AddDate(0, -n, 0)
	months := make([]string, n)
	for i := range months {
		months[i] = MonthLabel(first.AddDate(0, i, 0))
	}
	return months
}

// FillHistory turns sparse month totals into a dense series for months
func FillHistory(months []string, totals map[string]decimal.Decimal) []Point {
	points := make([]Point, len(months))
	for i, m := range months {
		v, ok := totals[m]
		if !ok {
			v = decimal.Zero
		}
		points[i] = Point{Month: m, Revenue: shared.RoundMoney(v)}
	}
	return points
}

// NextMonths returns horizon labels following the last history month
func NextMonths(history []Point, now time.Time, horizon int) []string {
	start := MonthStart(now)
	if len(history) > 0 {
		if last, err := ParseMonth(history[len(history)-1].Month); err == nil {
			start = last.AddDate(0, 1, 0)
		}
	}
	months := make([]string, horizon)
	for i := range months {
		months[i] = MonthLabel(start.AddDate(0, i, 0))
	}
	return months
}

// Baseline fits a least-squares line over the history and extends it.
// Projected values never go below zero.
func Baseline(history []Point, months []string) []Point {
	n := decimal.NewFromInt(int64(len(history)))
	sumX, sumY, sumXY, sumXX := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for i, p := range history {
		x := decimal.NewFromInt(int64(i))
		sumX = sumX.Add(x)
		sumY = sumY.Add(p.Revenue)
		sumXY = sumXY.Add(x.Mul(p.Revenue))
		sumXX = sumXX.Add(x.Mul(x))
	}

	slope := decimal.Zero
	intercept := decimal.Zero
	if len(history) > 0 {
		denom := n.Mul(sumXX).Sub(sumX.Mul(sumX))
		if !denom.IsZero() {
			slope = n.Mul(sumXY).Sub(sumX.Mul(sumY)).Div(denom)
		}
		intercept = sumY.Sub(slope.Mul(sumX)).Div(n)
	}

	out := make([]Point, len(months))
	for i, m := range months {
		x := decimal.NewFromInt(int64(len(history) + i))
		v := intercept.Add(slope.Mul(x))
		if v.IsNegative() {
			v = decimal.Zero
		}
		out[i] = Point{Month: m, Revenue: shared.RoundMoney(v)}
	}
	return out
}

// BaselineSummary describes the trend in one sentence
func BaselineSummary(history, projected []Point) string {
	if len(history) == 0 || len(projected) == 0 {
		return "Not enough history for a trend; projection is flat."
	}
	last := history[len(history)-1].Revenue
	next := projected[len(projected)-1].Revenue
	switch {
	case next.GreaterThan(last):
		return fmt.Sprintf("Linear trend projects revenue rising to %s by %s.", next.StringFixed(2), projected[len(projected)-1].Month)
	case next.LessThan(last):
		return fmt.Sprintf("Linear trend projects revenue falling to %s by %s.", next.StringFixed(2), projected[len(projected)-1].Month)
	default:
		return fmt.Sprintf("Linear trend projects stable revenue around %s.", next.StringFixed(2))
	}
}
