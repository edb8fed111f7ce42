package tax

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod(FrequencyQuarterly, 2026, 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), p.End)
	assert.Equal(t, "2026-Q1", p.Label())

	p, err = NewPeriod(FrequencyMonthly, 2028, 2)
	require.NoError(t, err)
	assert.Equal(t, 29, p.End.Day())
	assert.Equal(t, "2028-02", p.Label())

	p, err = NewPeriod(FrequencyQuarterly, 2026, 4)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), p.End)

	_, err = NewPeriod(FrequencyMonthly, 2026, 13)
	assert.Error(t, err)
	_, err = NewPeriod(FrequencyQuarterly, 2026, 0)
	assert.Error(t, err)
	_, err = NewPeriod(Frequency("weekly"), 2026, 1)
	assert.Error(t, err)
}

func TestCompute(t *testing.T) {
	period, _ := NewPeriod(FrequencyMonthly, 2026, 3)

	t.Run("aggregates collected and deductible vat", func(t *testing.T) {
		sales := []TaxableItem{
			{Rate: dec("20"), Base: dec("1000"), VAT: dec("200")},
			{Rate: dec("5.5"), Base: dec("100"), VAT: dec("5.50")},
			{Rate: dec("20"), Base: dec("500"), VAT: dec("100")},
		}
		purchases := []TaxableItem{{Rate: dec("20"), Base: dec("250"), VAT: dec("50")}}

		d := Compute(uuid.New(), period, sales, 2, purchases, time.Now())
		assert.Equal(t, StatusDraft, d.Status)
		assert.Equal(t, "305.50", d.CollectedVAT.StringFixed(2))
		assert.Equal(t, "50.00", d.DeductibleVAT.StringFixed(2))
		assert.Equal(t, "255.50", d.NetVATDue.StringFixed(2))
		assert.True(t, d.CreditCarried.IsZero())
		assert.Equal(t, "1600.00", d.TaxableBase.StringFixed(2))
		assert.Equal(t, "19.09", d.EffectiveRate.StringFixed(2))
		require.Len(t, d.Breakdown, 2)
		assert.Equal(t, "1500.00", d.Breakdown[1].Base.StringFixed(2))
		assert.Equal(t, 2, d.InvoiceCount)
		assert.Equal(t, 1, d.ExpenseCount)
	})

	t.Run("negative balance becomes a credit", func(t *testing.T) {
		d := Compute(uuid.New(), period, []TaxableItem{{Rate: dec("20"), Base: dec("100"), VAT: dec("20")}}, 1,
			[]TaxableItem{{Rate: dec("20"), Base: dec("500"), VAT: dec("100")}}, time.Now())
		assert.True(t, d.NetVATDue.IsZero())
		assert.Equal(t, "80.00", d.CreditCarried.StringFixed(2))
	})

	t.Run("no sales does not divide by zero", func(t *testing.T) {
		d := Compute(uuid.New(), period, nil, 0, nil, time.Now())
		assert.True(t, d.EffectiveRate.IsZero())
		assert.True(t, d.NetVATDue.IsZero())
		assert.Empty(t, d.Breakdown)
	})
}

func TestDeclaration_SubmitAndRegenerate(t *testing.T) {
	period, _ := NewPeriod(FrequencyMonthly, 2026, 3)
	d := Compute(uuid.New(), period, nil, 0, nil, time.Now())

	require.NoError(t, d.Regenerate([]TaxableItem{{Rate: dec("20"), Base: dec("10"), VAT: dec("2")}}, 1, nil, time.Now()))
	assert.Equal(t, "2.00", d.NetVATDue.StringFixed(2))

	require.NoError(t, d.Submit(time.Now()))
	assert.False(t, d.CanDelete())
	assert.Error(t, d.Submit(time.Now()))
	assert.Error(t, d.Regenerate(nil, 0, nil, time.Now()))
}
