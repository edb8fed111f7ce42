package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewLine(t *testing.T) {
	t.Run("computes amounts with discount", func(t *testing.T) {
		l, err := NewLine(nil, "Design work", dec("3"), dec("33.33"), dec("20"), dec("10"))
		require.NoError(t, err)
		// 3 * 33.33 = 99.99, -10% = 89.991 -> 89.99
		assert.Equal(t, "89.99", l.NetAmount.StringFixed(2))
		assert.Equal(t, "18.00", l.VATAmount.StringFixed(2))
		assert.Equal(t, "107.99", l.TotalAmount.StringFixed(2))
	})

	t.Run("zero vat", func(t *testing.T) {
		l, err := NewLine(nil, "Training", dec("1"), dec("500"), dec("0"), dec("0"))
		require.NoError(t, err)
		assert.True(t, l.VATAmount.IsZero())
		assert.True(t, l.TotalAmount.Equal(dec("500")))
	})

	invalid := []struct {
		name     string
		desc     string
		qty      string
		price    string
		vat      string
		discount string
	}{
		{"empty description", " ", "1", "1", "20", "0"},
		{"zero quantity", "x", "0", "1", "20", "0"},
		{"negative price", "x", "1", "-1", "20", "0"},
		{"vat over 100", "x", "1", "1", "120", "0"},
		{"negative discount", "x", "1", "1", "20", "-5"},
	}
	for _, tt := range invalid {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewLine(nil, tt.desc, dec(tt.qty), dec(tt.price), dec(tt.vat), dec(tt.discount))
			assert.Error(t, err)
		})
	}
}

func TestComputeTotals(t *testing.T) {
	l1, _ := NewLine(nil, "a", dec("2"), dec("100"), dec("20"), dec("0"))
	l2, _ := NewLine(nil, "b", dec("1"), dec("50"), dec("5.5"), dec("0"))
	l3, _ := NewLine(nil, "c", dec("1"), dec("10"), dec("20"), dec("0"))

	totals := ComputeTotals([]Line{l1, l2, l3})
	assert.Equal(t, "260.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "44.75", totals.VATTotal.StringFixed(2))
	assert.Equal(t, "304.75", totals.Total.StringFixed(2))

	require.Len(t, totals.Breakdown, 2)
	assert.Equal(t, "5.5", totals.Breakdown[0].Rate.String())
	assert.Equal(t, "50.00", totals.Breakdown[0].Base.StringFixed(2))
	assert.Equal(t, "20", totals.Breakdown[1].Rate.String())
	assert.Equal(t, "210.00", totals.Breakdown[1].Base.StringFixed(2))
	assert.Equal(t, "42.00", totals.Breakdown[1].VAT.StringFixed(2))

	empty := ComputeTotals(nil)
	assert.True(t, empty.Total.IsZero())
	assert.Empty(t, empty.Breakdown)
}
