package purchase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpense(t *testing.T) {
	in := ExpenseInput{
		Description: "Printer paper",
		Date:        time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC),
		NetAmount:   decimal.RequireFromString("45.50"),
		VATRate:     decimal.NewFromInt(20),
	}
	e, err := NewExpense(uuid.New(), in)
	require.NoError(t, err)
	assert.Equal(t, "general", e.Category)
	assert.Equal(t, "9.10", e.VATAmount.StringFixed(2))
	assert.Equal(t, "54.60", e.Total.StringFixed(2))
	assert.Equal(t, 0, e.Date.Hour())

	bad := in
	bad.NetAmount = decimal.NewFromInt(-1)
	_, err = NewExpense(uuid.New(), bad)
	assert.Error(t, err)

	bad = in
	bad.Date = time.Time{}
	_, err = NewExpense(uuid.New(), bad)
	assert.Error(t, err)

	in.Category = " Office "
	require.NoError(t, e.Update(in))
	assert.Equal(t, "office", e.Category)
}
