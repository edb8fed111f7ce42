package market

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
)

func newTestMarket(t *testing.T, amount int64) *Market {
	t.Helper()
	m, err := NewMarket(uuid.New(), uuid.New(), "mk-01", "Maintenance 2026", start, end, decimal.NewFromInt(amount))
	require.NoError(t, err)
	return m
}

func TestNewMarket(t *testing.T) {
	m := newTestMarket(t, 10000)
	assert.Equal(t, "MK-01", m.Reference)
	assert.Equal(t, StatusDraft, m.Status)
	assert.True(t, m.CanDelete())

	_, err := NewMarket(uuid.New(), uuid.New(), "MK", "t", end, start, decimal.NewFromInt(1))
	assert.Error(t, err, "end before start")
	_, err = NewMarket(uuid.New(), uuid.New(), "MK", "t", start, end, decimal.NewFromInt(-1))
	assert.Error(t, err)
	_, err = NewMarket(uuid.New(), uuid.Nil, "MK", "t", start, end, decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestMarket_Charge(t *testing.T) {
	m := newTestMarket(t, 1000)
	assert.Error(t, m.Charge(decimal.NewFromInt(10)), "draft markets cannot be invoiced")

	require.NoError(t, m.Activate())
	require.NoError(t, m.Charge(decimal.NewFromInt(600)))
	assert.Equal(t, "400", m.Remaining().String())
	assert.Equal(t, "60", m.ConsumptionRate().String())

	err := m.Charge(decimal.NewFromInt(401))
	assert.Error(t, err)

	assert.Error(t, m.Update("Maintenance", "", start, end, decimal.NewFromInt(500)), "ceiling below invoiced")

	m.ClearDomainEvents()
	m.Release(decimal.NewFromInt(100))
	assert.Equal(t, "500", m.InvoicedAmount.String())
	require.Len(t, m.GetDomainEvents(), 1)
	released := m.GetDomainEvents()[0].(*MarketEvent)
	assert.Equal(t, EventTypeMarketReleased, released.EventType())
	assert.Equal(t, "500", released.InvoicedAmount.String())
	assert.False(t, m.CanDelete())

	require.NoError(t, m.Complete())
	assert.Error(t, m.Cancel())
}

func TestMarket_ZeroCeilingRate(t *testing.T) {
	m := newTestMarket(t, 0)
	assert.True(t, m.ConsumptionRate().IsZero())
}
