package inventory

import (
	"testing"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestStockLevel_ReceiveAndIssue(t *testing.T) {
	level := NewStockLevel(uuid.New(), uuid.New())

	m, err := level.Receive(d(10), "delivery", Reference{})
	require.NoError(t, err)
	assert.Equal(t, MovementIn, m.Type)
	assert.True(t, m.QuantityBefore.IsZero())
	assert.True(t, level.Quantity.Equal(d(10)))

	invoiceID := uuid.New()
	m, err = level.Issue(d(4), "sale", Reference{Type: "invoice", ID: &invoiceID})
	require.NoError(t, err)
	assert.True(t, m.QuantityAfter.Equal(d(6)))
	assert.Equal(t, &invoiceID, m.ReferenceID)

	_, err = level.Issue(d(7), "sale", Reference{})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.True(t, level.Quantity.Equal(d(6)))

	_, err = level.Receive(decimal.Zero, "", Reference{})
	assert.Error(t, err)
}

func TestStockLevel_Adjust(t *testing.T) {
	level := NewStockLevel(uuid.New(), uuid.New())
	_, err := level.Receive(d(10), "", Reference{})
	require.NoError(t, err)

	m, err := level.Adjust(d(8), "inventory count", Reference{})
	require.NoError(t, err)
	assert.True(t, m.Quantity.Equal(d(-2)))
	assert.True(t, level.Quantity.Equal(d(8)))

	_, err = level.Adjust(d(8), "again", Reference{})
	assert.Error(t, err)
	_, err = level.Adjust(d(5), "", Reference{})
	assert.Error(t, err)
	_, err = level.Adjust(d(-1), "broken", Reference{})
	assert.Error(t, err)
}

func TestStockLevel_LowStockEvent(t *testing.T) {
	level := NewStockLevel(uuid.New(), uuid.New())
	require.NoError(t, level.SetMinQuantity(d(3)))
	_, err := level.Receive(d(5), "", Reference{})
	require.NoError(t, err)
	assert.False(t, level.IsLow())
	level.ClearDomainEvents()

	_, err = level.Issue(d(2), "", Reference{})
	require.NoError(t, err)
	assert.True(t, level.IsLow())

	events := level.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeStockChanged, events[0].EventType())
	assert.Equal(t, EventTypeStockLow, events[1].EventType())

	level.ClearDomainEvents()
	_, err = level.Issue(d(1), "", Reference{})
	require.NoError(t, err)
	assert.Len(t, level.GetDomainEvents(), 1, "low event only fires when crossing the threshold")
}
