package persistence

import (
	"context"
	"testing"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/market"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	invoices := NewGormInvoiceRepository(db)
	markets := NewGormMarketRepository(db)
	ctx := context.Background()
	tenantID, clientID := uuid.New(), uuid.New()

	m, err := market.NewMarket(tenantID, clientID, "MK-TX", "Framework", day(2026, 1, 1), day(2026, 12, 31), dec("1000"))
	require.NoError(t, err)
	require.NoError(t, m.Activate())
	require.NoError(t, markets.Save(ctx, m))

	inv := newTestInvoice(t, tenantID, clientID, "INV-2026-0100", day(2026, 3, 2), testLine(t, "1", "100", "0"))
	require.NoError(t, invoices.Save(ctx, inv))

	t.Run("a failed market save rolls the invoice back", func(t *testing.T) {
		stale := *m
		require.NoError(t, m.Charge(dec("10")))
		require.NoError(t, markets.Save(ctx, m))

		sent, err := invoices.FindByID(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		require.NoError(t, sent.Send(day(2026, 3, 2)))
		require.NoError(t, stale.Charge(sent.Totals.Total))

		err = scope.Execute(ctx, func(ctx context.Context) error {
			if err := invoices.Save(ctx, sent); err != nil {
				return err
			}
			return markets.Save(ctx, &stale)
		})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		found, err := invoices.FindByID(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusDraft, found.Status)
		current, err := markets.FindByID(ctx, tenantID, m.ID)
		require.NoError(t, err)
		assert.True(t, dec("10").Equal(current.InvoicedAmount))
	})

	t.Run("both writes commit together", func(t *testing.T) {
		sent, err := invoices.FindByID(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		require.NoError(t, sent.Send(day(2026, 3, 2)))
		current, err := markets.FindByID(ctx, tenantID, m.ID)
		require.NoError(t, err)
		require.NoError(t, current.Charge(sent.Totals.Total))

		err = scope.Execute(ctx, func(ctx context.Context) error {
			if err := invoices.Save(ctx, sent); err != nil {
				return err
			}
			return markets.Save(ctx, current)
		})
		require.NoError(t, err)

		found, err := invoices.FindByID(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusSent, found.Status)
		current, err = markets.FindByID(ctx, tenantID, m.ID)
		require.NoError(t, err)
		assert.True(t, dec("110").Equal(current.InvoicedAmount))
	})
}
