package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInvoiceRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	tenantID, clientID := uuid.New(), uuid.New()

	inv := newTestInvoice(t, tenantID, clientID, "INV-2026-0001", day(2026, 3, 2),
		testLine(t, "2", "100", "20"), testLine(t, "1", "50", "5.5"))
	require.NoError(t, repo.Save(ctx, inv))

	found, err := repo.FindByID(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001", found.Number)
	require.Len(t, found.Lines, 2)
	assert.True(t, dec("250").Equal(found.Totals.Subtotal))
	assert.True(t, dec("42.75").Equal(found.Totals.VATTotal))
	assert.True(t, dec("292.75").Equal(found.Totals.Total))
	assert.Len(t, found.Totals.Breakdown, 2)
	assert.Empty(t, found.Payments)

	t.Run("payments are appended on each save", func(t *testing.T) {
		require.NoError(t, found.Send(day(2026, 3, 2)))
		_, err := found.RecordPayment(dec("100"), billing.PaymentMethodTransfer, "TX1", nil, day(2026, 3, 10))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, found))

		_, err = found.RecordPayment(dec("192.75"), billing.PaymentMethodCard, "", nil, day(2026, 3, 12))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, found))

		paid, err := repo.FindByID(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPaid, paid.Status)
		require.Len(t, paid.Payments, 2)
		assert.Equal(t, "TX1", paid.Payments[0].Reference)
		assert.True(t, paid.Balance().IsZero())
	})

	t.Run("client reference is detected", func(t *testing.T) {
		ok, err := repo.ExistsForClient(ctx, tenantID, clientID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestGormInvoiceRepository_Queries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	tenantID, clientID := uuid.New(), uuid.New()

	draft := newTestInvoice(t, tenantID, clientID, "INV-2026-0001", day(2026, 1, 5), testLine(t, "1", "100", "20"))
	require.NoError(t, repo.Save(ctx, draft))

	sent := newTestInvoice(t, tenantID, clientID, "INV-2026-0002", day(2026, 1, 10), testLine(t, "1", "200", "20"))
	require.NoError(t, sent.Send(day(2026, 1, 10)))
	require.NoError(t, repo.Save(ctx, sent))

	cancelled := newTestInvoice(t, tenantID, clientID, "INV-2026-0003", day(2026, 1, 15), testLine(t, "1", "300", "20"))
	require.NoError(t, cancelled.Send(day(2026, 1, 15)))
	require.NoError(t, cancelled.Cancel(day(2026, 1, 16)))
	require.NoError(t, repo.Save(ctx, cancelled))

	t.Run("issued between excludes drafts and cancelled", func(t *testing.T) {
		invoices, err := repo.FindIssuedBetween(ctx, tenantID, day(2026, 1, 1), day(2026, 1, 31))
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, sent.ID, invoices[0].ID)
	})

	t.Run("due for overdue", func(t *testing.T) {
		invoices, err := repo.FindDueForOverdue(ctx, tenantID, day(2026, 3, 1))
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, sent.ID, invoices[0].ID)

		none, err := repo.FindDueForOverdue(ctx, tenantID, day(2026, 1, 20))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("list filters by status and date", func(t *testing.T) {
		f := shared.Filter{}.With("status", "draft")
		invoices, total, err := repo.FindAll(ctx, tenantID, f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, draft.ID, invoices[0].ID)

		f = shared.Filter{}.With("date_from", "2026-01-08")
		_, total, err = repo.FindAll(ctx, tenantID, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("search by number", func(t *testing.T) {
		invoices, total, err := repo.FindAll(ctx, tenantID, shared.Filter{Search: "0002"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, sent.ID, invoices[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, tenantID, draft.ID))
		_, err := repo.FindByID(ctx, tenantID, draft.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormQuoteRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormQuoteRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	q, err := billing.NewQuote(tenantID, "QUO-2026-0001", uuid.New(), day(2026, 2, 1), day(2026, 3, 3), "EUR")
	require.NoError(t, err)
	require.NoError(t, q.SetLines([]billing.Line{testLine(t, "3", "10", "20")}))
	require.NoError(t, q.Send(day(2026, 2, 1)))
	require.NoError(t, repo.Save(ctx, q))

	found, err := repo.FindByID(ctx, tenantID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.QuoteStatusSent, found.Status)
	assert.True(t, dec("36").Equal(found.Totals.Total))

	expirable, err := repo.FindExpirable(ctx, tenantID, day(2026, 3, 10))
	require.NoError(t, err)
	assert.Len(t, expirable, 1)

	expirable, err = repo.FindExpirable(ctx, tenantID, day(2026, 3, 1))
	require.NoError(t, err)
	assert.Empty(t, expirable)
}

func TestGormReminderRepository_MaxLevel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReminderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	inv := newTestInvoice(t, tenantID, uuid.New(), "INV-2026-0009", day(2026, 1, 1), testLine(t, "1", "10", "0"))
	require.NoError(t, inv.Send(day(2026, 1, 1)))

	level, err := repo.MaxLevelForInvoice(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	assert.Zero(t, level)

	for _, l := range []int{1, 2} {
		r, err := billing.NewReminder(tenantID, inv, l, "Please pay", day(2026, 2, 15))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, r))
	}
	level, err = repo.MaxLevelForInvoice(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, level)

	reminders, total, err := repo.FindAll(ctx, tenantID, shared.Filter{}.With("level", "2"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 2, reminders[0].Level)
}

func TestGormNumberSequence_Next(t *testing.T) {
	db := setupTestDB(t)
	seq := NewGormNumberSequence(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for want := 1; want <= 3; want++ {
		got, err := seq.Next(ctx, tenantID, billing.DocumentTypeInvoice, 2026)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	t.Run("independent per type, year and tenant", func(t *testing.T) {
		got, err := seq.Next(ctx, tenantID, billing.DocumentTypeQuote, 2026)
		require.NoError(t, err)
		assert.Equal(t, 1, got)

		got, err = seq.Next(ctx, tenantID, billing.DocumentTypeInvoice, 2027)
		require.NoError(t, err)
		assert.Equal(t, 1, got)

		got, err = seq.Next(ctx, uuid.New(), billing.DocumentTypeInvoice, 2026)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	t.Run("concurrent callers never share a number", func(t *testing.T) {
		other := uuid.New()
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen = map[int]bool{}
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := seq.Next(ctx, other, billing.DocumentTypeInvoice, 2026)
				assert.NoError(t, err)
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 10)
	})
}
