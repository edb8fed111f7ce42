package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuote(t *testing.T) *Quote {
	t.Helper()
	q, err := NewQuote(uuid.New(), "QUO-2026-0001", uuid.New(), issue, issue.AddDate(0, 0, 30), "EUR")
	require.NoError(t, err)
	l, err := NewLine(nil, "Audit", dec("1"), dec("1000"), dec("20"), dec("0"))
	require.NoError(t, err)
	require.NoError(t, q.SetLines([]Line{l}))
	return q
}

func TestQuote_Lifecycle(t *testing.T) {
	t.Run("send accept convert", func(t *testing.T) {
		q := newTestQuote(t)
		assert.Error(t, q.Accept(issue), "draft quotes cannot be accepted")
		require.NoError(t, q.Send(issue))
		require.NoError(t, q.SetLines(q.Lines), "sent quotes stay editable")
		require.NoError(t, q.Accept(issue.AddDate(0, 0, 3)))
		assert.Equal(t, QuoteStatusAccepted, q.Status)

		invoiceID := uuid.New()
		require.NoError(t, q.MarkConverted(invoiceID))
		assert.Equal(t, QuoteStatusConverted, q.Status)
		assert.Equal(t, &invoiceID, q.ConvertedInvoiceID)
		assert.Error(t, q.MarkConverted(uuid.New()))
		assert.Error(t, q.SetLines(q.Lines))
	})

	t.Run("reject", func(t *testing.T) {
		q := newTestQuote(t)
		require.NoError(t, q.Send(issue))
		require.NoError(t, q.Reject(issue))
		assert.Equal(t, QuoteStatusRejected, q.Status)
		assert.Error(t, q.CanConvert())
	})

	t.Run("cannot accept after validity", func(t *testing.T) {
		q := newTestQuote(t)
		require.NoError(t, q.Send(issue))
		assert.Error(t, q.Accept(q.ValidUntil.AddDate(0, 0, 1)))
	})

	t.Run("expire", func(t *testing.T) {
		q := newTestQuote(t)
		assert.False(t, q.Expire(q.ValidUntil.AddDate(0, 0, 1)), "drafts do not expire")
		require.NoError(t, q.Send(issue))
		assert.False(t, q.Expire(q.ValidUntil))
		assert.True(t, q.Expire(q.ValidUntil.AddDate(0, 0, 1)))
		assert.Equal(t, QuoteStatusExpired, q.Status)
	})

	t.Run("validity before issue rejected", func(t *testing.T) {
		_, err := NewQuote(uuid.New(), "QUO-2026-0002", uuid.New(), issue, issue.Add(-48*time.Hour), "EUR")
		assert.Error(t, err)
	})
}

func TestReminder(t *testing.T) {
	assert.Equal(t, 0, ReminderLevelFor(0))
	assert.Equal(t, 0, ReminderLevelFor(6))
	assert.Equal(t, 1, ReminderLevelFor(7))
	assert.Equal(t, 2, ReminderLevelFor(20))
	assert.Equal(t, 3, ReminderLevelFor(45))

	inv := newTestInvoice(t)
	_, err := NewReminder(inv.TenantID, inv, 1, "", issue)
	assert.Error(t, err, "draft invoices get no reminders")

	require.NoError(t, inv.Send(issue))
	_, err = NewReminder(inv.TenantID, inv, 4, "", issue)
	assert.Error(t, err)

	r, err := NewReminder(inv.TenantID, inv, 2, " please pay ", issue)
	require.NoError(t, err)
	assert.Equal(t, "please pay", r.Message)
	assert.Equal(t, ReminderStatusPending, r.Status)

	r.MarkFailed("smtp down")
	assert.Equal(t, ReminderStatusFailed, r.Status)
	assert.NoError(t, r.CanSend())
	r.MarkSent(issue)
	assert.Equal(t, 2, r.Attempts)
	assert.Error(t, r.CanSend())
}
