package billing

import (
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issue = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), "INV-2026-0001", uuid.New(), issue, issue.AddDate(0, 0, 30), "eur")
	require.NoError(t, err)
	productID := uuid.New()
	l1, err := NewLine(&productID, "Widget", dec("2"), dec("50"), dec("20"), dec("0"))
	require.NoError(t, err)
	require.NoError(t, inv.SetLines([]Line{l1}))
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates draft", func(t *testing.T) {
		inv := newTestInvoice(t)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Equal(t, "EUR", inv.Currency)
		assert.Equal(t, "120.00", inv.Totals.Total.StringFixed(2))
		assert.Equal(t, "120.00", inv.Balance().StringFixed(2))
		assert.True(t, inv.CanDelete())
	})

	t.Run("defaults due date to issue date", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), "INV-2026-0002", uuid.New(), issue, time.Time{}, "EUR")
		require.NoError(t, err)
		assert.Equal(t, issue, inv.DueDate)
	})

	t.Run("rejects due date before issue", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "INV-2026-0002", uuid.New(), issue, issue.AddDate(0, 0, -1), "EUR")
		assert.Error(t, err)
	})

	t.Run("rejects malformed number", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "42", uuid.New(), issue, time.Time{}, "EUR")
		assert.Error(t, err)
	})

	t.Run("rejects missing client", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "INV-2026-0002", uuid.Nil, issue, time.Time{}, "EUR")
		assert.Error(t, err)
	})
}

func TestInvoice_Send(t *testing.T) {
	inv := newTestInvoice(t)
	inv.ClearDomainEvents()

	require.NoError(t, inv.Send(issue))
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	require.Len(t, inv.GetDomainEvents(), 1)
	evt := inv.GetDomainEvents()[0].(*InvoiceEvent)
	assert.Equal(t, EventTypeInvoiceSent, evt.EventType())
	assert.Equal(t, InvoiceStatusDraft, evt.PreviousStatus)
	require.Len(t, evt.Lines, 1)

	assert.Error(t, inv.Send(issue), "cannot send twice")
	assert.Error(t, inv.SetLines(nil), "sent invoices are locked")

	empty, err := NewInvoice(uuid.New(), "INV-2026-0003", uuid.New(), issue, time.Time{}, "EUR")
	require.NoError(t, err)
	assert.Error(t, empty.Send(issue))
}

func TestInvoice_RecordPayment(t *testing.T) {
	inv := newTestInvoice(t)

	_, err := inv.RecordPayment(dec("10"), PaymentMethodCash, "", nil, issue)
	assert.Error(t, err, "draft invoices cannot be paid")

	require.NoError(t, inv.Send(issue))

	_, err = inv.RecordPayment(dec("0"), PaymentMethodCash, "", nil, issue)
	assert.Error(t, err)
	_, err = inv.RecordPayment(dec("121"), PaymentMethodCash, "", nil, issue)
	assert.Error(t, err)
	_, err = inv.RecordPayment(dec("10"), PaymentMethod("bitcoin"), "", nil, issue)
	assert.Error(t, err)

	p, err := inv.RecordPayment(dec("20"), PaymentMethodTransfer, "wire 1", nil, issue)
	require.NoError(t, err)
	assert.Equal(t, "wire 1", p.Reference)
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.Equal(t, "100.00", inv.Balance().StringFixed(2))

	inv.ClearDomainEvents()
	_, err = inv.RecordPayment(dec("100"), PaymentMethodCard, "", nil, issue)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.NotNil(t, inv.PaidAt)
	assert.Len(t, inv.Payments, 2)
	assert.Len(t, inv.GetDomainEvents(), 2)

	assert.Error(t, inv.Cancel(issue), "paid invoices cannot be cancelled")
}

func TestInvoice_Cancel(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Send(issue))
	require.NoError(t, inv.Cancel(issue))
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	assert.Error(t, inv.Cancel(issue))

	partial := newTestInvoice(t)
	require.NoError(t, partial.Send(issue))
	_, err := partial.RecordPayment(dec("1"), PaymentMethodCash, "", nil, issue)
	require.NoError(t, err)
	err = partial.Cancel(issue)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestInvoice_MarkOverdue(t *testing.T) {
	inv := newTestInvoice(t)
	assert.False(t, inv.MarkOverdue(issue.AddDate(0, 2, 0)), "drafts never go overdue")

	require.NoError(t, inv.Send(issue))
	assert.False(t, inv.MarkOverdue(inv.DueDate), "due today is not overdue")
	assert.True(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 0, 1)))
	assert.Equal(t, InvoiceStatusOverdue, inv.Status)
	assert.False(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 0, 2)))

	assert.Equal(t, 10, inv.DaysOverdue(inv.DueDate.AddDate(0, 0, 10)))
	assert.Equal(t, 0, inv.DaysOverdue(inv.DueDate.AddDate(0, 0, -3)))

	_, err := inv.RecordPayment(dec("120"), PaymentMethodCash, "", nil, issue)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
}
