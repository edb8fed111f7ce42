package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reminderFixture struct {
	*invoiceFixture
	reminders *MockReminderRepository
	rs        *ReminderService
}

func newReminderFixture() *reminderFixture {
	f := newInvoiceFixture()
	r := &reminderFixture{invoiceFixture: f, reminders: new(MockReminderRepository)}
	r.rs = NewReminderService(r.reminders, f.invoices, f.notifier, f.pub, zap.NewNop())
	r.rs.now = func() time.Time { return fixedNow }
	return r
}

// overdue returns an invoice whose due date passed the given number of days ago
func (f *reminderFixture) overdue(t *testing.T, days int) *billing.Invoice {
	t.Helper()
	inv := f.draft(t, uuid.New(), 150)
	due := fixedNow.AddDate(0, 0, -days)
	inv.IssueDate = due.AddDate(0, 0, -30)
	inv.DueDate = time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	require.NoError(t, inv.Send(inv.IssueDate))
	require.True(t, inv.MarkOverdue(fixedNow))
	inv.ClearDomainEvents()
	return inv
}

func TestReminderService_SendDueReminders(t *testing.T) {
	t.Run("creates and sends the next level", func(t *testing.T) {
		f := newReminderFixture()
		inv := f.overdue(t, 20)
		f.invoices.On("FindByStatus", mock.Anything, f.tenantID, billing.InvoiceStatusOverdue).Return([]billing.Invoice{*inv}, nil)
		f.reminders.On("MaxLevelForInvoice", mock.Anything, f.tenantID, inv.ID).Return(0, nil)
		var saved *billing.Reminder
		f.reminders.On("Save", mock.Anything, mock.AnythingOfType("*billing.Reminder")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*billing.Reminder) }).
			Return(nil)

		result, err := f.rs.SendDueReminders(context.Background(), f.tenantID)

		require.NoError(t, err)
		assert.Equal(t, SweepResult{Processed: 1}, result)
		require.NotNil(t, saved)
		assert.Equal(t, 1, saved.Level)
		assert.Equal(t, billing.ReminderStatusSent, saved.Status)
		assert.Contains(t, saved.Message, "20 days past due")
		assert.Equal(t, []int{1}, f.notifier.reminders)
		assert.Equal(t, []string{billing.EventTypeReminderCreated, billing.EventTypeReminderSent}, f.pub.types())
	})

	t.Run("skips invoices already reminded at the due level", func(t *testing.T) {
		f := newReminderFixture()
		inv := f.overdue(t, 20)
		f.invoices.On("FindByStatus", mock.Anything, f.tenantID, billing.InvoiceStatusOverdue).Return([]billing.Invoice{*inv}, nil)
		f.reminders.On("MaxLevelForInvoice", mock.Anything, f.tenantID, inv.ID).Return(2, nil)

		result, err := f.rs.SendDueReminders(context.Background(), f.tenantID)

		require.NoError(t, err)
		assert.Equal(t, SweepResult{}, result)
		f.reminders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("not yet due", func(t *testing.T) {
		f := newReminderFixture()
		inv := f.overdue(t, 3)
		f.invoices.On("FindByStatus", mock.Anything, f.tenantID, billing.InvoiceStatusOverdue).Return([]billing.Invoice{*inv}, nil)

		result, err := f.rs.SendDueReminders(context.Background(), f.tenantID)

		require.NoError(t, err)
		assert.Zero(t, result.Processed)
		f.reminders.AssertNotCalled(t, "MaxLevelForInvoice", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delivery failure is saved and counted", func(t *testing.T) {
		f := newReminderFixture()
		f.notifier.err = errors.New("smtp: connection refused")
		inv := f.overdue(t, 45)
		f.invoices.On("FindByStatus", mock.Anything, f.tenantID, billing.InvoiceStatusOverdue).Return([]billing.Invoice{*inv}, nil)
		f.reminders.On("MaxLevelForInvoice", mock.Anything, f.tenantID, inv.ID).Return(1, nil)
		var saved *billing.Reminder
		f.reminders.On("Save", mock.Anything, mock.AnythingOfType("*billing.Reminder")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*billing.Reminder) }).
			Return(nil)

		result, err := f.rs.SendDueReminders(context.Background(), f.tenantID)

		require.NoError(t, err)
		assert.Equal(t, SweepResult{Failed: 1}, result)
		require.NotNil(t, saved)
		assert.Equal(t, 2, saved.Level)
		assert.Equal(t, billing.ReminderStatusFailed, saved.Status)
		assert.Equal(t, "smtp: connection refused", saved.LastError)
	})
}

func TestReminderService_Create(t *testing.T) {
	f := newReminderFixture()
	inv := f.overdue(t, 10)
	f.reminders.On("MaxLevelForInvoice", mock.Anything, f.tenantID, inv.ID).Return(1, nil)
	f.reminders.On("Save", mock.Anything, mock.AnythingOfType("*billing.Reminder")).Return(nil)

	resp, err := f.rs.Create(context.Background(), f.tenantID, CreateReminderRequest{InvoiceID: inv.ID})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Level)
	assert.Equal(t, "pending", resp.Status)
	assert.Contains(t, resp.Message, "Second reminder")
	assert.Empty(t, f.notifier.reminders)
}

func TestReminderService_Send(t *testing.T) {
	f := newReminderFixture()
	inv := f.overdue(t, 10)
	r, err := billing.NewReminder(f.tenantID, inv, 1, "Please pay", fixedNow)
	require.NoError(t, err)
	r.MarkSent(fixedNow)
	f.reminders.On("FindByID", mock.Anything, f.tenantID, r.ID).Return(r, nil)

	_, err = f.rs.Send(context.Background(), f.tenantID, r.ID)

	assert.Error(t, err)
	f.reminders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
