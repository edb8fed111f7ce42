package billing

import (
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReminderStatus tracks delivery of a payment reminder
type ReminderStatus string

const (
	ReminderStatusPending ReminderStatus = "pending"
	ReminderStatusSent    ReminderStatus = "sent"
	ReminderStatusFailed  ReminderStatus = "failed"
)

const MaxReminderLevel = 3

// reminderThresholds are the days overdue that trigger level 1, 2 and 3
var reminderThresholds = [MaxReminderLevel]int{7, 14, 30}

// ReminderLevelFor returns the highest reminder level due after the given
// number of days overdue, or 0 when none is due yet.
func ReminderLevelFor(daysOverdue int) int {
	level := 0
	for i, threshold := range reminderThresholds {
		if daysOverdue >= threshold {
			level = i + 1
		}
	}
	return level
}

// Reminder is a payment reminder for an unpaid invoice
type Reminder struct {
	shared.TenantAggregateRoot
	InvoiceID    uuid.UUID
	ClientID     uuid.UUID
	Level        int
	Status       ReminderStatus
	Channel      string
	Message      string
	ScheduledFor time.Time
	SentAt       *time.Time
	Attempts     int
	LastError    string
}

func NewReminder(tenantID uuid.UUID, invoice *Invoice, level int, message string, scheduledFor time.Time) (*Reminder, error) {
	if level < 1 || level > MaxReminderLevel {
		return nil, shared.NewDomainError("INVALID_REMINDER_LEVEL", "Reminder level must be between 1 and 3")
	}
	if invoice.Status == InvoiceStatusDraft || invoice.Status == InvoiceStatusPaid || invoice.Status == InvoiceStatusCancelled {
		return nil, shared.NewInvalidStateError("Reminders can only be created for unpaid issued invoices")
	}
	r := &Reminder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceID:           invoice.ID,
		ClientID:            invoice.ClientID,
		Level:               level,
		Status:              ReminderStatusPending,
		Channel:             "email",
		Message:             strings.TrimSpace(message),
		ScheduledFor:        scheduledFor,
	}
	r.AddDomainEvent(newReminderEvent(EventTypeReminderCreated, r))
	return r, nil
}

// CanSend reports whether delivery may be attempted
func (r *Reminder) CanSend() error {
	if r.Status == ReminderStatusSent {
		return shared.NewInvalidStateError("Reminder was already sent")
	}
	return nil
}

func (r *Reminder) MarkSent(at time.Time) {
	r.Status = ReminderStatusSent
	r.SentAt = &at
	r.Attempts++
	r.LastError = ""
	r.Touch()
	r.AddDomainEvent(newReminderEvent(EventTypeReminderSent, r))
}

func (r *Reminder) MarkFailed(reason string) {
	r.Status = ReminderStatusFailed
	r.Attempts++
	r.LastError = reason
	r.Touch()
	r.AddDomainEvent(newReminderEvent(EventTypeReminderFailed, r))
}
