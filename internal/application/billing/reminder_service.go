package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReminderService creates and delivers payment reminders
type ReminderService struct {
	reminderRepo billing.ReminderRepository
	invoiceRepo  billing.InvoiceRepository
	notifier     Notifier
	publisher    shared.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewReminderService creates a new ReminderService. A nil notifier leaves
// reminders pending.
func NewReminderService(
	reminderRepo billing.ReminderRepository,
	invoiceRepo billing.InvoiceRepository,
	notifier Notifier,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		invoiceRepo:  invoiceRepo,
		notifier:     notifier,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// Create creates a manual reminder, at the next level unless one is given
func (s *ReminderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateReminderRequest) (*ReminderResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	level := req.Level
	if level == 0 {
		current, err := s.reminderRepo.MaxLevelForInvoice(ctx, tenantID, invoice.ID)
		if err != nil {
			return nil, err
		}
		level = min(current+1, billing.MaxReminderLevel)
	}
	message := req.Message
	if message == "" {
		message = defaultReminderMessage(invoice, level, s.now())
	}
	reminder, err := billing.NewReminder(tenantID, invoice, level, message, s.now())
	if err != nil {
		return nil, err
	}
	if req.SendNow {
		s.deliver(ctx, invoice, reminder)
	}
	return s.save(ctx, reminder)
}

// Send delivers a pending or failed reminder
func (s *ReminderService) Send(ctx context.Context, tenantID, reminderID uuid.UUID) (*ReminderResponse, error) {
	reminder, err := s.reminderRepo.FindByID(ctx, tenantID, reminderID)
	if err != nil {
		return nil, err
	}
	if err := reminder.CanSend(); err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, reminder.InvoiceID)
	if err != nil {
		return nil, err
	}
	s.deliver(ctx, invoice, reminder)
	return s.save(ctx, reminder)
}

// List retrieves reminders matching the filter
func (s *ReminderService) List(ctx context.Context, tenantID uuid.UUID, filter ReminderFilter) ([]ReminderResponse, int64, error) {
	reminders, total, err := s.reminderRepo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ReminderResponse, len(reminders))
	for i := range reminders {
		responses[i] = ToReminderResponse(&reminders[i])
	}
	return responses, total, nil
}

// SendDueReminders creates and sends the next level reminder for each overdue
// invoice whose days overdue reached a threshold not reminded yet. At most one
// level is added per invoice and run.
func (s *ReminderService) SendDueReminders(ctx context.Context, tenantID uuid.UUID) (SweepResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reminder", "send_due")
	defer span.End()

	invoices, err := s.invoiceRepo.FindByStatus(ctx, tenantID, billing.InvoiceStatusOverdue)
	if err != nil {
		telemetry.RecordError(span, err)
		return SweepResult{}, err
	}
	now := s.now()
	var result SweepResult
	for i := range invoices {
		invoice := &invoices[i]
		due := billing.ReminderLevelFor(invoice.DaysOverdue(now))
		if due == 0 {
			continue
		}
		current, err := s.reminderRepo.MaxLevelForInvoice(ctx, tenantID, invoice.ID)
		if err != nil {
			return result, err
		}
		if current >= due {
			continue
		}
		level := current + 1
		reminder, err := billing.NewReminder(tenantID, invoice, level, defaultReminderMessage(invoice, level, now), now)
		if err != nil {
			result.Failed++
			continue
		}
		s.deliver(ctx, invoice, reminder)
		if _, err := s.save(ctx, reminder); err != nil {
			result.Failed++
			s.logger.Error("Failed to save reminder", zap.String("invoice", invoice.Number), zap.Error(err))
			continue
		}
		if reminder.Status == billing.ReminderStatusFailed {
			result.Failed++
			continue
		}
		result.Processed++
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrCount, result.Processed)
	return result, nil
}

// deliver emails the reminder and records the outcome on it
func (s *ReminderService) deliver(ctx context.Context, invoice *billing.Invoice, reminder *billing.Reminder) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PaymentReminder(ctx, invoice, reminder); err != nil {
		s.logger.Warn("Payment reminder delivery failed",
			zap.String("invoice", invoice.Number),
			zap.Int("level", reminder.Level),
			zap.Error(err))
		reminder.MarkFailed(err.Error())
		return
	}
	reminder.MarkSent(s.now())
}

func (s *ReminderService) save(ctx context.Context, reminder *billing.Reminder) (*ReminderResponse, error) {
	if err := s.reminderRepo.Save(ctx, reminder); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, reminder); err != nil {
		return nil, err
	}
	response := ToReminderResponse(reminder)
	return &response, nil
}

func defaultReminderMessage(invoice *billing.Invoice, level int, now time.Time) string {
	switch level {
	case 1:
		return fmt.Sprintf("Invoice %s is %d days past due. Balance: %s %s.",
			invoice.Number, invoice.DaysOverdue(now), invoice.Balance().StringFixed(2), invoice.Currency)
	case 2:
		return fmt.Sprintf("Second reminder: invoice %s remains unpaid (%s %s due since %s).",
			invoice.Number, invoice.Balance().StringFixed(2), invoice.Currency, invoice.DueDate.Format("2006-01-02"))
	default:
		return fmt.Sprintf("Final notice: invoice %s is %d days overdue. Please settle %s %s without delay.",
			invoice.Number, invoice.DaysOverdue(now), invoice.Balance().StringFixed(2), invoice.Currency)
	}
}
