package subscription

import (
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Interval is the billing period of a subscription
type Interval string

const (
	IntervalMonthly   Interval = "monthly"
	IntervalQuarterly Interval = "quarterly"
	IntervalYearly    Interval = "yearly"
)

// Months returns the number of months in one period
func (i Interval) Months() int {
	switch i {
	case IntervalMonthly:
		return 1
	case IntervalQuarterly:
		return 3
	case IntervalYearly:
		return 12
	}
	return 0
}

func (i Interval) IsValid() bool {
	return i.Months() > 0
}

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusEnded     Status = "ended"
)

// Subscription bills a client the same lines every period
type Subscription struct {
	shared.TenantAggregateRoot
	ClientID        uuid.UUID
	Name            string
	Lines           []billing.Line
	Interval        Interval
	StartDate       time.Time
	EndDate         *time.Time
	NextBillingDate time.Time
	Status          Status
	AutoSend        bool
	LastInvoiceID   *uuid.UUID
	LastBilledAt    *time.Time
}

func NewSubscription(tenantID, clientID uuid.UUID, name string, interval Interval, start time.Time, lines []billing.Line) (*Subscription, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client is required")
	}
	if start.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Start date is required")
	}
	start = day(start)
	s := &Subscription{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		StartDate:           start,
		NextBillingDate:     start,
		Status:              StatusActive,
	}
	if err := s.Update(name, interval, nil, lines, false); err != nil {
		return nil, err
	}
	s.ClearDomainEvents()
	s.AddDomainEvent(newSubscriptionEvent(EventTypeSubscriptionCreated, s))
	return s, nil
}

// SetTerms sets the optional end date and automatic sending of a new subscription
func (s *Subscription) SetTerms(endDate *time.Time, autoSend bool) error {
	if endDate != nil {
		e := day(*endDate)
		if e.Before(s.StartDate) {
			return shared.NewDomainError("INVALID_DATE", "End date cannot be before start date")
		}
		endDate = &e
	}
	s.EndDate = endDate
	s.AutoSend = autoSend
	return nil
}

// Update changes the billed content. Changing the interval keeps the next billing date.
func (s *Subscription) Update(name string, interval Interval, endDate *time.Time, lines []billing.Line, autoSend bool) error {
	if s.Status == StatusCancelled || s.Status == StatusEnded {
		return shared.NewInvalidStateError("Cancelled or ended subscriptions cannot be edited")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Subscription name must be between 1 and 200 characters")
	}
	if !interval.IsValid() {
		return shared.NewDomainError("INVALID_INTERVAL", "Interval must be monthly, quarterly or yearly")
	}
	if len(lines) == 0 {
		return shared.NewDomainError("EMPTY_DOCUMENT", "A subscription needs at least one line")
	}
	for i := range lines {
		l, err := billing.NewLine(lines[i].ProductID, lines[i].Description, lines[i].Quantity, lines[i].UnitPrice, lines[i].VATRate, lines[i].DiscountPercent)
		if err != nil {
			return err
		}
		lines[i] = l
	}
	if endDate != nil {
		e := day(*endDate)
		if e.Before(s.StartDate) {
			return shared.NewDomainError("INVALID_DATE", "End date cannot be before start date")
		}
		endDate = &e
	}
	s.Name = name
	s.Interval = interval
	s.EndDate = endDate
	s.Lines = lines
	s.AutoSend = autoSend
	s.Touch()
	s.AddDomainEvent(newSubscriptionEvent(EventTypeSubscriptionUpdated, s))
	return nil
}

func (s *Subscription) Pause() error {
	if s.Status != StatusActive {
		return shared.NewInvalidStateError("Only active subscriptions can be paused")
	}
	s.Status = StatusPaused
	s.Touch()
	s.AddDomainEvent(newSubscriptionEvent(EventTypeSubscriptionPaused, s))
	return nil
}

// Resume reactivates a paused subscription. Periods missed while paused are
// skipped: the next billing date moves to the first period boundary on or after now.
func (s *Subscription) Resume(now time.Time) error {
	if s.Status != StatusPaused {
		return shared.NewInvalidStateError("Only paused subscriptions can be resumed")
	}
	today := day(now)
	for s.NextBillingDate.Before(today) {
		s.NextBillingDate = s.periodAfter(s.NextBillingDate)
	}
	s.Status = StatusActive
	s.Touch()
	s.AddDomainEvent(newSubscriptionEvent(EventTypeSubscriptionResumed, s))
	return nil
}

func (s *Subscription) Cancel() error {
	if s.Status == StatusCancelled || s.Status == StatusEnded {
		return shared.NewInvalidStateError("Subscription is already terminated")
	}
	s.Status = StatusCancelled
	s.Touch()
	s.AddDomainEvent(newSubscriptionEvent(EventTypeSubscriptionCancelled, s))
	return nil
}

// IsDue reports whether a period must be billed as of the given date
func (s *Subscription) IsDue(asOf time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	if s.EndDate != nil && s.NextBillingDate.After(*s.EndDate) {
		return false
	}
	return !s.NextBillingDate.After(day(asOf))
}

// MarkBilled records the invoice of the current period and advances to the next
// one, ending the subscription once the next period starts after the end date.
func (s *Subscription) MarkBilled(invoiceID uuid.UUID, at time.Time) time.Time {
	billed := s.NextBillingDate
	s.LastInvoiceID = &invoiceID
	s.LastBilledAt = &at
	s.NextBillingDate = s.periodAfter(billed)
	if s.EndDate != nil && s.NextBillingDate.After(*s.EndDate) {
		s.Status = StatusEnded
	}
	s.Touch()
	s.AddDomainEvent(newSubscriptionEvent(EventTypeSubscriptionBilled, s))
	return billed
}

// PeriodKey identifies the period starting at the current next billing date
func (s *Subscription) PeriodKey() string {
	return s.ID.String() + ":" + s.NextBillingDate.Format("2006-01-02")
}

// MonthlyAmount normalizes the recurring net amount to one month
func (s *Subscription) MonthlyAmount() decimal.Decimal {
	total := billing.ComputeTotals(s.Lines).Subtotal
	return shared.RoundMoney(total.Div(decimal.NewFromInt(int64(s.Interval.Months()))))
}

// periodAfter adds one interval anchored on the start day, clamping to the
// last day of shorter months (Jan 31 -> Feb 28 -> Mar 31).
func (s *Subscription) periodAfter(from time.Time) time.Time {
	return AddMonthsClamped(s.StartDate, monthsBetween(s.StartDate, from)+s.Interval.Months())
}

// AddMonthsClamped adds n months to anchor keeping its day of month when possible
func AddMonthsClamped(anchor time.Time, n int) time.Time {
	y, m, d := anchor.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
