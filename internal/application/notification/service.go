// Package notification emails documents, reminders and alerts.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	appbilling "github.com/bizdesk/backend/internal/application/billing"
	"github.com/bizdesk/backend/internal/domain/alert"
	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/mail"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ErrNoRecipient means the client or tenant has no email address on file
var ErrNoRecipient = shared.NewDomainError("NO_RECIPIENT", "No email address on file")

// Service renders notification emails and hands them to the mailer
type Service struct {
	mailer       mail.Mailer
	clientRepo   partner.ClientRepository
	userRepo     identity.UserRepository
	settingsRepo settings.Repository
	templates    *templates
	logger       *zap.Logger
}

func NewService(
	mailer mail.Mailer,
	clientRepo partner.ClientRepository,
	userRepo identity.UserRepository,
	settingsRepo settings.Repository,
	logger *zap.Logger,
) (*Service, error) {
	t, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Service{
		mailer:       mailer,
		clientRepo:   clientRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		templates:    t,
		logger:       logger,
	}, nil
}

// InvoiceSent emails an issued invoice to its client
func (s *Service) InvoiceSent(ctx context.Context, invoice *billing.Invoice, pdfURL string) error {
	company, client, err := s.parties(ctx, invoice.TenantID, invoice.ClientID)
	if err != nil {
		return err
	}
	v := s.documentView(company, client, &invoice.Document, pdfURL)
	v.DueDate = invoice.DueDate.Format(dateLayout)
	return s.send(ctx, "invoice_sent", v, &mail.Message{
		To:      []string{client.Contact.Email},
		ReplyTo: company.Email,
		Subject: fmt.Sprintf("Invoice %s from %s", invoice.Number, company.CompanyName),
		Tags:    map[string]string{"type": "invoice", "tenant": invoice.TenantID.String()},
	}, pdfURL, invoice.Number)
}

// QuoteSent emails a quote to its client
func (s *Service) QuoteSent(ctx context.Context, quote *billing.Quote, pdfURL string) error {
	company, client, err := s.parties(ctx, quote.TenantID, quote.ClientID)
	if err != nil {
		return err
	}
	v := s.documentView(company, client, &quote.Document, pdfURL)
	v.DueDate = quote.ValidUntil.Format(dateLayout)
	return s.send(ctx, "quote_sent", v, &mail.Message{
		To:      []string{client.Contact.Email},
		ReplyTo: company.Email,
		Subject: fmt.Sprintf("Quote %s from %s", quote.Number, company.CompanyName),
		Tags:    map[string]string{"type": "quote", "tenant": quote.TenantID.String()},
	}, pdfURL, quote.Number)
}

// PaymentReminder emails a reminder for an unpaid invoice
func (s *Service) PaymentReminder(ctx context.Context, invoice *billing.Invoice, reminder *billing.Reminder) error {
	company, client, err := s.parties(ctx, invoice.TenantID, invoice.ClientID)
	if err != nil {
		return err
	}
	v := s.documentView(company, client, &invoice.Document, "")
	v.Amount = invoice.Balance().StringFixed(2)
	v.DueDate = invoice.DueDate.Format(dateLayout)
	v.Message = reminder.Message
	subject := fmt.Sprintf("Payment reminder: invoice %s", invoice.Number)
	if reminder.Level == billing.MaxReminderLevel {
		subject = fmt.Sprintf("Final notice: invoice %s", invoice.Number)
	}
	return s.send(ctx, "payment_reminder", v, &mail.Message{
		To:      []string{client.Contact.Email},
		ReplyTo: company.Email,
		Subject: subject,
		Tags: map[string]string{
			"type":   "reminder",
			"level":  strconv.Itoa(reminder.Level),
			"tenant": invoice.TenantID.String(),
		},
	}, "", invoice.Number)
}

// ValidationAlert emails the active admins of the tenant
func (s *Service) ValidationAlert(ctx context.Context, a *alert.Alert) error {
	company, err := s.company(ctx, a.TenantID)
	if err != nil {
		return err
	}
	admins, err := s.userRepo.FindByRole(ctx, a.TenantID, identity.RoleAdmin)
	if err != nil {
		return err
	}
	var to []string
	userName := a.UserID.String()
	for _, u := range admins {
		if u.Status == identity.UserStatusActive && u.Email != "" {
			to = append(to, u.Email)
		}
	}
	if u, err := s.userRepo.FindByID(ctx, a.TenantID, a.UserID); err == nil {
		userName = u.Name()
	}
	if len(to) == 0 {
		return ErrNoRecipient
	}
	v := view{
		Company:    company.CompanyName,
		ClientName: userName,
		Number:     a.Form,
		Amount:     strconv.Itoa(a.Failures),
		IssueDate:  a.WindowStart.Format("2006-01-02 15:04"),
		Message:    strings.Join(a.Fields, ", "),
	}
	return s.send(ctx, "validation_alert", v, &mail.Message{
		To:      to,
		Subject: fmt.Sprintf("Repeated validation failures on %s", a.Form),
		Tags:    map[string]string{"type": "alert", "tenant": a.TenantID.String()},
	}, "", "")
}

// SendEmail sends a caller composed message
func (s *Service) SendEmail(ctx context.Context, tenantID uuid.UUID, req SendEmailRequest) (*SendEmailResponse, error) {
	msg := &mail.Message{
		To:      req.To,
		ReplyTo: req.ReplyTo,
		Subject: req.Subject,
		HTML:    req.HTML,
		Text:    req.Text,
		Tags:    map[string]string{"type": "custom", "tenant": tenantID.String()},
	}
	receipt, err := s.mailer.Send(ctx, msg)
	if err != nil {
		if errors.Is(err, mail.ErrInvalidMessage) {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
		}
		return nil, err
	}
	return &SendEmailResponse{ID: receipt.ID, Provider: receipt.Provider}, nil
}

func (s *Service) parties(ctx context.Context, tenantID, clientID uuid.UUID) (*settings.CompanySettings, *partner.Client, error) {
	company, err := s.company(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, nil, err
	}
	if client.Contact.Email == "" {
		return nil, nil, ErrNoRecipient
	}
	return company, client, nil
}

func (s *Service) company(ctx context.Context, tenantID uuid.UUID) (*settings.CompanySettings, error) {
	cs, err := s.settingsRepo.Get(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		return settings.Defaults(tenantID, ""), nil
	}
	return cs, err
}

func (s *Service) documentView(company *settings.CompanySettings, client *partner.Client, doc *billing.Document, link string) view {
	return view{
		Company:    company.CompanyName,
		Footer:     company.FooterNote,
		ClientName: client.Name,
		Number:     doc.Number,
		IssueDate:  doc.IssueDate.Format(dateLayout),
		Amount:     doc.Totals.Total.StringFixed(2),
		Currency:   doc.Currency,
		Link:       link,
	}
}

func (s *Service) send(ctx context.Context, template string, v view, msg *mail.Message, pdfURL, number string) error {
	html, err := s.templates.render(template, v)
	if err != nil {
		return err
	}
	msg.HTML = html
	if pdfURL != "" {
		msg.Attachments = []mail.Attachment{{Filename: number + ".pdf", ContentType: "application/pdf", Path: pdfURL}}
	}
	receipt, err := s.mailer.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send %s email: %w", template, err)
	}
	s.logger.Debug("Notification sent",
		zap.String("template", template),
		zap.String("provider", receipt.Provider),
		zap.String("message_id", receipt.ID))
	return nil
}

var _ appbilling.Notifier = (*Service)(nil)
