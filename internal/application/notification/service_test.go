package notification

import (
	"context"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/alert"
	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/mail"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMailer struct {
	sent []*mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg *mail.Message) (*mail.Receipt, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, msg)
	return &mail.Receipt{ID: "msg_1", Provider: "test"}, nil
}

type MockClientRepository struct {
	mock.Mock
	partner.ClientRepository
}

func (m *MockClientRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
	identity.UserRepository
}

func (m *MockUserRepository) FindByRole(ctx context.Context, tenantID uuid.UUID, role identity.Role) ([]identity.User, error) {
	args := m.Called(ctx, tenantID, role)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

type stubSettings struct {
	settings *settings.CompanySettings
}

func (s stubSettings) Get(_ context.Context, tenantID uuid.UUID) (*settings.CompanySettings, error) {
	if s.settings == nil {
		return nil, shared.ErrNotFound
	}
	return s.settings, nil
}

func (s stubSettings) Save(context.Context, *settings.CompanySettings) error { return nil }

type fixture struct {
	tenantID uuid.UUID
	mailer   *recordingMailer
	clients  *MockClientRepository
	users    *MockUserRepository
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tenantID: uuid.New(),
		mailer:   &recordingMailer{},
		clients:  new(MockClientRepository),
		users:    new(MockUserRepository),
	}
	company := settings.Defaults(f.tenantID, "Atelier Nord")
	company.Email = "billing@atelier.example"
	svc, err := NewService(f.mailer, f.clients, f.users, stubSettings{settings: company}, zap.NewNop())
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) client(t *testing.T, email string) *partner.Client {
	t.Helper()
	c, err := partner.NewClient(f.tenantID, "C001", "Maison Blanc", partner.ClientTypeCompany)
	require.NoError(t, err)
	c.Contact.Email = email
	f.clients.On("FindByID", mock.Anything, f.tenantID, c.ID).Return(c, nil)
	return c
}

func (f *fixture) invoice(t *testing.T, clientID uuid.UUID) *billing.Invoice {
	t.Helper()
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inv, err := billing.NewInvoice(f.tenantID, "INV-2026-0007", clientID, issue, issue.AddDate(0, 0, 30), "EUR")
	require.NoError(t, err)
	l, err := billing.NewLine(nil, "Consulting", decimal.NewFromInt(2), decimal.NewFromInt(250), decimal.NewFromInt(20), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, inv.SetLines([]billing.Line{l}))
	return inv
}

func TestService_InvoiceSent(t *testing.T) {
	t.Run("attaches the PDF link", func(t *testing.T) {
		f := newFixture(t)
		c := f.client(t, "accounts@maison.example")
		inv := f.invoice(t, c.ID)

		err := f.svc.InvoiceSent(context.Background(), inv, "https://files.example/inv.pdf")

		require.NoError(t, err)
		require.Len(t, f.mailer.sent, 1)
		msg := f.mailer.sent[0]
		assert.Equal(t, []string{"accounts@maison.example"}, msg.To)
		assert.Equal(t, "billing@atelier.example", msg.ReplyTo)
		assert.Equal(t, "Invoice INV-2026-0007 from Atelier Nord", msg.Subject)
		assert.Contains(t, msg.HTML, "600.00 EUR")
		assert.Contains(t, msg.HTML, "2026-03-31")
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "INV-2026-0007.pdf", msg.Attachments[0].Filename)
	})

	t.Run("client without email", func(t *testing.T) {
		f := newFixture(t)
		c := f.client(t, "")

		err := f.svc.InvoiceSent(context.Background(), f.invoice(t, c.ID), "")

		assert.ErrorIs(t, err, ErrNoRecipient)
		assert.Empty(t, f.mailer.sent)
	})
}

func TestService_PaymentReminder(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "accounts@maison.example")
	inv := f.invoice(t, c.ID)
	require.NoError(t, inv.Send(inv.IssueDate))
	reminder, err := billing.NewReminder(f.tenantID, inv, billing.MaxReminderLevel, "Please pay <now>", time.Now())
	require.NoError(t, err)

	require.NoError(t, f.svc.PaymentReminder(context.Background(), inv, reminder))

	msg := f.mailer.sent[0]
	assert.Equal(t, "Final notice: invoice INV-2026-0007", msg.Subject)
	assert.Contains(t, msg.HTML, "Please pay &lt;now&gt;")
	assert.Equal(t, "3", msg.Tags["level"])
}

func TestService_ValidationAlert(t *testing.T) {
	f := newFixture(t)
	admin, err := identity.NewUser(f.tenantID, "boss", "boss@atelier.example", "Secret123!", identity.RoleAdmin)
	require.NoError(t, err)
	disabled, err := identity.NewUser(f.tenantID, "old", "old@atelier.example", "Secret123!", identity.RoleAdmin)
	require.NoError(t, err)
	disabled.Status = identity.UserStatusDisabled
	f.users.On("FindByRole", mock.Anything, f.tenantID, identity.RoleAdmin).Return([]identity.User{*admin, *disabled}, nil)
	userID := uuid.New()
	f.users.On("FindByID", mock.Anything, f.tenantID, userID).Return(nil, shared.ErrNotFound)

	err = f.svc.ValidationAlert(context.Background(), &alert.Alert{
		TenantID: f.tenantID, UserID: userID, Form: "invoice", Failures: 3,
		Fields: []string{"client_id", "lines"}, WindowStart: time.Now(),
	})

	require.NoError(t, err)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{"boss@atelier.example"}, f.mailer.sent[0].To)
	assert.Contains(t, f.mailer.sent[0].HTML, "client_id, lines")
}

func TestService_SendEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SendEmail(context.Background(), f.tenantID, SendEmailRequest{To: []string{"not-an-address"}, Subject: "Hi", Text: "x"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	resp, err := f.svc.SendEmail(context.Background(), f.tenantID, SendEmailRequest{To: []string{"a@b.example"}, Subject: "Hi", Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "msg_1", resp.ID)
}
