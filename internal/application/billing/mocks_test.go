package billing

import (
	"context"
	"strconv"
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/catalog"
	"github.com/bizdesk/backend/internal/domain/market"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindDueForOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, asOf)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status billing.InvoiceStatus) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindIssuedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsForClient(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Quote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Quote), args.Error(1)
}

func (m *MockQuoteRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Quote, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Quote), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuoteRepository) FindExpirable(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]billing.Quote, error) {
	args := m.Called(ctx, tenantID, asOf)
	return args.Get(0).([]billing.Quote), args.Error(1)
}

func (m *MockQuoteRepository) Save(ctx context.Context, quote *billing.Quote) error {
	return m.Called(ctx, quote).Error(0)
}

func (m *MockQuoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Reminder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Reminder), args.Error(1)
}

func (m *MockReminderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Reminder, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Reminder), args.Get(1).(int64), args.Error(2)
}

func (m *MockReminderRepository) MaxLevelForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Int(0), args.Error(1)
}

func (m *MockReminderRepository) Save(ctx context.Context, reminder *billing.Reminder) error {
	return m.Called(ctx, reminder).Error(0)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*partner.Client, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Client, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.Client, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]partner.Client), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, c *partner.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockClientRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	args := m.Called(ctx, tenantID, sku)
	return args.Bool(0), args.Error(1)
}

type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*market.Market, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*market.Market), args.Error(1)
}

func (m *MockMarketRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]market.Market, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]market.Market), args.Get(1).(int64), args.Error(2)
}

func (m *MockMarketRepository) ExistsByReference(ctx context.Context, tenantID uuid.UUID, reference string) (bool, error) {
	args := m.Called(ctx, tenantID, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockMarketRepository) Save(ctx context.Context, mk *market.Market) error {
	return m.Called(ctx, mk).Error(0)
}

func (m *MockMarketRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, tenantID uuid.UUID) (*settings.CompanySettings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.CompanySettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, s *settings.CompanySettings) error {
	return m.Called(ctx, s).Error(0)
}

// memorySequence counts per document type and year
type memorySequence struct {
	values map[string]int
}

func (s *memorySequence) Next(_ context.Context, _ uuid.UUID, docType billing.DocumentType, year int) (int, error) {
	if s.values == nil {
		s.values = map[string]int{}
	}
	key := string(docType) + "/" + strconv.Itoa(year)
	s.values[key]++
	return s.values[key], nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// recordingScope counts units of work by outcome
type recordingScope struct {
	commits   int
	rollbacks int
}

func (s *recordingScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		s.rollbacks++
		return err
	}
	s.commits++
	return nil
}

type recordedSale struct {
	registerID uuid.UUID
	sale       CashSale
}

type fakeCash struct {
	sales []recordedSale
	err   error
}

func (c *fakeCash) RecordSale(_ context.Context, _ uuid.UUID, registerID uuid.UUID, sale CashSale) error {
	if c.err != nil {
		return c.err
	}
	c.sales = append(c.sales, recordedSale{registerID: registerID, sale: sale})
	return nil
}

type fakeNotifier struct {
	invoices  []string
	links     []string
	quotes    []string
	reminders []int
	err       error
}

func (n *fakeNotifier) InvoiceSent(_ context.Context, invoice *billing.Invoice, pdfURL string) error {
	n.invoices = append(n.invoices, invoice.Number)
	n.links = append(n.links, pdfURL)
	return n.err
}

func (n *fakeNotifier) QuoteSent(_ context.Context, quote *billing.Quote, pdfURL string) error {
	n.quotes = append(n.quotes, quote.Number)
	n.links = append(n.links, pdfURL)
	return n.err
}

func (n *fakeNotifier) PaymentReminder(_ context.Context, _ *billing.Invoice, reminder *billing.Reminder) error {
	n.reminders = append(n.reminders, reminder.Level)
	return n.err
}

type fakeLinker struct{}

func (fakeLinker) InvoiceLink(_ context.Context, invoice *billing.Invoice) (string, error) {
	return "https://files.example.com/" + invoice.Number + ".pdf", nil
}

func (fakeLinker) QuoteLink(_ context.Context, quote *billing.Quote) (string, error) {
	return "https://files.example.com/" + quote.Number + ".pdf", nil
}

type countingMetrics struct {
	issued   map[string]int
	payments decimal.Decimal
}

func (c *countingMetrics) DocumentIssued(docType string) {
	if c.issued == nil {
		c.issued = map[string]int{}
	}
	c.issued[docType]++
}

func (c *countingMetrics) PaymentRecorded(_ string, amount decimal.Decimal) {
	c.payments = c.payments.Add(amount)
}
