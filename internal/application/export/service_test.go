package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/printing"
	"github.com/bizdesk/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockInvoiceRepository struct {
	mock.Mock
	billing.InvoiceRepository
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
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

type stubSettings struct{}

func (stubSettings) Get(context.Context, uuid.UUID) (*settings.CompanySettings, error) {
	return nil, shared.ErrNotFound
}

func (stubSettings) Save(context.Context, *settings.CompanySettings) error { return nil }

// fakePDF returns the HTML bytes instead of a real PDF
type fakePDF struct {
	requests []*printing.RenderRequest
	err      error
}

func (r *fakePDF) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.requests = append(r.requests, req)
	return &printing.RenderResult{PDFData: []byte(req.HTML), PageCount: 1}, nil
}

func (r *fakePDF) Close() error { return nil }

type fixture struct {
	tenantID uuid.UUID
	invoices *MockInvoiceRepository
	clients  *MockClientRepository
	pdf      *fakePDF
	store    *storage.MemoryObjectStore
	invoice  *billing.Invoice
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tenantID: uuid.New(),
		invoices: new(MockInvoiceRepository),
		clients:  new(MockClientRepository),
		pdf:      &fakePDF{},
		store:    storage.NewMemoryObjectStore(),
	}
	c, err := partner.NewClient(f.tenantID, "C001", "Maison Blanc", partner.ClientTypeCompany)
	require.NoError(t, err)
	f.clients.On("FindByID", mock.Anything, f.tenantID, c.ID).Return(c, nil)

	issue := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	inv, err := billing.NewInvoice(f.tenantID, "INV-2026-0012", c.ID, issue, issue.AddDate(0, 0, 30), "EUR")
	require.NoError(t, err)
	l, err := billing.NewLine(nil, "Design work", decimal.NewFromInt(3), decimal.NewFromInt(100), decimal.NewFromInt(20), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, inv.SetLines([]billing.Line{l}))
	f.invoice = inv
	f.invoices.On("FindByID", mock.Anything, f.tenantID, inv.ID).Return(inv, nil)
	return f
}

func (f *fixture) service(t *testing.T, store storage.ObjectStore) *Service {
	t.Helper()
	engine, err := printing.NewTemplateEngine()
	require.NoError(t, err)
	return NewService(f.invoices, nil, f.clients, stubSettings{}, engine, f.pdf, store, time.Hour, zap.NewNop())
}

func TestService_InvoicePDF(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, f.store)

	doc, err := svc.InvoicePDF(context.Background(), f.tenantID, f.invoice.ID)

	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0012.pdf", doc.Filename)
	assert.Contains(t, string(doc.Data), "Maison Blanc")
	assert.Contains(t, string(doc.Data), "Design work")
	require.Len(t, f.pdf.requests, 1)
	assert.Equal(t, "Invoice INV-2026-0012", f.pdf.requests[0].Title)
	assert.Equal(t, printing.DefaultMargins, f.pdf.requests[0].Margins)
	assert.Equal(t, []string{documentKey(f.tenantID, "invoices", "INV-2026-0012")}, f.store.Keys("documents/"))
}

func TestService_InvoiceLink(t *testing.T) {
	t.Run("empty without storage", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t, nil)

		link, err := svc.InvoiceLink(context.Background(), f.invoice)

		require.NoError(t, err)
		assert.Empty(t, link)
		assert.Empty(t, f.pdf.requests)
	})

	t.Run("uploads and presigns", func(t *testing.T) {
		f := newFixture(t)
		svc := f.service(t, f.store)

		link, err := svc.InvoiceLink(context.Background(), f.invoice)

		require.NoError(t, err)
		assert.Contains(t, link, "documents/"+f.tenantID.String()+"/invoices/INV-2026-0012.pdf")
	})

	t.Run("render failure", func(t *testing.T) {
		f := newFixture(t)
		f.pdf.err = printing.NewRenderError(printing.ErrCodeRenderTimeout, "timeout", errors.New("deadline"))
		svc := f.service(t, f.store)

		_, err := svc.InvoiceLink(context.Background(), f.invoice)

		var renderErr *printing.RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Empty(t, f.store.Keys("documents/"))
	})
}
