// Package export renders invoices and quotes to PDF and shares them through
// object storage.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	appbilling "github.com/bizdesk/backend/internal/application/billing"
	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/printing"
	"github.com/bizdesk/backend/internal/infrastructure/storage"
	"github.com/bizdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTMLRenderer turns a document view into markup
type HTMLRenderer interface {
	Render(ctx context.Context, view *printing.DocumentView) (string, error)
}

// Document is a rendered PDF
type Document struct {
	Filename string
	Data     []byte
	Pages    int
}

type Service struct {
	invoiceRepo  billing.InvoiceRepository
	quoteRepo    billing.QuoteRepository
	clientRepo   partner.ClientRepository
	settingsRepo settings.Repository
	templates    HTMLRenderer
	renderer     printing.PDFRenderer
	store        storage.ObjectStore
	linkExpiry   time.Duration
	logger       *zap.Logger
}

// NewService creates an export Service. Without a store documents are only
// streamed and links are empty.
func NewService(
	invoiceRepo billing.InvoiceRepository,
	quoteRepo billing.QuoteRepository,
	clientRepo partner.ClientRepository,
	settingsRepo settings.Repository,
	templates HTMLRenderer,
	renderer printing.PDFRenderer,
	store storage.ObjectStore,
	linkExpiry time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		invoiceRepo:  invoiceRepo,
		quoteRepo:    quoteRepo,
		clientRepo:   clientRepo,
		settingsRepo: settingsRepo,
		templates:    templates,
		renderer:     renderer,
		store:        store,
		linkExpiry:   linkExpiry,
		logger:       logger,
	}
}

// InvoicePDF renders an invoice and keeps a copy in storage when configured
func (s *Service) InvoicePDF(ctx context.Context, tenantID, id uuid.UUID) (*Document, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.renderInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}
	s.keep(ctx, documentKey(tenantID, "invoices", inv.Number), doc)
	return doc, nil
}

func (s *Service) QuotePDF(ctx context.Context, tenantID, id uuid.UUID) (*Document, error) {
	q, err := s.quoteRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.renderQuote(ctx, q)
	if err != nil {
		return nil, err
	}
	s.keep(ctx, documentKey(tenantID, "quotes", q.Number), doc)
	return doc, nil
}

// InvoiceLink uploads the invoice PDF and returns a presigned URL
func (s *Service) InvoiceLink(ctx context.Context, inv *billing.Invoice) (string, error) {
	if s.store == nil {
		return "", nil
	}
	doc, err := s.renderInvoice(ctx, inv)
	if err != nil {
		return "", err
	}
	return s.share(ctx, documentKey(inv.TenantID, "invoices", inv.Number), doc)
}

func (s *Service) QuoteLink(ctx context.Context, q *billing.Quote) (string, error) {
	if s.store == nil {
		return "", nil
	}
	doc, err := s.renderQuote(ctx, q)
	if err != nil {
		return "", err
	}
	return s.share(ctx, documentKey(q.TenantID, "quotes", q.Number), doc)
}

func (s *Service) renderInvoice(ctx context.Context, inv *billing.Invoice) (*Document, error) {
	cs, client, err := s.parties(ctx, inv.TenantID, inv.ClientID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, invoiceView(inv, cs, client))
}

func (s *Service) renderQuote(ctx context.Context, q *billing.Quote) (*Document, error) {
	cs, client, err := s.parties(ctx, q.TenantID, q.ClientID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, quoteView(q, cs, client))
}

func (s *Service) render(ctx context.Context, view *printing.DocumentView) (*Document, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "export", "render_pdf")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrDocumentNumber, view.Number)

	html, err := s.templates.Render(ctx, view)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:    html,
		Title:   view.Title(),
		Margins: printing.DefaultMargins,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Debug("Document rendered",
		zap.String("number", view.Number),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return &Document{Filename: view.Number + ".pdf", Data: result.PDFData, Pages: result.PageCount}, nil
}

func (s *Service) share(ctx context.Context, key string, doc *Document) (string, error) {
	if err := s.store.Put(ctx, key, doc.Data, "application/pdf"); err != nil {
		return "", err
	}
	url, _, err := s.store.PresignGet(ctx, key, s.linkExpiry)
	if err != nil {
		return "", err
	}
	return url, nil
}

// keep stores a streamed document; failures only cost the stored copy
func (s *Service) keep(ctx context.Context, key string, doc *Document) {
	if s.store == nil {
		return
	}
	if err := s.store.Put(ctx, key, doc.Data, "application/pdf"); err != nil {
		s.logger.Warn("Failed to store document", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) parties(ctx context.Context, tenantID, clientID uuid.UUID) (*settings.CompanySettings, *partner.Client, error) {
	cs, err := s.settingsRepo.Get(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		cs = settings.Defaults(tenantID, "")
	} else if err != nil {
		return nil, nil, err
	}
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, nil, err
	}
	return cs, client, nil
}

func documentKey(tenantID uuid.UUID, kind, number string) string {
	return fmt.Sprintf("documents/%s/%s/%s.pdf", tenantID, kind, number)
}

var _ appbilling.DocumentLinker = (*Service)(nil)
