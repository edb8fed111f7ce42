package inventory

import (
	"context"
	"errors"
	"fmt"

	appaudit "github.com/bizdesk/backend/internal/application/audit"
	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/inventory"
	"github.com/bizdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const referenceTypeInvoice = "invoice"

// InvoiceStockHandler issues stock when an invoice is sent and takes it back
// when an issued invoice is cancelled.
type InvoiceStockHandler struct {
	stock  *StockService
	logger *zap.Logger
}

// NewInvoiceStockHandler creates a new InvoiceStockHandler
func NewInvoiceStockHandler(stock *StockService, logger *zap.Logger) *InvoiceStockHandler {
	return &InvoiceStockHandler{stock: stock, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoiceStockHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoiceSent, billing.EventTypeInvoiceCancelled}
}

// Handle dispatches on the invoice event type
func (h *InvoiceStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*billing.InvoiceEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	switch e.EventType() {
	case billing.EventTypeInvoiceSent:
		return h.issue(ctx, e)
	case billing.EventTypeInvoiceCancelled:
		if !e.PreviousStatus.Issued() {
			return nil
		}
		return h.restore(ctx, e)
	}
	return nil
}

func (h *InvoiceStockHandler) issue(ctx context.Context, e *billing.InvoiceEvent) error {
	invoiceID := e.AggregateID()
	createdBy := appaudit.SourceFrom(ctx).UserID
	var errs []error
	for _, line := range e.Lines {
		_, err := h.stock.Issue(ctx, e.TenantID(), StockOperationRequest{
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			Reason:        "Invoice " + e.Number,
			ReferenceType: referenceTypeInvoice,
			ReferenceID:   &invoiceID,
			CreatedBy:     createdBy,
		})
		switch {
		case err == nil:
		case isSkippable(err):
			h.logger.Debug("Skipping untracked invoice line", zap.String("product_id", line.ProductID.String()))
		case errors.Is(err, shared.ErrInsufficientStock):
			// the invoice is already issued; the shortfall is left for a manual adjustment
			h.logger.Warn("Insufficient stock for invoice line",
				zap.String("invoice", e.Number),
				zap.String("product_id", line.ProductID.String()),
				zap.String("quantity", line.Quantity.String()))
		default:
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// restore receives back exactly what the invoice issued
func (h *InvoiceStockHandler) restore(ctx context.Context, e *billing.InvoiceEvent) error {
	invoiceID := e.AggregateID()
	movements, _, err := h.stock.stockRepo.FindMovements(ctx, e.TenantID(), shared.Filter{
		Page:     1,
		PageSize: shared.MaxPageSize,
		Filters: map[string]interface{}{
			"reference_id": invoiceID,
			"type":         string(inventory.MovementOut),
		},
	}.Normalize())
	if err != nil {
		return err
	}

	createdBy := appaudit.SourceFrom(ctx).UserID
	var errs []error
	for _, m := range movements {
		_, err := h.stock.Receive(ctx, e.TenantID(), StockOperationRequest{
			ProductID:     m.ProductID,
			Quantity:      m.Quantity,
			Reason:        "Cancelled invoice " + e.Number,
			ReferenceType: referenceTypeInvoice,
			ReferenceID:   &invoiceID,
			CreatedBy:     createdBy,
		})
		if err != nil && !isSkippable(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// products deleted or no longer tracked since the invoice was written
func isSkippable(err error) bool {
	var de *shared.DomainError
	if errors.As(err, &de) && de.Code == "PRODUCT_NOT_TRACKED" {
		return true
	}
	return errors.Is(err, shared.ErrNotFound)
}

var _ shared.EventHandler = (*InvoiceStockHandler)(nil)
