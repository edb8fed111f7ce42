package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bizdesk/backend/internal/application/export"
	"github.com/bizdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PDFExporter renders invoices and quotes
type PDFExporter interface {
	InvoicePDF(ctx context.Context, tenantID, id uuid.UUID) (*export.Document, error)
	QuotePDF(ctx context.Context, tenantID, id uuid.UUID) (*export.Document, error)
}

// writePDF streams a rendered document. A nil exporter means printing is disabled.
func (h *BaseHandler) writePDF(c *gin.Context, exporter PDFExporter, render func(PDFExporter) (*export.Document, error)) {
	if exporter == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "PDF export is not enabled")
		return
	}
	doc, err := render(exporter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}
