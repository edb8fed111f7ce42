package handler

import (
	"github.com/bizdesk/backend/internal/application/billing"
	"github.com/bizdesk/backend/internal/application/export"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuoteHandler handles quote HTTP requests
type QuoteHandler struct {
	BaseHandler
	quoteService *billing.QuoteService
	exporter     PDFExporter
}

// NewQuoteHandler creates a new quote handler. exporter may be nil.
func NewQuoteHandler(quoteService *billing.QuoteService, exporter PDFExporter) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService, exporter: exporter}
}

// Create godoc
// @Summary      Create a draft quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        request body billing.CreateQuoteRequest true "Quote"
// @Success      201 {object} dto.Response{data=billing.QuoteResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req billing.CreateQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quote)
}

// GetByID godoc
// @Summary      Get a quote
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} dto.Response{data=billing.QuoteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /quotes/{id} [get]
func (h *QuoteHandler) GetByID(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.quoteService.GetByID(c.Request.Context(), tenantID, id)
	})
}

// List godoc
// @Summary      List quotes
// @Tags         quotes
// @Produce      json
// @Param        search    query string false "Number or client name"
// @Param        status    query string false "draft, sent, accepted, rejected, expired or converted"
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        date_from query string false "Issued from (YYYY-MM-DD)"
// @Param        date_to   query string false "Issued until (YYYY-MM-DD)"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]billing.QuoteResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter billing.DocumentFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	quotes, total, err := h.quoteService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, quotes, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a quote
// @Description  Draft and sent quotes can be edited
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id      path string true "Quote ID" format(uuid)
// @Param        request body billing.UpdateQuoteRequest true "Changes"
// @Success      200 {object} dto.Response{data=billing.QuoteResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /quotes/{id} [put]
func (h *QuoteHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req billing.UpdateQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Send godoc
// @Summary      Send a quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id      path string true "Quote ID" format(uuid)
// @Param        request body billing.SendRequest false "Delivery options"
// @Success      200 {object} dto.Response{data=billing.QuoteResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /quotes/{id}/send [post]
func (h *QuoteHandler) Send(c *gin.Context) {
	var req billing.SendRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.quoteService.Send(c.Request.Context(), tenantID, id, req)
	})
}

// Accept godoc
// @Summary      Accept a quote
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} dto.Response{data=billing.QuoteResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /quotes/{id}/accept [post]
func (h *QuoteHandler) Accept(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.quoteService.Accept(c.Request.Context(), tenantID, id)
	})
}

// Reject godoc
// @Summary      Reject a quote
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} dto.Response{data=billing.QuoteResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /quotes/{id}/reject [post]
func (h *QuoteHandler) Reject(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.quoteService.Reject(c.Request.Context(), tenantID, id)
	})
}

// Convert godoc
// @Summary      Convert a quote into a draft invoice
// @Description  Only accepted quotes convert, and only once
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      201 {object} dto.Response{data=billing.InvoiceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /quotes/{id}/convert [post]
func (h *QuoteHandler) Convert(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.quoteService.Convert(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Delete godoc
// @Summary      Delete a quote
// @Tags         quotes
// @Param        id path string true "Quote ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.quoteService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PDF godoc
// @Summary      Download a quote as PDF
// @Tags         quotes
// @Produce      application/pdf
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {file} binary
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /quotes/{id}/pdf [get]
func (h *QuoteHandler) PDF(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	h.writePDF(c, h.exporter, func(e PDFExporter) (*export.Document, error) {
		return e.QuotePDF(c.Request.Context(), tenantID, id)
	})
}
