package handler

import (
	"github.com/bizdesk/backend/internal/application/tax"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaxHandler handles VAT declaration requests
type TaxHandler struct {
	BaseHandler
	taxService *tax.Service
}

func NewTaxHandler(taxService *tax.Service) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

// Generate godoc
// @Summary      Generate a VAT declaration
// @Description  Computes collected and deductible VAT for a month or quarter. A draft for the same period is replaced.
// @Tags         tax
// @Accept       json
// @Produce      json
// @Param        request body tax.GenerateRequest true "Period"
// @Success      201 {object} dto.Response{data=tax.DeclarationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tax/declarations/generate [post]
func (h *TaxHandler) Generate(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req tax.GenerateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	declaration, err := h.taxService.Generate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, declaration)
}

// Submit godoc
// @Summary      Submit a VAT declaration
// @Description  Submitted declarations are frozen
// @Tags         tax
// @Produce      json
// @Param        id path string true "Declaration ID" format(uuid)
// @Success      200 {object} dto.Response{data=tax.DeclarationResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tax/declarations/{id}/submit [post]
func (h *TaxHandler) Submit(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.taxService.Submit(c.Request.Context(), tenantID, id)
	})
}

// GetByID godoc
// @Summary      Get a VAT declaration
// @Tags         tax
// @Produce      json
// @Param        id path string true "Declaration ID" format(uuid)
// @Success      200 {object} dto.Response{data=tax.DeclarationResponse}
// @Security     BearerAuth
// @Router       /tax/declarations/{id} [get]
func (h *TaxHandler) GetByID(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.taxService.GetByID(c.Request.Context(), tenantID, id)
	})
}

// List godoc
// @Summary      List VAT declarations
// @Tags         tax
// @Produce      json
// @Param        status    query string false "draft or submitted"
// @Param        frequency query string false "monthly or quarterly"
// @Param        year      query int    false "Year"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]tax.DeclarationResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /tax/declarations [get]
func (h *TaxHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter tax.DeclarationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	declarations, total, err := h.taxService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, declarations, total, filter.Page, filter.PageSize)
}

// Delete godoc
// @Summary      Delete a draft VAT declaration
// @Tags         tax
// @Param        id path string true "Declaration ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tax/declarations/{id} [delete]
func (h *TaxHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.taxService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
