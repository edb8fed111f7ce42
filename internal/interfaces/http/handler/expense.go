package handler

import (
	"github.com/bizdesk/backend/internal/application/purchase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExpenseHandler handles expense requests
type ExpenseHandler struct {
	BaseHandler
	expenseService *purchase.ExpenseService
}

func NewExpenseHandler(expenseService *purchase.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// Create godoc
// @Summary      Record an expense
// @Description  VAT defaults to the company's standard rate
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body purchase.ExpenseRequest true "Expense"
// @Success      201 {object} dto.Response{data=purchase.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req purchase.ExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expense, err := h.expenseService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// GetByID godoc
// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID" format(uuid)
// @Success      200 {object} dto.Response{data=purchase.ExpenseResponse}
// @Security     BearerAuth
// @Router       /expenses/{id} [get]
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.expenseService.GetByID(c.Request.Context(), tenantID, id)
	})
}

// List godoc
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        search    query string false "Description or reference"
// @Param        vendor_id query string false "Vendor ID" format(uuid)
// @Param        category  query string false "Category"
// @Param        date_from query string false "From date (YYYY-MM-DD)"
// @Param        date_to   query string false "To date (YYYY-MM-DD)"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]purchase.ExpenseResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter purchase.ExpenseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	expenses, total, err := h.expenseService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, expenses, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id      path string true "Expense ID" format(uuid)
// @Param        request body purchase.ExpenseRequest true "Expense"
// @Success      200 {object} dto.Response{data=purchase.ExpenseResponse}
// @Security     BearerAuth
// @Router       /expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	var req purchase.ExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.expenseService.Update(c.Request.Context(), tenantID, id, req)
	})
}

// Delete godoc
// @Summary      Delete an expense
// @Tags         expenses
// @Param        id path string true "Expense ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.expenseService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
