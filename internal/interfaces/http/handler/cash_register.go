package handler

import (
	"github.com/bizdesk/backend/internal/application/cash"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CashRegisterHandler handles cash register requests
type CashRegisterHandler struct {
	BaseHandler
	registerService *cash.RegisterService
}

// NewCashRegisterHandler creates a new cash register handler
func NewCashRegisterHandler(registerService *cash.RegisterService) *CashRegisterHandler {
	return &CashRegisterHandler{registerService: registerService}
}

// Create godoc
// @Summary      Create a cash register
// @Tags         cash-registers
// @Accept       json
// @Produce      json
// @Param        request body cash.CreateRegisterRequest true "Register"
// @Success      201 {object} dto.Response{data=cash.RegisterResponse}
// @Security     BearerAuth
// @Router       /cash-registers [post]
func (h *CashRegisterHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req cash.CreateRegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	register, err := h.registerService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, register)
}

// GetByID godoc
// @Summary      Get a cash register
// @Tags         cash-registers
// @Produce      json
// @Param        id path string true "Register ID" format(uuid)
// @Success      200 {object} dto.Response{data=cash.RegisterResponse}
// @Security     BearerAuth
// @Router       /cash-registers/{id} [get]
func (h *CashRegisterHandler) GetByID(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.registerService.GetByID(c.Request.Context(), tenantID, id)
	})
}

// List godoc
// @Summary      List cash registers
// @Tags         cash-registers
// @Produce      json
// @Param        search    query string false "Name or location"
// @Param        status    query string false "open or closed"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]cash.RegisterResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /cash-registers [get]
func (h *CashRegisterHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter cash.RegisterListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	registers, total, err := h.registerService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, registers, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Rename or move a cash register
// @Tags         cash-registers
// @Accept       json
// @Produce      json
// @Param        id      path string true "Register ID" format(uuid)
// @Param        request body cash.UpdateRegisterRequest true "Register"
// @Success      200 {object} dto.Response{data=cash.RegisterResponse}
// @Security     BearerAuth
// @Router       /cash-registers/{id} [put]
func (h *CashRegisterHandler) Update(c *gin.Context) {
	var req cash.UpdateRegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.registerService.Update(c.Request.Context(), tenantID, id, req)
	})
}

// Delete godoc
// @Summary      Delete a closed cash register
// @Tags         cash-registers
// @Param        id path string true "Register ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registers/{id} [delete]
func (h *CashRegisterHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.registerService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Open godoc
// @Summary      Open a cash register
// @Tags         cash-registers
// @Accept       json
// @Produce      json
// @Param        id      path string true "Register ID" format(uuid)
// @Param        request body cash.OpenRegisterRequest true "Opening balance"
// @Success      200 {object} dto.Response{data=cash.RegisterResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registers/{id}/open [post]
func (h *CashRegisterHandler) Open(c *gin.Context) {
	var req cash.OpenRegisterRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.registerService.Open(c.Request.Context(), tenantID, id, req)
	})
}

// Close godoc
// @Summary      Close a cash register
// @Description  Records the counted amount against the expected drawer balance
// @Tags         cash-registers
// @Accept       json
// @Produce      json
// @Param        id      path string true "Register ID" format(uuid)
// @Param        request body cash.CloseRegisterRequest true "Count"
// @Success      200 {object} dto.Response{data=cash.ClosingResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registers/{id}/close [post]
func (h *CashRegisterHandler) Close(c *gin.Context) {
	var req cash.CloseRegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.registerService.Close(c.Request.Context(), tenantID, id, req)
	})
}

// RecordMovement godoc
// @Summary      Record a cash movement
// @Tags         cash-registers
// @Accept       json
// @Produce      json
// @Param        id      path string true "Register ID" format(uuid)
// @Param        request body cash.RecordMovementRequest true "Movement"
// @Success      201 {object} dto.Response{data=cash.MovementResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registers/{id}/movements [post]
func (h *CashRegisterHandler) RecordMovement(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req cash.RecordMovementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	movement, err := h.registerService.Record(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// ListMovements godoc
// @Summary      List the movements of a register
// @Tags         cash-registers
// @Produce      json
// @Param        id        path  string true  "Register ID" format(uuid)
// @Param        type      query string false "sale, refund, deposit or withdrawal"
// @Param        method    query string false "cash, card, transfer or check"
// @Param        date_from query string false "From date (YYYY-MM-DD)"
// @Param        date_to   query string false "To date (YYYY-MM-DD)"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]cash.MovementResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /cash-registers/{id}/movements [get]
func (h *CashRegisterHandler) ListMovements(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var filter cash.MovementFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	movements, total, err := h.registerService.ListMovements(c.Request.Context(), tenantID, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// ListClosings godoc
// @Summary      List the closings of a register
// @Tags         cash-registers
// @Produce      json
// @Param        id        path  string true  "Register ID" format(uuid)
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]cash.ClosingResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /cash-registers/{id}/closings [get]
func (h *CashRegisterHandler) ListClosings(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var filter cash.MovementFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	closings, total, err := h.registerService.ListClosings(c.Request.Context(), tenantID, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, closings, total, filter.Page, filter.PageSize)
}
