package handler

import (
	"github.com/bizdesk/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// ReminderHandler handles payment reminder requests
type ReminderHandler struct {
	BaseHandler
	reminderService *billing.ReminderService
}

func NewReminderHandler(reminderService *billing.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// List godoc
// @Summary      List payment reminders
// @Tags         reminders
// @Produce      json
// @Param        status     query string false "pending, sent or failed"
// @Param        invoice_id query string false "Invoice ID" format(uuid)
// @Param        level      query int    false "Reminder level (1-3)"
// @Param        page       query int    false "Page" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]billing.ReminderResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /reminders [get]
func (h *ReminderHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter billing.ReminderFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	reminders, total, err := h.reminderService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, reminders, total, filter.Page, filter.PageSize)
}

// Create godoc
// @Summary      Create a payment reminder
// @Description  Without a level the next one for the invoice is used
// @Tags         reminders
// @Accept       json
// @Produce      json
// @Param        request body billing.CreateReminderRequest true "Reminder"
// @Success      201 {object} dto.Response{data=billing.ReminderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reminders [post]
func (h *ReminderHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req billing.CreateReminderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	reminder, err := h.reminderService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reminder)
}

// Send godoc
// @Summary      Send a pending or failed reminder
// @Tags         reminders
// @Produce      json
// @Param        id path string true "Reminder ID" format(uuid)
// @Success      200 {object} dto.Response{data=billing.ReminderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reminders/{id}/send [post]
func (h *ReminderHandler) Send(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	reminder, err := h.reminderService.Send(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reminder)
}
