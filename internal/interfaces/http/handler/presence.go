package handler

import (
	"github.com/bizdesk/backend/internal/application/alert"
	"github.com/bizdesk/backend/internal/application/presence"
	"github.com/gin-gonic/gin"
)

// PresenceHandler tracks who is online and collects client side form alerts
type PresenceHandler struct {
	BaseHandler
	presenceService *presence.Service
	alertService    *alert.Service
}

// NewPresenceHandler creates a new presence handler
func NewPresenceHandler(presenceService *presence.Service, alertService *alert.Service) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService, alertService: alertService}
}

// AlertResponse reports whether a validation alert was raised
type AlertResponse struct {
	Raised bool `json:"raised"`
}

// Heartbeat godoc
// @Summary      Presence heartbeat
// @Description  Marks the caller online and returns who else is
// @Tags         presence
// @Accept       json
// @Produce      json
// @Param        request body presence.HeartbeatRequest false "Current page"
// @Success      200 {object} dto.Response{data=[]presence.Entry}
// @Security     BearerAuth
// @Router       /presence/heartbeat [post]
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req presence.HeartbeatRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	online, err := h.presenceService.Heartbeat(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, online)
}

// Leave godoc
// @Summary      Leave
// @Tags         presence
// @Success      204
// @Security     BearerAuth
// @Router       /presence/leave [post]
func (h *PresenceHandler) Leave(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	if err := h.presenceService.Leave(c.Request.Context(), tenantID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Online godoc
// @Summary      List online users
// @Tags         presence
// @Produce      json
// @Success      200 {object} dto.Response{data=[]presence.Entry}
// @Security     BearerAuth
// @Router       /presence/online [get]
func (h *PresenceHandler) Online(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	online, err := h.presenceService.Online(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, online)
}

// ValidationFailure godoc
// @Summary      Report a rejected form
// @Description  Repeated failures on the same form raise an alert to the company admins
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        request body alert.ValidationFailureRequest true "Form and fields"
// @Success      200 {object} dto.Response{data=AlertResponse}
// @Security     BearerAuth
// @Router       /alerts/validation [post]
func (h *PresenceHandler) ValidationFailure(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req alert.ValidationFailureRequest
	if !h.bindJSON(c, &req) {
		return
	}
	raised := h.alertService.RecordFailure(c.Request.Context(), tenantID, userID, req)
	h.Success(c, AlertResponse{Raised: raised != nil})
}
