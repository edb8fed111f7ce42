package handler

import (
	"github.com/bizdesk/backend/internal/application/settings"
	"github.com/gin-gonic/gin"
)

// SettingsHandler exposes the company settings
type SettingsHandler struct {
	BaseHandler
	settingsService *settings.Service
}

func NewSettingsHandler(settingsService *settings.Service) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get godoc
// @Summary      Get company settings
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response{data=settings.SettingsResponse}
// @Security     BearerAuth
// @Router       /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	resp, err := h.settingsService.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @Summary      Update company settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body settings.UpdateSettingsRequest true "Settings"
// @Success      200 {object} dto.Response{data=settings.SettingsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req settings.UpdateSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.settingsService.Update(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
