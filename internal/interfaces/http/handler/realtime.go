package handler

import (
	"net/http"

	"github.com/bizdesk/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upgrader accepts a websocket connection for a user
type Upgrader interface {
	Serve(w http.ResponseWriter, r *http.Request, tenantID, userID uuid.UUID) error
}

// RealtimeHandler upgrades /ws requests
type RealtimeHandler struct {
	BaseHandler
	hub Upgrader
}

func NewRealtimeHandler(hub Upgrader) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect godoc
// @Summary      Realtime channel
// @Description  Websocket pushing entity changes, presence and alerts for the caller's company. The token may be passed as ?token=.
// @Tags         realtime
// @Param        token query string false "Access token"
// @Success      101
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ws [get]
func (h *RealtimeHandler) Connect(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, tenantID, userID); err != nil {
		// the upgrader already answered the client
		logger.FromGin(c).Debug("Websocket upgrade failed", zap.Error(err))
	}
}
