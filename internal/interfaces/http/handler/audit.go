package handler

import (
	"github.com/bizdesk/backend/internal/application/audit"
	"github.com/gin-gonic/gin"
)

// AuditHandler serves the audit trail
type AuditHandler struct {
	BaseHandler
	auditService *audit.Service
}

func NewAuditHandler(auditService *audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List godoc
// @Summary      Search the audit log
// @Tags         audit
// @Produce      json
// @Param        entity_type query string false "Entity type, e.g. invoice"
// @Param        entity_id   query string false "Entity ID" format(uuid)
// @Param        user_id     query string false "Acting user" format(uuid)
// @Param        action      query string false "Action, e.g. invoice.sent"
// @Param        from        query string false "From date (YYYY-MM-DD)"
// @Param        to          query string false "To date (YYYY-MM-DD)"
// @Param        page        query int    false "Page" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]audit.LogResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /audit/logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter audit.LogFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	logs, total, err := h.auditService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, logs, total, filter.Page, filter.PageSize)
}
