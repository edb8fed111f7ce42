package handler

import (
	"net/http"

	"github.com/bizdesk/backend/internal/application/backup"
	domain "github.com/bizdesk/backend/internal/domain/backup"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BackupHandler handles tenant data exports
type BackupHandler struct {
	BaseHandler
	backupService *backup.Service
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backupService *backup.Service) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// Run godoc
// @Summary      Run a backup now
// @Description  Exports the company's data as gzipped JSON to object storage
// @Tags         backups
// @Produce      json
// @Success      201 {object} dto.Response{data=backup.BackupResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /backups [post]
func (h *BackupHandler) Run(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	result, err := h.backupService.Run(c.Request.Context(), tenantID, domain.TriggerManual)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @Summary      List backups
// @Tags         backups
// @Produce      json
// @Param        status    query string false "running, completed or failed"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]backup.BackupResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /backups [get]
func (h *BackupHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter backup.BackupListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	backups, total, err := h.backupService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, backups, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get a backup
// @Tags         backups
// @Produce      json
// @Param        id path string true "Backup ID" format(uuid)
// @Success      200 {object} dto.Response{data=backup.BackupResponse}
// @Security     BearerAuth
// @Router       /backups/{id} [get]
func (h *BackupHandler) GetByID(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.backupService.GetByID(c.Request.Context(), tenantID, id)
	})
}

// Download godoc
// @Summary      Download a backup
// @Description  Returns a presigned URL, or redirects to it with ?redirect=true
// @Tags         backups
// @Produce      json
// @Param        id       path  string true  "Backup ID" format(uuid)
// @Param        redirect query bool   false "Redirect to the archive"
// @Success      200 {object} dto.Response{data=backup.DownloadResponse}
// @Success      302
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /backups/{id}/download [get]
func (h *BackupHandler) Download(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	link, err := h.backupService.Download(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if c.Query("redirect") == "true" {
		c.Redirect(http.StatusFound, link.URL)
		return
	}
	h.Success(c, link)
}

// Delete godoc
// @Summary      Delete a backup and its archive
// @Tags         backups
// @Param        id path string true "Backup ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /backups/{id} [delete]
func (h *BackupHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.backupService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
