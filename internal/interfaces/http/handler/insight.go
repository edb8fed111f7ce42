package handler

import (
	"github.com/bizdesk/backend/internal/application/forecast"
	"github.com/bizdesk/backend/internal/application/notification"
	"github.com/bizdesk/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard and the revenue forecast
type ReportHandler struct {
	BaseHandler
	reportService   *report.ReportService
	forecastService *forecast.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *report.ReportService, forecastService *forecast.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService, forecastService: forecastService}
}

// Dashboard godoc
// @Summary      Company dashboard
// @Description  Revenue, receivables, open quotes, recurring revenue, low stock and open registers
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.Dashboard}
// @Security     BearerAuth
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	dashboard, err := h.reportService.Dashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// Forecast godoc
// @Summary      Forecast monthly revenue
// @Description  Uses the language model when configured, else a trend baseline
// @Tags         forecast
// @Accept       json
// @Produce      json
// @Param        request body forecast.RevenueRequest false "History and horizon in months"
// @Success      200 {object} dto.Response{data=forecast.Forecast}
// @Security     BearerAuth
// @Router       /forecast/revenue [post]
func (h *ReportHandler) Forecast(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req forecast.RevenueRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	result, err := h.forecastService.Revenue(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// NotificationHandler sends ad hoc emails on behalf of the company
type NotificationHandler struct {
	BaseHandler
	notificationService *notification.Service
}

func NewNotificationHandler(notificationService *notification.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// SendEmail godoc
// @Summary      Send an email
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request body notification.SendEmailRequest true "Email"
// @Success      200 {object} dto.Response{data=notification.SendEmailResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications/email [post]
func (h *NotificationHandler) SendEmail(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req notification.SendEmailRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.notificationService.SendEmail(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
