package handler

import (
	"time"

	"github.com/bizdesk/backend/internal/application/subscription"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubscriptionHandler handles recurring billing requests
type SubscriptionHandler struct {
	BaseHandler
	subscriptionService *subscription.Service
	now                 func() time.Time
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService *subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, now: time.Now}
}

// Create godoc
// @Summary      Create a subscription
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        request body subscription.CreateSubscriptionRequest true "Subscription"
// @Success      201 {object} dto.Response{data=subscription.SubscriptionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscriptions [post]
func (h *SubscriptionHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req subscription.CreateSubscriptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sub, err := h.subscriptionService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sub)
}

// GetByID godoc
// @Summary      Get a subscription
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Success      200 {object} dto.Response{data=subscription.SubscriptionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetByID(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.subscriptionService.GetByID(c.Request.Context(), tenantID, id)
	})
}

// List godoc
// @Summary      List subscriptions
// @Tags         subscriptions
// @Produce      json
// @Param        search    query string false "Name"
// @Param        status    query string false "active, paused, cancelled or ended"
// @Param        interval  query string false "monthly, quarterly or yearly"
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]subscription.SubscriptionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter subscription.SubscriptionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	subs, total, err := h.subscriptionService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, subs, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a subscription
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        id      path string true "Subscription ID" format(uuid)
// @Param        request body subscription.UpdateSubscriptionRequest true "Subscription"
// @Success      200 {object} dto.Response{data=subscription.SubscriptionResponse}
// @Security     BearerAuth
// @Router       /subscriptions/{id} [put]
func (h *SubscriptionHandler) Update(c *gin.Context) {
	var req subscription.UpdateSubscriptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.subscriptionService.Update(c.Request.Context(), tenantID, id, req)
	})
}

// Pause godoc
// @Summary      Pause a subscription
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Success      200 {object} dto.Response{data=subscription.SubscriptionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscriptions/{id}/pause [post]
func (h *SubscriptionHandler) Pause(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.subscriptionService.Pause(c.Request.Context(), tenantID, id)
	})
}

// Resume godoc
// @Summary      Resume a paused subscription
// @Description  Billing continues from the next period after today; paused periods are skipped
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Success      200 {object} dto.Response{data=subscription.SubscriptionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscriptions/{id}/resume [post]
func (h *SubscriptionHandler) Resume(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.subscriptionService.Resume(c.Request.Context(), tenantID, id)
	})
}

// Cancel godoc
// @Summary      Cancel a subscription
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Success      200 {object} dto.Response{data=subscription.SubscriptionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.subscriptionService.Cancel(c.Request.Context(), tenantID, id)
	})
}

// Delete godoc
// @Summary      Delete a subscription
// @Tags         subscriptions
// @Param        id path string true "Subscription ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /subscriptions/{id} [delete]
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.subscriptionService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Generate godoc
// @Summary      Generate due subscription invoices
// @Description  Runs the nightly billing pass now. as_of defaults to the current time.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        request body subscription.GenerateRequest false "Run date"
// @Success      200 {object} dto.Response{data=subscription.GenerationResult}
// @Security     BearerAuth
// @Router       /billing/generate [post]
func (h *SubscriptionHandler) Generate(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req subscription.GenerateRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	asOf := h.now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	result, err := h.subscriptionService.GenerateDueInvoices(c.Request.Context(), tenantID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
