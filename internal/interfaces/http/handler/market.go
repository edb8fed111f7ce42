package handler

import (
	"github.com/bizdesk/backend/internal/application/market"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MarketHandler handles framework contract (market) requests
type MarketHandler struct {
	BaseHandler
	marketService *market.Service
}

func NewMarketHandler(marketService *market.Service) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

// Create godoc
// @Summary      Create a market
// @Tags         markets
// @Accept       json
// @Produce      json
// @Param        request body market.CreateMarketRequest true "Market"
// @Success      201 {object} dto.Response{data=market.MarketResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /markets [post]
func (h *MarketHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req market.CreateMarketRequest
	if !h.bindJSON(c, &req) {
		return
	}
	m, err := h.marketService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, m)
}

// GetByID godoc
// @Summary      Get a market
// @Tags         markets
// @Produce      json
// @Param        id path string true "Market ID" format(uuid)
// @Success      200 {object} dto.Response{data=market.MarketResponse}
// @Security     BearerAuth
// @Router       /markets/{id} [get]
func (h *MarketHandler) GetByID(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.marketService.GetByID(c.Request.Context(), tenantID, id)
	})
}

// List godoc
// @Summary      List markets
// @Tags         markets
// @Produce      json
// @Param        search    query string false "Reference or title"
// @Param        status    query string false "draft, active, completed or cancelled"
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]market.MarketResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /markets [get]
func (h *MarketHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter market.MarketListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	markets, total, err := h.marketService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, markets, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a market
// @Tags         markets
// @Accept       json
// @Produce      json
// @Param        id      path string true "Market ID" format(uuid)
// @Param        request body market.UpdateMarketRequest true "Market"
// @Success      200 {object} dto.Response{data=market.MarketResponse}
// @Security     BearerAuth
// @Router       /markets/{id} [put]
func (h *MarketHandler) Update(c *gin.Context) {
	var req market.UpdateMarketRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.marketService.Update(c.Request.Context(), tenantID, id, req)
	})
}

// @Summary      Activate a market
// @Tags         markets
// @Param        id path string true "Market ID" format(uuid)
// @Success      200 {object} dto.Response{data=market.MarketResponse}
// @Security     BearerAuth
// @Router       /markets/{id}/activate [post]
func (h *MarketHandler) Activate(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.marketService.Activate(c.Request.Context(), tenantID, id)
	})
}

// @Summary      Complete a market
// @Tags         markets
// @Param        id path string true "Market ID" format(uuid)
// @Success      200 {object} dto.Response{data=market.MarketResponse}
// @Security     BearerAuth
// @Router       /markets/{id}/complete [post]
func (h *MarketHandler) Complete(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.marketService.Complete(c.Request.Context(), tenantID, id)
	})
}

// @Summary      Cancel a market
// @Tags         markets
// @Param        id path string true "Market ID" format(uuid)
// @Success      200 {object} dto.Response{data=market.MarketResponse}
// @Security     BearerAuth
// @Router       /markets/{id}/cancel [post]
func (h *MarketHandler) Cancel(c *gin.Context) {
	h.byID(c, func(tenantID, id uuid.UUID) (any, error) {
		return h.marketService.Cancel(c.Request.Context(), tenantID, id)
	})
}

// Delete godoc
// @Summary      Delete a draft market
// @Tags         markets
// @Param        id path string true "Market ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /markets/{id} [delete]
func (h *MarketHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.marketService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
