package handler

import (
	"github.com/bizdesk/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// StockHandler handles stock level and movement requests
type StockHandler struct {
	BaseHandler
	stockService *inventory.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *inventory.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// ListLevels godoc
// @Summary      List stock levels
// @Tags         stock
// @Produce      json
// @Param        search    query string false "Product name or SKU"
// @Param        low_stock query bool   false "Only levels at or below their minimum"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]inventory.StockLevelResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /stock/levels [get]
func (h *StockHandler) ListLevels(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter inventory.LevelFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	levels, total, err := h.stockService.ListLevels(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, levels, total, filter.Page, filter.PageSize)
}

// GetLevel godoc
// @Summary      Get the stock level of a product
// @Tags         stock
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventory.StockLevelResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stock/levels/{product_id} [get]
func (h *StockHandler) GetLevel(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "product_id")
	if !ok {
		return
	}
	level, err := h.stockService.GetLevel(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// ListMovements godoc
// @Summary      List stock movements
// @Tags         stock
// @Produce      json
// @Param        product_id   query string false "Product ID" format(uuid)
// @Param        type         query string false "in, out or adjustment"
// @Param        reference_id query string false "Invoice or document ID" format(uuid)
// @Param        date_from    query string false "From date (YYYY-MM-DD)"
// @Param        date_to      query string false "To date (YYYY-MM-DD)"
// @Param        page         query int    false "Page" default(1)
// @Param        page_size    query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]inventory.MovementResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter inventory.MovementFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	movements, total, err := h.stockService.ListMovements(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// Receive godoc
// @Summary      Receive stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body inventory.StockOperationRequest true "Receipt"
// @Success      200 {object} dto.Response{data=inventory.StockLevelResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stock/receive [post]
func (h *StockHandler) Receive(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req inventory.StockOperationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = &userID
	level, err := h.stockService.Receive(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// Issue godoc
// @Summary      Issue stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body inventory.StockOperationRequest true "Issue"
// @Success      200 {object} dto.Response{data=inventory.StockLevelResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stock/issue [post]
func (h *StockHandler) Issue(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req inventory.StockOperationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = &userID
	level, err := h.stockService.Issue(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// Adjust godoc
// @Summary      Adjust stock to a counted quantity
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body inventory.AdjustStockRequest true "Count"
// @Success      200 {object} dto.Response{data=inventory.StockLevelResponse}
// @Security     BearerAuth
// @Router       /stock/adjust [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req inventory.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = &userID
	level, err := h.stockService.Adjust(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// SetMinQuantity godoc
// @Summary      Set the low stock threshold of a product
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        request body inventory.SetMinQuantityRequest true "Threshold"
// @Success      200 {object} dto.Response{data=inventory.StockLevelResponse}
// @Security     BearerAuth
// @Router       /stock/{product_id}/min [put]
func (h *StockHandler) SetMinQuantity(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "product_id")
	if !ok {
		return
	}
	var req inventory.SetMinQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	level, err := h.stockService.SetMinQuantity(c.Request.Context(), tenantID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}
