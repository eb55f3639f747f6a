package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/storefront/backend/internal/application/trade"
)

// OrderHandler handles checkout, payment and fulfilment endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create godoc
// @Summary      Place an order
// @Description  Prices are computed by the server from the current catalog
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateOrderRequest true "Cart and shipping address"
// @Success      201 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req tradeapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID godoc
// @Summary      Get order details
// @Description  Owner or admin only. Includes the owner and display-currency totals.
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListMine godoc
// @Summary      List the caller's orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=[]tradeapp.OrderResponse}
// @Security     BearerAuth
// @Router       /orders/mine [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListMine(c.Request.Context(), caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// List godoc
// @Summary      List all orders
// @Tags         orders
// @Produce      json
// @Param        page         query int  false "Page number"
// @Param        page_size    query int  false "Page size"
// @Param        is_paid      query bool false "Filter by payment state"
// @Param        is_delivered query bool false "Filter by delivery state"
// @Success      200 {object} dto.Response{data=tradeapp.OrderListResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var query tradeapp.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.orderService.List(c.Request.Context(), caller, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result, result.Total, result.Page, result.PageSize)
}

// Pay godoc
// @Summary      Record a PayPal payment
// @Description  Takes the capture details from the PayPal onApprove callback.
// @Description  Each capture ID is accepted once.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Order ID"
// @Param        request body tradeapp.PayOrderRequest  true "PayPal capture details"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/pay [put]
func (h *OrderHandler) Pay(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req tradeapp.PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orderService.Pay(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Deliver godoc
// @Summary      Mark an order as delivered
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/deliver [put]
func (h *OrderHandler) Deliver(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.Deliver(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
