package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appprocurement "github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/application/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

// OrderService is the purchase order use-case surface the handler drives
type OrderService interface {
	Create(ctx context.Context, req appprocurement.CreateOrderRequest) (*appprocurement.OrderResponse, error)
	CreateOrders(ctx context.Context, reqs []appprocurement.CreateOrderRequest) (*appprocurement.BulkCreateResult, error)
	List(ctx context.Context, req appprocurement.ListOrdersRequest) (*shared.Paginated[appprocurement.OrderResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*appprocurement.OrderResponse, error)
	UpdateDeliveryDate(ctx context.Context, id uuid.UUID, req appprocurement.UpdateDeliveryDateRequest) (*appprocurement.UpdateDeliveryDateResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req appprocurement.UpdateStatusRequest) (*appprocurement.MessageResponse, error)
	PurgeAllOrders(ctx context.Context) (*appprocurement.PurgeResponse, error)
}

// OrderHandler handles purchase order endpoints
type OrderHandler struct {
	BaseHandler
	orderService OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /purchase-orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req appprocurement.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// BulkCreate handles POST /purchase-orders/bulk. Rejected entries are
// reported alongside the created ones; the call itself still succeeds.
func (h *OrderHandler) BulkCreate(c *gin.Context) {
	var req appprocurement.BulkCreateOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.orderService.CreateOrders(c.Request.Context(), req.Orders)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List handles GET /purchase-orders
func (h *OrderHandler) List(c *gin.Context) {
	var req appprocurement.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.orderService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID handles GET /purchase-orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateDeliveryDate handles PUT /purchase-orders/:id/delivery-date
func (h *OrderHandler) UpdateDeliveryDate(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req appprocurement.UpdateDeliveryDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.UpdateDeliveryDate(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateStatus handles PUT /purchase-orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req appprocurement.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Purge handles DELETE /purchase-orders. The route is guarded by RequireRole.
func (h *OrderHandler) Purge(c *gin.Context) {
	resp, err := h.orderService.PurgeAllOrders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
