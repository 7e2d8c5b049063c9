package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appprocurement "github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/application/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

// PlanningService is the consolidation use-case surface the handler drives
type PlanningService interface {
	PlanShipments(ctx context.Context) (*appprocurement.PlanResponse, error)
	AcceptPlan(ctx context.Context, req appprocurement.AcceptPlanRequest) (*appprocurement.AcceptPlanResponse, error)
	ListShipments(ctx context.Context, req appprocurement.ListShipmentsRequest) (*shared.Paginated[appprocurement.ShipmentResponse], error)
	GetShipment(ctx context.Context, id uuid.UUID) (*appprocurement.ShipmentResponse, error)
	DispatchShipment(ctx context.Context, id uuid.UUID) (*appprocurement.ShipmentResponse, error)
}

// ShipmentHandler handles consolidation plans and shipments
type ShipmentHandler struct {
	BaseHandler
	planningService PlanningService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(planningService PlanningService) *ShipmentHandler {
	return &ShipmentHandler{planningService: planningService}
}

// Plans handles GET /shipments/plans. Plans are proposals; nothing is stored.
func (h *ShipmentHandler) Plans(c *gin.Context) {
	plans, err := h.planningService.PlanShipments(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plans)
}

// AcceptPlan handles POST /shipments/plans/accept
func (h *ShipmentHandler) AcceptPlan(c *gin.Context) {
	var req appprocurement.AcceptPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.planningService.AcceptPlan(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List handles GET /shipments
func (h *ShipmentHandler) List(c *gin.Context) {
	var req appprocurement.ListShipmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.planningService.ListShipments(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID handles GET /shipments/:id
func (h *ShipmentHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	shipment, err := h.planningService.GetShipment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// Dispatch handles POST /shipments/:id/dispatch
func (h *ShipmentHandler) Dispatch(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	shipment, err := h.planningService.DispatchShipment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}
