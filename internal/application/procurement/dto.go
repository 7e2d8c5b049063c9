package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/consolidation"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/reliability"
)

// ==================== Purchase Order DTOs ====================

// CreateOrderItemInput represents an item in the create order request
type CreateOrderItemInput struct {
	ItemCode      string          `json:"item_code" binding:"max=64"`
	ItemName      string          `json:"item_name" binding:"max=200"`
	HSNCode       string          `json:"hsn_code" binding:"max=20"`
	UOM           string          `json:"uom" binding:"max=20"`
	Quantity      int64           `json:"quantity" binding:"gte=0"`
	Rate          decimal.Decimal `json:"rate"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit"`
	VolumePerUnit decimal.Decimal `json:"volume_per_unit"`
}

// CreateOrderRequest represents a request to create a purchase order
type CreateOrderRequest struct {
	PONumber     string                 `json:"po_number" binding:"required,min=1,max=64"`
	SupplierName string                 `json:"supplier_name" binding:"required,min=1,max=200"`
	SupplierCode string                 `json:"supplier_code" binding:"max=50"`
	PlantCode    string                 `json:"plant_code" binding:"max=50"`
	ERPReference string                 `json:"erp_reference" binding:"max=100"`
	OrderDate    *time.Time             `json:"order_date"`
	Location     string                 `json:"location" binding:"max=100"`
	Items        []CreateOrderItemInput `json:"items" binding:"dive"`
}

// BulkCreateOrdersRequest carries a batch of orders from an import collaborator
type BulkCreateOrdersRequest struct {
	Orders []CreateOrderRequest `json:"orders" binding:"required,min=1,max=500"`
}

// BulkCreateError describes one rejected entry of a bulk request
type BulkCreateError struct {
	Index    int    `json:"index"`
	PONumber string `json:"po_number"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// BulkCreateResult lists what a bulk request created and what it rejected
type BulkCreateResult struct {
	Created []OrderResponse   `json:"created"`
	Errors  []BulkCreateError `json:"errors"`
}

// ListOrdersRequest represents query parameters for listing purchase orders
type ListOrdersRequest struct {
	Status   string `form:"status" binding:"omitempty,po_status"`
	Supplier string `form:"supplier" binding:"max=200"`
	Location string `form:"location" binding:"max=100"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// UpdateDeliveryDateRequest commits the supplier to a new delivery date
type UpdateDeliveryDateRequest struct {
	ExpectedDeliveryDate time.Time `json:"expected_delivery_date" binding:"required"`
}

// UpdateDeliveryDateResponse reports the revision outcome
type UpdateDeliveryDateResponse struct {
	Message       string `json:"message"`
	RevisionCount int    `json:"revision_count"`
	Status        string `json:"status"`
	AutoCancelled bool   `json:"auto_cancelled"`
}

// UpdateStatusRequest is a manual lifecycle edit
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,po_status"`
}

// MessageResponse is a bare acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// PurgeResponse reports an administrative purge
type PurgeResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// OrderItemResponse represents a line item in API responses
type OrderItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	LineNo        int             `json:"line_no"`
	ItemCode      string          `json:"item_code"`
	ItemName      string          `json:"item_name"`
	HSNCode       string          `json:"hsn_code"`
	UOM           string          `json:"uom"`
	Quantity      int64           `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit"`
	VolumePerUnit decimal.Decimal `json:"volume_per_unit"`
}

// OrderResponse represents a purchase order in API responses
type OrderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	PONumber             string              `json:"po_number"`
	SupplierName         string              `json:"supplier_name"`
	SupplierCode         string              `json:"supplier_code,omitempty"`
	PlantCode            string              `json:"plant_code,omitempty"`
	ERPReference         string              `json:"erp_reference,omitempty"`
	OrderDate            time.Time           `json:"order_date"`
	Location             string              `json:"location"`
	Status               string              `json:"status"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date,omitempty"`
	RevisionCount        int                 `json:"revision_count"`
	FulfilledAt          *time.Time          `json:"fulfilled_at,omitempty"`
	CancelledAt          *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason         string              `json:"cancel_reason,omitempty"`
	ShipmentID           *uuid.UUID          `json:"shipment_id,omitempty"`
	TotalWeight          decimal.Decimal     `json:"total_weight"`
	TotalVolume          decimal.Decimal     `json:"total_volume"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	Locked               bool                `json:"locked"`
	Items                []OrderItemResponse `json:"items"`
	Version              int                 `json:"version"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain PurchaseOrder to OrderResponse
func ToOrderResponse(o *procurement.PurchaseOrder) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:            item.ID,
			LineNo:        item.LineNo,
			ItemCode:      item.ItemCode,
			ItemName:      item.ItemName,
			HSNCode:       item.HSNCode,
			UOM:           item.UOM,
			Quantity:      item.Quantity,
			Rate:          item.Rate,
			Amount:        item.Amount(),
			WeightPerUnit: item.WeightPerUnit,
			VolumePerUnit: item.VolumePerUnit,
		}
	}
	return OrderResponse{
		ID:                   o.ID,
		PONumber:             o.PONumber,
		SupplierName:         o.SupplierName,
		SupplierCode:         o.SupplierCode,
		PlantCode:            o.PlantCode,
		ERPReference:         o.ERPReference,
		OrderDate:            o.OrderDate,
		Location:             o.Location,
		Status:               string(o.Status),
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		RevisionCount:        o.RevisionCount,
		FulfilledAt:          o.FulfilledAt,
		CancelledAt:          o.CancelledAt,
		CancelReason:         o.CancelReason,
		ShipmentID:           o.ShipmentID,
		TotalWeight:          o.TotalWeight(),
		TotalVolume:          o.TotalVolume(),
		TotalAmount:          o.TotalAmount(),
		Locked:               o.IsLocked(),
		Items:                items,
		Version:              o.Version,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []procurement.PurchaseOrder) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// ==================== Supplier Performance DTOs ====================

// SupplierPerformanceResponse is the scorecard keyed by supplier name
type SupplierPerformanceResponse map[string]reliability.SupplierPerformance

// ==================== Planning DTOs ====================

// PlanResponse wraps the proposed plans with a summary of the snapshot
type PlanResponse struct {
	Plans              []consolidation.ShipmentPlan `json:"plans"`
	TotalPendingWeight decimal.Decimal              `json:"total_pending_weight"`
	TotalPendingVolume decimal.Decimal              `json:"total_pending_volume"`
	EligibleOrders     int                          `json:"eligible_orders"`
	GeneratedAt        time.Time                    `json:"generated_at"`
}

// PlanOrderInput references one order of a plan by id and the version the
// plan was computed from. A zero version skips the staleness check.
type PlanOrderInput struct {
	ID      uuid.UUID `json:"id" binding:"required"`
	Version int       `json:"version" binding:"min=0"`
}

// AcceptPlanRequest carries a plan the operator chose to turn into a shipment
type AcceptPlanRequest struct {
	PlanID         uuid.UUID        `json:"plan_id"`
	Location       string           `json:"location" binding:"max=100"`
	Route          string           `json:"route" binding:"max=200"`
	VehicleType    string           `json:"vehicle_type" binding:"max=50"`
	DispatchDate   *time.Time       `json:"dispatch_date"`
	Recommendation string           `json:"recommendation" binding:"max=50"`
	Orders         []PlanOrderInput `json:"orders" binding:"dive"`
}

// AcceptPlanResponse is returned after a plan was accepted
type AcceptPlanResponse struct {
	Message  string           `json:"message"`
	Shipment ShipmentResponse `json:"shipment"`
}

// ListShipmentsRequest represents query parameters for listing shipments
type ListShipmentsRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=SCHEDULED DISPATCHED"`
	Location string `form:"location" binding:"max=100"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// ShipmentResponse represents a shipment in API responses
type ShipmentResponse struct {
	ID             uuid.UUID       `json:"id"`
	ShipmentNumber string          `json:"shipment_number"`
	Location       string          `json:"location"`
	Route          string          `json:"route"`
	VehicleType    string          `json:"vehicle_type"`
	CapacityKg     decimal.Decimal `json:"capacity_kg"`
	TotalWeight    decimal.Decimal `json:"total_weight"`
	TotalVolume    decimal.Decimal `json:"total_volume"`
	LoadPercentage decimal.Decimal `json:"load_percentage"`
	DispatchDate   time.Time       `json:"dispatch_date"`
	Recommendation string          `json:"recommendation"`
	Status         string          `json:"status"`
	OrderIDs       []uuid.UUID     `json:"order_ids"`
	DispatchedAt   *time.Time      `json:"dispatched_at,omitempty"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToShipmentResponse converts a domain Shipment to ShipmentResponse
func ToShipmentResponse(s *procurement.Shipment) ShipmentResponse {
	ids := s.OrderIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ShipmentResponse{
		ID:             s.ID,
		ShipmentNumber: s.ShipmentNumber,
		Location:       s.Location,
		Route:          s.Route,
		VehicleType:    s.VehicleType,
		CapacityKg:     s.CapacityKg,
		TotalWeight:    s.TotalWeight,
		TotalVolume:    s.TotalVolume,
		LoadPercentage: s.LoadPercentage,
		DispatchDate:   s.DispatchDate,
		Recommendation: s.Recommendation,
		Status:         string(s.Status),
		OrderIDs:       ids,
		DispatchedAt:   s.DispatchedAt,
		Version:        s.Version,
		CreatedAt:      s.CreatedAt,
	}
}
