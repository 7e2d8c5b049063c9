package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypePurchaseOrder = "PurchaseOrder"
	AggregateTypeShipment      = "Shipment"
)

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypeDeliveryDateRevised        = "DeliveryDateRevised"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
	EventTypePurchaseOrderAutoCancelled = "PurchaseOrderAutoCancelled"
	EventTypePurchaseOrderConsolidated  = "PurchaseOrderConsolidated"
	EventTypePurchaseOrdersPurged       = "PurchaseOrdersPurged"
	EventTypeShipmentCreated            = "ShipmentCreated"
	EventTypeShipmentDispatched         = "ShipmentDispatched"
)

// OrderEventTypes lists every event that changes order history
var OrderEventTypes = []string{
	EventTypePurchaseOrderCreated,
	EventTypeDeliveryDateRevised,
	EventTypePurchaseOrderStatusChanged,
	EventTypePurchaseOrderAutoCancelled,
	EventTypePurchaseOrderConsolidated,
	EventTypePurchaseOrdersPurged,
}

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	PONumber     string `json:"po_number"`
	SupplierName string `json:"supplier_name"`
	Location     string `json:"location"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID),
		PONumber:        order.PONumber,
		SupplierName:    order.SupplierName,
		Location:        order.Location,
	}
}

// DeliveryDateRevisedEvent is raised on every delivery-date commitment
type DeliveryDateRevisedEvent struct {
	shared.BaseDomainEvent
	PONumber      string     `json:"po_number"`
	SupplierName  string     `json:"supplier_name"`
	PreviousDate  *time.Time `json:"previous_date,omitempty"`
	NewDate       time.Time  `json:"new_date"`
	RevisionCount int        `json:"revision_count"`
}

// NewDeliveryDateRevisedEvent creates a new DeliveryDateRevisedEvent
func NewDeliveryDateRevisedEvent(order *PurchaseOrder, previous *time.Time) *DeliveryDateRevisedEvent {
	return &DeliveryDateRevisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDeliveryDateRevised, AggregateTypePurchaseOrder, order.ID),
		PONumber:        order.PONumber,
		SupplierName:    order.SupplierName,
		PreviousDate:    previous,
		NewDate:         *order.ExpectedDeliveryDate,
		RevisionCount:   order.RevisionCount,
	}
}

// PurchaseOrderStatusChangedEvent is raised on a manual status edit
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	PONumber       string      `json:"po_number"`
	PreviousStatus OrderStatus `json:"previous_status"`
	NewStatus      OrderStatus `json:"new_status"`
}

// NewPurchaseOrderStatusChangedEvent creates a new PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(order *PurchaseOrder, previous OrderStatus) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, order.ID),
		PONumber:        order.PONumber,
		PreviousStatus:  previous,
		NewStatus:       order.Status,
	}
}

// PurchaseOrderAutoCancelledEvent is raised when revisions exhaust the allowance
type PurchaseOrderAutoCancelledEvent struct {
	shared.BaseDomainEvent
	PONumber       string      `json:"po_number"`
	SupplierName   string      `json:"supplier_name"`
	PreviousStatus OrderStatus `json:"previous_status"`
	RevisionCount  int         `json:"revision_count"`
}

// NewPurchaseOrderAutoCancelledEvent creates a new PurchaseOrderAutoCancelledEvent
func NewPurchaseOrderAutoCancelledEvent(order *PurchaseOrder, previous OrderStatus) *PurchaseOrderAutoCancelledEvent {
	return &PurchaseOrderAutoCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderAutoCancelled, AggregateTypePurchaseOrder, order.ID),
		PONumber:        order.PONumber,
		SupplierName:    order.SupplierName,
		PreviousStatus:  previous,
		RevisionCount:   order.RevisionCount,
	}
}

// PurchaseOrderConsolidatedEvent is raised when an accepted plan consumes the order
type PurchaseOrderConsolidatedEvent struct {
	shared.BaseDomainEvent
	PONumber       string      `json:"po_number"`
	PreviousStatus OrderStatus `json:"previous_status"`
	ShipmentID     uuid.UUID   `json:"shipment_id"`
}

// NewPurchaseOrderConsolidatedEvent creates a new PurchaseOrderConsolidatedEvent
func NewPurchaseOrderConsolidatedEvent(order *PurchaseOrder, previous OrderStatus) *PurchaseOrderConsolidatedEvent {
	var shipmentID uuid.UUID
	if order.ShipmentID != nil {
		shipmentID = *order.ShipmentID
	}
	return &PurchaseOrderConsolidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderConsolidated, AggregateTypePurchaseOrder, order.ID),
		PONumber:        order.PONumber,
		PreviousStatus:  previous,
		ShipmentID:      shipmentID,
	}
}

// PurchaseOrdersPurgedEvent is raised by the administrative reset
type PurchaseOrdersPurgedEvent struct {
	shared.BaseDomainEvent
	Deleted int64 `json:"deleted"`
}

// NewPurchaseOrdersPurgedEvent creates a new PurchaseOrdersPurgedEvent
func NewPurchaseOrdersPurgedEvent(deleted int64) *PurchaseOrdersPurgedEvent {
	return &PurchaseOrdersPurgedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrdersPurged, AggregateTypePurchaseOrder, uuid.Nil),
		Deleted:         deleted,
	}
}

// ShipmentCreatedEvent is raised when a plan is accepted
type ShipmentCreatedEvent struct {
	shared.BaseDomainEvent
	ShipmentNumber string          `json:"shipment_number"`
	Location       string          `json:"location"`
	VehicleType    string          `json:"vehicle_type"`
	TotalWeight    decimal.Decimal `json:"total_weight"`
	OrderIDs       []uuid.UUID     `json:"order_ids"`
}

// NewShipmentCreatedEvent creates a new ShipmentCreatedEvent
func NewShipmentCreatedEvent(s *Shipment) *ShipmentCreatedEvent {
	return &ShipmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentCreated, AggregateTypeShipment, s.ID),
		ShipmentNumber:  s.ShipmentNumber,
		Location:        s.Location,
		VehicleType:     s.VehicleType,
		TotalWeight:     s.TotalWeight,
		OrderIDs:        s.OrderIDs,
	}
}

// ShipmentDispatchedEvent is raised when a shipment leaves the origin
type ShipmentDispatchedEvent struct {
	shared.BaseDomainEvent
	ShipmentNumber string    `json:"shipment_number"`
	DispatchedAt   time.Time `json:"dispatched_at"`
}

// NewShipmentDispatchedEvent creates a new ShipmentDispatchedEvent
func NewShipmentDispatchedEvent(s *Shipment) *ShipmentDispatchedEvent {
	return &ShipmentDispatchedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentDispatched, AggregateTypeShipment, s.ID),
		ShipmentNumber:  s.ShipmentNumber,
		DispatchedAt:    *s.DispatchedAt,
	}
}
