package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

// OrderFilter narrows a purchase order listing
type OrderFilter struct {
	shared.Filter
	Status   *OrderStatus
	Supplier string
	Location string
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order by ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDs returns the orders with the given ids, items included, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]PurchaseOrder, error)

	// FindAll lists purchase orders matching the filter
	FindAll(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error)

	// Count counts purchase orders matching the filter, ignoring pagination
	Count(ctx context.Context, filter OrderFilter) (int64, error)

	// CountByStatus returns the number of orders per status
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)

	// FindByStatuses returns every order in one of the statuses, oldest first
	FindByStatuses(ctx context.Context, statuses []OrderStatus) ([]PurchaseOrder, error)

	// FindWithDeliveryCommitment returns every order that has an expected delivery date
	FindWithDeliveryCommitment(ctx context.Context) ([]PurchaseOrder, error)

	// ExistsByPONumber checks if a PO number is taken for the supplier
	ExistsByPONumber(ctx context.Context, supplierName, poNumber string) (bool, error)

	// Save inserts a new purchase order with its items
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock persists header changes if the stored version still equals
	// order.Version, then bumps the version. Returns STALE_DATA otherwise.
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// DeleteAll removes every order, item and shipment
	DeleteAll(ctx context.Context) (int64, error)
}

// PlanOrderClaim pins an order to the version the plan was computed against.
// A zero version only checks eligibility.
type PlanOrderClaim struct {
	OrderID uuid.UUID
	Version int
}

// ShipmentRepository defines the interface for shipment persistence
type ShipmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Shipment, error)
	// Count counts shipments matching the filter, ignoring pagination
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// SaveWithLock persists status changes with a version check
	SaveWithLock(ctx context.Context, shipment *Shipment) error

	// CreateFromClaims atomically verifies every claimed order is still
	// eligible at the claimed version, builds the shipment through build and
	// marks the orders CONSOLIDATED. Either everything is written or nothing is.
	CreateFromClaims(ctx context.Context, claims []PlanOrderClaim, eligible []OrderStatus,
		build func(orders []*PurchaseOrder) (*Shipment, error)) (*Shipment, []*PurchaseOrder, error)
}
