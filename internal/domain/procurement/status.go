package procurement

import "strings"

// OrderStatus represents the lifecycle status of a purchase order
type OrderStatus string

const (
	OrderStatusOpen             OrderStatus = "OPEN"
	OrderStatusConfirmed        OrderStatus = "CONFIRMED"
	OrderStatusInProduction     OrderStatus = "IN_PRODUCTION"
	OrderStatusCompleted        OrderStatus = "COMPLETED"
	OrderStatusDispatch         OrderStatus = "DISPATCH"
	OrderStatusPartiallyShipped OrderStatus = "PARTIALLY_SHIPPED"
	OrderStatusCancelled        OrderStatus = "CANCELLED"
	OrderStatusConsolidated     OrderStatus = "CONSOLIDATED"
)

// AllOrderStatuses lists every status in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusOpen,
	OrderStatusConfirmed,
	OrderStatusInProduction,
	OrderStatusCompleted,
	OrderStatusDispatch,
	OrderStatusPartiallyShipped,
	OrderStatusCancelled,
	OrderStatusConsolidated,
}

// DefaultPlanningStatuses are the statuses of orders still waiting for a shipment
var DefaultPlanningStatuses = []OrderStatus{OrderStatusOpen, OrderStatusConfirmed}

// ParseOrderStatus accepts the canonical value as well as display forms
// such as "In Production" or "partially shipped".
func ParseOrderStatus(s string) (OrderStatus, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	status := OrderStatus(norm)
	return status, status.IsValid()
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the order accepts no further mutation
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusConsolidated
}

// AcceptsDateRevision reports whether the supplier may still move the delivery date.
// Dispatched orders are physically on the road and their date is final.
func (s OrderStatus) AcceptsDateRevision() bool {
	switch s {
	case OrderStatusCancelled, OrderStatusConsolidated, OrderStatusDispatch, OrderStatusPartiallyShipped:
		return false
	}
	return true
}

// CanTransitionTo checks if a manual status edit may move s to target.
// CONSOLIDATED is only reachable through plan acceptance.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() || !target.IsValid() {
		return false
	}
	return target != OrderStatusConsolidated
}

// IsFulfilment reports whether reaching s means goods left the supplier
func (s OrderStatus) IsFulfilment() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusDispatch, OrderStatusPartiallyShipped, OrderStatusConsolidated:
		return true
	}
	return false
}
