package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

// ShipmentStatus represents the status of a consolidated shipment
type ShipmentStatus string

const (
	ShipmentStatusScheduled  ShipmentStatus = "SCHEDULED"
	ShipmentStatusDispatched ShipmentStatus = "DISPATCHED"
)

// IsValid checks if the status is a valid ShipmentStatus
func (s ShipmentStatus) IsValid() bool {
	return s == ShipmentStatusScheduled || s == ShipmentStatusDispatched
}

// Shipment is the permanent record of an accepted consolidation plan
type Shipment struct {
	shared.BaseAggregateRoot
	ShipmentNumber string
	Location       string
	Route          string
	VehicleType    string
	CapacityKg     decimal.Decimal
	TotalWeight    decimal.Decimal
	TotalVolume    decimal.Decimal
	LoadPercentage decimal.Decimal
	DispatchDate   time.Time
	Recommendation string
	Status         ShipmentStatus
	OrderIDs       []uuid.UUID
	DispatchedAt   *time.Time
}

// LoadFunc returns the weight and volume an order contributes to a vehicle
type LoadFunc func(o *PurchaseOrder) (weight, volume decimal.Decimal)

// NewShipment creates a scheduled shipment for the given orders. A nil load
// uses the orders' item totals.
func NewShipment(location, route, vehicleType string, capacityKg decimal.Decimal, dispatchDate time.Time, recommendation string, orders []*PurchaseOrder, load LoadFunc) (*Shipment, error) {
	if len(orders) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Shipment must contain at least one order")
	}
	if strings.TrimSpace(vehicleType) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Vehicle type is required")
	}
	if !capacityKg.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Vehicle capacity must be positive")
	}

	s := &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Location:          NormalizeLocation(location),
		Route:             route,
		VehicleType:       vehicleType,
		CapacityKg:        capacityKg,
		DispatchDate:      dispatchDate,
		Recommendation:    recommendation,
		Status:            ShipmentStatusScheduled,
		OrderIDs:          make([]uuid.UUID, 0, len(orders)),
	}
	if load == nil {
		load = func(o *PurchaseOrder) (decimal.Decimal, decimal.Decimal) {
			return o.TotalWeight(), o.TotalVolume()
		}
	}
	s.ShipmentNumber = fmt.Sprintf("SHP-%s-%s", s.CreatedAt.Format("20060102"), strings.ToUpper(s.ID.String()[:8]))

	// totals come from the stored orders, not from the plan the client sent back
	s.TotalWeight = decimal.Zero
	s.TotalVolume = decimal.Zero
	for _, o := range orders {
		s.OrderIDs = append(s.OrderIDs, o.ID)
		w, v := load(o)
		s.TotalWeight = s.TotalWeight.Add(w)
		s.TotalVolume = s.TotalVolume.Add(v)
	}
	s.LoadPercentage = s.TotalWeight.Div(capacityKg).Mul(decimal.NewFromInt(100)).Round(2)

	s.AddDomainEvent(NewShipmentCreatedEvent(s))
	return s, nil
}

// Dispatch marks the shipment as having left the origin
func (s *Shipment) Dispatch() error {
	if s.Status != ShipmentStatusScheduled {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Shipment %s is already %s", s.ShipmentNumber, s.Status))
	}
	now := time.Now()
	s.Status = ShipmentStatusDispatched
	s.DispatchedAt = &now
	s.UpdatedAt = now
	s.AddDomainEvent(NewShipmentDispatchedEvent(s))
	return nil
}
