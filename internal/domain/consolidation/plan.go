package consolidation

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recommendation values
const (
	RecommendationDispatchNow = "Dispatch Now"
	RecommendationHold        = "Hold for Consolidation"
)

// planNamespace seeds deterministic plan ids
var planNamespace = uuid.MustParse("6f1c2a8e-3d4b-5e6f-8a9b-0c1d2e3f4a5b")

// PlanOrderRef references a purchase order inside a plan
type PlanOrderRef struct {
	ID            uuid.UUID       `json:"id"`
	PONumber      string          `json:"po_number"`
	SupplierName  string          `json:"supplier_name"`
	SupplierGrade string          `json:"supplier_grade,omitempty"`
	OrderDate     time.Time       `json:"order_date"`
	Version       int             `json:"version"`
	Weight        decimal.Decimal `json:"weight"`
	Volume        decimal.Decimal `json:"volume"`
}

// ShipmentPlan is a proposed vehicle load. It is a read view over the order
// store and carries the order versions it was computed from.
type ShipmentPlan struct {
	PlanID            uuid.UUID       `json:"plan_id"`
	Location          string          `json:"location"`
	TargetRegion      string          `json:"target_region"`
	Route             string          `json:"route"`
	VehicleType       string          `json:"vehicle_type"`
	VehicleCapacityKg decimal.Decimal `json:"vehicle_capacity_kg"`
	TotalWeight       decimal.Decimal `json:"total_weight"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	LoadPercentage    decimal.Decimal `json:"load_percentage"`
	DispatchDate      time.Time       `json:"dispatch_date"`
	Recommendation    string          `json:"recommendation"`
	Note              string          `json:"note"`
	Oversize          bool            `json:"oversize"`
	Orders            []PlanOrderRef  `json:"orders"`
}

// OrderIDs returns the ids of the constituent orders in assignment order
func (p ShipmentPlan) OrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Orders))
	for i, o := range p.Orders {
		ids[i] = o.ID
	}
	return ids
}

// derivePlanID hashes the constituent order ids and versions so that the same
// snapshot always yields the same id.
func derivePlanID(orders []PlanOrderRef) uuid.UUID {
	var b strings.Builder
	for _, o := range orders {
		b.WriteString(o.ID.String())
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(o.Version))
		b.WriteByte(';')
	}
	return uuid.NewSHA1(planNamespace, []byte(b.String()))
}
