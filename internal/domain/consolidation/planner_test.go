package consolidation

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
)

// Monday
var fixedNow = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func newTestPlanner(t *testing.T, mutate ...func(*Policy)) *Planner {
	t.Helper()
	policy := DefaultPolicy()
	for _, m := range mutate {
		m(&policy)
	}
	p, err := NewPlanner(DefaultCatalog(), NextDay, policy, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return p
}

func newOrder(t *testing.T, poNumber, supplier, location string, orderDay int, weightKg int64) procurement.PurchaseOrder {
	t.Helper()
	o, err := procurement.NewPurchaseOrder(poNumber, supplier, time.Date(2024, 5, orderDay, 0, 0, 0, 0, time.UTC), location)
	require.NoError(t, err)
	item, err := procurement.NewOrderItem("ITM-"+poNumber, "Steel Coil", "7208", "Kg", weightKg, decimal.NewFromInt(55), decimal.NewFromInt(1), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, o.AddItem(item))
	return *o
}

func poNumbers(plan ShipmentPlan) []string {
	out := make([]string, len(plan.Orders))
	for i, o := range plan.Orders {
		out[i] = o.PONumber
	}
	return out
}

func TestPlanner_SinglePickupDispatchNow(t *testing.T) {
	p := newTestPlanner(t)
	orders := []procurement.PurchaseOrder{newOrder(t, "PO-1", "Acme", "Mumbai", 1, 1200)}

	plans := p.Plan(orders, nil)

	require.Len(t, plans, 1)
	plan := plans[0]
	assert.Equal(t, "Mumbai", plan.Location)
	assert.Equal(t, "Pickup", plan.VehicleType)
	assert.True(t, plan.VehicleCapacityKg.Equal(decimal.NewFromInt(1500)))
	assert.True(t, plan.TotalWeight.Equal(decimal.NewFromInt(1200)))
	assert.True(t, plan.LoadPercentage.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, RecommendationDispatchNow, plan.Recommendation)
	assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), plan.DispatchDate)
	assert.Equal(t, "MUMBAI → BIHAR FACTORY", plan.Route)
	assert.Equal(t, []uuid.UUID{orders[0].ID}, plan.OrderIDs())
	assert.Equal(t, 1, plan.Orders[0].Version)
	assert.False(t, plan.Oversize)
}

func TestPlanner_Idempotent(t *testing.T) {
	p := newTestPlanner(t)
	orders := []procurement.PurchaseOrder{
		newOrder(t, "PO-1", "Acme", "Pune", 1, 2500),
		newOrder(t, "PO-2", "Bolt", "pune", 2, 2000),
		newOrder(t, "PO-3", "Cast", "Pune", 3, 1000),
		newOrder(t, "PO-4", "Acme", "Delhi", 1, 300),
	}

	first := p.Plan(orders, nil)
	second := p.Plan(orders, nil)

	assert.Equal(t, first, second)
}

func TestPlanner_SplitsAboveLargestClass(t *testing.T) {
	p := newTestPlanner(t)
	var orders []procurement.PurchaseOrder
	for i := 1; i <= 6; i++ {
		orders = append(orders, newOrder(t, fmt.Sprintf("PO-%d", i), "Acme", "Pune", 7-i, 1000))
	}

	plans := p.Plan(orders, nil)

	require.Len(t, plans, 2)
	assert.Equal(t, "Truck", plans[0].VehicleType)
	assert.True(t, plans[0].TotalWeight.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, []string{"PO-6", "PO-5", "PO-4", "PO-3", "PO-2"}, poNumbers(plans[0]))

	// the newest order waits for the next vehicle
	assert.Equal(t, "Pickup", plans[1].VehicleType)
	assert.Equal(t, []string{"PO-1"}, poNumbers(plans[1]))
	assert.Equal(t, RecommendationHold, plans[1].Recommendation)
	assert.Equal(t, "66.67", plans[1].LoadPercentage.StringFixed(2))
}

func TestPlanner_NoOrderInTwoPlans(t *testing.T) {
	p := newTestPlanner(t)
	var orders []procurement.PurchaseOrder
	eligible := decimal.Zero
	weights := []int64{3100, 2900, 1800, 1700, 900, 400, 4900, 50}
	for i, w := range weights {
		orders = append(orders, newOrder(t, fmt.Sprintf("PO-%02d", i), "Acme", "Nagpur", i+1, w))
		eligible = eligible.Add(decimal.NewFromInt(w))
	}

	plans := p.Plan(orders, nil)

	seen := make(map[uuid.UUID]bool)
	planned := decimal.Zero
	for _, plan := range plans {
		assert.False(t, plan.TotalWeight.GreaterThan(decimal.NewFromInt(5000)), "bin over capacity")
		for _, ref := range plan.Orders {
			assert.False(t, seen[ref.ID], "order %s planned twice", ref.PONumber)
			seen[ref.ID] = true
		}
		planned = planned.Add(plan.TotalWeight)
	}
	assert.Len(t, seen, len(orders))
	assert.True(t, planned.Equal(eligible))
}

func TestPlanner_OversizeOrderTravelsAlone(t *testing.T) {
	p := newTestPlanner(t)
	orders := []procurement.PurchaseOrder{
		newOrder(t, "PO-BIG", "Acme", "Ranchi", 1, 6500),
		newOrder(t, "PO-SMALL", "Acme", "Ranchi", 2, 800),
	}

	plans := p.Plan(orders, nil)

	require.Len(t, plans, 2)
	assert.True(t, plans[0].Oversize)
	assert.Equal(t, "Truck", plans[0].VehicleType)
	assert.Equal(t, "130.00", plans[0].LoadPercentage.StringFixed(2))
	assert.Equal(t, RecommendationDispatchNow, plans[0].Recommendation)
	assert.False(t, plans[1].Oversize)
	assert.Equal(t, "Pickup", plans[1].VehicleType)
}

func TestPlanner_LowLoadIsDeferred(t *testing.T) {
	p := newTestPlanner(t)
	plans := p.Plan([]procurement.PurchaseOrder{newOrder(t, "PO-1", "Acme", "Delhi", 1, 100)}, nil)

	require.Len(t, plans, 1)
	assert.Equal(t, "Other", plans[0].VehicleType)
	assert.Equal(t, RecommendationHold, plans[0].Recommendation)
	assert.Equal(t, time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC), plans[0].DispatchDate)
	assert.Contains(t, plans[0].Note, "Low load for Delhi")
}

func TestPlanner_SkipsIneligibleOrders(t *testing.T) {
	p := newTestPlanner(t)
	cancelled := newOrder(t, "PO-C", "Acme", "Mumbai", 1, 500)
	require.NoError(t, cancelled.UpdateStatus(procurement.OrderStatusCancelled))
	dispatched := newOrder(t, "PO-D", "Acme", "Mumbai", 1, 500)
	require.NoError(t, dispatched.UpdateStatus(procurement.OrderStatusDispatch))
	confirmed := newOrder(t, "PO-OK", "Acme", "Mumbai", 1, 500)
	require.NoError(t, confirmed.UpdateStatus(procurement.OrderStatusConfirmed))

	plans := p.Plan([]procurement.PurchaseOrder{cancelled, dispatched, confirmed}, nil)

	require.Len(t, plans, 1)
	assert.Equal(t, []string{"PO-OK"}, poNumbers(plans[0]))
}

func TestPlanner_FoldsLocationCase(t *testing.T) {
	p := newTestPlanner(t)
	orders := []procurement.PurchaseOrder{
		newOrder(t, "PO-1", "Acme", "MUMBAI ", 1, 400),
		newOrder(t, "PO-2", "Acme", "mumbai", 2, 400),
		newOrder(t, "PO-3", "Acme", "", 3, 400),
	}

	plans := p.Plan(orders, nil)

	require.Len(t, plans, 2)
	assert.Equal(t, "Mumbai", plans[0].Location)
	assert.Len(t, plans[0].Orders, 2)
	assert.Equal(t, procurement.UnknownLocation, plans[1].Location)
}

func TestPlanner_FallbackUnitWeight(t *testing.T) {
	p := newTestPlanner(t, func(policy *Policy) {
		policy.FallbackUnitWeight = decimal.NewFromInt(2)
		policy.FallbackUnitVolume = decimal.NewFromFloat(0.01)
	})
	o, err := procurement.NewPurchaseOrder("PO-1", "Acme", fixedNow, "Surat")
	require.NoError(t, err)
	item, err := procurement.NewOrderItem("ITM", "Gasket", "", "", 400, decimal.NewFromInt(3), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, o.AddItem(item))

	plans := p.Plan([]procurement.PurchaseOrder{*o}, nil)

	require.Len(t, plans, 1)
	assert.True(t, plans[0].TotalWeight.Equal(decimal.NewFromInt(800)))
	assert.True(t, plans[0].TotalVolume.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "Pickup", plans[0].VehicleType)
}

func TestPlanner_GradeAnnotation(t *testing.T) {
	p := newTestPlanner(t)
	orders := []procurement.PurchaseOrder{newOrder(t, "PO-1", "Shaky Supplies", "Mumbai", 1, 1300)}

	plans := p.Plan(orders, map[string]string{"Shaky Supplies": "C"})

	require.Len(t, plans, 1)
	assert.Equal(t, "C", plans[0].Orders[0].SupplierGrade)
	assert.True(t, strings.HasSuffix(plans[0].Note, "Includes orders from grade C suppliers."))
}

func TestPlanner_VolumeConstrainedCatalog(t *testing.T) {
	catalog, err := NewCatalog([]VehicleClass{
		{Name: "Van", CapacityKg: decimal.NewFromInt(1000), CapacityCBM: decimal.NewFromInt(2)},
		{Name: "Truck", CapacityKg: decimal.NewFromInt(5000), CapacityCBM: decimal.NewFromInt(20)},
	})
	require.NoError(t, err)
	p, err := NewPlanner(catalog, NextDay, DefaultPolicy(), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	o, err := procurement.NewPurchaseOrder("PO-1", "Acme", fixedNow, "Kolkata")
	require.NoError(t, err)
	item, err := procurement.NewOrderItem("FOAM", "Foam Block", "", "", 100, decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromFloat(0.05))
	require.NoError(t, err)
	require.NoError(t, o.AddItem(item))

	plans := p.Plan([]procurement.PurchaseOrder{*o}, nil)

	require.Len(t, plans, 1)
	// 100 kg fits the van by weight but 5 CBM does not
	assert.Equal(t, "Truck", plans[0].VehicleType)
}

func TestNewPlanner_RejectsBadPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.EligibleStatuses = []procurement.OrderStatus{procurement.OrderStatusOpen, procurement.OrderStatusDispatch}
	_, err := NewPlanner(nil, nil, policy)
	assert.Error(t, err)

	policy = DefaultPolicy()
	policy.MinimumLoad = 0.9
	_, err = NewPlanner(nil, nil, policy)
	assert.Error(t, err)
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog([]VehicleClass{
		{Name: "Truck", CapacityKg: decimal.NewFromInt(5000)},
		{Name: "Pickup", CapacityKg: decimal.NewFromInt(1500)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Pickup", c.Classes()[0].Name)
	assert.Equal(t, "Truck", c.Largest().Name)

	pickup, ok := c.Find("Pickup")
	assert.True(t, ok)
	assert.True(t, pickup.CapacityKg.Equal(decimal.NewFromInt(1500)))
	_, ok = c.Find("Tempo")
	assert.False(t, ok)

	_, err = NewCatalog(nil)
	assert.Error(t, err)
	_, err = NewCatalog([]VehicleClass{{Name: "Bad", CapacityKg: decimal.Zero}})
	assert.Error(t, err)
	_, err = NewCatalog([]VehicleClass{
		{Name: "Van", CapacityKg: decimal.NewFromInt(1)},
		{Name: "Van", CapacityKg: decimal.NewFromInt(2)},
	})
	assert.Error(t, err)
}

func TestPlanner_GoldenMixedRegions(t *testing.T) {
	p := newTestPlanner(t)
	orders := []procurement.PurchaseOrder{
		newOrder(t, "PO-101", "Acme", "Mumbai", 1, 1200),
		newOrder(t, "PO-102", "Bolt", "pune", 2, 2000),
		newOrder(t, "PO-103", "Acme", "Pune", 1, 2500),
		newOrder(t, "PO-104", "Cast", "PUNE", 3, 1000),
		newOrder(t, "PO-105", "Bolt", "Delhi", 4, 100),
		newOrder(t, "PO-106", "Cast", "Bihar", 5, 700),
		newOrder(t, "PO-107", "Acme", "Ranchi", 6, 6500),
	}

	var buf bytes.Buffer
	for _, plan := range p.Plan(orders, nil) {
		fmt.Fprintf(&buf, "%s | %s | %s | %s kg | %s%% | %s | %s | %s | %s\n",
			plan.Location,
			plan.Route,
			plan.VehicleType,
			plan.TotalWeight.String(),
			plan.LoadPercentage.StringFixed(2),
			plan.Recommendation,
			plan.DispatchDate.Format("2006-01-02"),
			strings.Join(poNumbers(plan), ","),
			plan.Note,
		)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "planner_mixed_regions", buf.Bytes())
}
