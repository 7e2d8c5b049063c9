package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

var testDispatchDate = time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

func buildTestShipment(orders []*procurement.PurchaseOrder) (*procurement.Shipment, error) {
	return procurement.NewShipment("Pune", "PUNE → Central Hub", "Tata 407", decimal.NewFromInt(2500),
		testDispatchDate, "Dispatch Now", orders, nil)
}

type shipmentFixture struct {
	orders    *GormPurchaseOrderRepository
	shipments *GormShipmentRepository
}

func newShipmentFixture(t *testing.T) shipmentFixture {
	db := newTestDatabase(t)
	return shipmentFixture{
		orders:    NewGormPurchaseOrderRepository(db.DB),
		shipments: NewGormShipmentRepository(db.DB),
	}
}

func (f shipmentFixture) seed(t *testing.T, pos ...string) []*procurement.PurchaseOrder {
	t.Helper()
	out := make([]*procurement.PurchaseOrder, len(pos))
	for i, po := range pos {
		out[i] = newTestOrder(t, po, "Acme", "Pune", 10, 50)
		require.NoError(t, f.orders.Save(context.Background(), out[i]))
	}
	return out
}

func claimsFor(orders ...*procurement.PurchaseOrder) []procurement.PlanOrderClaim {
	claims := make([]procurement.PlanOrderClaim, len(orders))
	for i, o := range orders {
		claims[i] = procurement.PlanOrderClaim{OrderID: o.ID, Version: o.Version}
	}
	return claims
}

func TestGormShipmentRepository_CreateFromClaims(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()
	seeded := f.seed(t, "PO-1", "PO-2")

	shipment, orders, err := f.shipments.CreateFromClaims(ctx, claimsFor(seeded...), nil, buildTestShipment)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, shipment.TotalWeight.Equal(decimal.NewFromInt(1000)))
	assert.True(t, shipment.LoadPercentage.Equal(decimal.NewFromInt(40)))
	for _, o := range orders {
		assert.Equal(t, procurement.OrderStatusConsolidated, o.Status)
		assert.Equal(t, 2, o.Version)
		require.Len(t, o.GetDomainEvents(), 1)
		assert.Equal(t, procurement.EventTypePurchaseOrderConsolidated, o.GetDomainEvents()[0].EventType())
	}

	stored, err := f.orders.FindByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, procurement.OrderStatusConsolidated, stored.Status)
	require.NotNil(t, stored.ShipmentID)
	assert.Equal(t, shipment.ID, *stored.ShipmentID)
	assert.NotNil(t, stored.FulfilledAt)

	found, err := f.shipments.FindByID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, shipment.ShipmentNumber, found.ShipmentNumber)
	assert.Equal(t, procurement.ShipmentStatusScheduled, found.Status)
	assert.ElementsMatch(t, []uuid.UUID{seeded[0].ID, seeded[1].ID}, found.OrderIDs)
}

func TestGormShipmentRepository_CreateFromClaims_Conflict(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()
	seeded := f.seed(t, "PO-1", "PO-2", "PO-3")

	_, _, err := f.shipments.CreateFromClaims(ctx, claimsFor(seeded[0], seeded[1]), nil, buildTestShipment)
	require.NoError(t, err)

	// PO-2 was consumed by the first shipment; PO-3 must stay untouched
	_, _, err = f.shipments.CreateFromClaims(ctx, claimsFor(seeded[1], seeded[2]), nil, buildTestShipment)
	assert.ErrorIs(t, err, shared.ErrPlanConflict)

	third, err := f.orders.FindByID(ctx, seeded[2].ID)
	require.NoError(t, err)
	assert.Equal(t, procurement.OrderStatusOpen, third.Status)
	assert.Equal(t, 1, third.Version)
	assert.Nil(t, third.ShipmentID)

	count, err := f.shipments.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormShipmentRepository_CreateFromClaims_Rejections(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()
	seeded := f.seed(t, "PO-1", "PO-2")

	t.Run("claimed version is stale", func(t *testing.T) {
		claims := claimsFor(seeded[0])
		claims[0].Version = 7
		_, _, err := f.shipments.CreateFromClaims(ctx, claims, nil, buildTestShipment)
		assert.ErrorIs(t, err, shared.ErrStaleData)
	})

	t.Run("order does not exist", func(t *testing.T) {
		claims := []procurement.PlanOrderClaim{{OrderID: uuid.New()}}
		_, _, err := f.shipments.CreateFromClaims(ctx, claims, nil, buildTestShipment)
		assert.ErrorIs(t, err, shared.ErrPlanConflict)
	})

	t.Run("order listed twice", func(t *testing.T) {
		claims := claimsFor(seeded[0], seeded[0])
		_, _, err := f.shipments.CreateFromClaims(ctx, claims, nil, buildTestShipment)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("status outside the eligible set", func(t *testing.T) {
		eligible := []procurement.OrderStatus{procurement.OrderStatusConfirmed}
		_, _, err := f.shipments.CreateFromClaims(ctx, claimsFor(seeded[0]), eligible, buildTestShipment)
		assert.ErrorIs(t, err, shared.ErrPlanConflict)
	})

	t.Run("build fails", func(t *testing.T) {
		boom := errors.New("boom")
		_, _, err := f.shipments.CreateFromClaims(ctx, claimsFor(seeded...),
			nil, func([]*procurement.PurchaseOrder) (*procurement.Shipment, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty plan", func(t *testing.T) {
		_, _, err := f.shipments.CreateFromClaims(ctx, nil, nil, buildTestShipment)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	count, err := f.shipments.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, count)
	for _, o := range seeded {
		stored, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, procurement.OrderStatusOpen, stored.Status)
	}
}

func TestGormShipmentRepository_ConcurrentAcceptance(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()
	seeded := f.seed(t, "PO-1", "PO-2", "PO-3")

	plans := [][]procurement.PlanOrderClaim{
		claimsFor(seeded[0], seeded[1]),
		claimsFor(seeded[1], seeded[2]),
	}
	errs := make([]error, len(plans))
	var wg sync.WaitGroup
	for i := range plans {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = f.shipments.CreateFromClaims(ctx, plans[i], nil, buildTestShipment)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrPlanConflict)
	}
	assert.Equal(t, 1, succeeded)

	count, err := f.shipments.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormShipmentRepository_DispatchAndList(t *testing.T) {
	f := newShipmentFixture(t)
	ctx := context.Background()
	seeded := f.seed(t, "PO-1", "PO-2")

	first, _, err := f.shipments.CreateFromClaims(ctx, claimsFor(seeded[0]), nil, buildTestShipment)
	require.NoError(t, err)
	_, _, err = f.shipments.CreateFromClaims(ctx, claimsFor(seeded[1]), nil, buildTestShipment)
	require.NoError(t, err)

	stale, err := f.shipments.FindByID(ctx, first.ID)
	require.NoError(t, err)

	require.NoError(t, first.Dispatch())
	require.NoError(t, f.shipments.SaveWithLock(ctx, first))
	assert.Equal(t, 2, first.Version)

	require.NoError(t, stale.Dispatch())
	assert.ErrorIs(t, f.shipments.SaveWithLock(ctx, stale), shared.ErrStaleData)

	filter := shared.DefaultFilter()
	filter.Filters["status"] = string(procurement.ShipmentStatusDispatched)
	dispatched, err := f.shipments.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, dispatched, 1)
	assert.Equal(t, first.ID, dispatched[0].ID)
	assert.NotNil(t, dispatched[0].DispatchedAt)
	assert.Equal(t, []uuid.UUID{seeded[0].ID}, dispatched[0].OrderIDs)

	all, err := f.shipments.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filter = shared.DefaultFilter()
	filter.Filters["location"] = "PUNE"
	total, err := f.shipments.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = f.shipments.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
