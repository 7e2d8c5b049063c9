package procurement

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

func createTestOrder(t *testing.T) *PurchaseOrder {
	order, err := NewPurchaseOrder("PO-2024-001", "Acme Castings", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Mumbai")
	require.NoError(t, err)
	return order
}

func addTestItem(t *testing.T, order *PurchaseOrder, qty int64, weight float64) {
	item, err := NewOrderItem("ITM-1", "Bearing", "8482", "Nos", qty, decimal.NewFromInt(10), decimal.NewFromFloat(weight), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	require.NoError(t, order.AddItem(item))
}

// ============================================
// OrderStatus Tests
// ============================================

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		input string
		want  OrderStatus
		ok    bool
	}{
		{"OPEN", OrderStatusOpen, true},
		{"In Production", OrderStatusInProduction, true},
		{"partially-shipped", OrderStatusPartiallyShipped, true},
		{" consolidated ", OrderStatusConsolidated, true},
		{"SHIPPED", OrderStatus("SHIPPED"), false},
		{"", OrderStatus(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseOrderStatus(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusOpen, OrderStatusConfirmed, true},
		{OrderStatusCompleted, OrderStatusOpen, true},
		{OrderStatusDispatch, OrderStatusPartiallyShipped, true},
		{OrderStatusInProduction, OrderStatusCancelled, true},
		{OrderStatusOpen, OrderStatusConsolidated, false},
		{OrderStatusCancelled, OrderStatusOpen, false},
		{OrderStatusConsolidated, OrderStatusDispatch, false},
		{OrderStatusOpen, OrderStatus("BOGUS"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// PurchaseOrder Tests
// ============================================

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("creates open order with created event", func(t *testing.T) {
		order := createTestOrder(t)
		assert.Equal(t, OrderStatusOpen, order.Status)
		assert.Equal(t, 0, order.RevisionCount)
		assert.Equal(t, 1, order.Version)
		require.Len(t, order.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePurchaseOrderCreated, order.GetDomainEvents()[0].EventType())
	})

	t.Run("blank location becomes unknown region", func(t *testing.T) {
		order, err := NewPurchaseOrder("PO-2", "Acme", time.Now(), "   ")
		require.NoError(t, err)
		assert.Equal(t, UnknownLocation, order.Location)
	})

	t.Run("rejects missing PO number", func(t *testing.T) {
		_, err := NewPurchaseOrder(" ", "Acme", time.Now(), "Pune")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects missing supplier", func(t *testing.T) {
		_, err := NewPurchaseOrder("PO-3", "", time.Now(), "Pune")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestNewOrderItem_RejectsNegatives(t *testing.T) {
	one := decimal.NewFromInt(1)
	neg := decimal.NewFromInt(-1)

	tests := []struct {
		name   string
		qty    int64
		rate   decimal.Decimal
		weight decimal.Decimal
		volume decimal.Decimal
	}{
		{"quantity", -1, one, one, one},
		{"rate", 1, neg, one, one},
		{"weight", 1, one, neg, one},
		{"volume", 1, one, one, neg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrderItem("ITM", "Thing", "", "", tt.qty, tt.rate, tt.weight, tt.volume)
			assert.True(t, errors.Is(err, shared.ErrValidation))
		})
	}

	item, err := NewOrderItem("ITM", "Thing", "", "", 0, decimal.Zero, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "Nos", item.UOM)
}

func TestPurchaseOrder_Totals(t *testing.T) {
	order := createTestOrder(t)
	addTestItem(t, order, 100, 12)
	addTestItem(t, order, 10, 0.5)

	assert.True(t, order.TotalWeight().Equal(decimal.NewFromInt(1205)))
	assert.True(t, order.TotalVolume().Equal(decimal.NewFromFloat(1.1)))
	assert.True(t, order.TotalAmount().Equal(decimal.NewFromInt(1100)))
	assert.Equal(t, 2, order.Items[1].LineNo)
	assert.Equal(t, order.ID, order.Items[0].OrderID)
}

func TestPurchaseOrder_ReviseDeliveryDate(t *testing.T) {
	t.Run("third revision cancels in the same call", func(t *testing.T) {
		order := createTestOrder(t)
		order.ClearDomainEvents()
		base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

		cancelled, err := order.ReviseDeliveryDate(base, DefaultMaxRevisions)
		require.NoError(t, err)
		assert.False(t, cancelled)

		cancelled, err = order.ReviseDeliveryDate(base.AddDate(0, 0, 7), DefaultMaxRevisions)
		require.NoError(t, err)
		assert.False(t, cancelled)
		assert.Equal(t, OrderStatusOpen, order.Status)

		// same date as before still counts
		cancelled, err = order.ReviseDeliveryDate(base.AddDate(0, 0, 7), DefaultMaxRevisions)
		require.NoError(t, err)
		assert.True(t, cancelled)
		assert.Equal(t, OrderStatusCancelled, order.Status)
		assert.Equal(t, 3, order.RevisionCount)
		assert.NotNil(t, order.CancelledAt)

		events := order.GetDomainEvents()
		require.Len(t, events, 4)
		assert.Equal(t, EventTypePurchaseOrderAutoCancelled, events[3].EventType())

		_, err = order.ReviseDeliveryDate(base, DefaultMaxRevisions)
		assert.True(t, errors.Is(err, shared.ErrLocked))
		assert.Equal(t, 3, order.RevisionCount)
	})

	t.Run("overrides manual status", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.UpdateStatus(OrderStatusCompleted))
		for i := 0; i < 3; i++ {
			_, err := order.ReviseDeliveryDate(time.Now().AddDate(0, 0, i+1), DefaultMaxRevisions)
			require.NoError(t, err)
		}
		assert.Equal(t, OrderStatusCancelled, order.Status)
	})

	t.Run("configurable threshold", func(t *testing.T) {
		order := createTestOrder(t)
		cancelled, err := order.ReviseDeliveryDate(time.Now(), 1)
		require.NoError(t, err)
		assert.True(t, cancelled)
	})

	t.Run("dispatched orders reject edits", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.UpdateStatus(OrderStatusDispatch))
		_, err := order.ReviseDeliveryDate(time.Now(), DefaultMaxRevisions)
		assert.True(t, errors.Is(err, shared.ErrLocked))
		assert.Equal(t, 0, order.RevisionCount)
	})

	t.Run("zero date is rejected without consuming a revision", func(t *testing.T) {
		order := createTestOrder(t)
		_, err := order.ReviseDeliveryDate(time.Time{}, DefaultMaxRevisions)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Equal(t, 0, order.RevisionCount)
	})
}

func TestPurchaseOrder_UpdateStatus(t *testing.T) {
	t.Run("free movement along the chain", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.UpdateStatus(OrderStatusCompleted))
		require.NotNil(t, order.FulfilledAt)
		fulfilled := *order.FulfilledAt

		require.NoError(t, order.UpdateStatus(OrderStatusConfirmed))
		require.NoError(t, order.UpdateStatus(OrderStatusDispatch))
		assert.Equal(t, fulfilled, *order.FulfilledAt)
	})

	t.Run("consolidated is not a manual target", func(t *testing.T) {
		order := createTestOrder(t)
		err := order.UpdateStatus(OrderStatusConsolidated)
		assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
		assert.Equal(t, OrderStatusOpen, order.Status)
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		order := createTestOrder(t)
		err := order.UpdateStatus(OrderStatus("LOST"))
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("cancelled orders are locked", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.UpdateStatus(OrderStatusCancelled))
		err := order.UpdateStatus(OrderStatusOpen)
		assert.True(t, errors.Is(err, shared.ErrLocked))
	})
}

func TestPurchaseOrder_MarkConsolidated(t *testing.T) {
	shipmentID := uuid.New()

	t.Run("eligible order moves to consolidated", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.MarkConsolidated(shipmentID, nil))
		assert.Equal(t, OrderStatusConsolidated, order.Status)
		assert.Equal(t, shipmentID, *order.ShipmentID)
		assert.NotNil(t, order.FulfilledAt)

		err := order.UpdateStatus(OrderStatusOpen)
		assert.True(t, errors.Is(err, shared.ErrLocked))
	})

	t.Run("already consumed order conflicts", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.MarkConsolidated(shipmentID, nil))
		err := order.MarkConsolidated(uuid.New(), nil)
		assert.True(t, errors.Is(err, shared.ErrPlanConflict))
	})

	t.Run("order outside the planning set conflicts", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.UpdateStatus(OrderStatusDispatch))
		err := order.MarkConsolidated(shipmentID, nil)
		assert.True(t, errors.Is(err, shared.ErrPlanConflict))
	})
}

func TestShipment(t *testing.T) {
	o1 := createTestOrder(t)
	addTestItem(t, o1, 100, 12)

	t.Run("totals come from orders", func(t *testing.T) {
		s, err := NewShipment("Mumbai", "MUMBAI → BIHAR FACTORY", "Pickup", decimal.NewFromInt(1500), time.Now(), "Dispatch Now", []*PurchaseOrder{o1}, nil)
		require.NoError(t, err)
		assert.True(t, s.TotalWeight.Equal(decimal.NewFromInt(1200)))
		assert.True(t, s.LoadPercentage.Equal(decimal.NewFromInt(80)))
		assert.Equal(t, ShipmentStatusScheduled, s.Status)
		assert.Contains(t, s.ShipmentNumber, "SHP-")

		require.NoError(t, s.Dispatch())
		assert.Equal(t, ShipmentStatusDispatched, s.Status)
		assert.True(t, errors.Is(s.Dispatch(), shared.ErrInvalidTransition))
	})

	t.Run("requires orders", func(t *testing.T) {
		_, err := NewShipment("Mumbai", "", "Pickup", decimal.NewFromInt(1500), time.Now(), "", nil, nil)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}
