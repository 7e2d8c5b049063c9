package erp

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNotifier_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewNotifier("ERPNext", zap.New(core))
	ctx := context.Background()

	order, err := procurement.NewPurchaseOrder("PO-77", "Slow Ltd", time.Now(), "Ranchi")
	require.NoError(t, err)
	order.RevisionCount = 3

	require.NoError(t, n.Handle(ctx, procurement.NewPurchaseOrderAutoCancelledEvent(order, procurement.OrderStatusOpen)))

	shipmentID := uuid.New()
	order.ShipmentID = &shipmentID
	require.NoError(t, n.Handle(ctx, procurement.NewPurchaseOrderConsolidatedEvent(order, procurement.OrderStatusOpen)))

	shipment := &procurement.Shipment{
		ShipmentNumber: "SHP-20240603-ABCDEF12",
		Location:       "Ranchi",
		VehicleType:    "Pickup",
		TotalWeight:    decimal.NewFromInt(1200),
		OrderIDs:       []uuid.UUID{order.ID},
	}
	require.NoError(t, n.Handle(ctx, procurement.NewShipmentCreatedEvent(shipment)))

	entries := logs.FilterMessage("ERP notification").All()
	require.Len(t, entries, 3)
	assert.Equal(t, "cancel_purchase_order", entries[0].ContextMap()["action"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["revision_count"])
	assert.Equal(t, shipmentID.String(), entries[1].ContextMap()["shipment_id"])
	assert.Equal(t, "1200.00", entries[2].ContextMap()["total_weight_kg"])
	assert.Equal(t, "ERPNext", entries[2].ContextMap()["system"])
}

func TestNotifier_UnsupportedEvent(t *testing.T) {
	n := NewNotifier("", zap.NewNop())
	assert.NotContains(t, n.EventTypes(), procurement.EventTypePurchaseOrderCreated)

	order, err := procurement.NewPurchaseOrder("PO-1", "A", time.Now(), "Pune")
	require.NoError(t, err)
	assert.Error(t, n.Handle(context.Background(), procurement.NewPurchaseOrderCreatedEvent(order)))
}
