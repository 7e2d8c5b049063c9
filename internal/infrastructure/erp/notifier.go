// Package erp reports consolidation outcomes back to the system of record.
//
// The wire protocol of the upstream ERP is out of scope; the notifier records
// each outbound notification as a structured log entry that an ingest
// pipeline can ship to the ERP connector.
package erp

import (
	"context"
	"fmt"

	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
	"go.uber.org/zap"
)

// Notifier turns shipment and cancellation events into ERP notifications
type Notifier struct {
	system string
	logger *zap.Logger
}

// NewNotifier creates a notifier for the named upstream system
func NewNotifier(system string, logger *zap.Logger) *Notifier {
	if system == "" {
		system = "ERP"
	}
	return &Notifier{system: system, logger: logger.Named("erp")}
}

// EventTypes implements shared.EventHandler
func (n *Notifier) EventTypes() []string {
	return []string{
		procurement.EventTypePurchaseOrderAutoCancelled,
		procurement.EventTypePurchaseOrderConsolidated,
		procurement.EventTypeShipmentCreated,
		procurement.EventTypeShipmentDispatched,
	}
}

// Handle implements shared.EventHandler
func (n *Notifier) Handle(ctx context.Context, evt shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("system", n.system),
		zap.String("event_id", evt.EventID().String()),
		zap.String("event_type", evt.EventType()),
	}

	switch e := evt.(type) {
	case *procurement.PurchaseOrderAutoCancelledEvent:
		fields = append(fields,
			zap.String("po_number", e.PONumber),
			zap.String("supplier", e.SupplierName),
			zap.Int("revision_count", e.RevisionCount),
			zap.String("action", "cancel_purchase_order"),
		)
	case *procurement.PurchaseOrderConsolidatedEvent:
		fields = append(fields,
			zap.String("po_number", e.PONumber),
			zap.String("shipment_id", e.ShipmentID.String()),
			zap.String("action", "link_shipment"),
		)
	case *procurement.ShipmentCreatedEvent:
		fields = append(fields,
			zap.String("shipment_number", e.ShipmentNumber),
			zap.String("location", e.Location),
			zap.String("vehicle_type", e.VehicleType),
			zap.String("total_weight_kg", e.TotalWeight.StringFixed(2)),
			zap.Int("orders", len(e.OrderIDs)),
			zap.String("action", "create_delivery_note"),
		)
	case *procurement.ShipmentDispatchedEvent:
		fields = append(fields,
			zap.String("shipment_number", e.ShipmentNumber),
			zap.Time("dispatched_at", e.DispatchedAt),
			zap.String("action", "submit_delivery_note"),
		)
	default:
		return fmt.Errorf("erp notifier: unsupported event %s", evt.EventType())
	}

	n.logger.Info("ERP notification", fields...)
	return nil
}

var _ shared.EventHandler = (*Notifier)(nil)
