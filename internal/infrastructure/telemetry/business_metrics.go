package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BusinessMetrics records order lifecycle and consolidation activity.
// A nil *BusinessMetrics records nothing.
type BusinessMetrics struct {
	ordersCreated      *Counter
	statusTransitions  *Counter
	dateRevisions      *Counter
	autoCancellations  *Counter
	plansGenerated     *Counter
	plansAccepted      *Counter
	planConflicts      *Counter
	shipmentsDispatch  *Counter
	planLoadPercentage *Histogram
	backlogOrders      *Gauge
	pendingWeight      *FloatGauge
}

// NewBusinessMetrics registers the portal's instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	var err error
	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&bm.ordersCreated, "portal_orders_created_total", "Purchase orders created", "{orders}"},
		{&bm.statusTransitions, "portal_order_status_transitions_total", "Purchase order status transitions", "{transitions}"},
		{&bm.dateRevisions, "portal_delivery_date_revisions_total", "Expected delivery date revisions", "{revisions}"},
		{&bm.autoCancellations, "portal_orders_auto_cancelled_total", "Orders cancelled after exhausting date revisions", "{orders}"},
		{&bm.plansGenerated, "portal_shipment_plans_generated_total", "Shipment plans proposed", "{plans}"},
		{&bm.plansAccepted, "portal_shipment_plans_accepted_total", "Shipment plans accepted", "{plans}"},
		{&bm.planConflicts, "portal_shipment_plan_conflicts_total", "Plan acceptances rejected for conflicts", "{plans}"},
		{&bm.shipmentsDispatch, "portal_shipments_dispatched_total", "Shipments dispatched", "{shipments}"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(meter, c.name, c.desc, c.unit); err != nil {
			return nil, err
		}
	}

	bm.planLoadPercentage, err = NewHistogram(meter,
		"portal_shipment_plan_load_percentage",
		"Vehicle load percentage of proposed plans",
		"%",
		LoadRatioBuckets...,
	)
	if err != nil {
		return nil, err
	}

	bm.backlogOrders, err = NewGauge(meter,
		"portal_order_backlog",
		"Purchase orders per status",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.pendingWeight, err = NewFloatGauge(meter,
		"portal_pending_weight_kg",
		"Weight of orders awaiting consolidation per location",
		"kg",
	)
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordOrderCreated counts a new purchase order.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, location string) {
	if bm == nil {
		return
	}
	bm.ordersCreated.Inc(ctx, AttrLocation.String(location))
}

// RecordStatusTransition counts a lifecycle transition.
func (bm *BusinessMetrics) RecordStatusTransition(ctx context.Context, from, to string) {
	if bm == nil {
		return
	}
	bm.statusTransitions.Inc(ctx, AttrFromStatus.String(from), AttrStatus.String(to))
}

// RecordDateRevision counts a delivery date edit and, if it tipped the
// order over the limit, an auto-cancellation.
func (bm *BusinessMetrics) RecordDateRevision(ctx context.Context, autoCancelled bool) {
	if bm == nil {
		return
	}
	bm.dateRevisions.Inc(ctx)
	if autoCancelled {
		bm.autoCancellations.Inc(ctx, AttrReason.String("revision_limit"))
	}
}

// RecordPlanGenerated counts a proposed plan and its load percentage.
func (bm *BusinessMetrics) RecordPlanGenerated(ctx context.Context, location, vehicle string, loadPercentage float64) {
	if bm == nil {
		return
	}
	bm.plansGenerated.Inc(ctx, AttrLocation.String(location), AttrVehicle.String(vehicle))
	bm.planLoadPercentage.Record(ctx, loadPercentage, AttrVehicle.String(vehicle))
}

// RecordPlanAccepted counts an accepted plan.
func (bm *BusinessMetrics) RecordPlanAccepted(ctx context.Context, location string) {
	if bm == nil {
		return
	}
	bm.plansAccepted.Inc(ctx, AttrLocation.String(location))
}

// RecordPlanConflict counts a rejected acceptance by error code.
func (bm *BusinessMetrics) RecordPlanConflict(ctx context.Context, code string) {
	if bm == nil {
		return
	}
	bm.planConflicts.Inc(ctx, AttrReason.String(code))
}

// RecordShipmentDispatched counts a dispatched shipment.
func (bm *BusinessMetrics) RecordShipmentDispatched(ctx context.Context, location string) {
	if bm == nil {
		return
	}
	bm.shipmentsDispatch.Inc(ctx, AttrLocation.String(location))
}

// RecordBacklog sets the per-status order gauge.
func (bm *BusinessMetrics) RecordBacklog(ctx context.Context, status string, count int64) {
	if bm == nil {
		return
	}
	bm.backlogOrders.Record(ctx, count, AttrStatus.String(status))
}

// RecordPendingWeight sets the awaiting-consolidation weight for a location.
func (bm *BusinessMetrics) RecordPendingWeight(ctx context.Context, location string, kg float64) {
	if bm == nil {
		return
	}
	bm.pendingWeight.Record(ctx, kg, AttrLocation.String(location))
}
