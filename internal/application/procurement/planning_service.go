package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/consolidation"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/scheduler"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// GradeSource supplies supplier grades for plan annotation
type GradeSource interface {
	Grades(ctx context.Context) (map[string]string, error)
}

// PlanningService proposes consolidated shipments and turns accepted plans into shipments
type PlanningService struct {
	orderRepo       procurement.PurchaseOrderRepository
	shipmentRepo    procurement.ShipmentRepository
	planner         *consolidation.Planner
	grades          GradeSource
	logger          *zap.Logger
	now             func() time.Time
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewPlanningService creates a new PlanningService. grades may be nil.
func NewPlanningService(
	orderRepo procurement.PurchaseOrderRepository,
	shipmentRepo procurement.ShipmentRepository,
	planner *consolidation.Planner,
	grades GradeSource,
	logger *zap.Logger,
) *PlanningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanningService{
		orderRepo:    orderRepo,
		shipmentRepo: shipmentRepo,
		planner:      planner,
		grades:       grades,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PlanningService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *PlanningService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// PlanShipments computes plans over the current eligible orders. Nothing is written.
func (s *PlanningService) PlanShipments(ctx context.Context) (*PlanResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "planning", "plan_shipments")
	defer span.End()

	orders, err := s.orderRepo.FindByStatuses(ctx, s.planner.EligibleStatuses())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var grades map[string]string
	if s.grades != nil && len(orders) > 0 {
		grades, err = s.grades.Grades(ctx)
		if err != nil {
			// plans stay valid without the annotation
			s.logger.Warn("Supplier grades unavailable for planning", zap.Error(err))
			grades = nil
		}
	}

	plans := s.planner.Plan(orders, grades)

	resp := &PlanResponse{
		Plans:              plans,
		TotalPendingWeight: decimal.Zero,
		TotalPendingVolume: decimal.Zero,
		GeneratedAt:        s.now(),
	}
	for _, p := range plans {
		resp.EligibleOrders += len(p.Orders)
		resp.TotalPendingWeight = resp.TotalPendingWeight.Add(p.TotalWeight)
		resp.TotalPendingVolume = resp.TotalPendingVolume.Add(p.TotalVolume)
		s.businessMetrics.RecordPlanGenerated(ctx, p.Location, p.VehicleType, p.LoadPercentage.InexactFloat64())
	}

	telemetry.SetAttributes(span, "eligible_orders", resp.EligibleOrders, "plans", len(plans))
	telemetry.SetOK(span)
	return resp, nil
}

// AcceptPlan turns a plan into a shipment. Every referenced order must still
// be eligible and, when a version is given, unchanged since planning.
// Either all orders are consolidated or none is.
func (s *PlanningService) AcceptPlan(ctx context.Context, req AcceptPlanRequest) (*AcceptPlanResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "planning", "accept_plan")
	defer span.End()
	telemetry.SetAttributes(span, "plan_id", req.PlanID.String(), "orders", len(req.Orders))

	if len(req.Orders) == 0 {
		err := shared.NewDomainError(shared.CodeValidation, "Plan must reference at least one order")
		telemetry.RecordError(span, err)
		return nil, err
	}

	claims := make([]procurement.PlanOrderClaim, len(req.Orders))
	ids := make([]uuid.UUID, len(req.Orders))
	for i, o := range req.Orders {
		claims[i] = procurement.PlanOrderClaim{OrderID: o.ID, Version: o.Version}
		ids[i] = o.ID
	}

	// Reject a malformed plan before any row is locked. The transaction
	// repeats the check against the locked rows.
	if err := s.precheckPlan(ctx, req, ids); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	shipment, orders, err := s.shipmentRepo.CreateFromClaims(ctx, claims, s.planner.EligibleStatuses(),
		func(orders []*procurement.PurchaseOrder) (*procurement.Shipment, error) {
			return s.buildShipment(req, orders)
		})
	if err != nil {
		if code := shared.CodeOf(err); code == shared.CodePlanConflict || code == shared.CodeStaleData {
			s.businessMetrics.RecordPlanConflict(ctx, code)
			s.logger.Info("Plan acceptance rejected",
				zap.String("plan_id", req.PlanID.String()),
				zap.String("code", code),
				zap.Error(err))
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishShipment(ctx, shipment)
	for _, o := range orders {
		s.publishOrder(ctx, o)
	}
	s.businessMetrics.RecordPlanAccepted(ctx, shipment.Location)
	s.logger.Info("Plan accepted",
		zap.String("shipment_number", shipment.ShipmentNumber),
		zap.String("vehicle_type", shipment.VehicleType),
		zap.Int("orders", len(orders)))

	telemetry.SetAttributes(span, "shipment_number", shipment.ShipmentNumber)
	telemetry.SetOK(span)
	return &AcceptPlanResponse{
		Message:  fmt.Sprintf("Shipment %s created with %d orders", shipment.ShipmentNumber, len(orders)),
		Shipment: ToShipmentResponse(shipment),
	}, nil
}

// planSizing is the validated shape of an accepted plan
type planSizing struct {
	location string
	vehicle  consolidation.VehicleClass
	weight   decimal.Decimal
	volume   decimal.Decimal
}

func (s *PlanningService) precheckPlan(ctx context.Context, req AcceptPlanRequest, ids []uuid.UUID) error {
	found, err := s.orderRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	// missing or consumed orders are reported as conflicts by the transaction
	if len(found) != len(ids) {
		return nil
	}
	orders := make([]*procurement.PurchaseOrder, len(found))
	for i := range found {
		if !found[i].IsEligibleForPlanning(s.planner.EligibleStatuses()) {
			return nil
		}
		orders[i] = &found[i]
	}
	_, err = s.sizePlan(req, orders)
	return err
}

// sizePlan checks that orders form one location group carried by a single
// vehicle and resolves the vehicle and location the request left blank.
// Only a lone order heavier than the largest class may exceed its vehicle.
func (s *PlanningService) sizePlan(req AcceptPlanRequest, orders []*procurement.PurchaseOrder) (planSizing, error) {
	sz := planSizing{
		location: procurement.NormalizeLocation(orders[0].Location),
		weight:   decimal.Zero,
		volume:   decimal.Zero,
	}
	for _, o := range orders {
		if !consolidation.SameLocation(o.Location, sz.location) {
			return sz, shared.NewDomainError(shared.CodeValidation,
				fmt.Sprintf("Order %s ships from %s, not %s", o.PONumber, procurement.NormalizeLocation(o.Location), sz.location))
		}
		w, v := s.planner.OrderLoad(o)
		sz.weight = sz.weight.Add(w)
		sz.volume = sz.volume.Add(v)
	}

	if loc := strings.TrimSpace(req.Location); loc != "" {
		if !consolidation.SameLocation(loc, sz.location) {
			return sz, shared.NewDomainError(shared.CodeValidation,
				fmt.Sprintf("Plan location %s does not match its orders in %s", loc, sz.location))
		}
		sz.location = procurement.NormalizeLocation(loc)
	}

	catalog := s.planner.Catalog()
	if name := strings.TrimSpace(req.VehicleType); name != "" {
		v, ok := catalog.Find(name)
		if !ok {
			return sz, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unknown vehicle type %s", name))
		}
		sz.vehicle = v
	} else {
		sz.vehicle, _ = catalog.Select(sz.weight, sz.volume)
	}

	if !sz.vehicle.Fits(sz.weight, sz.volume) {
		largest := catalog.Largest()
		oversize := len(orders) == 1 && !largest.Fits(sz.weight, sz.volume) && sz.vehicle.Name == largest.Name
		if !oversize {
			return sz, shared.NewDomainError(shared.CodeValidation,
				fmt.Sprintf("Vehicle %s cannot carry %s kg", sz.vehicle.Name, sz.weight.StringFixed(2)))
		}
	}
	return sz, nil
}

// buildShipment fills the fields the request left blank. It runs inside the
// acceptance transaction with freshly loaded orders.
func (s *PlanningService) buildShipment(req AcceptPlanRequest, orders []*procurement.PurchaseOrder) (*procurement.Shipment, error) {
	sz, err := s.sizePlan(req, orders)
	if err != nil {
		return nil, err
	}

	ratio := sz.weight.Div(sz.vehicle.CapacityKg).InexactFloat64()

	route := strings.TrimSpace(req.Route)
	if route == "" {
		route = s.planner.Route(sz.location)
	}

	var dispatch time.Time
	if req.DispatchDate != nil && !req.DispatchDate.IsZero() {
		dispatch = *req.DispatchDate
	} else {
		dispatch = s.planner.DispatchDate(ratio)
	}

	recommendation := strings.TrimSpace(req.Recommendation)
	if recommendation == "" {
		recommendation = s.planner.Recommend(ratio)
	}

	return procurement.NewShipment(sz.location, route, sz.vehicle.Name, sz.vehicle.CapacityKg,
		dispatch, recommendation, orders, s.planner.OrderLoad)
}

// ListShipments lists shipments with pagination
func (s *PlanningService) ListShipments(ctx context.Context, req ListShipmentsRequest) (*shared.Paginated[ShipmentResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if loc := strings.TrimSpace(req.Location); loc != "" {
		filter.Filters["location"] = loc
	}

	shipments, err := s.shipmentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.shipmentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ShipmentResponse, len(shipments))
	for i := range shipments {
		items[i] = ToShipmentResponse(&shipments[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetShipment retrieves a shipment by ID
func (s *PlanningService) GetShipment(ctx context.Context, id uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// DispatchShipment moves a scheduled shipment to DISPATCHED
func (s *PlanningService) DispatchShipment(ctx context.Context, id uuid.UUID) (*ShipmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "planning", "dispatch_shipment")
	defer span.End()
	telemetry.SetAttributes(span, "shipment_id", id.String())

	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := shipment.Dispatch(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.shipmentRepo.SaveWithLock(ctx, shipment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishShipment(ctx, shipment)
	s.businessMetrics.RecordShipmentDispatched(ctx, shipment.Location)
	telemetry.SetOK(span)

	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// Backlog reports order counts per status and the weight awaiting
// consolidation per location.
func (s *PlanningService) Backlog(ctx context.Context) (scheduler.Backlog, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return scheduler.Backlog{}, err
	}
	pending, err := s.orderRepo.FindByStatuses(ctx, s.planner.EligibleStatuses())
	if err != nil {
		return scheduler.Backlog{}, err
	}

	backlog := scheduler.Backlog{
		OrdersByStatus:  make(map[string]int64, len(counts)),
		PendingWeightKg: make(map[string]float64),
	}
	for status, n := range counts {
		backlog.OrdersByStatus[string(status)] = n
	}
	for i := range pending {
		w, _ := s.planner.OrderLoad(&pending[i])
		loc := procurement.NormalizeLocation(pending[i].Location)
		backlog.PendingWeightKg[loc] += w.InexactFloat64()
	}
	return backlog, nil
}

func (s *PlanningService) publishShipment(ctx context.Context, shipment *procurement.Shipment) {
	events := shipment.GetDomainEvents()
	shipment.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish shipment events",
			zap.String("shipment_number", shipment.ShipmentNumber),
			zap.Error(err))
	}
}

func (s *PlanningService) publishOrder(ctx context.Context, order *procurement.PurchaseOrder) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish purchase order events",
			zap.String("po_number", order.PONumber),
			zap.Error(err))
	}
}

var _ scheduler.BacklogSource = (*PlanningService)(nil)
