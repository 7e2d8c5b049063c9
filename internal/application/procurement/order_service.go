package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LifecycleSettings tunes the order lifecycle
type LifecycleSettings struct {
	// MaxRevisions is the revision count at which an order is cancelled
	MaxRevisions int
	// UpdateRetries bounds re-reads when a concurrent edit wins the version race
	UpdateRetries int
}

// OrderService handles purchase order intake and lifecycle operations
type OrderService struct {
	orderRepo       procurement.PurchaseOrderRepository
	settings        LifecycleSettings
	logger          *zap.Logger
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo procurement.PurchaseOrderRepository, settings LifecycleSettings, logger *zap.Logger) *OrderService {
	if settings.MaxRevisions <= 0 {
		settings.MaxRevisions = procurement.DefaultMaxRevisions
	}
	if settings.UpdateRetries <= 0 {
		settings.UpdateRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		settings:  settings,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *OrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create creates a new purchase order in OPEN status
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "create")
	defer span.End()
	telemetry.SetAttributes(span, "po_number", req.PONumber, "supplier", req.SupplierName)

	order, err := s.create(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// CreateOrders validates and stores each entry independently. One bad entry
// does not stop the rest of the batch.
func (s *OrderService) CreateOrders(ctx context.Context, reqs []CreateOrderRequest) (*BulkCreateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "create_bulk")
	defer span.End()
	telemetry.SetAttributes(span, "batch_size", len(reqs))

	result := &BulkCreateResult{
		Created: make([]OrderResponse, 0, len(reqs)),
		Errors:  []BulkCreateError{},
	}
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		order, err := s.create(ctx, req)
		if err != nil {
			var de *shared.DomainError
			if !errors.As(err, &de) {
				telemetry.RecordError(span, err)
				return nil, fmt.Errorf("bulk create entry %d: %w", i, err)
			}
			result.Errors = append(result.Errors, BulkCreateError{
				Index:    i,
				PONumber: req.PONumber,
				Code:     de.Code,
				Message:  de.Message,
			})
			continue
		}
		result.Created = append(result.Created, ToOrderResponse(order))
	}

	s.logger.Info("Bulk purchase order intake finished",
		zap.Int("received", len(reqs)),
		zap.Int("created", len(result.Created)),
		zap.Int("rejected", len(result.Errors)))
	telemetry.SetOK(span)
	return result, nil
}

func (s *OrderService) create(ctx context.Context, req CreateOrderRequest) (*procurement.PurchaseOrder, error) {
	var orderDate time.Time
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	order, err := procurement.NewPurchaseOrder(req.PONumber, req.SupplierName, orderDate, req.Location)
	if err != nil {
		return nil, err
	}
	order.SupplierCode = strings.TrimSpace(req.SupplierCode)
	order.PlantCode = strings.TrimSpace(req.PlantCode)
	order.ERPReference = strings.TrimSpace(req.ERPReference)

	for _, in := range req.Items {
		item, err := procurement.NewOrderItem(in.ItemCode, in.ItemName, in.HSNCode, in.UOM,
			in.Quantity, in.Rate, in.WeightPerUnit, in.VolumePerUnit)
		if err != nil {
			return nil, err
		}
		if err := order.AddItem(item); err != nil {
			return nil, err
		}
	}

	exists, err := s.orderRepo.ExistsByPONumber(ctx, order.SupplierName, order.PONumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check PO number: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("PO %s already exists for supplier %s", order.PONumber, order.SupplierName))
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, order)
	s.businessMetrics.RecordOrderCreated(ctx, order.Location)
	return order, nil
}

// List lists purchase orders with pagination
func (s *OrderService) List(ctx context.Context, req ListOrdersRequest) (*shared.Paginated[OrderResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "list")
	defer span.End()

	filter := procurement.OrderFilter{
		Filter:   shared.DefaultFilter(),
		Supplier: strings.TrimSpace(req.Supplier),
		Location: strings.TrimSpace(req.Location),
	}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	if req.Status != "" {
		status, ok := procurement.ParseOrderStatus(req.Status)
		if !ok {
			return nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unknown status %q", req.Status))
		}
		filter.Status = &status
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	page := shared.NewPaginated(ToOrderResponses(orders), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get retrieves a purchase order by ID
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateDeliveryDate records a new supplier commitment. The revision that
// reaches the limit cancels the order in the same versioned write; when a
// concurrent edit wins the race the order is re-read and the edit replayed.
func (s *OrderService) UpdateDeliveryDate(ctx context.Context, id uuid.UUID, req UpdateDeliveryDateRequest) (*UpdateDeliveryDateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "update_delivery_date")
	defer span.End()
	telemetry.SetAttributes(span, "order_id", id.String())

	for attempt := 1; ; attempt++ {
		order, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		autoCancelled, err := order.ReviseDeliveryDate(req.ExpectedDeliveryDate, s.settings.MaxRevisions)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		err = s.orderRepo.SaveWithLock(ctx, order)
		if errors.Is(err, shared.ErrStaleData) && attempt < s.settings.UpdateRetries {
			s.logger.Debug("Delivery date edit lost a version race, retrying",
				zap.String("order_id", id.String()),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		s.publish(ctx, order)
		s.businessMetrics.RecordDateRevision(ctx, autoCancelled)

		resp := &UpdateDeliveryDateResponse{
			Message:       "Delivery date updated",
			RevisionCount: order.RevisionCount,
			Status:        string(order.Status),
			AutoCancelled: autoCancelled,
		}
		if autoCancelled {
			resp.Message = fmt.Sprintf("Delivery date revised %d times; order cancelled", order.RevisionCount)
			s.logger.Warn("Purchase order auto-cancelled",
				zap.String("po_number", order.PONumber),
				zap.String("supplier", order.SupplierName),
				zap.Int("revision_count", order.RevisionCount))
		}
		telemetry.SetAttributes(span, "revision_count", order.RevisionCount, "auto_cancelled", autoCancelled)
		telemetry.SetOK(span)
		return resp, nil
	}
}

// UpdateStatus applies a manual status edit
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*MessageResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "update_status")
	defer span.End()
	telemetry.SetAttributes(span, "order_id", id.String(), "target_status", req.Status)

	target, ok := procurement.ParseOrderStatus(req.Status)
	if !ok {
		err := shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unknown status %q", req.Status))
		telemetry.RecordError(span, err)
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	previous := order.Status
	if err := order.UpdateStatus(target); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if previous == order.Status {
		return &MessageResponse{Message: fmt.Sprintf("Status is already %s", target)}, nil
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, order)
	s.businessMetrics.RecordStatusTransition(ctx, string(previous), string(order.Status))
	telemetry.SetOK(span)
	return &MessageResponse{Message: fmt.Sprintf("Status updated to %s", order.Status)}, nil
}

// PurgeAllOrders deletes every order, item and shipment. The upstream ERP is not notified.
func (s *OrderService) PurgeAllOrders(ctx context.Context) (*PurgeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "purge")
	defer span.End()

	deleted, err := s.orderRepo.DeleteAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Warn("All purchase orders purged", zap.Int64("deleted", deleted))
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, procurement.NewPurchaseOrdersPurgedEvent(deleted)); err != nil {
			s.logger.Error("Failed to publish purge event", zap.Error(err))
		}
	}
	telemetry.SetOK(span)
	return &PurgeResponse{
		Message: fmt.Sprintf("Deleted %d purchase orders", deleted),
		Deleted: deleted,
	}, nil
}

// publish sends the order's pending events after a successful write. A
// publishing failure is logged; the write already happened.
func (s *OrderService) publish(ctx context.Context, order *procurement.PurchaseOrder) {
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
