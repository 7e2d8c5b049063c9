package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/reliability"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter procurement.OrderFilter) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, filter procurement.OrderFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountByStatus(ctx context.Context) (map[procurement.OrderStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[procurement.OrderStatus]int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByStatuses(ctx context.Context, statuses []procurement.OrderStatus) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindWithDeliveryCommitment(ctx context.Context) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) ExistsByPONumber(ctx context.Context, supplierName, poNumber string) (bool, error) {
	args := m.Called(ctx, supplierName, poNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockShipmentRepository is a mock implementation of ShipmentRepository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.Shipment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShipmentRepository) SaveWithLock(ctx context.Context, shipment *procurement.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

// CreateFromClaims hands the stubbed orders to build so tests exercise the
// real shipment construction.
func (m *MockShipmentRepository) CreateFromClaims(
	ctx context.Context,
	claims []procurement.PlanOrderClaim,
	eligible []procurement.OrderStatus,
	build func(orders []*procurement.PurchaseOrder) (*procurement.Shipment, error),
) (*procurement.Shipment, []*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, claims, eligible)
	if err := args.Error(1); err != nil {
		return nil, nil, err
	}
	orders := args.Get(0).([]*procurement.PurchaseOrder)
	shipment, err := build(orders)
	if err != nil {
		return nil, nil, err
	}
	for _, o := range orders {
		if err := o.MarkConsolidated(shipment.ID, eligible); err != nil {
			return nil, nil, err
		}
	}
	return shipment, orders, nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockPerformanceCache is a mock implementation of PerformanceCache
type MockPerformanceCache struct {
	mock.Mock
}

func (m *MockPerformanceCache) Get(ctx context.Context) ([]reliability.SupplierPerformance, int64, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Bool(2), args.Error(3)
	}
	return args.Get(0).([]reliability.SupplierPerformance), args.Get(1).(int64), args.Bool(2), args.Error(3)
}

func (m *MockPerformanceCache) Set(ctx context.Context, generation int64, perf []reliability.SupplierPerformance) error {
	args := m.Called(ctx, generation, perf)
	return args.Error(0)
}

// Test constants
var (
	testOrderDate = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	testToday     = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC) // a Monday
)

// newTestOrder builds a stored-looking OPEN order with one line of qty units at kgPerUnit
func newTestOrder(t *testing.T, po, supplier, location string, qty int64, kgPerUnit int64) *procurement.PurchaseOrder {
	t.Helper()
	order, err := procurement.NewPurchaseOrder(po, supplier, testOrderDate, location)
	require.NoError(t, err)
	item, err := procurement.NewOrderItem("ITM-"+po, "Steel bracket", "7326", "Nos", qty,
		decimal.NewFromInt(120), decimal.NewFromInt(kgPerUnit), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	require.NoError(t, order.AddItem(item))
	order.ClearDomainEvents()
	return order
}
