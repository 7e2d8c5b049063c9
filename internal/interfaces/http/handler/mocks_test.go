package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appprocurement "github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/application/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/interfaces/http/dto"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockOrderService is a mock implementation of OrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, req appprocurement.CreateOrderRequest) (*appprocurement.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.OrderResponse), args.Error(1)
}

func (m *MockOrderService) CreateOrders(ctx context.Context, reqs []appprocurement.CreateOrderRequest) (*appprocurement.BulkCreateResult, error) {
	args := m.Called(ctx, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.BulkCreateResult), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, req appprocurement.ListOrdersRequest) (*shared.Paginated[appprocurement.OrderResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[appprocurement.OrderResponse]), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id uuid.UUID) (*appprocurement.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.OrderResponse), args.Error(1)
}

func (m *MockOrderService) UpdateDeliveryDate(ctx context.Context, id uuid.UUID, req appprocurement.UpdateDeliveryDateRequest) (*appprocurement.UpdateDeliveryDateResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.UpdateDeliveryDateResponse), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req appprocurement.UpdateStatusRequest) (*appprocurement.MessageResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.MessageResponse), args.Error(1)
}

func (m *MockOrderService) PurgeAllOrders(ctx context.Context) (*appprocurement.PurgeResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.PurgeResponse), args.Error(1)
}

// MockPlanningService is a mock implementation of PlanningService
type MockPlanningService struct {
	mock.Mock
}

func (m *MockPlanningService) PlanShipments(ctx context.Context) (*appprocurement.PlanResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.PlanResponse), args.Error(1)
}

func (m *MockPlanningService) AcceptPlan(ctx context.Context, req appprocurement.AcceptPlanRequest) (*appprocurement.AcceptPlanResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.AcceptPlanResponse), args.Error(1)
}

func (m *MockPlanningService) ListShipments(ctx context.Context, req appprocurement.ListShipmentsRequest) (*shared.Paginated[appprocurement.ShipmentResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[appprocurement.ShipmentResponse]), args.Error(1)
}

func (m *MockPlanningService) GetShipment(ctx context.Context, id uuid.UUID) (*appprocurement.ShipmentResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.ShipmentResponse), args.Error(1)
}

func (m *MockPlanningService) DispatchShipment(ctx context.Context, id uuid.UUID) (*appprocurement.ShipmentResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.ShipmentResponse), args.Error(1)
}

// MockPerformanceService is a mock implementation of PerformanceService
type MockPerformanceService struct {
	mock.Mock
}

func (m *MockPerformanceService) GetSupplierPerformance(ctx context.Context) (appprocurement.SupplierPerformanceResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(appprocurement.SupplierPerformanceResponse), args.Error(1)
}

// performRequest sends body (marshalled to JSON when not nil) through router
func performRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeResponse unmarshals the envelope and returns it with the raw data
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data any) dto.Response {
	t.Helper()

	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	if data != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return envelope.Response
}
