package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	appprocurement "github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/application/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/reliability"
)

func newSupplierRouter(svc *MockPerformanceService) *gin.Engine {
	h := NewSupplierHandler(svc)
	r := gin.New()
	r.GET("/suppliers/performance", h.Performance)
	return r
}

func TestSupplierHandler_Performance(t *testing.T) {
	t.Run("keyed by supplier", func(t *testing.T) {
		svc := new(MockPerformanceService)
		svc.On("GetSupplierPerformance", mock.Anything).Return(appprocurement.SupplierPerformanceResponse{
			"Acme":   {Supplier: "Acme", Grade: reliability.GradeA, Reliability: 95, QualifyingOrders: 10, OnTimeOrders: 10},
			"Zenith": {Supplier: "Zenith", Grade: reliability.GradeC, Reliability: 40, QualifyingOrders: 5, OnTimeOrders: 1},
		}, nil)

		w := performRequest(t, newSupplierRouter(svc), http.MethodGet, "/suppliers/performance", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got map[string]reliability.SupplierPerformance
		decodeResponse(t, w, &got)
		assert.Len(t, got, 2)
		assert.Equal(t, reliability.GradeA, got["Acme"].Grade)
		assert.Equal(t, reliability.GradeC, got["Zenith"].Grade)
	})

	t.Run("no history", func(t *testing.T) {
		svc := new(MockPerformanceService)
		svc.On("GetSupplierPerformance", mock.Anything).Return(appprocurement.SupplierPerformanceResponse{}, nil)

		w := performRequest(t, newSupplierRouter(svc), http.MethodGet, "/suppliers/performance", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{}}`, w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockPerformanceService)
		svc.On("GetSupplierPerformance", mock.Anything).Return(nil, errors.New("redis: connection pool timeout"))

		w := performRequest(t, newSupplierRouter(svc), http.MethodGet, "/suppliers/performance", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
