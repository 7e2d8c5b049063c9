package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appprocurement "github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/application/procurement"
)

// PerformanceService produces the supplier scorecard
type PerformanceService interface {
	GetSupplierPerformance(ctx context.Context) (appprocurement.SupplierPerformanceResponse, error)
}

// SupplierHandler handles supplier reliability endpoints
type SupplierHandler struct {
	BaseHandler
	performanceService PerformanceService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(performanceService PerformanceService) *SupplierHandler {
	return &SupplierHandler{performanceService: performanceService}
}

// Performance handles GET /suppliers/performance
func (h *SupplierHandler) Performance(c *gin.Context) {
	perf, err := h.performanceService.GetSupplierPerformance(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, perf)
}
