package procurement

import (
	"context"
	"sort"

	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/reliability"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PerformanceCache stores the last computed scorecard. Set must drop the
// write when the cache was invalidated after Get returned generation.
type PerformanceCache interface {
	Get(ctx context.Context) ([]reliability.SupplierPerformance, int64, bool, error)
	Set(ctx context.Context, generation int64, perf []reliability.SupplierPerformance) error
}

// PerformanceService grades suppliers from their delivery history
type PerformanceService struct {
	orderRepo procurement.PurchaseOrderRepository
	grader    *reliability.Grader
	cache     PerformanceCache
	logger    *zap.Logger
}

// NewPerformanceService creates a new PerformanceService. cache may be nil.
func NewPerformanceService(orderRepo procurement.PurchaseOrderRepository, grader *reliability.Grader, cache PerformanceCache, logger *zap.Logger) *PerformanceService {
	if grader == nil {
		grader = reliability.NewGrader(reliability.DefaultPolicy())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceService{
		orderRepo: orderRepo,
		grader:    grader,
		cache:     cache,
		logger:    logger,
	}
}

// GetSupplierPerformance returns the scorecard keyed by supplier name.
// Suppliers without a qualifying order are absent.
func (s *PerformanceService) GetSupplierPerformance(ctx context.Context) (SupplierPerformanceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier_performance", "get")
	defer span.End()

	perf, err := s.scorecard(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := make(SupplierPerformanceResponse, len(perf))
	for _, p := range perf {
		resp[p.Supplier] = p
	}
	telemetry.SetAttributes(span, "suppliers", len(resp))
	telemetry.SetOK(span)
	return resp, nil
}

// Grades maps supplier names to letter grades for plan annotation
func (s *PerformanceService) Grades(ctx context.Context) (map[string]string, error) {
	perf, err := s.scorecard(ctx)
	if err != nil {
		return nil, err
	}
	grades := make(map[string]string, len(perf))
	for _, p := range perf {
		grades[p.Supplier] = string(p.Grade)
	}
	return grades, nil
}

func (s *PerformanceService) scorecard(ctx context.Context) ([]reliability.SupplierPerformance, error) {
	var (
		generation int64
		cacheable  bool
	)
	if s.cache != nil {
		perf, gen, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("Supplier performance cache read failed", zap.Error(err))
		} else if ok {
			return perf, nil
		} else {
			generation, cacheable = gen, true
		}
	}

	orders, err := s.orderRepo.FindWithDeliveryCommitment(ctx)
	if err != nil {
		return nil, err
	}
	graded := s.grader.GradeOrders(orders)

	perf := make([]reliability.SupplierPerformance, 0, len(graded))
	for _, p := range graded {
		perf = append(perf, p)
	}
	sort.Slice(perf, func(i, j int) bool { return perf[i].Supplier < perf[j].Supplier })

	if cacheable {
		if err := s.cache.Set(ctx, generation, perf); err != nil {
			s.logger.Warn("Supplier performance cache write failed", zap.Error(err))
		}
	}
	return perf, nil
}
