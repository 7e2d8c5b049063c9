package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/consolidation"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/reliability"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/config"
)

// vehicleCatalog converts the configured fleet into a planner catalog
func vehicleCatalog(vehicles []config.VehicleConfig) (*consolidation.Catalog, error) {
	classes := make([]consolidation.VehicleClass, len(vehicles))
	for i, v := range vehicles {
		classes[i] = consolidation.VehicleClass{
			Name:        v.Name,
			CapacityKg:  decimal.NewFromFloat(v.CapacityKg),
			CapacityCBM: decimal.NewFromFloat(v.CapacityCBM),
		}
	}
	return consolidation.NewCatalog(classes)
}

// plannerPolicy converts planner settings into the domain policy
func plannerPolicy(cfg config.PlannerConfig) (consolidation.Policy, error) {
	statuses := make([]procurement.OrderStatus, 0, len(cfg.EligibleStatuses))
	for _, s := range cfg.EligibleStatuses {
		status, ok := procurement.ParseOrderStatus(s)
		if !ok {
			return consolidation.Policy{}, fmt.Errorf("planner.eligible_statuses: unknown status %q", s)
		}
		statuses = append(statuses, status)
	}

	return consolidation.Policy{
		DispatchThreshold:  cfg.DispatchThreshold,
		MinimumLoad:        cfg.MinimumLoad,
		WaitWindowDays:     cfg.WaitWindowDays,
		FallbackUnitWeight: decimal.NewFromFloat(cfg.FallbackUnitWeight),
		FallbackUnitVolume: decimal.NewFromFloat(cfg.FallbackUnitVolume),
		Destination:        cfg.Destination,
		HomeRegion:         cfg.HomeRegion,
		EligibleStatuses:   statuses,
	}, nil
}

// newPlanner builds the consolidation planner from configuration
func newPlanner(cfg config.PlannerConfig, cal consolidation.DispatchCalendar) (*consolidation.Planner, error) {
	catalog, err := vehicleCatalog(cfg.Vehicles)
	if err != nil {
		return nil, err
	}
	policy, err := plannerPolicy(cfg)
	if err != nil {
		return nil, err
	}
	return consolidation.NewPlanner(catalog, cal, policy)
}

func graderPolicy(cfg config.GradingConfig) reliability.Policy {
	return reliability.Policy{
		ConfidenceOrders: cfg.ConfidenceOrders,
		Prior:            cfg.Prior,
		ThresholdA:       cfg.ThresholdA,
		ThresholdB:       cfg.ThresholdB,
	}
}
