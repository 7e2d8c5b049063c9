package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/consolidation"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/config"
)

func defaultPlannerConfig() config.PlannerConfig {
	return config.PlannerConfig{
		DispatchThreshold: 0.8,
		MinimumLoad:       0.3,
		WaitWindowDays:    3,
		Destination:       "BIHAR FACTORY",
		HomeRegion:        "Bihar",
		EligibleStatuses:  []string{"OPEN", "confirmed"},
		Vehicles: []config.VehicleConfig{
			{Name: "Truck", CapacityKg: 5000},
			{Name: "Pickup", CapacityKg: 1500, CapacityCBM: 8.5},
		},
	}
}

func TestPlannerPolicy(t *testing.T) {
	t.Run("parses statuses", func(t *testing.T) {
		policy, err := plannerPolicy(defaultPlannerConfig())
		require.NoError(t, err)
		assert.Equal(t, []procurement.OrderStatus{procurement.OrderStatusOpen, procurement.OrderStatusConfirmed}, policy.EligibleStatuses)
		assert.True(t, policy.FallbackUnitWeight.IsZero())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		cfg := defaultPlannerConfig()
		cfg.EligibleStatuses = []string{"OPEN", "ON_HOLD"}
		_, err := plannerPolicy(cfg)
		assert.ErrorContains(t, err, "ON_HOLD")
	})
}

func TestVehicleCatalog(t *testing.T) {
	catalog, err := vehicleCatalog(defaultPlannerConfig().Vehicles)
	require.NoError(t, err)

	classes := catalog.Classes()
	require.Len(t, classes, 2)
	assert.Equal(t, "Pickup", classes[0].Name)
	assert.True(t, classes[0].CapacityCBM.Equal(decimal.NewFromFloat(8.5)))

	_, err = vehicleCatalog(nil)
	assert.Error(t, err)
}

func TestNewPlanner(t *testing.T) {
	cal := consolidation.CalendarFunc(func(from time.Time) time.Time { return from.AddDate(0, 0, 1) })

	planner, err := newPlanner(defaultPlannerConfig(), cal)
	require.NoError(t, err)
	assert.Equal(t, 0.8, planner.Policy().DispatchThreshold)

	cfg := defaultPlannerConfig()
	cfg.MinimumLoad = 0.9
	_, err = newPlanner(cfg, cal)
	assert.Error(t, err)
}

func TestGraderPolicy(t *testing.T) {
	policy := graderPolicy(config.GradingConfig{ConfidenceOrders: 5, Prior: 0.7, ThresholdA: 90, ThresholdB: 70})
	assert.Equal(t, 90.0, policy.ThresholdA)
	assert.Equal(t, 0.7, policy.Prior)
}
