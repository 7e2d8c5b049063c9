package consolidation

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

// VehicleClass is a named capacity tier
type VehicleClass struct {
	Name       string          `json:"name"`
	CapacityKg decimal.Decimal `json:"capacity_kg"`
	// CapacityCBM of zero means volume is not constrained
	CapacityCBM decimal.Decimal `json:"capacity_cbm"`
}

// Fits reports whether a load of the given weight and volume fits the class
func (v VehicleClass) Fits(weight, volume decimal.Decimal) bool {
	if weight.GreaterThan(v.CapacityKg) {
		return false
	}
	return v.CapacityCBM.IsZero() || !volume.GreaterThan(v.CapacityCBM)
}

// Catalog is a set of vehicle classes ordered by ascending capacity
type Catalog struct {
	classes []VehicleClass
}

// DefaultCatalog returns the stock fleet: Other 750 kg, Pickup 1500 kg, Truck 5000 kg
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog([]VehicleClass{
		{Name: "Other", CapacityKg: decimal.NewFromInt(750)},
		{Name: "Pickup", CapacityKg: decimal.NewFromInt(1500)},
		{Name: "Truck", CapacityKg: decimal.NewFromInt(5000)},
	})
	return c
}

// NewCatalog validates the classes and sorts them by capacity
func NewCatalog(classes []VehicleClass) (*Catalog, error) {
	if len(classes) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Vehicle catalog cannot be empty")
	}
	seen := make(map[string]bool, len(classes))
	sorted := make([]VehicleClass, len(classes))
	copy(sorted, classes)
	for _, v := range sorted {
		if v.Name == "" {
			return nil, shared.NewDomainError(shared.CodeValidation, "Vehicle class name is required")
		}
		if seen[v.Name] {
			return nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Duplicate vehicle class %s", v.Name))
		}
		seen[v.Name] = true
		if !v.CapacityKg.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Vehicle class %s needs a positive capacity", v.Name))
		}
		if v.CapacityCBM.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Vehicle class %s has a negative volume capacity", v.Name))
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CapacityKg.LessThan(sorted[j].CapacityKg)
	})
	return &Catalog{classes: sorted}, nil
}

// Classes returns the classes in ascending capacity order
func (c *Catalog) Classes() []VehicleClass {
	out := make([]VehicleClass, len(c.classes))
	copy(out, c.classes)
	return out
}

// Largest returns the highest-capacity class
func (c *Catalog) Largest() VehicleClass {
	return c.classes[len(c.classes)-1]
}

// Select returns the smallest class that fits the load. ok is false when
// nothing fits, in which case the largest class is returned.
func (c *Catalog) Select(weight, volume decimal.Decimal) (VehicleClass, bool) {
	for _, v := range c.classes {
		if v.Fits(weight, volume) {
			return v, true
		}
	}
	return c.Largest(), false
}

// Find looks a class up by name
func (c *Catalog) Find(name string) (VehicleClass, bool) {
	for _, v := range c.classes {
		if v.Name == name {
			return v, true
		}
	}
	return VehicleClass{}, false
}
