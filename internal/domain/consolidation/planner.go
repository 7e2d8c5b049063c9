// Package consolidation groups pending purchase orders into vehicle-sized
// shipment plans and proposes when each should leave.
//
// Planning is a pure function of the order snapshot, the vehicle catalog, the
// dispatch calendar and the clock. It never writes; acceptance is the caller's job.
package consolidation

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var hundred = decimal.NewFromInt(100)

// Policy holds the tunable thresholds of the planner
type Policy struct {
	// DispatchThreshold is the load ratio at or above which a plan should leave now
	DispatchThreshold float64
	// MinimumLoad is the load ratio below which dispatch is deferred by WaitWindowDays
	MinimumLoad    float64
	WaitWindowDays int
	// FallbackUnitWeight and FallbackUnitVolume replace zero per-unit figures.
	// Zero disables the fallback.
	FallbackUnitWeight decimal.Decimal
	FallbackUnitVolume decimal.Decimal
	// Destination is the receiving site every route ends at
	Destination string
	// HomeRegion is the region the destination sits in; routes from it are local
	HomeRegion       string
	EligibleStatuses []procurement.OrderStatus
}

// DefaultPolicy returns the default planner thresholds
func DefaultPolicy() Policy {
	return Policy{
		DispatchThreshold: 0.8,
		MinimumLoad:       0.3,
		WaitWindowDays:    3,
		Destination:       "BIHAR FACTORY",
		HomeRegion:        "Bihar",
		EligibleStatuses:  procurement.DefaultPlanningStatuses,
	}
}

// Validate checks threshold ranges and the eligible status set
func (p Policy) Validate() error {
	if p.DispatchThreshold <= 0 || p.DispatchThreshold > 1 {
		return shared.NewDomainError(shared.CodeValidation, "dispatch threshold must be in (0, 1]")
	}
	if p.MinimumLoad < 0 || p.MinimumLoad > p.DispatchThreshold {
		return shared.NewDomainError(shared.CodeValidation, "minimum load must be in [0, dispatch threshold]")
	}
	if p.WaitWindowDays < 0 {
		return shared.NewDomainError(shared.CodeValidation, "wait window cannot be negative")
	}
	if p.FallbackUnitWeight.IsNegative() || p.FallbackUnitVolume.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "fallback unit figures cannot be negative")
	}
	if len(p.EligibleStatuses) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "at least one eligible status is required")
	}
	for _, s := range p.EligibleStatuses {
		if !s.IsValid() || !s.AcceptsDateRevision() {
			return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("status %s cannot be planned", s))
		}
	}
	return nil
}

// Option configures a Planner
type Option func(*Planner)

// WithClock overrides the planner's notion of now
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// Planner is the greedy bin-packing consolidation engine
type Planner struct {
	catalog  *Catalog
	calendar DispatchCalendar
	policy   Policy
	now      func() time.Time
}

// NewPlanner creates a planner
func NewPlanner(catalog *Catalog, calendar DispatchCalendar, policy Policy, opts ...Option) (*Planner, error) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if calendar == nil {
		calendar = NextDay
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	p := &Planner{
		catalog:  catalog,
		calendar: calendar,
		policy:   policy,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Policy returns the planner policy
func (p *Planner) Policy() Policy {
	return p.policy
}

// Catalog returns the vehicle catalog
func (p *Planner) Catalog() *Catalog {
	return p.catalog
}

// EligibleStatuses returns the statuses the planner consumes
func (p *Planner) EligibleStatuses() []procurement.OrderStatus {
	return p.policy.EligibleStatuses
}

type locationGroup struct {
	key     string
	display string
	refs    []PlanOrderRef
}

type bin struct {
	refs     []PlanOrderRef
	weight   decimal.Decimal
	volume   decimal.Decimal
	oversize bool
}

// Plan computes shipment plans for the eligible orders in the snapshot.
// grades maps supplier names to letter grades and may be nil.
func (p *Planner) Plan(orders []procurement.PurchaseOrder, grades map[string]string) []ShipmentPlan {
	groups := p.groupByLocation(orders, grades)
	today := startOfDay(p.now())

	plans := make([]ShipmentPlan, 0, len(groups))
	for _, g := range groups {
		for _, b := range p.pack(g.refs) {
			plans = append(plans, p.buildPlan(g.display, b, today))
		}
	}

	sort.SliceStable(plans, func(i, j int) bool {
		ki, kj := locationKey(plans[i].Location), locationKey(plans[j].Location)
		if ki != kj {
			return ki < kj
		}
		if !plans[i].TotalWeight.Equal(plans[j].TotalWeight) {
			return plans[i].TotalWeight.GreaterThan(plans[j].TotalWeight)
		}
		return plans[i].PlanID.String() < plans[j].PlanID.String()
	})
	return plans
}

func (p *Planner) groupByLocation(orders []procurement.PurchaseOrder, grades map[string]string) []*locationGroup {
	title := cases.Title(language.Und)
	byKey := make(map[string]*locationGroup)

	for i := range orders {
		o := &orders[i]
		if !o.IsEligibleForPlanning(p.policy.EligibleStatuses) {
			continue
		}
		loc := procurement.NormalizeLocation(o.Location)
		key := locationKey(loc)
		g, ok := byKey[key]
		if !ok {
			g = &locationGroup{key: key, display: title.String(loc)}
			byKey[key] = g
		}
		weight, volume := p.OrderLoad(o)
		g.refs = append(g.refs, PlanOrderRef{
			ID:            o.ID,
			PONumber:      o.PONumber,
			SupplierName:  o.SupplierName,
			SupplierGrade: grades[o.SupplierName],
			OrderDate:     o.OrderDate,
			Version:       o.Version,
			Weight:        weight,
			Volume:        volume,
		})
	}

	groups := make([]*locationGroup, 0, len(byKey))
	for _, g := range byKey {
		sort.SliceStable(g.refs, func(i, j int) bool {
			a, b := g.refs[i], g.refs[j]
			if !a.OrderDate.Equal(b.OrderDate) {
				return a.OrderDate.Before(b.OrderDate)
			}
			if a.PONumber != b.PONumber {
				return a.PONumber < b.PONumber
			}
			return a.ID.String() < b.ID.String()
		})
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].key < groups[j].key })
	return groups
}

// OrderLoad returns the weight and volume of an order with fallbacks applied
func (p *Planner) OrderLoad(o *procurement.PurchaseOrder) (decimal.Decimal, decimal.Decimal) {
	weight, volume := decimal.Zero, decimal.Zero
	for _, item := range o.Items {
		qty := decimal.NewFromInt(item.Quantity)
		w := item.WeightPerUnit
		if w.IsZero() {
			w = p.policy.FallbackUnitWeight
		}
		v := item.VolumePerUnit
		if v.IsZero() {
			v = p.policy.FallbackUnitVolume
		}
		weight = weight.Add(w.Mul(qty))
		volume = volume.Add(v.Mul(qty))
	}
	return weight, volume
}

// pack fills bins first-fit in the given (oldest first) order, each bin capped
// at the largest vehicle class. An order that alone exceeds the largest class
// travels in its own oversize bin.
func (p *Planner) pack(refs []PlanOrderRef) []*bin {
	largest := p.catalog.Largest()

	total, totalVol := decimal.Zero, decimal.Zero
	for _, r := range refs {
		total = total.Add(r.Weight)
		totalVol = totalVol.Add(r.Volume)
	}
	if largest.Fits(total, totalVol) {
		return []*bin{{refs: refs, weight: total, volume: totalVol}}
	}

	var bins []*bin
	for _, r := range refs {
		if !largest.Fits(r.Weight, r.Volume) {
			bins = append(bins, &bin{refs: []PlanOrderRef{r}, weight: r.Weight, volume: r.Volume, oversize: true})
			continue
		}
		placed := false
		for _, b := range bins {
			if b.oversize {
				continue
			}
			if largest.Fits(b.weight.Add(r.Weight), b.volume.Add(r.Volume)) {
				b.refs = append(b.refs, r)
				b.weight = b.weight.Add(r.Weight)
				b.volume = b.volume.Add(r.Volume)
				placed = true
				break
			}
		}
		if !placed {
			bins = append(bins, &bin{refs: []PlanOrderRef{r}, weight: r.Weight, volume: r.Volume})
		}
	}
	return bins
}

func (p *Planner) buildPlan(location string, b *bin, today time.Time) ShipmentPlan {
	vehicle, _ := p.catalog.Select(b.weight, b.volume)
	ratio := b.weight.Div(vehicle.CapacityKg)
	ratioF := ratio.InexactFloat64()

	recommendation := p.Recommend(ratioF)
	dispatch, deferred := p.schedule(today, ratioF)

	refs := make([]PlanOrderRef, len(b.refs))
	copy(refs, b.refs)

	return ShipmentPlan{
		PlanID:            derivePlanID(refs),
		Location:          location,
		TargetRegion:      p.policy.HomeRegion,
		Route:             p.Route(location),
		VehicleType:       vehicle.Name,
		VehicleCapacityKg: vehicle.CapacityKg,
		TotalWeight:       b.weight,
		TotalVolume:       b.volume,
		LoadPercentage:    ratio.Mul(hundred).Round(2),
		DispatchDate:      dispatch,
		Recommendation:    recommendation,
		Note:              p.note(location, b, refs, recommendation, deferred, dispatch),
		Oversize:          b.oversize,
		Orders:            refs,
	}
}

// Recommend maps a load ratio to a dispatch recommendation
func (p *Planner) Recommend(ratio float64) string {
	if ratio >= p.policy.DispatchThreshold {
		return RecommendationDispatchNow
	}
	return RecommendationHold
}

// DispatchDate returns the dispatch day for a load ratio starting from today
func (p *Planner) DispatchDate(ratio float64) time.Time {
	d, _ := p.schedule(startOfDay(p.now()), ratio)
	return d
}

// schedule picks the next dispatch day, first deferring loads below the
// minimum by the wait window.
func (p *Planner) schedule(today time.Time, ratio float64) (time.Time, bool) {
	from := today
	deferred := ratio < p.policy.MinimumLoad
	if deferred {
		from = from.AddDate(0, 0, p.policy.WaitWindowDays)
	}
	return p.calendar.NextDispatchDay(from), deferred
}

// Route describes the leg from location to the destination
func (p *Planner) Route(location string) string {
	upper := cases.Upper(language.Und)
	origin := upper.String(location)
	if p.policy.HomeRegion != "" && locationKey(location) == locationKey(p.policy.HomeRegion) {
		origin = "LOCAL " + origin
	}
	return fmt.Sprintf("%s → %s", origin, p.policy.Destination)
}

func (p *Planner) note(location string, b *bin, refs []PlanOrderRef, recommendation string, deferred bool, dispatch time.Time) string {
	var note string
	switch {
	case b.oversize:
		note = fmt.Sprintf("Strategic volume for %s. Priority transit recommended.", location)
	case deferred:
		note = fmt.Sprintf("Low load for %s. Consolidating more orders to reduce freight cost per unit.", location)
	case recommendation == RecommendationDispatchNow:
		note = fmt.Sprintf("Optimized for %s logistics lane.", location)
	default:
		note = fmt.Sprintf("Partial load for %s. Holding for more orders until %s.", location, dispatch.Format("2006-01-02"))
	}
	for _, r := range refs {
		if r.SupplierGrade == "C" {
			note += " Includes orders from grade C suppliers."
			break
		}
	}
	return note
}

// SameLocation reports whether two locations fall in the same planning group
func SameLocation(a, b string) bool {
	return locationKey(a) == locationKey(b)
}

// locationKey folds case so "mumbai" and "MUMBAI" share a group
func locationKey(location string) string {
	return cases.Fold().String(procurement.NormalizeLocation(location))
}
