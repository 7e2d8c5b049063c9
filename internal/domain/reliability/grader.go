// Package reliability grades suppliers by how often they deliver on or before
// the date they committed to.
package reliability

import (
	"math"
	"time"

	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
)

// Grade is a letter classification of delivery reliability
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// Color returns the display color class for the grade
func (g Grade) Color() string {
	switch g {
	case GradeA:
		return "emerald"
	case GradeB:
		return "amber"
	default:
		return "red"
	}
}

// Policy holds the tunable parameters of the scoring function
type Policy struct {
	// ConfidenceOrders is the history size at which the observed ratio and the
	// prior weigh equally.
	ConfidenceOrders float64
	// Prior is the ratio assumed for a supplier with no history
	Prior float64
	// ThresholdA and ThresholdB are score cutoffs on a 0..100 scale
	ThresholdA float64
	ThresholdB float64
}

// DefaultPolicy returns the default scoring parameters
func DefaultPolicy() Policy {
	return Policy{
		ConfidenceOrders: 5,
		Prior:            0.7,
		ThresholdA:       90,
		ThresholdB:       70,
	}
}

// Record is the slice of an order's history the grader looks at
type Record struct {
	Supplier     string
	ExpectedDate *time.Time
	FulfilledAt  *time.Time
	Cancelled    bool
	Revisions    int
}

// RecordFromOrder extracts the grading record of a purchase order
func RecordFromOrder(o *procurement.PurchaseOrder) Record {
	return Record{
		Supplier:     o.SupplierName,
		ExpectedDate: o.ExpectedDeliveryDate,
		FulfilledAt:  o.FulfilledAt,
		Cancelled:    o.IsCancelled(),
		Revisions:    o.RevisionCount,
	}
}

// Qualifies reports whether the record has a commitment and a final disposition
func (r Record) Qualifies() bool {
	if r.ExpectedDate == nil {
		return false
	}
	return r.FulfilledAt != nil || r.Cancelled
}

// OnTime reports whether goods left on or before the committed day.
// A cancellation without fulfilment is never on time.
func (r Record) OnTime() bool {
	if !r.Qualifies() || r.FulfilledAt == nil {
		return false
	}
	return !truncateDay(*r.FulfilledAt).After(truncateDay(*r.ExpectedDate))
}

// SupplierPerformance is the derived reliability view of one supplier
type SupplierPerformance struct {
	Supplier         string  `json:"supplier_name"`
	Score            float64 `json:"score"`
	Grade            Grade   `json:"grade"`
	Reliability      float64 `json:"reliability"`
	Color            string  `json:"color"`
	QualifyingOrders int     `json:"qualifying_orders"`
	OnTimeOrders     int     `json:"on_time_orders"`
	DateRevisions    int     `json:"date_revisions"`
}

// Grader computes supplier grades from order history
type Grader struct {
	policy Policy
}

// NewGrader creates a grader, falling back to defaults for unset parameters
func NewGrader(policy Policy) *Grader {
	def := DefaultPolicy()
	if policy.ConfidenceOrders <= 0 {
		policy.ConfidenceOrders = def.ConfidenceOrders
	}
	if policy.Prior <= 0 || policy.Prior > 1 {
		policy.Prior = def.Prior
	}
	if policy.ThresholdA <= 0 {
		policy.ThresholdA = def.ThresholdA
	}
	if policy.ThresholdB <= 0 || policy.ThresholdB > policy.ThresholdA {
		policy.ThresholdB = math.Min(def.ThresholdB, policy.ThresholdA)
	}
	return &Grader{policy: policy}
}

// Policy returns the effective policy
func (g *Grader) Policy() Policy {
	return g.policy
}

// Score blends the observed ratio with the prior, trusting the ratio more as
// history grows. For a fixed n it is strictly increasing in ratio.
func (g *Grader) Score(ratio float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	c := float64(n) / (float64(n) + g.policy.ConfidenceOrders)
	score := 100 * (ratio*c + g.policy.Prior*(1-c))
	return math.Round(score*100) / 100
}

// GradeFor maps a score to a letter grade
func (g *Grader) GradeFor(score float64) Grade {
	switch {
	case score >= g.policy.ThresholdA:
		return GradeA
	case score >= g.policy.ThresholdB:
		return GradeB
	default:
		return GradeC
	}
}

// Grade computes performance for every supplier with qualifying history.
// Suppliers without any are absent from the result.
func (g *Grader) Grade(records []Record) map[string]SupplierPerformance {
	type tally struct {
		qualifying int
		onTime     int
		revisions  int
	}
	tallies := make(map[string]*tally)
	for _, r := range records {
		if !r.Qualifies() {
			continue
		}
		t, ok := tallies[r.Supplier]
		if !ok {
			t = &tally{}
			tallies[r.Supplier] = t
		}
		t.qualifying++
		t.revisions += r.Revisions
		if r.OnTime() {
			t.onTime++
		}
	}

	result := make(map[string]SupplierPerformance, len(tallies))
	for supplier, t := range tallies {
		ratio := float64(t.onTime) / float64(t.qualifying)
		score := g.Score(ratio, t.qualifying)
		grade := g.GradeFor(score)
		result[supplier] = SupplierPerformance{
			Supplier:         supplier,
			Score:            score,
			Grade:            grade,
			Reliability:      math.Round(ratio*10000) / 10000,
			Color:            grade.Color(),
			QualifyingOrders: t.qualifying,
			OnTimeOrders:     t.onTime,
			DateRevisions:    t.revisions,
		}
	}
	return result
}

// GradeOrders is a convenience wrapper over Grade for purchase orders
func (g *Grader) GradeOrders(orders []procurement.PurchaseOrder) map[string]SupplierPerformance {
	records := make([]Record, 0, len(orders))
	for i := range orders {
		records = append(records, RecordFromOrder(&orders[i]))
	}
	return g.Grade(records)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
