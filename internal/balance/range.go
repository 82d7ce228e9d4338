package balance

import (
	"time"

	"github.com/Dan9191/balance-service/internal/models"
)

// BoundPolicy decides what a missing range bound means
type BoundPolicy int

const (
	// Unbounded treats a missing bound as no limit on that side.
	Unbounded BoundPolicy = iota
	// DataBounds replaces a missing bound with the first or last day that has events.
	DataBounds
)

func (p BoundPolicy) String() string {
	switch p {
	case Unbounded:
		return "unbounded"
	case DataBounds:
		return "data-bounds"
	default:
		return "unknown"
	}
}

// Range is an inclusive pair of optional calendar-day bounds
type Range struct {
	Start *time.Time
	End   *time.Time
}

// NewRange builds a range from optional bounds, dropping their time of day.
func NewRange(start, end *time.Time) Range {
	return Range{Start: start, End: end}.normalize()
}

// Contains reports whether day falls inside the range
func (r Range) Contains(day time.Time) bool {
	r = r.normalize()
	day = Day(day)
	if r.Start != nil && day.Before(*r.Start) {
		return false
	}
	if r.End != nil && day.After(*r.End) {
		return false
	}
	return true
}

// Resolve fills missing bounds according to policy. days must be ascending.
func (r Range) Resolve(days []DailyChange, policy BoundPolicy) Range {
	r = r.normalize()
	if policy != DataBounds || len(days) == 0 {
		return r
	}
	if r.Start == nil {
		first := days[0].Date
		r.Start = &first
	}
	if r.End == nil {
		last := days[len(days)-1].Date
		r.End = &last
	}
	return r
}

func (r Range) normalize() Range {
	var out Range
	if r.Start != nil {
		start := Day(*r.Start)
		out.Start = &start
	}
	if r.End != nil {
		end := Day(*r.End)
		out.End = &end
	}
	return out
}

// Result is the outcome of one aggregation run
type Result struct {
	Range  Range
	Days   []DailyChange
	Points []Point
	Max    *Point
}

// Compute runs the whole aggregation over a snapshot of invoices:
// event extraction, daily netting, range resolution, accumulation and
// max selection.
func Compute(invoices []models.Invoice, r Range, policy BoundPolicy) Result {
	days := NetDaily(Events(invoices))
	resolved := r.Resolve(days, policy)
	points := Accumulate(days, resolved)

	res := Result{Range: resolved, Days: days, Points: points}
	if best, ok := Max(points); ok {
		res.Max = &best
	}
	return res
}
