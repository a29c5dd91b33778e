package matrix

import "github.com/samber/lo"

// ExpandConcurrencyRange expands a (start, end, step) concurrency range into
// explicit values: start, start*step, start*step^2, ... with the final value
// clamped to exactly end. Callers must supply step > 1. An inverted range
// (start > end) expands to nothing.
func ExpandConcurrencyRange(start, end, step int) []int {
	var values []int
	conc := start
	for conc <= end {
		values = append(values, conc)
		if conc == end {
			break
		}
		conc *= step
		if conc > end {
			conc = end
		}
	}
	return values
}

// ConcurrencyBounds holds the optional --min-conc/--max-conc limits. A nil
// bound means unconstrained; a non-positive bound drops the affected point.
type ConcurrencyBounds struct {
	Min *int
	Max *int
}

// NarrowRange applies the bounds to a single-node (start, end) range before
// expansion. min raises the start, or drops the point when even end is below
// it; max lowers the end, or collapses the range to the single value max when
// even start exceeds it. ok=false means the point is dropped.
func (b ConcurrencyBounds) NarrowRange(start, end int) (newStart, newEnd int, ok bool) {
	if b.Min != nil {
		if *b.Min <= 0 {
			return 0, 0, false
		}
		if end < *b.Min {
			return 0, 0, false
		}
		if start < *b.Min {
			start = *b.Min
		}
	}
	if b.Max != nil {
		if *b.Max <= 0 {
			return 0, 0, false
		}
		if start > *b.Max {
			start = *b.Max
			end = *b.Max
		} else if end > *b.Max {
			end = *b.Max
		}
	}
	return start, end, true
}

// FilterList applies the bounds to an already-expanded multinode concurrency
// list by plain membership filtering. ok=false means the point is dropped:
// either a bound is non-positive or no value survives.
func (b ConcurrencyBounds) FilterList(values []int) ([]int, bool) {
	if b.Min != nil {
		if *b.Min <= 0 {
			return nil, false
		}
		values = lo.Filter(values, func(c int, _ int) bool { return c >= *b.Min })
		if len(values) == 0 {
			return nil, false
		}
	}
	if b.Max != nil {
		if *b.Max <= 0 {
			return nil, false
		}
		values = lo.Filter(values, func(c int, _ int) bool { return c <= *b.Max })
		if len(values) == 0 {
			return nil, false
		}
	}
	return values, true
}

// clampParallelism applies a --max-tp/--max-ep style bound to a parallelism
// degree: nil bound leaves the value alone, a non-positive bound drops the
// point, a violated positive bound clamps the value in place.
func clampParallelism(value int, bound *int) (clamped int, ok bool) {
	if bound == nil {
		return value, true
	}
	if *bound <= 0 {
		return 0, false
	}
	if value > *bound {
		return *bound, true
	}
	return value, true
}
