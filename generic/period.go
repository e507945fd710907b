package generic

import "iter"

// =============================================================================
// STAY RANGE - The night sequence a deal is priced over
// =============================================================================

// StayRange is the half-open interval [Start, End) of calendar days.
// Each day in the range is one night; End is the checkout day and is
// never itself a night.
//
// Examples:
//   - 2025-03-01 .. 2025-03-02: one night (2025-03-01)
//   - 2025-03-01 .. 2025-03-05: four nights, 03-01 through 03-04
type StayRange struct {
	Start TimePoint
	End   TimePoint
}

// Valid reports whether both ends are set and End is strictly after Start.
func (r StayRange) Valid() bool {
	if r.Start.IsZero() || r.End.IsZero() {
		return false
	}
	return r.End.After(r.Start)
}

// Nights returns the night count, clamped to a minimum of 1 so a same-day
// or inverted range that slips through never yields zero or negative nights.
func (r StayRange) Nights() int {
	return max(DaysBetween(r.Start, r.End), 1)
}

// All yields Nights() consecutive days starting at Start in ascending order.
// The sequence can be ranged over any number of times.
func (r StayRange) All() iter.Seq[TimePoint] {
	return func(yield func(TimePoint) bool) {
		n := r.Nights()
		for i := 0; i < n; i++ {
			if !yield(r.Start.AddDays(i)) {
				return
			}
		}
	}
}

// Days collects All into a slice.
func (r StayRange) Days() []TimePoint {
	days := make([]TimePoint, 0, r.Nights())
	for d := range r.All() {
		days = append(days, d)
	}
	return days
}

// Keys returns the day keys ("2006-01-02") of every night.
func (r StayRange) Keys() []string {
	keys := make([]string, 0, r.Nights())
	for d := range r.All() {
		keys = append(keys, d.String())
	}
	return keys
}

// Contains returns true if the day is one of the range's nights.
func (r StayRange) Contains(t TimePoint) bool {
	return !t.Before(r.Start) && t.Before(r.Start.AddDays(r.Nights()))
}

// String returns a string representation of the range.
func (r StayRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + ")"
}
