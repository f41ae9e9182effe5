package domain

import "time"

// Period is a closed date interval. Bounds are inclusive: a period ending
// on the 13th does not overlap one starting on the 14th, but does overlap
// one starting on the 13th.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the two periods share at least one day.
func (p Period) Overlaps(other Period) bool {
	return !p.Start.After(other.End) && !p.End.Before(other.Start)
}

// Contains reports whether t falls inside the period, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Date builds a UTC midnight time for the given civil date. Periods in this
// domain have day granularity; arrival and departure times of day are
// carried as display metadata only.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
