package domain

import (
	"testing"
	"time"
)

func TestPeriodOverlapsIsSymmetric(t *testing.T) {
	a := Period{Start: Date(2025, time.January, 11), End: Date(2025, time.January, 13)}
	b := Period{Start: Date(2025, time.January, 13), End: Date(2025, time.January, 16)}

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatalf("periods sharing a boundary day must overlap in both directions")
	}
}

func TestPeriodAdjacentDaysDoNotOverlap(t *testing.T) {
	a := Period{Start: Date(2025, time.January, 11), End: Date(2025, time.January, 13)}
	b := Period{Start: Date(2025, time.January, 14), End: Date(2025, time.January, 16)}

	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatalf("back-to-back periods must not overlap")
	}
}

func TestPeriodNestedAlwaysOverlaps(t *testing.T) {
	outer := Period{Start: Date(2025, time.July, 1), End: Date(2025, time.July, 31)}
	inner := Period{Start: Date(2025, time.July, 10), End: Date(2025, time.July, 12)}

	if !outer.Overlaps(inner) || !inner.Overlaps(outer) {
		t.Fatalf("nested periods must overlap")
	}
}

func TestPeriodSingleDay(t *testing.T) {
	day := Period{Start: Date(2025, time.March, 5), End: Date(2025, time.March, 5)}

	if !day.Overlaps(day) {
		t.Fatalf("a single-day period must overlap itself")
	}
	if !day.Contains(Date(2025, time.March, 5)) {
		t.Fatalf("a single-day period must contain its day")
	}
	if day.Contains(Date(2025, time.March, 6)) {
		t.Fatalf("a single-day period must not contain the next day")
	}
}

func TestPeriodContainsBoundsInclusive(t *testing.T) {
	p := Period{Start: Date(2025, time.May, 10), End: Date(2025, time.May, 20)}

	for _, day := range []time.Time{p.Start, p.End, Date(2025, time.May, 15)} {
		if !p.Contains(day) {
			t.Fatalf("expected period to contain %v", day)
		}
	}
	if p.Contains(Date(2025, time.May, 9)) || p.Contains(Date(2025, time.May, 21)) {
		t.Fatalf("period must not contain days outside its bounds")
	}
}
