package core

import (
	"context"
	"fmt"

	"lodgecore/pkg/domain"
)

// NewBedOverlapRule returns the in-transaction rule rejecting any state in
// which two registrations hold the same bed for overlapping periods.
func NewBedOverlapRule() Rule {
	return bedOverlapRule{}
}

type bedOverlapRule struct{}

func (bedOverlapRule) Name() string { return "bed_overlap" }

func (bedOverlapRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	type slot struct {
		reg    Registration
		period Period
	}
	byBed := make(map[string][]slot)
	for _, r := range view.ListRegistrations() {
		if r.Assignment == nil {
			continue
		}
		period, ok := effectivePeriod(view, r)
		if !ok {
			continue
		}
		key := r.Assignment.BungalowID + "/" + r.Assignment.BedID
		byBed[key] = append(byBed[key], slot{reg: r, period: period})
	}

	res := Result{}
	for key, slots := range byBed {
		for i := 0; i < len(slots); i++ {
			for j := i + 1; j < len(slots); j++ {
				if !slots[i].period.Overlaps(slots[j].period) {
					continue
				}
				res.Violations = append(res.Violations, Violation{
					Rule:     "bed_overlap",
					Severity: SeverityBlock,
					Code:     CodeBedOccupiedOverlap,
					Message:  fmt.Sprintf("bed %s booked by registrations %s and %s for overlapping periods", key, slots[i].reg.ID, slots[j].reg.ID),
					Entity:   domain.EntityRegistration,
					EntityID: slots[j].reg.ID,
				})
			}
		}
	}
	return res, nil
}
