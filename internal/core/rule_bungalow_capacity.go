package core

import (
	"context"
	"fmt"

	"lodgecore/pkg/domain"
)

// NewBungalowCapacityRule returns the in-transaction rule rejecting any
// state in which more registrations occupy a bungalow at one instant than
// it has capacity for.
func NewBungalowCapacityRule() Rule {
	return bungalowCapacityRule{}
}

type bungalowCapacityRule struct{}

func (bungalowCapacityRule) Name() string { return "bungalow_capacity" }

func (bungalowCapacityRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	res := Result{}
	for _, bungalow := range view.ListBungalows() {
		periods := make([]Period, 0, 4)
		for _, r := range assignedTo(view, bungalow.ID) {
			if period, ok := effectivePeriod(view, r); ok {
				periods = append(periods, period)
			}
		}
		// Max concurrency of closed day intervals is reached at some
		// interval start, so checking each start suffices.
		peak := 0
		for i := range periods {
			concurrent := 0
			for j := range periods {
				if periods[j].Contains(periods[i].Start) {
					concurrent++
				}
			}
			if concurrent > peak {
				peak = concurrent
			}
		}
		if peak > bungalow.Capacity {
			res.Violations = append(res.Violations, Violation{
				Rule:     "bungalow_capacity",
				Severity: SeverityBlock,
				Code:     CodeBungalowFullForPeriod,
				Message:  fmt.Sprintf("bungalow %s (%s) over capacity: %d concurrent occupants for %d beds", bungalow.Name, bungalow.ID, peak, bungalow.Capacity),
				Entity:   domain.EntityBungalow,
				EntityID: bungalow.ID,
			})
		}
	}
	return res, nil
}
