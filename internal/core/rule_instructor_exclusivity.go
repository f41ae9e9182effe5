package core

import (
	"context"
	"fmt"

	"lodgecore/pkg/domain"
)

// NewInstructorExclusivityRule returns the in-transaction rule flagging
// bungalows where another registration overlaps an instructor's stay. Warn
// severity so a deliberate manual override can commit.
func NewInstructorExclusivityRule() Rule {
	return instructorExclusivityRule{}
}

type instructorExclusivityRule struct{}

func (instructorExclusivityRule) Name() string { return "instructor_exclusivity" }

func (instructorExclusivityRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	res := Result{}
	for _, bungalow := range view.ListBungalows() {
		occupants := assignedTo(view, bungalow.ID)
		for i, instructor := range occupants {
			if instructor.Role != RoleInstructor {
				continue
			}
			pi, ok := effectivePeriod(view, instructor)
			if !ok {
				continue
			}
			for j, other := range occupants {
				if i == j {
					continue
				}
				pj, ok := effectivePeriod(view, other)
				if !ok || !pi.Overlaps(pj) {
					continue
				}
				res.Violations = append(res.Violations, Violation{
					Rule:     "instructor_exclusivity",
					Severity: SeverityWarn,
					Code:     CodeRoleSegregation,
					Message:  fmt.Sprintf("instructor registration %s shares bungalow %s with registration %s", instructor.ID, bungalow.ID, other.ID),
					Entity:   domain.EntityBungalow,
					EntityID: bungalow.ID,
				})
			}
		}
	}
	return res, nil
}
