package core

import (
	"context"
	"fmt"

	"lodgecore/pkg/domain"
)

// NewRoomHomogeneityRule returns the in-transaction rule flagging bungalows
// whose overlapping occupants mix genders or stages. Warn severity: the
// manual gateway records overrides for these instead of rolling back.
func NewRoomHomogeneityRule() Rule {
	return roomHomogeneityRule{}
}

type roomHomogeneityRule struct{}

func (roomHomogeneityRule) Name() string { return "room_homogeneity" }

func (roomHomogeneityRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	res := Result{}
	for _, bungalow := range view.ListBungalows() {
		occupants := assignedTo(view, bungalow.ID)
		for i := 0; i < len(occupants); i++ {
			pi, ok := effectivePeriod(view, occupants[i])
			if !ok {
				continue
			}
			genderI := occupantGender(view, occupants[i])
			for j := i + 1; j < len(occupants); j++ {
				pj, ok := effectivePeriod(view, occupants[j])
				if !ok || !pi.Overlaps(pj) {
					continue
				}
				if genderJ := occupantGender(view, occupants[j]); genderI != "" && genderJ != "" && genderI != genderJ {
					res.Violations = append(res.Violations, Violation{
						Rule:     "room_homogeneity",
						Severity: SeverityWarn,
						Code:     CodeGenderMixing,
						Message:  fmt.Sprintf("bungalow %s mixes genders for overlapping registrations %s and %s", bungalow.ID, occupants[i].ID, occupants[j].ID),
						Entity:   domain.EntityBungalow,
						EntityID: bungalow.ID,
					})
				}
				if occupants[i].StageID != occupants[j].StageID {
					res.Violations = append(res.Violations, Violation{
						Rule:     "room_homogeneity",
						Severity: SeverityWarn,
						Code:     CodeDifferentStages,
						Message:  fmt.Sprintf("bungalow %s mixes stages for overlapping registrations %s and %s", bungalow.ID, occupants[i].ID, occupants[j].ID),
						Entity:   domain.EntityBungalow,
						EntityID: bungalow.ID,
					})
				}
			}
		}
	}
	return res, nil
}

func occupantGender(view RuleView, r Registration) Gender {
	p, ok := view.FindParticipant(r.ParticipantID)
	if !ok {
		return ""
	}
	return p.Gender
}
