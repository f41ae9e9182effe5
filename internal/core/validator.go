package core

import "fmt"

// Conflict is one validation finding for a requested placement. Blocking
// conflicts are terminal rejections; warn conflicts are advisory and may be
// overridden through the manual gateway.
type Conflict struct {
	Code     ConflictCode `json:"code"`
	Severity Severity     `json:"severity"`
	Message  string       `json:"message"`
}

// Terminal reports whether the conflict can never be overridden.
func (c Conflict) Terminal() bool { return c.Severity == SeverityBlock }

func firstTerminal(conflicts []Conflict) (Conflict, bool) {
	for _, c := range conflicts {
		if c.Terminal() {
			return c, true
		}
	}
	return Conflict{}, false
}

// Validator is the pure placement decision function shared by the manual
// gateway and the automatic scheduler. It only reads authoritative
// registrations, never the denormalized bed cache.
type Validator struct{}

// Validate checks a requested (registration, bungalow, bed) placement
// against a snapshot. Checks run in a fixed order and stop at the first
// terminal rejection; advisory findings gathered before that point are kept
// so callers can surface them alongside. No side effects.
func (v Validator) Validate(view RuleView, reg Registration, bungalow Bungalow, bedID string) []Conflict {
	if _, ok := bungalow.FindBed(bedID); !ok {
		return []Conflict{{
			Code:     CodeBedNotFound,
			Severity: SeverityBlock,
			Message:  fmt.Sprintf("bed %s does not exist in bungalow %s", bedID, bungalow.Name),
		}}
	}

	stage, ok := view.FindStage(reg.StageID)
	if !ok {
		return []Conflict{{
			Code:     CodeParticipantNotInStage,
			Severity: SeverityBlock,
			Message:  fmt.Sprintf("registration %s references unknown stage %s", reg.ID, reg.StageID),
		}}
	}
	participant, ok := view.FindParticipant(reg.ParticipantID)
	if !ok {
		return []Conflict{{
			Code:     CodeParticipantNotInStage,
			Severity: SeverityBlock,
			Message:  fmt.Sprintf("registration %s references unknown participant %s", reg.ID, reg.ParticipantID),
		}}
	}

	period := reg.EffectivePeriod(stage)

	var conflicts []Conflict
	occupiedBeds := make(map[string]bool)
	for _, other := range assignedTo(view, bungalow.ID) {
		if other.ID == reg.ID {
			continue
		}
		otherPeriod, ok := effectivePeriod(view, other)
		if !ok || !period.Overlaps(otherPeriod) {
			continue
		}
		occupiedBeds[other.Assignment.BedID] = true

		if g := occupantGender(view, other); g != "" && participant.Gender != "" && g != participant.Gender {
			conflicts = append(conflicts, Conflict{
				Code:     CodeGenderMixing,
				Severity: SeverityWarn,
				Message:  fmt.Sprintf("bungalow %s houses %s occupants during this period", bungalow.Name, g),
			})
		}
		if other.StageID != reg.StageID {
			conflicts = append(conflicts, Conflict{
				Code:     CodeDifferentStages,
				Severity: SeverityWarn,
				Message:  fmt.Sprintf("bungalow %s houses occupants of another stage during this period", bungalow.Name),
			})
		}

		if other.Assignment.BedID == bedID {
			conflicts = append(conflicts, Conflict{
				Code:     CodeBedOccupiedOverlap,
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("bed %s is already occupied by registration %s for an overlapping period", bedID, other.ID),
			})
			return conflicts
		}

		conflicts = appendRoleConflicts(conflicts, bungalow, reg, other)
	}

	if len(occupiedBeds) >= bungalow.Capacity {
		conflicts = append(conflicts, Conflict{
			Code:     CodeBungalowFullForPeriod,
			Severity: SeverityBlock,
			Message:  fmt.Sprintf("bungalow %s has no free capacity for the requested period", bungalow.Name),
		})
	}
	return conflicts
}

// appendRoleConflicts adds advisory role-segregation findings for one
// overlapping co-occupant: instructor exclusivity and the separation of
// students from musicians and staff.
func appendRoleConflicts(conflicts []Conflict, bungalow Bungalow, reg, other Registration) []Conflict {
	switch {
	case reg.Role == RoleInstructor || other.Role == RoleInstructor:
		conflicts = append(conflicts, Conflict{
			Code:     CodeRoleSegregation,
			Severity: SeverityWarn,
			Message:  fmt.Sprintf("bungalow %s is reserved exclusively for an instructor during this period", bungalow.Name),
		})
	case reg.Role != other.Role:
		conflicts = append(conflicts, Conflict{
			Code:     CodeRoleSegregation,
			Severity: SeverityWarn,
			Message:  fmt.Sprintf("bungalow %s mixes %s and %s roles during this period", bungalow.Name, reg.Role, other.Role),
		})
	}
	return conflicts
}
