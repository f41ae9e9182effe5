package core

import "lodgecore/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
// Bed overlap and capacity block commits; homogeneity and instructor
// exclusivity warn so that recorded overrides can still land.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewBedOverlapRule())
	engine.Register(NewBungalowCapacityRule())
	engine.Register(NewRoomHomogeneityRule())
	engine.Register(NewInstructorExclusivityRule())
	return engine
}

// effectivePeriod resolves a registration's presence window against its
// stage. Returns false when the stage is missing.
func effectivePeriod(view RuleView, r Registration) (Period, bool) {
	stage, ok := view.FindStage(r.StageID)
	if !ok {
		return Period{}, false
	}
	return r.EffectivePeriod(stage), true
}

// assignedTo collects registrations assigned to the given bungalow.
func assignedTo(view RuleView, bungalowID string) []Registration {
	var out []Registration
	for _, r := range view.ListRegistrations() {
		if r.Assignment != nil && r.Assignment.BungalowID == bungalowID {
			out = append(out, r)
		}
	}
	return out
}
