package core

import (
	"context"
	"fmt"
)

// CapacityPlan is the non-blocking feasibility advisory for one stage. The
// room estimate shares the engine's overlap math but never gates any
// assignment.
type CapacityPlan struct {
	StageID        string `json:"stage_id"`
	RoomsRequired  int    `json:"rooms_required"`
	RoomsAvailable int    `json:"rooms_available"`
	Deficit        int    `json:"deficit"`
	Warning        string `json:"warning,omitempty"`
}

// PlanStageCapacity estimates whether the inventory can house a stage:
// required rooms are ceil(capacity/3) + ceil(musicianSlots/3) + 1, compared
// against inventory rooms minus those already consumed by temporally
// overlapping stages. A deficit yields a warning only.
func (s *Service) PlanStageCapacity(ctx context.Context, stageID string) (CapacityPlan, error) {
	stage, ok := s.store.GetStage(stageID)
	if !ok {
		return CapacityPlan{}, ErrNotFound{Entity: EntityStage, ID: stageID}
	}
	period := stage.Period()

	required := ceilDiv(stage.Capacity, 3) + ceilDiv(stage.MusicianSlots, 3) + 1

	stages := make(map[string]Stage)
	for _, st := range s.store.ListStages() {
		stages[st.ID] = st
	}
	consumed := make(map[string]bool)
	for _, r := range s.store.ListRegistrations() {
		if r.Assignment == nil || r.StageID == stageID {
			continue
		}
		other, ok := stages[r.StageID]
		if !ok {
			continue
		}
		if period.Overlaps(r.EffectivePeriod(other)) {
			consumed[r.Assignment.BungalowID] = true
		}
	}
	available := len(s.store.ListBungalows()) - len(consumed)

	plan := CapacityPlan{
		StageID:        stageID,
		RoomsRequired:  required,
		RoomsAvailable: available,
	}
	if required > available {
		plan.Deficit = required - available
		plan.Warning = fmt.Sprintf("stage %s needs about %d rooms but only %d are free for its dates", stage.Name, required, available)
		s.logger.Warn("capacity deficit projected",
			"stage_id", stageID,
			"rooms_required", required,
			"rooms_available", available)
	}
	return plan, nil
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
