package core

import (
	"context"
	"fmt"
	"sort"
)

// BulkSuccess records one committed automatic placement.
type BulkSuccess struct {
	RegistrationID string `json:"registration_id"`
	BungalowID     string `json:"bungalow_id"`
	BedID          string `json:"bed_id"`
}

// BulkFailure records one registration the scheduler could not place.
type BulkFailure struct {
	RegistrationID string `json:"registration_id"`
	Reason         string `json:"reason"`
}

// BulkReport accumulates the outcome of an automatic assignment run.
type BulkReport struct {
	Successes []BulkSuccess `json:"successes"`
	Failures  []BulkFailure `json:"failures"`
}

// AutoAssignStage places a stage's unassigned registrations. Partitions are
// processed in strict role priority (instructors, musicians, staff,
// participants), members ordered by gender, primary language, then age to
// favor compatible grouping. Heuristics only order the search: every
// candidate is re-validated inside its own commit transaction, and any
// conflict there, advisory included, is a hard skip recorded in the failure
// report. Commits are sequential with no rollback across the batch.
func (s *Service) AutoAssignStage(ctx context.Context, stageID string) (BulkReport, error) {
	ctx, done := s.begin(ctx, "auto_assign_stage")
	report := BulkReport{}

	if _, ok := s.store.GetStage(stageID); !ok {
		err := ErrNotFound{Entity: EntityStage, ID: stageID}
		done(stageID, err)
		return report, err
	}

	var pending []Registration
	for _, r := range s.store.ListRegistrations() {
		if r.StageID == stageID && r.Assignment == nil {
			pending = append(pending, r)
		}
	}
	partitions := s.partitionByRole(pending)

	for _, role := range []Role{RoleInstructor, RoleMusician, RoleStaff, RoleParticipant} {
		for _, reg := range partitions[role] {
			// Later decisions depend on earlier occupancy side effects,
			// so the snapshot is re-read for every registration.
			snap := s.takeSchedulerSnapshot()
			bungalowID, bedID, ok := snap.findCandidate(reg, s.musicianVillage)
			if !ok {
				report.Failures = append(report.Failures, BulkFailure{
					RegistrationID: reg.ID,
					Reason:         "no suitable bungalow available",
				})
				continue
			}
			if err := s.commitScheduled(ctx, reg.ID, bungalowID, bedID); err != nil {
				report.Failures = append(report.Failures, BulkFailure{
					RegistrationID: reg.ID,
					Reason:         err.Error(),
				})
				continue
			}
			report.Successes = append(report.Successes, BulkSuccess{
				RegistrationID: reg.ID,
				BungalowID:     bungalowID,
				BedID:          bedID,
			})
		}
	}

	s.logger.Info("automatic assignment finished",
		"stage_id", stageID,
		"placed", len(report.Successes),
		"skipped", len(report.Failures))
	done(stageID, nil)
	return report, nil
}

// partitionByRole splits registrations by role, each partition ordered by
// gender, primary language, then age.
func (s *Service) partitionByRole(regs []Registration) map[Role][]Registration {
	participants := make(map[string]Participant)
	for _, p := range s.store.ListParticipants() {
		participants[p.ID] = p
	}
	partitions := make(map[Role][]Registration)
	for _, r := range regs {
		partitions[r.Role] = append(partitions[r.Role], r)
	}
	for role := range partitions {
		members := partitions[role]
		sort.SliceStable(members, func(i, j int) bool {
			pi, pj := participants[members[i].ParticipantID], participants[members[j].ParticipantID]
			if pi.Gender != pj.Gender {
				return pi.Gender < pj.Gender
			}
			if li, lj := pi.PrimaryLanguage(), pj.PrimaryLanguage(); li != lj {
				return li < lj
			}
			if pi.Age != pj.Age {
				return pi.Age < pj.Age
			}
			return members[i].ID < members[j].ID
		})
		partitions[role] = members
	}
	return partitions
}

// commitScheduled writes one automatic placement in its own transaction,
// re-validating against transaction state first. Any conflict rejects.
func (s *Service) commitScheduled(ctx context.Context, registrationID, bungalowID, bedID string) error {
	_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		reg, ok := tx.FindRegistration(registrationID)
		if !ok {
			return ErrNotFound{Entity: EntityRegistration, ID: registrationID}
		}
		bungalow, ok := tx.FindBungalow(bungalowID)
		if !ok {
			return ErrNotFound{Entity: EntityBungalow, ID: bungalowID}
		}
		if conflicts := (Validator{}).Validate(tx.Snapshot(), reg, bungalow, bedID); len(conflicts) > 0 {
			return fmt.Errorf("%s: %s", conflicts[0].Code, conflicts[0].Message)
		}
		if _, err := tx.UpdateRegistration(registrationID, func(r *Registration) error {
			r.Assignment = &Assignment{BungalowID: bungalowID, BedID: bedID}
			return nil
		}); err != nil {
			return err
		}
		return s.syncBungalow(tx, bungalowID)
	})
	return err
}

// schedulerSnapshot is a read-only view of committed inventory state for
// one candidate search, derived entirely from authoritative registrations.
type schedulerSnapshot struct {
	bungalows    []Bungalow
	villages     map[string]Village
	participants map[string]Participant
	stages       map[string]Stage
	occupants    map[string][]Registration
}

func (s *Service) takeSchedulerSnapshot() schedulerSnapshot {
	snap := schedulerSnapshot{
		bungalows:    s.store.ListBungalows(),
		villages:     make(map[string]Village),
		participants: make(map[string]Participant),
		stages:       make(map[string]Stage),
		occupants:    make(map[string][]Registration),
	}
	for _, v := range s.store.ListVillages() {
		snap.villages[v.Code] = v
	}
	for _, p := range s.store.ListParticipants() {
		snap.participants[p.ID] = p
	}
	for _, st := range s.store.ListStages() {
		snap.stages[st.ID] = st
	}
	for _, r := range s.store.ListRegistrations() {
		if r.Assignment != nil {
			snap.occupants[r.Assignment.BungalowID] = append(snap.occupants[r.Assignment.BungalowID], r)
		}
	}
	return snap
}

// findCandidate dispatches to the role-specific heuristic.
func (snap schedulerSnapshot) findCandidate(reg Registration, musicianVillage string) (string, string, bool) {
	stage, ok := snap.stages[reg.StageID]
	if !ok {
		return "", "", false
	}
	period := reg.EffectivePeriod(stage)
	switch reg.Role {
	case RoleInstructor:
		return snap.findExclusiveRoom(period, true)
	case RoleMusician:
		return snap.findMusicianRoom(reg, period, musicianVillage)
	case RoleStaff:
		return snap.findExclusiveRoom(period, false)
	default:
		return snap.findStudentRoom(reg, period, musicianVillage)
	}
}

// findExclusiveRoom searches empty bungalows for a sole occupant:
// private bathroom with a double bed, private bathroom, any with a double
// bed, then any at all. When requireDouble is false the two double-bed
// tiers collapse into their plain counterparts.
func (snap schedulerSnapshot) findExclusiveRoom(period Period, preferDouble bool) (string, string, bool) {
	type tier func(Bungalow) bool
	tiers := []tier{
		func(b Bungalow) bool { return snap.privateBath(b) && b.HasBedKind(BedDouble) },
		func(b Bungalow) bool { return snap.privateBath(b) },
		func(b Bungalow) bool { return b.HasBedKind(BedDouble) },
		func(Bungalow) bool { return true },
	}
	if !preferDouble {
		tiers = []tier{
			func(b Bungalow) bool { return snap.privateBath(b) },
			func(Bungalow) bool { return true },
		}
	}
	for _, accept := range tiers {
		for _, b := range snap.bungalows {
			if !snap.emptyFor(b, period) || !accept(b) {
				continue
			}
			if bedID, ok := snap.freeBed(b, period, preferDouble); ok {
				return b.ID, bedID, true
			}
		}
	}
	return "", "", false
}

// findMusicianRoom groups musicians by gender in the designated village:
// a compatible partially-filled room with a free bed (double preferred),
// then an empty room there, then other private-bathroom bungalows in the
// same order.
func (snap schedulerSnapshot) findMusicianRoom(reg Registration, period Period, musicianVillage string) (string, string, bool) {
	inDesignated := func(b Bungalow) bool { return b.VillageCode == musicianVillage }
	fallback := func(b Bungalow) bool { return !inDesignated(b) && snap.privateBath(b) }

	for _, inVillage := range []func(Bungalow) bool{inDesignated, fallback} {
		for _, b := range snap.bungalows {
			if !inVillage(b) || snap.emptyFor(b, period) {
				continue
			}
			if !snap.compatibleOccupants(b, reg, period, RoleMusician) {
				continue
			}
			if bedID, ok := snap.freeBed(b, period, true); ok {
				return b.ID, bedID, true
			}
		}
		for _, b := range snap.bungalows {
			if !inVillage(b) || !snap.emptyFor(b, period) {
				continue
			}
			if bedID, ok := snap.freeBed(b, period, true); ok {
				return b.ID, bedID, true
			}
		}
	}
	return "", "", false
}

// findStudentRoom is fill-optimized: a partially-filled bungalow with
// compatible occupants and a free bed (double preferred), an empty
// bungalow outside the musician village, then any empty bungalow.
func (snap schedulerSnapshot) findStudentRoom(reg Registration, period Period, musicianVillage string) (string, string, bool) {
	for _, b := range snap.bungalows {
		if snap.emptyFor(b, period) || !snap.compatibleOccupants(b, reg, period, RoleParticipant) {
			continue
		}
		if bedID, ok := snap.freeBed(b, period, true); ok {
			return b.ID, bedID, true
		}
	}
	for _, b := range snap.bungalows {
		if b.VillageCode == musicianVillage || !snap.emptyFor(b, period) {
			continue
		}
		if bedID, ok := snap.freeBed(b, period, true); ok {
			return b.ID, bedID, true
		}
	}
	for _, b := range snap.bungalows {
		if !snap.emptyFor(b, period) {
			continue
		}
		if bedID, ok := snap.freeBed(b, period, true); ok {
			return b.ID, bedID, true
		}
	}
	return "", "", false
}

func (snap schedulerSnapshot) privateBath(b Bungalow) bool {
	return snap.villages[b.VillageCode].Amenities == AmenitiesPrivate
}

// overlapping returns the bungalow's occupants whose effective periods
// overlap the given one.
func (snap schedulerSnapshot) overlapping(b Bungalow, period Period) []Registration {
	var out []Registration
	for _, r := range snap.occupants[b.ID] {
		stage, ok := snap.stages[r.StageID]
		if !ok {
			continue
		}
		if period.Overlaps(r.EffectivePeriod(stage)) {
			out = append(out, r)
		}
	}
	return out
}

func (snap schedulerSnapshot) emptyFor(b Bungalow, period Period) bool {
	return len(snap.overlapping(b, period)) == 0
}

// compatibleOccupants reports whether every overlapping occupant shares the
// candidate's gender, stage, and the expected role.
func (snap schedulerSnapshot) compatibleOccupants(b Bungalow, reg Registration, period Period, role Role) bool {
	candidate, ok := snap.participants[reg.ParticipantID]
	if !ok {
		return false
	}
	for _, other := range snap.overlapping(b, period) {
		if other.Role != role || other.StageID != reg.StageID {
			return false
		}
		occupant, ok := snap.participants[other.ParticipantID]
		if !ok || occupant.Gender != candidate.Gender {
			return false
		}
	}
	return true
}

// freeBed returns a bed not booked during the period, double beds first
// when preferred, bed inventory order otherwise. Also requires spare
// capacity for the period.
func (snap schedulerSnapshot) freeBed(b Bungalow, period Period, preferDouble bool) (string, bool) {
	taken := make(map[string]bool)
	for _, r := range snap.overlapping(b, period) {
		taken[r.Assignment.BedID] = true
	}
	if len(taken) >= b.Capacity {
		return "", false
	}
	if preferDouble {
		for _, bed := range b.Beds {
			if bed.Kind == BedDouble && !taken[bed.ID] {
				return bed.ID, true
			}
		}
	}
	for _, bed := range b.Beds {
		if !taken[bed.ID] {
			return bed.ID, true
		}
	}
	return "", false
}
