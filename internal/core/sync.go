package core

import (
	"context"
	"time"
)

const dateLayout = "2006-01-02"

// syncBungalow rebuilds one bungalow's bed caches and occupancy counter
// from authoritative registrations, inside the caller's transaction.
func (s *Service) syncBungalow(tx Transaction, bungalowID string) error {
	_, err := syncBungalowAt(tx, bungalowID, s.clock.Now())
	return err
}

// syncStats counts the corrections applied to one bungalow.
type syncStats struct {
	phantomsCleared    int
	snapshotsRewritten int
	occupancyCorrected bool
}

func syncBungalowAt(tx Transaction, bungalowID string, now time.Time) (syncStats, error) {
	var stats syncStats
	view := tx.Snapshot()
	byBed := make(map[string][]Registration)
	for _, r := range view.ListRegistrations() {
		if r.Assignment != nil && r.Assignment.BungalowID == bungalowID {
			byBed[r.Assignment.BedID] = append(byBed[r.Assignment.BedID], r)
		}
	}

	_, err := tx.UpdateBungalow(bungalowID, func(b *Bungalow) error {
		occupancy := 0
		for i := range b.Beds {
			bed := &b.Beds[i]
			desired := desiredOccupant(view, byBed[bed.ID], now)
			switch {
			case desired == nil && bed.Occupant != nil:
				stats.phantomsCleared++
			case desired != nil && bed.Occupant == nil:
				stats.snapshotsRewritten++
			case desired != nil && bed.Occupant != nil && !occupantsEqual(*desired, *bed.Occupant):
				stats.snapshotsRewritten++
			}
			bed.Occupant = desired
			if desired != nil {
				occupancy++
			}
		}
		if b.Occupancy != occupancy {
			stats.occupancyCorrected = true
		}
		b.Occupancy = occupancy
		return nil
	})
	return stats, err
}

// desiredOccupant picks which of a bed's registrations the cache reflects:
// the stay covering now, else the next upcoming stay, else the most recent
// past one.
func desiredOccupant(view RuleView, regs []Registration, now time.Time) *BedOccupant {
	var chosen *Registration
	var chosenPeriod Period
	rank := func(p Period) int {
		switch {
		case p.Contains(now):
			return 0
		case p.Start.After(now):
			return 1
		default:
			return 2
		}
	}
	for i := range regs {
		period, ok := effectivePeriod(view, regs[i])
		if !ok {
			continue
		}
		if chosen == nil {
			chosen, chosenPeriod = &regs[i], period
			continue
		}
		ri, rc := rank(period), rank(chosenPeriod)
		better := ri < rc
		if ri == rc {
			switch ri {
			case 1:
				better = period.Start.Before(chosenPeriod.Start)
			case 2:
				better = period.End.After(chosenPeriod.End)
			}
		}
		if better {
			chosen, chosenPeriod = &regs[i], period
		}
	}
	if chosen == nil {
		return nil
	}
	return buildOccupant(view, *chosen, chosenPeriod)
}

// buildOccupant denormalizes a registration into the per-bed cache shape.
func buildOccupant(view RuleView, r Registration, period Period) *BedOccupant {
	participant, ok := view.FindParticipant(r.ParticipantID)
	if !ok {
		return nil
	}
	stageName := ""
	if stage, ok := view.FindStage(r.StageID); ok {
		stageName = stage.Name
	}
	return &BedOccupant{
		RegistrationID: r.ID,
		ParticipantID:  participant.ID,
		Name:           participant.FullName(),
		Gender:         participant.Gender,
		Age:            participant.Age,
		Nationality:    participant.Nationality,
		Languages:      append([]string(nil), participant.Languages...),
		Role:           r.Role,
		StartDate:      period.Start.Format(dateLayout),
		StartTime:      r.ArrivalTime,
		EndDate:        period.End.Format(dateLayout),
		EndTime:        r.DepartureTime,
		StageName:      stageName,
		WasForced:      r.WasForced,
	}
}

func occupantsEqual(a, b BedOccupant) bool {
	if len(a.Languages) != len(b.Languages) {
		return false
	}
	for i := range a.Languages {
		if a.Languages[i] != b.Languages[i] {
			return false
		}
	}
	return a.RegistrationID == b.RegistrationID &&
		a.ParticipantID == b.ParticipantID &&
		a.Name == b.Name &&
		a.Gender == b.Gender &&
		a.Age == b.Age &&
		a.Nationality == b.Nationality &&
		a.Role == b.Role &&
		a.StartDate == b.StartDate &&
		a.StartTime == b.StartTime &&
		a.EndDate == b.EndDate &&
		a.EndTime == b.EndTime &&
		a.StageName == b.StageName &&
		a.WasForced == b.WasForced
}

// ReconcileReport summarizes the corrections applied by a reconciliation
// pass. A report of all zeroes means the caches already matched the
// authoritative registrations.
type ReconcileReport struct {
	BungalowsScanned   int `json:"bungalows_scanned"`
	PhantomsCleared    int `json:"phantoms_cleared"`
	SnapshotsRewritten int `json:"snapshots_rewritten"`
	OccupancyCorrected int `json:"occupancy_corrected"`
}

// Reconcile rebuilds every bed's cached snapshot from authoritative
// registrations in one transaction: phantom occupants are cleared, stale
// snapshots rewritten, occupancy counters re-synced. Running it twice in a
// row leaves the second report empty.
func (s *Service) Reconcile(ctx context.Context) (ReconcileReport, Result, error) {
	ctx, done := s.begin(ctx, "reconcile")
	var report ReconcileReport
	now := s.clock.Now()
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		for _, bungalow := range tx.Snapshot().ListBungalows() {
			stats, err := syncBungalowAt(tx, bungalow.ID, now)
			if err != nil {
				return err
			}
			report.BungalowsScanned++
			report.PhantomsCleared += stats.phantomsCleared
			report.SnapshotsRewritten += stats.snapshotsRewritten
			if stats.occupancyCorrected {
				report.OccupancyCorrected++
			}
		}
		return nil
	})
	if err != nil {
		report = ReconcileReport{}
	}
	done("", err)
	return report, res, err
}
