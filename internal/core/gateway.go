package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// errPlacementRejected aborts the assignment transaction without surfacing
// an error to the caller: the rejection travels in the outcome instead.
var errPlacementRejected = errors.New("placement rejected")

// AssignmentRequest is a manual placement request.
type AssignmentRequest struct {
	RegistrationID string `json:"registration_id"`
	BungalowID     string `json:"bungalow_id"`
	BedID          string `json:"bed_id"`
	Force          bool   `json:"force,omitempty"`
}

// AssignmentOutcome is the discriminated result of a placement attempt.
// Exactly one of three shapes applies: Success with the updated
// registration and denormalized placement fields; a terminal rejection with
// Code and Message; or an advisory conflict with Warning and
// RequiresConfirmation set, inviting resubmission with Force.
type AssignmentOutcome struct {
	Success              bool         `json:"success"`
	Warning              bool         `json:"warning,omitempty"`
	RequiresConfirmation bool         `json:"requires_confirmation,omitempty"`
	Code                 ConflictCode `json:"code,omitempty"`
	Message              string       `json:"message,omitempty"`
	Conflicts            []Conflict   `json:"conflicts,omitempty"`
	Registration         Registration `json:"registration"`
	BungalowID           string       `json:"bungalow_id,omitempty"`
	BedName              string       `json:"bed_name,omitempty"`
	EffectiveStart       time.Time    `json:"effective_start"`
	EffectiveEnd         time.Time    `json:"effective_end"`
}

// Assign applies a single manual placement. Terminal conflicts always
// reject. Advisory conflicts without Force return a confirmation request;
// with Force the override is recorded on the registration and the placement
// proceeds. Acceptance writes the assignment, the bed cache snapshot, and
// the occupancy recompute in one transaction, validated against transaction
// state immediately before commit.
func (s *Service) Assign(ctx context.Context, req AssignmentRequest) (AssignmentOutcome, Result, error) {
	ctx, done := s.begin(ctx, "assign")
	var outcome AssignmentOutcome
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		reg, ok := tx.FindRegistration(req.RegistrationID)
		if !ok {
			return ErrNotFound{Entity: EntityRegistration, ID: req.RegistrationID}
		}
		bungalow, ok := tx.FindBungalow(req.BungalowID)
		if !ok {
			return ErrNotFound{Entity: EntityBungalow, ID: req.BungalowID}
		}

		view := tx.Snapshot()
		conflicts := Validator{}.Validate(view, reg, bungalow, req.BedID)
		conflicts = s.appendMusicianVillageConflict(conflicts, reg, bungalow)

		if terminal, ok := firstTerminal(conflicts); ok {
			outcome = AssignmentOutcome{
				Code:      terminal.Code,
				Message:   terminal.Message,
				Conflicts: conflicts,
			}
			return errPlacementRejected
		}
		if len(conflicts) > 0 && !req.Force {
			outcome = AssignmentOutcome{
				Warning:              true,
				RequiresConfirmation: true,
				Code:                 conflicts[0].Code,
				Message:              conflicts[0].Message,
				Conflicts:            conflicts,
			}
			return errPlacementRejected
		}
		forced := req.Force && len(conflicts) > 0

		previousBungalow := ""
		if reg.Assignment != nil && reg.Assignment.BungalowID != req.BungalowID {
			previousBungalow = reg.Assignment.BungalowID
		}

		updated, err := tx.UpdateRegistration(reg.ID, func(r *Registration) error {
			r.Assignment = &Assignment{BungalowID: req.BungalowID, BedID: req.BedID}
			r.WasForced = forced
			return nil
		})
		if err != nil {
			return err
		}
		if forced {
			s.logger.Info("advisory conflict overridden",
				"registration_id", reg.ID,
				"bungalow_id", req.BungalowID,
				"bed_id", req.BedID,
				"code", conflicts[0].Code)
		}

		if err := s.syncBungalow(tx, req.BungalowID); err != nil {
			return err
		}
		if previousBungalow != "" {
			if err := s.syncBungalow(tx, previousBungalow); err != nil {
				return err
			}
		}

		stage, ok := tx.FindStage(updated.StageID)
		if !ok {
			return ErrNotFound{Entity: EntityStage, ID: updated.StageID}
		}
		period := updated.EffectivePeriod(stage)
		outcome = AssignmentOutcome{
			Success:        true,
			Registration:   updated,
			BungalowID:     req.BungalowID,
			BedName:        req.BedID,
			EffectiveStart: period.Start,
			EffectiveEnd:   period.End,
		}
		return nil
	})
	if errors.Is(err, errPlacementRejected) {
		err = nil
		res = Result{}
	}
	done(req.RegistrationID, err)
	return outcome, res, err
}

// appendMusicianVillageConflict adds the manual-path advisory preferring
// musicians in the designated village. The scheduler handles the
// preference through its search order instead, so the pure Validator does
// not carry it.
func (s *Service) appendMusicianVillageConflict(conflicts []Conflict, reg Registration, bungalow Bungalow) []Conflict {
	if reg.Role != RoleMusician || bungalow.VillageCode == s.musicianVillage {
		return conflicts
	}
	return append(conflicts, Conflict{
		Code:     CodeRoleSegregation,
		Severity: SeverityWarn,
		Message:  fmt.Sprintf("musicians are preferred in village %s, bungalow %s is in village %s", s.musicianVillage, bungalow.Name, bungalow.VillageCode),
	})
}

// Unassign clears a registration's placement, releasing its bed cache entry
// and re-syncing the bungalow. Fails when the registration holds no
// assignment.
func (s *Service) Unassign(ctx context.Context, registrationID string) (Registration, Result, error) {
	ctx, done := s.begin(ctx, "unassign")
	var updated Registration
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		reg, ok := tx.FindRegistration(registrationID)
		if !ok {
			return ErrNotFound{Entity: EntityRegistration, ID: registrationID}
		}
		if reg.Assignment == nil {
			return fmt.Errorf("registration %s is not assigned", registrationID)
		}
		bungalowID := reg.Assignment.BungalowID
		var err error
		updated, err = tx.UpdateRegistration(registrationID, func(r *Registration) error {
			r.Assignment = nil
			r.WasForced = false
			return nil
		})
		if err != nil {
			return err
		}
		return s.syncBungalow(tx, bungalowID)
	})
	done(registrationID, err)
	return updated, res, err
}
