package core

import (
	"errors"
	"testing"
)

func gatewayFixture(t *testing.T) (*fixture, Bungalow, Stage) {
	f := newFixture(t)
	f.village("A", AmenitiesShared)
	bungalow := f.bungalow("A", "A1", singles("bed-1", "bed-2")...)
	stage := f.stage("Winter Session", jan(11), jan(16))
	return f, bungalow, stage
}

func TestAssignPlacesIntoEmptyBungalow(t *testing.T) {
	f, bungalow, stage := gatewayFixture(t)
	guest := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	reg := f.enroll(guest, stage, RoleParticipant)

	outcome := f.place(reg.ID, bungalow.ID, "bed-1", false)
	if outcome.Registration.Assignment == nil || outcome.Registration.Assignment.BedID != "bed-1" {
		t.Fatalf("expected assignment on outcome, got %+v", outcome.Registration.Assignment)
	}
	if !outcome.EffectiveStart.Equal(jan(11)) || !outcome.EffectiveEnd.Equal(jan(16)) {
		t.Fatalf("expected stage dates as effective period, got %v..%v", outcome.EffectiveStart, outcome.EffectiveEnd)
	}

	got := f.getBungalow(bungalow.ID)
	if got.Occupancy != 1 {
		t.Fatalf("expected occupancy 1, got %d", got.Occupancy)
	}
	bed, _ := got.FindBed("bed-1")
	if bed.Occupant == nil || bed.Occupant.RegistrationID != reg.ID {
		t.Fatalf("expected bed cache for registration %s, got %+v", reg.ID, bed.Occupant)
	}
	if bed.Occupant.Name != "Ana Duval" || bed.Occupant.StageName != "Winter Session" {
		t.Fatalf("expected denormalized occupant fields, got %+v", bed.Occupant)
	}
}

func TestAssignAdvisoryRequiresConfirmation(t *testing.T) {
	f, bungalow, stage := gatewayFixture(t)
	resident := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	residentReg := f.enroll(resident, stage, RoleParticipant)
	f.place(residentReg.ID, bungalow.ID, "bed-1", false)

	guest := f.participant("Omar", "Haddad", GenderMale, 27, "ar")
	reg := f.enroll(guest, stage, RoleParticipant)

	outcome, _, err := f.svc.Assign(f.ctx, AssignmentRequest{
		RegistrationID: reg.ID,
		BungalowID:     bungalow.ID,
		BedID:          "bed-2",
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if outcome.Success || !outcome.Warning || !outcome.RequiresConfirmation {
		t.Fatalf("expected confirmation request, got %+v", outcome)
	}
	if outcome.Code != CodeGenderMixing {
		t.Fatalf("expected %s, got %s", CodeGenderMixing, outcome.Code)
	}
	if f.getRegistration(reg.ID).Assignment != nil {
		t.Fatalf("rejected placement must not persist")
	}
}

func TestAssignForceOverridesAdvisory(t *testing.T) {
	f, bungalow, stage := gatewayFixture(t)
	resident := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	residentReg := f.enroll(resident, stage, RoleParticipant)
	f.place(residentReg.ID, bungalow.ID, "bed-1", false)

	guest := f.participant("Omar", "Haddad", GenderMale, 27, "ar")
	reg := f.enroll(guest, stage, RoleParticipant)

	outcome := f.place(reg.ID, bungalow.ID, "bed-2", true)
	if !outcome.Registration.WasForced {
		t.Fatalf("expected WasForced on the overridden registration")
	}

	got := f.getBungalow(bungalow.ID)
	bed, _ := got.FindBed("bed-2")
	if bed.Occupant == nil || !bed.Occupant.WasForced {
		t.Fatalf("expected forced flag on bed cache, got %+v", bed.Occupant)
	}
	if got.Occupancy != 2 {
		t.Fatalf("expected occupancy 2, got %d", got.Occupancy)
	}
}

func TestAssignForceNeverOverridesDoubleBooking(t *testing.T) {
	f, bungalow, stage := gatewayFixture(t)
	resident := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	residentReg := f.enroll(resident, stage, RoleParticipant)
	f.place(residentReg.ID, bungalow.ID, "bed-1", false)

	guest := f.participant("Lea", "Marchand", GenderFemale, 25, "fr")
	reg := f.enroll(guest, stage, RoleParticipant)

	outcome, _, err := f.svc.Assign(f.ctx, AssignmentRequest{
		RegistrationID: reg.ID,
		BungalowID:     bungalow.ID,
		BedID:          "bed-1",
		Force:          true,
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if outcome.Success || outcome.RequiresConfirmation {
		t.Fatalf("double booking must reject outright, got %+v", outcome)
	}
	if outcome.Code != CodeBedOccupiedOverlap {
		t.Fatalf("expected %s, got %s", CodeBedOccupiedOverlap, outcome.Code)
	}
	if f.getRegistration(reg.ID).Assignment != nil {
		t.Fatalf("rejected placement must not persist")
	}
}

func TestAssignForceWithoutConflictLeavesWasForcedClear(t *testing.T) {
	f, bungalow, stage := gatewayFixture(t)
	guest := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	reg := f.enroll(guest, stage, RoleParticipant)

	outcome := f.place(reg.ID, bungalow.ID, "bed-1", true)
	if outcome.Registration.WasForced {
		t.Fatalf("clean placements must not be marked as forced")
	}
}

func TestAssignMusicianOutsideDesignatedVillageWarns(t *testing.T) {
	f, bungalow, stage := gatewayFixture(t)
	musician := f.participant("Nils", "Berg", GenderMale, 30, "sv")
	reg := f.enroll(musician, stage, RoleMusician)

	outcome, _, err := f.svc.Assign(f.ctx, AssignmentRequest{
		RegistrationID: reg.ID,
		BungalowID:     bungalow.ID,
		BedID:          "bed-1",
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !outcome.RequiresConfirmation || outcome.Code != CodeRoleSegregation {
		t.Fatalf("expected musician village advisory, got %+v", outcome)
	}

	forced := f.place(reg.ID, bungalow.ID, "bed-1", true)
	if !forced.Registration.WasForced {
		t.Fatalf("expected forced override to be recorded")
	}
}

func TestAssignMusicianInsideDesignatedVillageIsClean(t *testing.T) {
	f, _, stage := gatewayFixture(t)
	f.village("C", AmenitiesPrivate)
	designated := f.bungalow("C", "C1", double("bed-1"))
	musician := f.participant("Nils", "Berg", GenderMale, 30, "sv")
	reg := f.enroll(musician, stage, RoleMusician)

	outcome := f.place(reg.ID, designated.ID, "bed-1", false)
	if outcome.Registration.WasForced {
		t.Fatalf("designated village placement must not be forced")
	}
}

func TestAssignReassignmentSyncsBothBungalows(t *testing.T) {
	f, first, stage := gatewayFixture(t)
	second := f.bungalow("A", "A2", singles("bed-1")...)
	guest := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	reg := f.enroll(guest, stage, RoleParticipant)

	f.place(reg.ID, first.ID, "bed-1", false)
	f.place(reg.ID, second.ID, "bed-1", false)

	if got := f.getBungalow(first.ID); got.Occupancy != 0 {
		t.Fatalf("expected previous bungalow released, occupancy %d", got.Occupancy)
	}
	prevBed, _ := f.getBungalow(first.ID).FindBed("bed-1")
	if prevBed.Occupant != nil {
		t.Fatalf("expected previous bed cache cleared, got %+v", prevBed.Occupant)
	}
	if got := f.getBungalow(second.ID); got.Occupancy != 1 {
		t.Fatalf("expected new bungalow occupied, occupancy %d", got.Occupancy)
	}
}

func TestAssignUnknownRegistrationFails(t *testing.T) {
	f, bungalow, _ := gatewayFixture(t)
	_, _, err := f.svc.Assign(f.ctx, AssignmentRequest{
		RegistrationID: "missing",
		BungalowID:     bungalow.ID,
		BedID:          "bed-1",
	})
	var notFound ErrNotFound
	if !errors.As(err, &notFound) || notFound.Entity != EntityRegistration {
		t.Fatalf("expected registration ErrNotFound, got %v", err)
	}
}

func TestUnassignReleasesBed(t *testing.T) {
	f, bungalow, stage := gatewayFixture(t)
	guest := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	reg := f.enroll(guest, stage, RoleParticipant)
	f.place(reg.ID, bungalow.ID, "bed-1", false)

	updated, _, err := f.svc.Unassign(f.ctx, reg.ID)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if updated.Assignment != nil || updated.WasForced {
		t.Fatalf("expected cleared assignment, got %+v", updated)
	}
	got := f.getBungalow(bungalow.ID)
	if got.Occupancy != 0 {
		t.Fatalf("expected occupancy 0, got %d", got.Occupancy)
	}

	if _, _, err := f.svc.Unassign(f.ctx, reg.ID); err == nil {
		t.Fatalf("expected unassign of unassigned registration to fail")
	}
}
