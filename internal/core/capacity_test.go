package core

import (
	"errors"
	"testing"
)

func TestPlanStageCapacityComputesRequiredRooms(t *testing.T) {
	f := newFixture(t)
	f.village("A", AmenitiesShared)
	for _, name := range []string{"A1", "A2", "A3", "A4", "A5"} {
		f.bungalow("A", name, singles(name+"-1", name+"-2", name+"-3")...)
	}
	stage, _, err := f.svc.CreateStage(f.ctx, Stage{
		Name:          "Winter Session",
		StartDate:     jan(11),
		EndDate:       jan(16),
		Capacity:      7,
		MusicianSlots: 2,
	})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}

	plan, err := f.svc.PlanStageCapacity(f.ctx, stage.ID)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	// ceil(7/3) + ceil(2/3) + 1 instructor room.
	if plan.RoomsRequired != 5 {
		t.Fatalf("expected 5 rooms required, got %d", plan.RoomsRequired)
	}
	if plan.RoomsAvailable != 5 || plan.Deficit != 0 || plan.Warning != "" {
		t.Fatalf("expected exact fit, got %+v", plan)
	}
}

func TestPlanStageCapacityWarnsOnDeficit(t *testing.T) {
	f := newFixture(t)
	f.village("A", AmenitiesShared)
	f.bungalow("A", "A1", singles("a1-1", "a1-2", "a1-3")...)
	stage, _, err := f.svc.CreateStage(f.ctx, Stage{
		Name:      "Winter Session",
		StartDate: jan(11),
		EndDate:   jan(16),
		Capacity:  9,
	})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}

	plan, err := f.svc.PlanStageCapacity(f.ctx, stage.ID)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.RoomsRequired != 4 || plan.RoomsAvailable != 1 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if plan.Deficit != 3 || plan.Warning == "" {
		t.Fatalf("expected deficit warning, got %+v", plan)
	}
}

func TestPlanStageCapacityDiscountsOverlappingStages(t *testing.T) {
	f := newFixture(t)
	f.village("A", AmenitiesShared)
	b1 := f.bungalow("A", "A1", singles("a1-1")...)
	f.bungalow("A", "A2", singles("a2-1")...)
	f.bungalow("A", "A3", singles("a3-1")...)

	overlapping := f.stage("Overlapping Session", jan(14), jan(20))
	guest := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	other := f.enroll(guest, overlapping, RoleParticipant)
	f.place(other.ID, b1.ID, "a1-1", false)

	disjoint := f.stage("Disjoint Session", jan(20), jan(25))
	resident := f.participant("Lea", "Marchand", GenderFemale, 25, "fr")
	f.registration(Registration{
		ParticipantID: resident.ID,
		StageID:       disjoint.ID,
		Role:          RoleParticipant,
		DepartureDate: datePtr(jan(22)),
	})

	target := f.stage("Winter Session", jan(11), jan(16))
	plan, err := f.svc.PlanStageCapacity(f.ctx, target.ID)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	// One of three rooms is consumed by the overlapping stage; the
	// disjoint stage holds no room during these dates.
	if plan.RoomsAvailable != 2 {
		t.Fatalf("expected 2 rooms available, got %+v", plan)
	}
}

func TestPlanStageCapacityUnknownStage(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlanStageCapacity(f.ctx, "missing")
	var notFound ErrNotFound
	if !errors.As(err, &notFound) || notFound.Entity != EntityStage {
		t.Fatalf("expected stage ErrNotFound, got %v", err)
	}
}
