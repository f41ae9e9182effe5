package core

import (
	"context"
	"errors"
	"testing"

	"lodgecore/internal/infra/persistence/memory"
)

// rulesFixture seeds a store wired to the default policy set, bypassing the
// service layer so the commit-time rules are exercised directly.
func rulesFixture(t *testing.T) (*memory.Store, Bungalow, Stage, Participant, Participant) {
	t.Helper()
	store := memory.NewStore(NewDefaultRulesEngine())
	var bungalow Bungalow
	var stage Stage
	var ana, omar Participant
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreateVillage(Village{Code: "A", Amenities: AmenitiesShared}); err != nil {
			return err
		}
		var err error
		bungalow, err = tx.CreateBungalow(Bungalow{VillageCode: "A", Name: "A1", Beds: singles("bed-1", "bed-2")})
		if err != nil {
			return err
		}
		stage, err = tx.CreateStage(Stage{Name: "Winter Session", StartDate: jan(11), EndDate: jan(16)})
		if err != nil {
			return err
		}
		ana, err = tx.CreateParticipant(Participant{FirstName: "Ana", LastName: "Duval", Gender: GenderFemale})
		if err != nil {
			return err
		}
		omar, err = tx.CreateParticipant(Participant{FirstName: "Omar", LastName: "Haddad", Gender: GenderMale})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store, bungalow, stage, ana, omar
}

func TestCommitBlocksBedOverlap(t *testing.T) {
	store, bungalow, stage, ana, omar := rulesFixture(t)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		for _, p := range []Participant{ana, omar} {
			if _, err := tx.CreateRegistration(Registration{
				ParticipantID: p.ID,
				StageID:       stage.ID,
				Role:          RoleParticipant,
				Assignment:    &Assignment{BungalowID: bungalow.ID, BedID: "bed-1"},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	var rve RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if !rve.Result.HasBlocking() {
		t.Fatalf("expected blocking violations, got %+v", rve.Result)
	}
	if got := len(store.ListRegistrations()); got != 0 {
		t.Fatalf("blocked transaction must roll back, found %d registrations", got)
	}
}

func TestCommitBlocksOverCapacity(t *testing.T) {
	store, _, stage, ana, omar := rulesFixture(t)

	var cramped Bungalow
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		cramped, err = tx.CreateBungalow(Bungalow{
			VillageCode: "A",
			Name:        "A2",
			Capacity:    1,
			Beds:        singles("bed-1", "bed-2"),
		})
		return err
	}); err != nil {
		t.Fatalf("create bungalow: %v", err)
	}

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		for i, p := range []Participant{ana, omar} {
			if _, err := tx.CreateRegistration(Registration{
				ParticipantID: p.ID,
				StageID:       stage.ID,
				Role:          RoleParticipant,
				Assignment:    &Assignment{BungalowID: cramped.ID, BedID: cramped.Beds[i].ID},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	var rve RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
}

func TestCommitAllowsWarnOnlyViolations(t *testing.T) {
	store, bungalow, stage, ana, omar := rulesFixture(t)

	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		for i, p := range []Participant{ana, omar} {
			if _, err := tx.CreateRegistration(Registration{
				ParticipantID: p.ID,
				StageID:       stage.ID,
				Role:          RoleParticipant,
				Assignment:    &Assignment{BungalowID: bungalow.ID, BedID: bungalow.Beds[i].ID},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("mixed-gender state must commit with warnings, got %v", err)
	}
	if res.HasBlocking() {
		t.Fatalf("unexpected blocking violations %+v", res)
	}
	found := false
	for _, v := range res.Violations {
		if v.Code == CodeGenderMixing && v.Severity == SeverityWarn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected gender mixing warning in result, got %+v", res.Violations)
	}
	if got := len(store.ListRegistrations()); got != 2 {
		t.Fatalf("expected 2 committed registrations, got %d", got)
	}
}

func TestCommitWarnsOnInstructorSharing(t *testing.T) {
	store, bungalow, stage, ana, omar := rulesFixture(t)

	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreateRegistration(Registration{
			ParticipantID: ana.ID,
			StageID:       stage.ID,
			Role:          RoleInstructor,
			Assignment:    &Assignment{BungalowID: bungalow.ID, BedID: "bed-1"},
		}); err != nil {
			return err
		}
		_, err := tx.CreateRegistration(Registration{
			ParticipantID: omar.ID,
			StageID:       stage.ID,
			Role:          RoleParticipant,
			Assignment:    &Assignment{BungalowID: bungalow.ID, BedID: "bed-2"},
		})
		return err
	})
	if err != nil {
		t.Fatalf("instructor sharing must commit with warnings, got %v", err)
	}
	found := false
	for _, v := range res.Violations {
		if v.Rule == "instructor_exclusivity" && v.Severity == SeverityWarn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected instructor exclusivity warning, got %+v", res.Violations)
	}
}
