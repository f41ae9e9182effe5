package core

import (
	"context"
	"testing"
	"time"

	"lodgecore/pkg/domain"
)

func datePtr(t time.Time) *time.Time { return &t }

func jan(day int) time.Time { return domain.Date(2025, time.January, day) }

func singles(ids ...string) []Bed {
	beds := make([]Bed, 0, len(ids))
	for _, id := range ids {
		beds = append(beds, Bed{ID: id, Kind: BedSingle})
	}
	return beds
}

func double(id string) Bed { return Bed{ID: id, Kind: BedDouble} }

// fixture wires an in-memory service with the default policy set and
// fatals on any setup error so tests read as straight-line scenarios.
type fixture struct {
	t   *testing.T
	ctx context.Context
	svc *Service
}

func newFixture(t *testing.T, opts ...ServiceOption) *fixture {
	t.Helper()
	return &fixture{t: t, ctx: context.Background(), svc: NewInMemoryService(nil, opts...)}
}

func (f *fixture) village(code string, amenities AmenityClass) Village {
	f.t.Helper()
	v, _, err := f.svc.CreateVillage(f.ctx, Village{Code: code, Amenities: amenities})
	if err != nil {
		f.t.Fatalf("create village %s: %v", code, err)
	}
	return v
}

func (f *fixture) bungalow(villageCode, name string, beds ...Bed) Bungalow {
	f.t.Helper()
	b, _, err := f.svc.CreateBungalow(f.ctx, Bungalow{VillageCode: villageCode, Name: name, Beds: beds})
	if err != nil {
		f.t.Fatalf("create bungalow %s: %v", name, err)
	}
	return b
}

func (f *fixture) participant(first, last string, gender Gender, age int, languages ...string) Participant {
	f.t.Helper()
	p, _, err := f.svc.CreateParticipant(f.ctx, Participant{
		FirstName: first,
		LastName:  last,
		Gender:    gender,
		Age:       age,
		Languages: languages,
	})
	if err != nil {
		f.t.Fatalf("create participant %s %s: %v", first, last, err)
	}
	return p
}

func (f *fixture) stage(name string, start, end time.Time) Stage {
	f.t.Helper()
	st, _, err := f.svc.CreateStage(f.ctx, Stage{Name: name, StartDate: start, EndDate: end})
	if err != nil {
		f.t.Fatalf("create stage %s: %v", name, err)
	}
	return st
}

func (f *fixture) registration(reg Registration) Registration {
	f.t.Helper()
	created, _, err := f.svc.CreateRegistration(f.ctx, reg)
	if err != nil {
		f.t.Fatalf("create registration: %v", err)
	}
	return created
}

func (f *fixture) enroll(p Participant, st Stage, role Role) Registration {
	f.t.Helper()
	return f.registration(Registration{ParticipantID: p.ID, StageID: st.ID, Role: role})
}

// place assigns through the gateway and fatals unless the placement lands.
func (f *fixture) place(regID, bungalowID, bedID string, force bool) AssignmentOutcome {
	f.t.Helper()
	outcome, _, err := f.svc.Assign(f.ctx, AssignmentRequest{
		RegistrationID: regID,
		BungalowID:     bungalowID,
		BedID:          bedID,
		Force:          force,
	})
	if err != nil {
		f.t.Fatalf("assign %s to %s/%s: %v", regID, bungalowID, bedID, err)
	}
	if !outcome.Success {
		f.t.Fatalf("assign %s to %s/%s rejected: %s %s", regID, bungalowID, bedID, outcome.Code, outcome.Message)
	}
	return outcome
}

// validate runs the pure validator against committed state.
func (f *fixture) validate(reg Registration, bungalow Bungalow, bedID string) []Conflict {
	f.t.Helper()
	var conflicts []Conflict
	if err := f.svc.Store().View(f.ctx, func(view TransactionView) error {
		conflicts = Validator{}.Validate(view, reg, bungalow, bedID)
		return nil
	}); err != nil {
		f.t.Fatalf("view: %v", err)
	}
	return conflicts
}

func (f *fixture) getBungalow(id string) Bungalow {
	f.t.Helper()
	b, ok := f.svc.Store().GetBungalow(id)
	if !ok {
		f.t.Fatalf("bungalow %s not found", id)
	}
	return b
}

func (f *fixture) getRegistration(id string) Registration {
	f.t.Helper()
	r, ok := f.svc.Store().GetRegistration(id)
	if !ok {
		f.t.Fatalf("registration %s not found", id)
	}
	return r
}

func hasCode(conflicts []Conflict, code ConflictCode) bool {
	for _, c := range conflicts {
		if c.Code == code {
			return true
		}
	}
	return false
}
