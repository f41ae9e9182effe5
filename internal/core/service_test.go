package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDeleteParticipantWithdrawsRegistrations(t *testing.T) {
	f := newFixture(t)
	f.village("A", AmenitiesShared)
	bungalow := f.bungalow("A", "A1", singles("bed-1")...)
	stage := f.stage("Winter Session", jan(11), jan(16))
	guest := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	reg := f.enroll(guest, stage, RoleParticipant)
	f.place(reg.ID, bungalow.ID, "bed-1", false)

	if _, err := f.svc.DeleteParticipant(f.ctx, guest.ID); err != nil {
		t.Fatalf("delete participant: %v", err)
	}
	if _, ok := f.svc.Store().GetRegistration(reg.ID); ok {
		t.Fatalf("expected registration withdrawn")
	}
	got := f.getBungalow(bungalow.ID)
	if got.Occupancy != 0 {
		t.Fatalf("expected bed released, occupancy %d", got.Occupancy)
	}
	bed, _ := got.FindBed("bed-1")
	if bed.Occupant != nil {
		t.Fatalf("expected bed cache cleared, got %+v", bed.Occupant)
	}
}

func TestDeleteStageWithdrawsRegistrations(t *testing.T) {
	f := newFixture(t)
	f.village("A", AmenitiesShared)
	bungalow := f.bungalow("A", "A1", singles("bed-1", "bed-2")...)
	stage := f.stage("Winter Session", jan(11), jan(16))
	other := f.stage("Spring Session", jan(20), jan(25))

	guest := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	doomed := f.enroll(guest, stage, RoleParticipant)
	kept := f.enroll(guest, other, RoleParticipant)
	f.place(doomed.ID, bungalow.ID, "bed-1", false)

	if _, err := f.svc.DeleteStage(f.ctx, stage.ID); err != nil {
		t.Fatalf("delete stage: %v", err)
	}
	if _, ok := f.svc.Store().GetRegistration(doomed.ID); ok {
		t.Fatalf("expected stage registration withdrawn")
	}
	if _, ok := f.svc.Store().GetRegistration(kept.ID); !ok {
		t.Fatalf("other stage registration must survive")
	}
	if got := f.getBungalow(bungalow.ID); got.Occupancy != 0 {
		t.Fatalf("expected bed released, occupancy %d", got.Occupancy)
	}
}

func TestDeleteRegistrationReleasesBed(t *testing.T) {
	f := newFixture(t)
	f.village("A", AmenitiesShared)
	bungalow := f.bungalow("A", "A1", singles("bed-1")...)
	stage := f.stage("Winter Session", jan(11), jan(16))
	guest := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	reg := f.enroll(guest, stage, RoleParticipant)
	f.place(reg.ID, bungalow.ID, "bed-1", false)

	if _, err := f.svc.DeleteRegistration(f.ctx, reg.ID); err != nil {
		t.Fatalf("delete registration: %v", err)
	}
	if got := f.getBungalow(bungalow.ID); got.Occupancy != 0 {
		t.Fatalf("expected bed released, occupancy %d", got.Occupancy)
	}
}

func TestDeleteMissingEntitiesReturnNotFound(t *testing.T) {
	f := newFixture(t)
	var notFound ErrNotFound
	if _, err := f.svc.DeleteParticipant(f.ctx, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.DeleteStage(f.ctx, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.DeleteRegistration(f.ctx, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// memoryAudit collects entries for assertions.
type memoryAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (a *memoryAudit) Record(_ context.Context, entry AuditEntry) {
	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()
}

func (a *memoryAudit) byOperation(op string) []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []AuditEntry
	for _, e := range a.entries {
		if e.Operation == op {
			out = append(out, e)
		}
	}
	return out
}

func TestServiceRecordsAuditTrail(t *testing.T) {
	audit := &memoryAudit{}
	now := jan(12)
	f := newFixture(t,
		WithAuditRecorder(audit),
		WithClock(ClockFunc(func() time.Time { return now })),
	)
	f.village("A", AmenitiesShared)
	bungalow := f.bungalow("A", "A1", singles("bed-1")...)
	stage := f.stage("Winter Session", jan(11), jan(16))
	guest := f.participant("Ana", "Duval", GenderFemale, 24, "fr")
	reg := f.enroll(guest, stage, RoleParticipant)
	f.place(reg.ID, bungalow.ID, "bed-1", false)

	created := audit.byOperation("create_village")
	if len(created) != 1 || created[0].Status != AuditStatusSuccess {
		t.Fatalf("expected successful create_village entry, got %+v", created)
	}
	if created[0].Entity != EntityVillage || created[0].Action != ActionCreate {
		t.Fatalf("unexpected audit metadata %+v", created[0])
	}
	if !created[0].Timestamp.Equal(now) {
		t.Fatalf("expected clock-driven timestamp, got %v", created[0].Timestamp)
	}

	assigned := audit.byOperation("assign")
	if len(assigned) != 1 || assigned[0].EntityID != reg.ID {
		t.Fatalf("expected assign entry for %s, got %+v", reg.ID, assigned)
	}

	if _, err := f.svc.DeleteVillage(f.ctx, "A"); err == nil {
		t.Fatalf("expected delete of referenced village to fail")
	}
	failed := audit.byOperation("delete_village")
	if len(failed) != 1 || failed[0].Status != AuditStatusError || failed[0].Error == "" {
		t.Fatalf("expected failed delete_village entry, got %+v", failed)
	}
}

func TestServiceObservesMetrics(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	f := newFixture(t, WithMetricsRecorder(rec))
	f.village("A", AmenitiesShared)
	if _, _, err := f.svc.CreateVillage(f.ctx, Village{Code: "A"}); err == nil {
		t.Fatalf("expected duplicate village to fail")
	}

	snap := rec.Snapshot()
	counts := snap.Results["create_village"]
	if counts["success"] != 1 || counts["error"] != 1 {
		t.Fatalf("unexpected create_village counts %+v", snap.Results)
	}
}

func TestServiceTracesOperations(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	f := newFixture(t, WithTracer(tracer))
	f.village("A", AmenitiesShared)

	entries := tracer.Entries()
	if len(entries) != 1 || entries[0].Operation != "create_village" || entries[0].Status != "success" {
		t.Fatalf("unexpected trace entries %+v", entries)
	}
	if !strings.Contains(buf.String(), `"operation":"create_village"`) {
		t.Fatalf("expected encoded span, got %s", buf.String())
	}
}

func TestServiceLogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := newFixture(t, WithLogger(NewSlogLogger(logger)))
	f.village("A", AmenitiesShared)

	out := buf.String()
	if !strings.Contains(out, "operation completed") || !strings.Contains(out, "operation=create_village") {
		t.Fatalf("expected structured completion log, got %s", out)
	}
}

func TestWithMusicianVillageOverride(t *testing.T) {
	svc := NewInMemoryService(nil, WithMusicianVillage("Z"))
	if svc.MusicianVillage() != "Z" {
		t.Fatalf("expected musician village Z, got %s", svc.MusicianVillage())
	}
	svc = NewInMemoryService(nil, WithMusicianVillage(""))
	if svc.MusicianVillage() != DefaultMusicianVillage {
		t.Fatalf("empty override must keep the default, got %s", svc.MusicianVillage())
	}
}
