package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"lodgecore/pkg/domain"

	_ "modernc.org/sqlite"
)

// Tests run the store against a SQLite file standing in for Postgres. The
// snapshot SQL sticks to the shared dialect subset (parameter placeholders,
// ON CONFLICT DO UPDATE) so the persistence path is exercised end to end
// without a running server.
func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "pgx" {
			t.Fatalf("unexpected driver %q", driverName)
		}
		return sql.Open("sqlite", path)
	})
	t.Cleanup(restore)

	store, err := NewStore("postgres://test/lodgecore", nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.DB().Close() })
	return store
}

func TestStoreSnapshotsAfterCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	store := openTestStore(t, path)
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateVillage(domain.Village{Code: "C", Amenities: domain.AmenitiesPrivate}); err != nil {
			return err
		}
		_, err := tx.CreateBungalow(domain.Bungalow{
			VillageCode: "C",
			Name:        "C3",
			Beds:        []domain.Bed{{ID: "bed-1", Kind: domain.BedSingle}},
		})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}

	var buckets int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&buckets); err != nil {
		t.Fatalf("count state rows: %v", err)
	}
	if buckets != len(postgresBuckets) {
		t.Fatalf("expected %d snapshot buckets, got %d", len(postgresBuckets), buckets)
	}
}

func TestStoreHydratesFromExistingSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hydrate.db")
	ctx := context.Background()

	first := openTestStore(t, path)
	if _, err := first.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateVillage(domain.Village{Code: "A"}); err != nil {
			return err
		}
		p, err := tx.CreateParticipant(domain.Participant{FirstName: "Mira", LastName: "Sol", Gender: domain.GenderFemale})
		if err != nil {
			return err
		}
		st, err := tx.CreateStage(domain.Stage{
			Name:      "Spring Session",
			StartDate: domain.Date(2025, time.April, 1),
			EndDate:   domain.Date(2025, time.April, 10),
		})
		if err != nil {
			return err
		}
		_, err = tx.CreateRegistration(domain.Registration{ParticipantID: p.ID, StageID: st.ID, Role: domain.RoleMusician})
		return err
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	if err := first.DB().Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := openTestStore(t, path)
	regs := second.ListRegistrations()
	if len(regs) != 1 || regs[0].Role != domain.RoleMusician {
		t.Fatalf("expected 1 musician registration after hydration, got %+v", regs)
	}
	if _, ok := second.GetVillage("A"); !ok {
		t.Fatalf("expected village A after hydration")
	}
}

func TestStoreSkipsSnapshotOnFailedTransaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.db")
	store := openTestStore(t, path)

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateBungalow(domain.Bungalow{VillageCode: "missing", Name: "X"})
		return err
	}); err == nil {
		t.Fatalf("expected transaction to fail")
	}

	var buckets int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&buckets); err != nil {
		t.Fatalf("count state rows: %v", err)
	}
	if buckets != 0 {
		t.Fatalf("expected no snapshot rows, got %d", buckets)
	}
}
