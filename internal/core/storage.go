package core

import (
	"fmt"
	"os"

	"lodgecore/internal/infra/persistence/memory"
	"lodgecore/internal/infra/persistence/postgres"
	"lodgecore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	LODGECORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	LODGECORE_SQLITE_PATH: path to sqlite file (default ./lodgecore.db)
//	LODGECORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *RulesEngine) (PersistentStore, error) {
	driver := os.Getenv("LODGECORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("LODGECORE_SQLITE_PATH"), engine)
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("LODGECORE_POSTGRES_DSN"), engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// NewSQLiteStore constructs a SQLite-backed persistent store at the given
// path (empty for the default) with the provided rules engine.
func NewSQLiteStore(path string, engine *RulesEngine) (*sqlite.Store, error) {
	return sqlite.NewStore(path, engine)
}

// NewPostgresStore constructs a Postgres-backed store from the provided DSN.
func NewPostgresStore(dsn string, engine *RulesEngine) (*postgres.Store, error) {
	return postgres.NewStore(dsn, engine)
}
