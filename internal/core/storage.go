package core

import (
	"fmt"
	"os"

	"ifad/internal/infra/persistence/memory"
	"ifad/pkg/runs"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore selects a run-archive backend using environment
// variables. Defaults to sqlite when unset.
//
//	IFAD_PERSISTENCE_DRIVER: memory|sqlite|postgres (default sqlite)
//	IFAD_SQLITE_PATH: path to sqlite file (default ./ifad.db)
//	IFAD_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore() (runs.PersistentStore, error) {
	driver := os.Getenv("IFAD_PERSISTENCE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		path := os.Getenv("IFAD_SQLITE_PATH")
		return NewSQLiteStore(path)
	case StoragePostgres:
		dsn := os.Getenv("IFAD_POSTGRES_DSN")
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unknown persistence driver %s", driver)
	}
}
