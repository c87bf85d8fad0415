package core

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"ifad/internal/infra/persistence/memory"
	"ifad/internal/infra/persistence/postgres"
	"ifad/internal/infra/persistence/postgres/testutil"
	"ifad/internal/infra/persistence/sqlite"
)

// helper to unset and restore env vars
func withEnv(key, value string, fn func()) {
	orig, had := os.LookupEnv(key)
	if value == "" {
		_ = os.Unsetenv(key)
	} else {
		_ = os.Setenv(key, value)
	}
	defer func() {
		if had {
			_ = os.Setenv(key, orig)
		} else {
			_ = os.Unsetenv(key)
		}
	}()
	fn()
}

func TestOpenPersistentStore_DefaultSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ifad.db")
	withEnv("IFAD_PERSISTENCE_DRIVER", "", func() {
		withEnv("IFAD_SQLITE_PATH", path, func() {
			store, err := OpenPersistentStore()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, ok := store.(*sqlite.Store); !ok {
				t.Fatalf("expected *sqlite.Store, got %T", store)
			}
		})
	})
}

func TestOpenPersistentStore_Memory(t *testing.T) {
	withEnv("IFAD_PERSISTENCE_DRIVER", "memory", func() {
		store, err := OpenPersistentStore()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := store.(*memory.Store); !ok {
			t.Fatalf("expected *memory.Store, got %T", store)
		}
	})
}

func TestOpenPersistentStore_CustomSQLitePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.db")
	withEnv("IFAD_PERSISTENCE_DRIVER", "sqlite", func() {
		withEnv("IFAD_SQLITE_PATH", path, func() {
			store, err := OpenPersistentStore()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			s, ok := store.(*sqlite.Store)
			if !ok {
				t.Fatalf("expected *sqlite.Store, got %T", store)
			}
			if s.Path() != path {
				t.Fatalf("expected path %s, got %s", path, s.Path())
			}
		})
	})
}

func TestOpenPersistentStore_PostgresUsesStubDriver(t *testing.T) {
	db, _ := testutil.NewStubDB()
	restore := postgres.OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return db, nil
	})
	defer restore()

	withEnv("IFAD_PERSISTENCE_DRIVER", "postgres", func() {
		withEnv("IFAD_POSTGRES_DSN", "postgres://stub/ifad", func() {
			store, err := OpenPersistentStore()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, ok := store.(*postgres.Store); !ok {
				t.Fatalf("expected *postgres.Store, got %T", store)
			}
		})
	})
}

func TestOpenPersistentStore_UnknownDriver(t *testing.T) {
	withEnv("IFAD_PERSISTENCE_DRIVER", "gibberish", func() {
		store, err := OpenPersistentStore()
		if err == nil || store != nil {
			t.Fatalf("expected error for unknown driver, got store=%v err=%v", store, err)
		}
	})
}
