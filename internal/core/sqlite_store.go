package core

import "ifad/internal/infra/persistence/sqlite"

// NewSQLiteStore constructs a SQLite-backed run archive using the provided
// file path (may be empty for the default).
func NewSQLiteStore(path string) (*sqlite.Store, error) {
	return sqlite.NewStore(path)
}
