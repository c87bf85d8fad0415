package core

import "ifad/internal/infra/persistence/postgres"

// NewPostgresStore constructs a Postgres-backed run archive from the DSN.
func NewPostgresStore(dsn string) (*postgres.Store, error) {
	return postgres.NewStore(dsn)
}
