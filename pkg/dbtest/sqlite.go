package dbtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver
)

// MigrateFunc prepares the schema of a fresh database.
type MigrateFunc func(context.Context, *sqlx.DB) error

// NewSQLite opens a private in-memory database, applies migrations and closes
// it when the test ends.
func NewSQLite(t *testing.T, migrations ...MigrateFunc) *sqlx.DB {
	t.Helper()

	rq := require.New(t)

	db, err := sqlx.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	rq.NoError(err)

	// Every new connection to :memory: is a new empty database.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})

	for _, migrate := range migrations {
		rq.NoError(migrate(context.Background(), db))
	}

	return db
}
