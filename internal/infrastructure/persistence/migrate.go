package persistence

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

//nolint:gochecknoinits
func init() {
	// modernc registers as "sqlite", which named queries must bind with "?".
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Migrate creates the cache and snapshot tables. It is safe to run on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}
	}

	return nil
}
