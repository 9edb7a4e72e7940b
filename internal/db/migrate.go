package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded schema. Every statement in it is idempotent,
// so running it against an already migrated database is a no-op.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	// Exec without arguments uses the simple protocol, which accepts
	// multiple statements in one call.
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema failed: %w", err)
	}
	return nil
}
