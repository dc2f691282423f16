package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schema string

// SchemaVersion is bumped whenever schema.sql changes.
const SchemaVersion = 1

// Migrate creates the tables when they do not exist yet and records the applied version.
func Migrate(ctx context.Context, conn *sql.DB) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`,
		SchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", SchemaVersion, err)
	}

	return tx.Commit()
}
