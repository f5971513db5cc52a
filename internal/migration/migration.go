package migration

import (
	"context"

	"grnseeds/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the run ledger schema. Statements are written to
// work on both sqlite3 and postgres.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all migrations in order; every step is idempotent
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunRecordsTable(ctx, db); err != nil {
		return errors.Wrap(errors.DatabaseError("migration failed", err), "failed to create run_records table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(errors.DatabaseError("migration failed", err), "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRunRecordsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_records (
			id VARCHAR(36) PRIMARY KEY,
			batch_id VARCHAR(36) NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			algorithm VARCHAR(32) NOT NULL,
			dataset VARCHAR(255) NOT NULL,
			seed BIGINT NOT NULL,
			output_path TEXT NOT NULL,
			output_sha256 VARCHAR(64) NOT NULL DEFAULT '',
			edge_count INTEGER NOT NULL,
			elapsed_ms BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_run_records_batch ON run_records (batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_run_records_dataset_seed ON run_records (dataset, seed)`,
		`CREATE INDEX IF NOT EXISTS idx_run_records_fingerprint ON run_records (fingerprint)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
