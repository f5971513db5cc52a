package ledger

import (
	"context"
	"fmt"
	"strings"

	"grnseeds/domain/experiment"
	"grnseeds/internal"
	apperrors "grnseeds/internal/errors"
	"grnseeds/internal/migration"
	"grnseeds/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// RunRepository stores run records in a SQL database
type RunRepository struct {
	db     *sqlx.DB
	logger *internal.Logger
}

// Open connects to the ledger database and applies migrations
func Open(ctx context.Context, driver, dsn string, logger *internal.Logger) (*RunRepository, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("unsupported ledger driver %q", driver))
	}
	if dsn == "" {
		return nil, apperrors.ConfigInvalid("ledger DSN is required")
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Sprintf("failed to connect to %s ledger", driver), err)
	}
	if driver == DriverSQLite {
		// one writer; also keeps a :memory: database alive across calls
		db.SetMaxOpenConns(1)
	}
	repo, err := NewRunRepository(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewRunRepository wraps an open connection and applies migrations
func NewRunRepository(ctx context.Context, db *sqlx.DB, logger *internal.Logger) (*RunRepository, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		return nil, err
	}
	logger = logger.WithComponent("Ledger")
	logger.Debug("schema %s ready on %s", runner.Version(), db.DriverName())
	return &RunRepository{db: db, logger: logger}, nil
}

// Close releases the database connection
func (r *RunRepository) Close() error {
	return r.db.Close()
}

// RecordRun implements ports.RunLedgerPort
func (r *RunRepository) RecordRun(ctx context.Context, record *experiment.RunRecord) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO run_records (id, batch_id, fingerprint, algorithm, dataset, seed,
			output_path, output_sha256, edge_count, elapsed_ms, created_at)
		VALUES (:id, :batch_id, :fingerprint, :algorithm, :dataset, :seed,
			:output_path, :output_sha256, :edge_count, :elapsed_ms, :created_at)
	`, record)
	if err != nil {
		return apperrors.DatabaseError(fmt.Sprintf("failed to record %s seed %d", record.Dataset, record.Seed), err)
	}
	r.logger.Trace("recorded run %s (%s seed %d)", record.ID, record.Dataset, record.Seed)
	return nil
}

// ListRuns implements ports.RunLedgerPort. Records come back oldest first.
func (r *RunRepository) ListRuns(ctx context.Context, filter ports.RunFilter) ([]experiment.RunRecord, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.BatchID != "" {
		where = append(where, "batch_id = ?")
		args = append(args, filter.BatchID)
	}
	if filter.Algorithm != "" {
		where = append(where, "algorithm = ?")
		args = append(args, filter.Algorithm)
	}
	if filter.Dataset != "" {
		where = append(where, "dataset = ?")
		args = append(args, filter.Dataset)
	}

	query := `SELECT id, batch_id, fingerprint, algorithm, dataset, seed, output_path,
		output_sha256, edge_count, elapsed_ms, created_at FROM run_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at ASC, seed ASC, dataset ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var records []experiment.RunRecord
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), args...); err != nil {
		return nil, apperrors.DatabaseError("failed to list runs", err)
	}
	return records, nil
}
