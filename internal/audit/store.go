// Package audit provides optional, non-blocking persistence of completed
// runs to PostgreSQL — an audit trail for compliance review, never a
// dependency of the detection critical path (spec.md §5 "shared-resource
// policy"; SPEC_FULL.md §4.8).
//
// Grounded on the teacher's internal/db.PostgresStore: the same
// pgxpool.Pool + explicit-transaction + ON CONFLICT upsert shape, adapted
// from per-transaction heuristic rows to per-run provider-finding rows.
package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                   TEXT PRIMARY KEY,
	generated_at         TIMESTAMPTZ NOT NULL,
	tool_version         TEXT NOT NULL,
	total_scanned        BIGINT NOT NULL,
	total_flagged        INTEGER NOT NULL,
	total_overpayment    DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS flagged_providers (
	run_id               TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	npi                  TEXT NOT NULL,
	name                 TEXT NOT NULL,
	state                TEXT NOT NULL,
	signal_count         INTEGER NOT NULL,
	combined_overpayment DOUBLE PRECISION NOT NULL,
	statute_reference    TEXT,
	PRIMARY KEY (run_id, npi)
);
`

// Store persists run reports to PostgreSQL via pgx.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect opens a pooled connection and verifies it with a ping. Callers
// should treat a non-nil error as "run without audit persistence" rather
// than a fatal condition — the engine is specified to work without it
// (spec.md §4.4/§5: optional persistence must never block the critical
// path).
func Connect(ctx context.Context, connStr string, log zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("audit: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit: ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the audit tables if they do not already exist.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("audit: init schema: %w", err)
	}
	return nil
}

// SaveReport persists a run and every flagged provider within it inside a
// single transaction. A run ID collision (re-running with the same ID)
// upserts the run row and replaces its flagged-provider rows.
func (s *Store) SaveReport(ctx context.Context, runID string, rpt models.Report) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("audit: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (id, generated_at, tool_version, total_scanned, total_flagged, total_overpayment)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			generated_at = EXCLUDED.generated_at,
			total_scanned = EXCLUDED.total_scanned,
			total_flagged = EXCLUDED.total_flagged,
			total_overpayment = EXCLUDED.total_overpayment
	`, runID, rpt.GeneratedAt, rpt.ToolVersion, rpt.TotalProvidersScanned, rpt.TotalProvidersFlagged, rpt.TotalEstimatedOverpaymentUSD)
	if err != nil {
		return fmt.Errorf("audit: insert run: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM flagged_providers WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("audit: clear prior flagged providers: %w", err)
	}

	for _, rec := range rpt.FlaggedProviders {
		var statute string
		if rec.Annotation != nil {
			statute = rec.Annotation.StatuteReference
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO flagged_providers (run_id, npi, name, state, signal_count, combined_overpayment, statute_reference)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, runID, rec.NPI, rec.Name, rec.State, len(rec.Signals), rec.CombinedOverpaymentUSD, statute)
		if err != nil {
			return fmt.Errorf("audit: insert flagged provider %s: %w", rec.NPI, err)
		}
	}

	return tx.Commit(ctx)
}
