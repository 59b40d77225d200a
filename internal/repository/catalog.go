// Package repository persists extraction run records to an embedded SQLite
// catalog so batch runs can be summarized and inspected after the fact.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Schema for the extraction_runs table. Applied by Init.
const Schema = `
CREATE TABLE IF NOT EXISTS extraction_runs (
	id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL,
	source_path TEXT NOT NULL,
	source_file TEXT NOT NULL,
	output_path TEXT,
	success INTEGER NOT NULL,
	content_length INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extraction_runs_batch ON extraction_runs(batch_id);
CREATE INDEX IF NOT EXISTS idx_extraction_runs_failed ON extraction_runs(batch_id) WHERE success = 0;
`

// RunRecord is one extraction outcome persisted to the catalog.
type RunRecord struct {
	ID            uuid.UUID
	BatchID       uuid.UUID
	SourcePath    string
	SourceFile    string
	OutputPath    string
	Success       bool
	ContentLength int
	ErrorMessage  string
	CreatedAt     time.Time
}

// BatchSummary aggregates one batch's outcomes.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Catalog stores run records. Safe for concurrent use: database/sql
// serializes access to the underlying connection pool.
type Catalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the catalog database at dsn. Use ":memory:" for
// an ephemeral catalog.
func Open(dsn string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	c := &Catalog{db: db, logger: logger}
	if err := c.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Init creates the extraction_runs table if it does not exist.
func (c *Catalog) Init() error {
	if _, err := c.db.Exec(Schema); err != nil {
		return fmt.Errorf("init catalog schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record inserts one run outcome. The record's ID and CreatedAt are filled
// in when zero.
func (c *Catalog) Record(ctx context.Context, rec RunRecord) (uuid.UUID, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO extraction_runs
			(id, batch_id, source_path, source_file, output_path, success, content_length, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.BatchID.String(), rec.SourcePath, rec.SourceFile,
		rec.OutputPath, boolToInt(rec.Success), rec.ContentLength, rec.ErrorMessage,
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("record run: %w", err)
	}
	return rec.ID, nil
}

// Summarize aggregates the outcomes recorded for one batch.
func (c *Catalog) Summarize(ctx context.Context, batchID uuid.UUID) (BatchSummary, error) {
	var s BatchSummary
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(success), 0),
		       COALESCE(SUM(1 - success), 0)
		FROM extraction_runs WHERE batch_id = ?`,
		batchID.String(),
	).Scan(&s.Total, &s.Succeeded, &s.Failed)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("summarize batch: %w", err)
	}
	return s, nil
}

// Failures returns the failed records of one batch, newest first.
func (c *Catalog) Failures(ctx context.Context, batchID uuid.UUID) ([]RunRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, source_path, source_file, error_message, created_at
		FROM extraction_runs
		WHERE batch_id = ? AND success = 0
		ORDER BY created_at DESC`,
		batchID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec RunRecord
			id  string
			ts  int64
		)
		if err := rows.Scan(&id, &rec.SourcePath, &rec.SourceFile, &rec.ErrorMessage, &ts); err != nil {
			return nil, fmt.Errorf("scan failure row: %w", err)
		}
		rec.ID, _ = uuid.Parse(id)
		rec.BatchID = batchID
		rec.CreatedAt = time.Unix(ts, 0).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
