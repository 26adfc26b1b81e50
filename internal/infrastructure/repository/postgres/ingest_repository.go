package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

// IngestRepository keeps the per-source bookkeeping of ingestion runs
// so operators can see what was indexed, where, and what failed.
type IngestRepository struct {
	db *sql.DB
}

func NewIngestRepository(db *sql.DB) *IngestRepository {
	return &IngestRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *IngestRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS ingest_sources (
	source TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	pages INTEGER NOT NULL DEFAULT 0,
	chunks INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT,
	ingested_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ingest_sources_collection ON ingest_sources(collection);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *IngestRepository) RecordSource(ctx context.Context, rec domain.SourceRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO ingest_sources (source, collection, pages, chunks, status, error_message, ingested_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (source) DO UPDATE SET
	collection = EXCLUDED.collection,
	pages = EXCLUDED.pages,
	chunks = EXCLUDED.chunks,
	status = EXCLUDED.status,
	error_message = EXCLUDED.error_message,
	ingested_at = EXCLUDED.ingested_at
`, rec.Source, rec.Collection, rec.Pages, rec.Chunks, rec.Status, rec.Error, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record source %s: %w", rec.Source, err)
	}
	return nil
}

func (r *IngestRepository) ListSources(ctx context.Context) ([]domain.SourceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT source, collection, pages, chunks, status, COALESCE(error_message, '')
FROM ingest_sources
ORDER BY source
`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []domain.SourceRecord
	for rows.Next() {
		var rec domain.SourceRecord
		if err := rows.Scan(&rec.Source, &rec.Collection, &rec.Pages, &rec.Chunks, &rec.Status, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}
	return out, nil
}

func (r *IngestRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ingest_sources`); err != nil {
		return fmt.Errorf("clear ingest sources: %w", err)
	}
	return nil
}
