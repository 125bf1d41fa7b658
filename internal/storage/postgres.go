package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/deusflow/newsdesk/internal/logger"
)

// PostgresHistory stores runs in PostgreSQL and keeps the newest limit rows.
type PostgresHistory struct {
	db    *sql.DB
	limit int
}

func NewPostgresHistory(ctx context.Context, connectionString string, limit int) (*PostgresHistory, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if limit <= 0 {
		limit = 100
	}
	ph := &PostgresHistory{db: db, limit: limit}
	if err := ph.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("PostgreSQL history connected")
	return ph, nil
}

func (ph *PostgresHistory) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_runs (
		id VARCHAR(32) PRIMARY KEY,
		run_at TIMESTAMPTZ NOT NULL,
		query JSONB NOT NULL,
		fetched INTEGER NOT NULL DEFAULT 0,
		matched INTEGER NOT NULL DEFAULT 0,
		duplicates INTEGER NOT NULL DEFAULT 0,
		returned INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		top_items JSONB
	);

	CREATE INDEX IF NOT EXISTS idx_search_runs_run_at ON search_runs(run_at);
	`
	if _, err := ph.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (ph *PostgresHistory) Record(ctx context.Context, run Run) error {
	q, err := json.Marshal(run.Query)
	if err != nil {
		return err
	}
	top, err := json.Marshal(run.Top)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO search_runs (id, run_at, query, fetched, matched, duplicates, returned, warnings, duration_ms, top_items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = ph.db.ExecContext(ctx, query, run.ID, run.At, string(q), run.Fetched, run.Matched,
		run.Duplicates, run.Returned, run.Warnings, run.DurationMS, string(top))
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return ph.cleanup(ctx)
}

// cleanup keeps only the newest limit runs.
func (ph *PostgresHistory) cleanup(ctx context.Context) error {
	query := `
		DELETE FROM search_runs
		WHERE id NOT IN (SELECT id FROM search_runs ORDER BY run_at DESC LIMIT $1)
	`
	result, err := ph.db.ExecContext(ctx, query, ph.limit)
	if err != nil {
		return fmt.Errorf("failed to cleanup: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		logger.Debug("history cleanup", "removed", rows)
	}
	return nil
}

func (ph *PostgresHistory) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, run_at, query, fetched, matched, duplicates, returned, warnings, duration_ms, top_items
		FROM search_runs
		ORDER BY run_at DESC
		LIMIT $1
	`
	rows, err := ph.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r      Run
			q, top []byte
		)
		if err := rows.Scan(&r.ID, &r.At, &q, &r.Fetched, &r.Matched, &r.Duplicates,
			&r.Returned, &r.Warnings, &r.DurationMS, &top); err != nil {
			logger.Warn("error scanning history row", "error", err)
			continue
		}
		if err := json.Unmarshal(q, &r.Query); err != nil {
			logger.Warn("bad query column", "id", r.ID, "error", err)
		}
		if len(top) > 0 {
			if err := json.Unmarshal(top, &r.Top); err != nil {
				logger.Warn("bad top_items column", "id", r.ID, "error", err)
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (ph *PostgresHistory) Stats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)

	var total, returned int
	err := ph.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(returned), 0) FROM search_runs`).Scan(&total, &returned)
	if err != nil {
		return nil, err
	}
	stats["total_runs"] = total
	stats["items_returned"] = returned

	for _, field := range []string{"source", "category"} {
		if err := ph.countTopItems(ctx, field, stats); err != nil {
			logger.Warn("history stats query failed", "field", field, "error", err)
		}
	}
	return stats, nil
}

// countTopItems adds "<field>_<value>" counts over the stored top items.
// field is one of the fixed RunItem keys, never user input.
func (ph *PostgresHistory) countTopItems(ctx context.Context, field string, stats map[string]int) error {
	rows, err := ph.db.QueryContext(ctx, `
		SELECT item->>$1::text, COUNT(*)
		FROM search_runs, jsonb_array_elements(COALESCE(top_items, '[]'::jsonb)) AS item
		WHERE COALESCE(item->>$1::text, '') <> ''
		GROUP BY 1
	`, field)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var value string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return err
		}
		stats[field+"_"+value] = count
	}
	return rows.Err()
}

func (ph *PostgresHistory) Close() error {
	if ph.db != nil {
		return ph.db.Close()
	}
	return nil
}
