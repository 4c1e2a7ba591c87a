package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

// QueryLogStore implements domain.QueryLogStore using PostgreSQL.
type QueryLogStore struct {
	pool *pgxpool.Pool
}

// NewQueryLogStore creates a QueryLogStore backed by the given pool.
func NewQueryLogStore(pool *pgxpool.Pool) *QueryLogStore {
	return &QueryLogStore{pool: pool}
}

// Record appends one handled query to the audit log.
func (s *QueryLogStore) Record(ctx context.Context, rec domain.QueryRecord) error {
	const query = `
		INSERT INTO query_log (id, session_id, intent, query, outcome, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.SessionID, string(rec.Intent), rec.Query, rec.Outcome,
		rec.Duration.Milliseconds(), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: record query %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns the most recently handled queries, newest first.
func (s *QueryLogStore) Recent(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `
		SELECT id, session_id, intent, query, outcome, duration_ms, created_at
		FROM query_log
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list query log: %w", err)
	}
	defer rows.Close()

	var records []domain.QueryRecord
	for rows.Next() {
		var (
			rec        domain.QueryRecord
			intent     string
			durationMs int64
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &intent, &rec.Query,
			&rec.Outcome, &durationMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan query record: %w", err)
		}
		rec.Intent = domain.Intent(intent)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate query log: %w", err)
	}
	return records, nil
}
