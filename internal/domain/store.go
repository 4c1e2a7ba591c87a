package domain

import (
	"context"
	"time"
)

// QueryRecord is one handled user query, kept for operator auditing.
type QueryRecord struct {
	ID        string
	SessionID string
	Intent    Intent
	Query     string
	Outcome   string // "ok" or the error kind that was converted
	Duration  time.Duration
	CreatedAt time.Time
}

// QueryLogStore persists handled queries. Recording is best-effort: callers
// log failures and carry on, the user response never depends on it.
type QueryLogStore interface {
	Record(ctx context.Context, rec QueryRecord) error
	Recent(ctx context.Context, limit int) ([]QueryRecord, error)
}
