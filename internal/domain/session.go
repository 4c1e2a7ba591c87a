package domain

import (
	"context"
	"time"
)

// Exchange is one question/answer turn within a conversation.
type Exchange struct {
	ID       string    `json:"id"`
	Query    string    `json:"query"`
	Response string    `json:"response"`
	At       time.Time `json:"at"`
}

// SessionStore keeps a bounded history of recent exchanges per correspondent.
// History is advisory context only; losing it never affects correctness, so
// implementations may expire entries freely.
type SessionStore interface {
	Append(ctx context.Context, sessionID string, ex Exchange) error
	Recent(ctx context.Context, sessionID string, n int) ([]Exchange, error)
}
