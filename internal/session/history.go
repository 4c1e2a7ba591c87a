// Package session keeps a bounded, expiring history of recent exchanges per
// correspondent in Redis. History is advisory context for the transports and
// the optional commentary model; the core never depends on it, so losing it
// is always safe.
package session

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/polyanalyst/internal/config"
	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

// Store implements domain.SessionStore on Redis lists.
//
// Key schema:
//
//	session:{id}:history - list of JSON-encoded exchanges, newest first
type Store struct {
	rdb *redis.Client
	cfg config.SessionConfig
}

// NewStore connects to Redis, pings it to verify connectivity, and returns a
// ready Store.
func NewStore(ctx context.Context, rc config.RedisConfig, sc config.SessionConfig) (*Store, error) {
	opts := &redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
		PoolSize: rc.PoolSize,
	}
	if rc.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("session: redis ping: %w", err)
	}

	return &Store{rdb: rdb, cfg: sc}, nil
}

func historyKey(sessionID string) string { return "session:" + sessionID + ":history" }

// Append records one exchange, trims the history to the configured maximum,
// and refreshes the expiry.
func (s *Store) Append(ctx context.Context, sessionID string, ex domain.Exchange) error {
	data, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("session: marshal exchange: %w", err)
	}

	key := historyKey(sessionID)
	max := int64(s.cfg.MaxExchanges)
	if max <= 0 {
		max = 20
	}

	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, max-1)
	pipe.Expire(ctx, key, s.cfg.TTL())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: append exchange %s: %w", sessionID, err)
	}
	return nil
}

// Recent returns up to n exchanges, newest first. A missing session yields
// an empty slice, not an error.
func (s *Store) Recent(ctx context.Context, sessionID string, n int) ([]domain.Exchange, error) {
	if n <= 0 {
		n = s.cfg.MaxExchanges
		if n <= 0 {
			n = 20
		}
	}

	raw, err := s.rdb.LRange(ctx, historyKey(sessionID), 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("session: read history %s: %w", sessionID, err)
	}

	exchanges := make([]domain.Exchange, 0, len(raw))
	for _, item := range raw {
		var ex domain.Exchange
		if err := json.Unmarshal([]byte(item), &ex); err != nil {
			// Skip corrupt entries instead of failing the whole read.
			continue
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, nil
}

// Close releases the Redis connection pool.
func (s *Store) Close() error {
	return s.rdb.Close()
}
