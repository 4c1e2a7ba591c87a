// Package config defines the top-level configuration for the analyst agent
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ANALYST_* environment variables.
type Config struct {
	Retrieval RetrievalConfig `toml:"retrieval"`
	Telegram  TelegramConfig  `toml:"telegram"`
	Server    ServerConfig    `toml:"server"`
	Redis     RedisConfig     `toml:"redis"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Reasoning ReasoningConfig `toml:"reasoning"`
	Query     QueryConfig     `toml:"query"`
	Session   SessionConfig   `toml:"session"`
	LLM       LLMConfig       `toml:"llm"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// RetrievalConfig holds the endpoint of the external market-data API.
type RetrievalConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request timeout for retrieval calls.
func (r RetrievalConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// TelegramConfig holds Telegram Bot API credentials for the chat transport.
type TelegramConfig struct {
	Token              string `toml:"token"`
	PollTimeoutSeconds int    `toml:"poll_timeout_seconds"`
}

// ServerConfig holds the HTTP/WebSocket gateway parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// RedisConfig holds Redis connection parameters for session history.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds connection parameters for the query audit log.
// Leave DSN and Host empty to disable auditing entirely.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether a query audit database was configured.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.DSN) != "" || strings.TrimSpace(p.Host) != ""
}

// ReasoningConfig holds the edge weights and fetch scope used when deducing
// related markets. Weights are a tuning surface, not hardcoded constants.
type ReasoningConfig struct {
	SameCategoryWeight float64 `toml:"same_category_weight"`
	SharedTagWeight    float64 `toml:"shared_tag_weight"`
	// ScopeLimit bounds the snapshot fetched before graph construction.
	// Graph building is quadratic, so this is the knob that keeps it cheap.
	ScopeLimit int `toml:"scope_limit"`
}

// QueryConfig holds defaults applied when the user omits a parameter.
type QueryConfig struct {
	DefaultLimit int    `toml:"default_limit"`
	MaxLimit     int    `toml:"max_limit"`
	DefaultSort  string `toml:"default_sort"`
}

// SessionConfig bounds per-correspondent conversation history.
type SessionConfig struct {
	TTLMinutes   int `toml:"ttl_minutes"`
	MaxExchanges int `toml:"max_exchanges"`
}

// TTL returns the session history expiry.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// LLMConfig holds credentials for the optional commentary model. When APIKey
// is empty the analyst answers with its field-derived narrative only.
type LLMConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Defaults returns a Config populated with sensible defaults. Load merges the
// TOML file and environment overrides on top of it.
func Defaults() Config {
	return Config{
		Retrieval: RetrievalConfig{
			BaseURL:        "http://127.0.0.1:5000",
			TimeoutSeconds: 15,
		},
		Telegram: TelegramConfig{
			PollTimeoutSeconds: 30,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Reasoning: ReasoningConfig{
			SameCategoryWeight: 1.0,
			SharedTagWeight:    0.5,
			ScopeLimit:         100,
		},
		Query: QueryConfig{
			DefaultLimit: 10,
			MaxLimit:     50,
			DefaultSort:  "volume",
		},
		Session: SessionConfig{
			TTLMinutes:   60,
			MaxExchanges: 20,
		},
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// Validate checks the configuration for startup-fatal problems. Per-request
// failures are handled at the dispatcher; anything reported here should stop
// the process before it accepts traffic.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "serve", "telegram", "full":
	default:
		return fmt.Errorf("config: unsupported mode %q (want serve, telegram, or full)", c.Mode)
	}

	if strings.TrimSpace(c.Retrieval.BaseURL) == "" {
		return fmt.Errorf("config: retrieval.base_url is required")
	}
	if !strings.HasPrefix(c.Retrieval.BaseURL, "http://") && !strings.HasPrefix(c.Retrieval.BaseURL, "https://") {
		return fmt.Errorf("config: retrieval.base_url %q must be an http(s) URL", c.Retrieval.BaseURL)
	}

	mode := strings.ToLower(c.Mode)
	if (mode == "telegram" || mode == "full") && strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("config: telegram.token is required in %s mode", mode)
	}
	if (mode == "serve" || mode == "full") && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}

	if c.Reasoning.SameCategoryWeight < 0 || c.Reasoning.SharedTagWeight < 0 {
		return fmt.Errorf("config: reasoning edge weights must be non-negative")
	}
	if c.Reasoning.ScopeLimit <= 0 {
		return fmt.Errorf("config: reasoning.scope_limit must be positive")
	}
	if c.Query.DefaultLimit <= 0 {
		return fmt.Errorf("config: query.default_limit must be positive")
	}
	if c.Query.MaxLimit < c.Query.DefaultLimit {
		return fmt.Errorf("config: query.max_limit %d below default_limit %d", c.Query.MaxLimit, c.Query.DefaultLimit)
	}

	return nil
}
