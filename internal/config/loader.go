package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ANALYST_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
//
// A missing file is not an error: defaults plus environment variables are a
// complete configuration for the common single-endpoint deployment.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ANALYST_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Retrieval.BaseURL, "ANALYST_RETRIEVAL_BASE_URL")
	setStr(&cfg.Retrieval.APIKey, "ANALYST_RETRIEVAL_API_KEY")
	setInt(&cfg.Retrieval.TimeoutSeconds, "ANALYST_RETRIEVAL_TIMEOUT_SECONDS")

	setStr(&cfg.Telegram.Token, "ANALYST_TELEGRAM_TOKEN")
	setInt(&cfg.Telegram.PollTimeoutSeconds, "ANALYST_TELEGRAM_POLL_TIMEOUT_SECONDS")

	setInt(&cfg.Server.Port, "ANALYST_SERVER_PORT")

	setStr(&cfg.Redis.Addr, "ANALYST_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ANALYST_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ANALYST_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ANALYST_REDIS_POOL_SIZE")
	setBool(&cfg.Redis.TLSEnabled, "ANALYST_REDIS_TLS_ENABLED")

	setStr(&cfg.Postgres.DSN, "ANALYST_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ANALYST_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ANALYST_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ANALYST_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ANALYST_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ANALYST_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ANALYST_POSTGRES_SSLMODE")
	setBool(&cfg.Postgres.RunMigrations, "ANALYST_POSTGRES_RUN_MIGRATIONS")

	setFloat(&cfg.Reasoning.SameCategoryWeight, "ANALYST_REASONING_SAME_CATEGORY_WEIGHT")
	setFloat(&cfg.Reasoning.SharedTagWeight, "ANALYST_REASONING_SHARED_TAG_WEIGHT")
	setInt(&cfg.Reasoning.ScopeLimit, "ANALYST_REASONING_SCOPE_LIMIT")

	setStr(&cfg.LLM.APIKey, "ANALYST_LLM_API_KEY")
	setStr(&cfg.LLM.BaseURL, "ANALYST_LLM_BASE_URL")
	setStr(&cfg.LLM.Model, "ANALYST_LLM_MODEL")

	setStr(&cfg.Mode, "ANALYST_MODE")
	setStr(&cfg.LogLevel, "ANALYST_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
}
