package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "serve", cfg.Mode)
	assert.Equal(t, 1.0, cfg.Reasoning.SameCategoryWeight)
	assert.Equal(t, 0.5, cfg.Reasoning.SharedTagWeight)
	assert.Equal(t, 10, cfg.Query.DefaultLimit)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "telegram"

[retrieval]
base_url = "http://data.internal:5000"

[telegram]
token = "from-file"

[reasoning]
shared_tag_weight = 0.25
`), 0o600))

	t.Setenv("ANALYST_TELEGRAM_TOKEN", "from-env")
	t.Setenv("ANALYST_REASONING_SCOPE_LIMIT", "40")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "telegram", cfg.Mode)
	assert.Equal(t, "http://data.internal:5000", cfg.Retrieval.BaseURL)
	assert.Equal(t, "from-env", cfg.Telegram.Token, "environment wins over file")
	assert.Equal(t, 0.25, cfg.Reasoning.SharedTagWeight)
	assert.Equal(t, 40, cfg.Reasoning.ScopeLimit)
	require.NoError(t, cfg.Validate())
}

func TestValidate_StartupFatalProblems(t *testing.T) {
	base := func() Config { return Defaults() }

	cfg := base()
	cfg.Mode = "dance"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Retrieval.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Retrieval.BaseURL = "data.internal:5000"
	assert.Error(t, cfg.Validate(), "scheme-less endpoint must be rejected")

	cfg = base()
	cfg.Mode = "telegram"
	cfg.Telegram.Token = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Reasoning.SharedTagWeight = -1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Query.MaxLimit = 1
	assert.Error(t, cfg.Validate())
}
