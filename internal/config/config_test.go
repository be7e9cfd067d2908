package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"API_KEY", "GEMINI_API_KEY", "ADVISOR_AI_BASE_URL", "ADVISOR_AI_MODEL", "COINGECKO_BASE_URL", "ADVISOR_LANGUAGE", "ADVISOR_DB_PATH"} {
		t.Setenv(k, "")
	}
}

func TestLoadCreatesTemplatesAndAppliesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "config.toml"))
	assert.FileExists(t, filepath.Join(dir, "credentials.toml"))

	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.Market.BaseURL)
	assert.Equal(t, 7*time.Minute, cfg.Scheduler.DataRefreshInterval)
	assert.Equal(t, 2*time.Hour, cfg.Scheduler.AdviceRefreshInterval)
	assert.Equal(t, 90*time.Second, cfg.Scheduler.CooldownDuration)
	assert.Equal(t, 700*time.Millisecond, cfg.Scheduler.DebounceQuietPeriod)
	assert.Equal(t, 7, cfg.Market.SuggestionLimit)
	assert.False(t, cfg.HasAIKey())
}

func TestLoadReadsFileValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `
[scheduler]
cooldown_duration = "30s"
debounce_quiet_period = "250ms"

[ui]
language = "en"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.toml"), []byte("[gemini]\napi_key = \"file-key\"\n"), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Scheduler.CooldownDuration)
	assert.Equal(t, 250*time.Millisecond, cfg.Scheduler.DebounceQuietPeriod)
	assert.Equal(t, 7*time.Minute, cfg.Scheduler.DataRefreshInterval)
	assert.Equal(t, "en", cfg.UI.Language)
	assert.Equal(t, "file-key", cfg.Credentials.Gemini.APIKey)
}

func TestEnvOverridesWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "generic")
	t.Setenv("GEMINI_API_KEY", "gemini")
	t.Setenv("COINGECKO_BASE_URL", "http://localhost:9999")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Credentials.Gemini.APIKey)
	assert.Equal(t, "http://localhost:9999", cfg.Market.BaseURL)
	assert.True(t, cfg.HasAIKey())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad language", func(c *Config) { c.UI.Language = "fr" }, true},
		{"bad base url", func(c *Config) { c.Market.BaseURL = "ftp://x" }, true},
		{"short cooldown", func(c *Config) { c.Scheduler.CooldownDuration = 0 }, true},
		{"webhook without url", func(c *Config) { c.Notifications.Webhook.Enabled = true }, true},
		{"suggestion limit", func(c *Config) { c.Market.SuggestionLimit = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
