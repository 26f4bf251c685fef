package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DASHBOARD_CONFIG", "PORT", "ENVIRONMENT", "LOG_LEVEL", "OFFLINE_MODE", "PERIODS",
		"DEFAULT_PERIOD", "DATA_SOURCE", "WORKBOOK_DIR", "WAREHOUSE_DSN", "LLM_PROVIDER",
		"LLM_MODEL", "LLM_GATEWAY_URL", "LLM_API_KEY", "GEMINI_API_KEY", "USE_MOCK_LLM",
		"CHUNK_THRESHOLD", "CHUNK_SIZE", "PACK_MAX_ROWS", "REFLOW_BULLETS", "SESSION_CAPACITY",
	} {
		t.Setenv(k, "")
	}
	// godotenv reads .env from the working directory; keep tests hermetic.
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, []string{"March", "May"}, cfg.Periods)
	assert.Equal(t, "March", cfg.DefaultPeriod)
	assert.Equal(t, 300, cfg.Insights.ChunkThreshold)
	assert.False(t, cfg.Offline)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9090")
	t.Setenv("PERIODS", "Jan, Feb ,Mar")
	t.Setenv("DEFAULT_PERIOD", "Feb")
	t.Setenv("OFFLINE_MODE", "true")
	t.Setenv("GEMINI_API_KEY", "k-123")
	t.Setenv("USE_MOCK_LLM", "true")
	t.Setenv("CHUNK_THRESHOLD", "50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, []string{"Jan", "Feb", "Mar"}, cfg.Periods)
	assert.True(t, cfg.Offline)
	assert.Equal(t, "k-123", cfg.LLM.APIKey)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, 50, cfg.Insights.ChunkThreshold)
}

func TestLoadTOMLFile(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), "dashboard.toml")
	body := `
periods = ["April", "June"]
default_period = "June"

[data]
source = "none"

[insights]
chunk_threshold = 120
chunk_size = 40
`
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	t.Setenv("DASHBOARD_CONFIG", p)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"April", "June"}, cfg.Periods)
	assert.Equal(t, "June", cfg.DefaultPeriod)
	assert.Equal(t, "none", cfg.Data.Source)
	assert.Equal(t, 120, cfg.Insights.ChunkThreshold)
	assert.Equal(t, 40, cfg.Insights.ChunkSize)
	assert.Equal(t, 500, cfg.Insights.PackMaxRows)
}

func TestValidateRejectsUnknownDefaultPeriod(t *testing.T) {
	cfg := Default()
	cfg.DefaultPeriod = "December"
	assert.Error(t, cfg.Validate())
}

func TestLoadRejectsBadInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHUNK_SIZE", "many")
	_, err := Load()
	assert.Error(t, err)
}
