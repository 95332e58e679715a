package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://stoltzen.no", cfg.Source.BaseURL)
	assert.Equal(t, 10, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout())
	assert.Contains(t, cfg.Fetch.UserAgent, "stoltzen-cli")
	assert.Equal(t, 2048, cfg.Fetch.MaxBodyKB)
	assert.Equal(t, int64(2<<20), cfg.Fetch.MaxBodyBytes())
	assert.Zero(t, cfg.Fetch.RatePerSec)
	assert.Equal(t, 10, cfg.Enrich.Concurrency)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
source:
  base_url: http://localhost:8080
fetch:
  timeout_secs: 3
  rate_per_sec: 2.5
enrich:
  concurrency: 4
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Source.BaseURL)
	assert.Equal(t, 3, cfg.Fetch.TimeoutSecs)
	assert.InDelta(t, 2.5, cfg.Fetch.RatePerSec, 0.001)
	assert.Equal(t, 4, cfg.Enrich.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 2048, cfg.Fetch.MaxBodyKB)
	assert.Equal(t, "json", cfg.Report.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
enrich:
  concurrency: 4
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("STOLTZEN_ENRICH_CONCURRENCY", "2")
	t.Setenv("STOLTZEN_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, 2, cfg.Enrich.Concurrency)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("STOLTZEN_SOURCE_BASE_URL", "http://example.test")
	t.Setenv("STOLTZEN_REPORT_FORMAT", "csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://example.test", cfg.Source.BaseURL)
	assert.Equal(t, "csv", cfg.Report.Format)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Source.BaseURL = "http://stoltzen.no"
	cfg.Fetch.TimeoutSecs = 10
	cfg.Fetch.MaxBodyKB = 2048
	cfg.Enrich.Concurrency = 10
	cfg.Report.Format = "json"
	cfg.Log.Format = "json"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate())
}

func TestValidate_ConcurrencyAboveCapIsAllowed(t *testing.T) {
	cfg := validDefaults()
	cfg.Enrich.Concurrency = 50
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Problems(t *testing.T) {
	cfg := validDefaults()
	cfg.Source.BaseURL = ""
	cfg.Fetch.TimeoutSecs = 0
	cfg.Fetch.RatePerSec = -1
	cfg.Enrich.Concurrency = 0
	cfg.Report.Format = "yaml"
	cfg.Log.Format = "text"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.base_url is required")
	assert.Contains(t, err.Error(), "fetch.timeout_secs must be > 0")
	assert.Contains(t, err.Error(), "fetch.rate_per_sec must be >= 0")
	assert.Contains(t, err.Error(), "enrich.concurrency must be >= 1")
	assert.Contains(t, err.Error(), "report.format")
	assert.Contains(t, err.Error(), "log.format")
}
