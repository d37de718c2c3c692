package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2024-02-15-preview", cfg.AzureOpenAI.APIVersion)
	assert.Equal(t, 45, cfg.AzureOpenAI.TimeoutSecs)
	assert.Equal(t, "data", cfg.Store.DataDir)
	assert.Equal(t, "businesses.csv", cfg.Store.Listing)
	assert.Equal(t, "sales_persons.csv", cfg.Store.Roster)
	assert.Equal(t, "leadops.db", cfg.Store.HistoryDB)
	assert.Equal(t, "SHV Energy", cfg.Company.Name)
	assert.Equal(t, "Off-Grid Solutions", cfg.Company.Offering)
	assert.Equal(t, "Off-Grid Solutions", cfg.Company.ExpertiseNeeded)
	assert.Equal(t, "it", cfg.Places.Language)
	assert.InDelta(t, 5.0, cfg.Places.RatePerSec, 0.001)
	assert.Equal(t, 3, cfg.Places.MaxPages)
	assert.Equal(t, "https://api.electricitymap.org/v3", cfg.Carbon.BaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
azure_openai:
  endpoint: https://example.openai.azure.com
  deployment: gpt-4o
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.openai.azure.com", cfg.AzureOpenAI.Endpoint)
	assert.Equal(t, "gpt-4o", cfg.AzureOpenAI.Deployment)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "SHV Energy", cfg.Company.Name)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
log:
  level: debug
company:
  name: Acme
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADOPS_LOG_LEVEL", "warn")
	t.Setenv("LEADOPS_COMPANY_NAME", "SHV Energy")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "SHV Energy", cfg.Company.Name)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("LEADOPS_SERVER_PORT", "3000")
	t.Setenv("LEADOPS_STORE_DATA_DIR", "/var/lib/leadops")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "/var/lib/leadops", cfg.Store.DataDir)
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

func enrichReady() *Config {
	cfg := &Config{}
	cfg.AzureOpenAI.Endpoint = "https://example.openai.azure.com"
	cfg.AzureOpenAI.Deployment = "gpt-4o"
	cfg.AzureOpenAI.Key = "secret"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateEnrich_AllPresent(t *testing.T) {
	assert.NoError(t, enrichReady().Validate("enrich"))
}

func TestValidateEnrich_MissingFields(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate("enrich")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "azure_openai.endpoint is required")
	assert.Contains(t, err.Error(), "azure_openai.deployment is required")
	assert.Contains(t, err.Error(), "azure_openai.key is required")
}

func TestValidateDiscover(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("discover")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "places.key is required")

	cfg.Places.Key = "key"
	assert.NoError(t, cfg.Validate("discover"))
}

func TestValidateCarbon(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("carbon")
	assert.Error(t, err)

	cfg.Carbon.Key = "key"
	assert.NoError(t, cfg.Validate("carbon"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := enrichReady()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateLocal(t *testing.T) {
	assert.NoError(t, (&Config{}).Validate("local"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := (&Config{}).Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
