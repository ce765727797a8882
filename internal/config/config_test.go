package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
auction_house:
  api_url: "http://localhost:8080"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8099", cfg.App.HTTPAddr)
	assert.Equal(t, "60s", cfg.Engine.CycleInterval)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, 5, cfg.Engine.PlacementTimeoutSeconds)
	assert.Equal(t, "configs/conditions.yaml", cfg.Engine.ConditionsPath)
	assert.Equal(t, "data/agents.db", cfg.Store.AgentsPath)
	assert.Equal(t, 30, cfg.Store.OutcomeRetentionDays)
	assert.Equal(t, "0 10 4 * * *", cfg.Store.PurgeCron)
	assert.Equal(t, 10, cfg.AuctionHouse.TimeoutSeconds)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
app:
  env: prod
  log_level: warn
  http_addr: ":9000"
engine:
  cycle_interval: "5m"
  workers: 8
  run_immediately: true
store:
  outcome_retention_days: 7
auction_house:
  api_url: "https://auctions.example.com"
  api_token: "tok"
notify:
  telegram:
    enabled: true
    bot_token: "bot"
    chat_id: "chat"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "5m", cfg.Engine.CycleInterval)
	assert.Equal(t, 8, cfg.Engine.Workers)
	assert.True(t, cfg.Engine.RunImmediately)
	assert.Equal(t, 7, cfg.Store.OutcomeRetentionDays)
	assert.Equal(t, "tok", cfg.AuctionHouse.APIToken)
	assert.True(t, cfg.Notify.Telegram.Enabled)
}

func TestLoadRejectsInvalidInterval(t *testing.T) {
	path := writeConfig(t, `
engine:
  cycle_interval: "soon"
auction_house:
  api_url: "http://localhost:8080"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle_interval")
}

func TestLoadRequiresAPIURL(t *testing.T) {
	path := writeConfig(t, `
app:
  env: dev
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_url")
}

func TestLoadTelegramNeedsCredentials(t *testing.T) {
	path := writeConfig(t, `
auction_house:
  api_url: "http://localhost:8080"
notify:
  telegram:
    enabled: true
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = Load("")
	assert.Error(t, err)
}
