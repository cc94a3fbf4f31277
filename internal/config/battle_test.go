package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBattle_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadBattle(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultBattle(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadBattle_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battle.yaml")
	raw := `
log_level: debug
seed: 42
max_turns: 50
ai:
  item_hp_percent: 0
catalog:
  source: postgres
  database:
    host: db
    port: 6543
simulation:
  encounter: cave
  battles: 10
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := LoadBattle(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 50, cfg.MaxTurns)
	assert.Equal(t, 3, cfg.MaxPromptAttempts, "unset keys keep defaults")
	assert.Equal(t, int32(0), cfg.AI.ItemHPPercent)
	assert.Equal(t, SourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, "postgres://skirmish:skirmish@db:6543/skirmish?sslmode=disable", cfg.Catalog.Database.DSN())
	assert.Equal(t, "cave", cfg.Simulation.Encounter)
	assert.Equal(t, 10, cfg.Simulation.Battles)
	assert.Equal(t, 4, cfg.Simulation.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Simulation.Timeout)
}

func TestLoadBattle_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battle.yaml")
	raw := `
max_prompt_attempts: 0
ai:
  item_hp_percent: 150
catalog:
  source: redis
simulation:
  battles: 0
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := LoadBattle(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_prompt_attempts")
	assert.Contains(t, err.Error(), `unknown catalog.source "redis"`)
	assert.Contains(t, err.Error(), "simulation.battles")
	assert.Contains(t, err.Error(), "ai.item_hp_percent")
}

func TestLoadBattle_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_turns: [1"), 0o644))

	_, err := LoadBattle(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, Path())

	t.Setenv(EnvPath, "/etc/skirmish.yaml")
	assert.Equal(t, "/etc/skirmish.yaml", Path())
}
