package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-arena/internal/weapon"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	params, err := cfg.GameParams()
	require.NoError(t, err)
	assert.Equal(t, 2, params.Player.WeaponCount)
	assert.Equal(t, weapon.DaggerSpec(), params.Player.Weapon, "Кинжал из конфига совпадает со встроенным")
	assert.Equal(t, 0.05, params.MaxDeltaTime)
}

func TestParse_OverridesDefaults(t *testing.T) {
	data := []byte(`
simulation:
  fps: 30
  seed: 7
enemy:
  speed: 200
weapons:
  bow:
    kind: ranged
    damage: 5
    range: 0
    attack_duration: 0.5
    cooldown_duration: 0.3
    max_targets: 2
    width: 16
    height: 4
player:
  starting_weapon: bow
server:
  stream_interval: 250ms
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Simulation.FPS)
	assert.Equal(t, int64(7), cfg.Simulation.Seed)
	assert.Equal(t, 200.0, cfg.Enemy.Speed)
	assert.Equal(t, 30, cfg.Enemy.Health, "Незаданные поля берутся по умолчанию")
	assert.Equal(t, 250*time.Millisecond, cfg.Server.StreamInterval)
	assert.Contains(t, cfg.Weapons, "dagger", "Встроенное оружие сохраняется")

	spec, err := cfg.WeaponSpec("bow")
	require.NoError(t, err)
	assert.Nil(t, spec.Range, "Нулевая дальность означает бесконечную")
	assert.Equal(t, weapon.KindRanged, spec.Kind)
	assert.Equal(t, weapon.DefaultProjectileSpeed, spec.ProjectileSpeed)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"нулевой fps", func(c *Config) { c.Simulation.FPS = 0 }},
		{"неизвестное оружие", func(c *Config) { c.Player.StartingWeapon = "axe" }},
		{"неизвестный бэкенд", func(c *Config) { c.Storage.Backend = "mongo" }},
		{"неизвестный кеш", func(c *Config) { c.Storage.CacheBackend = "memcached" }},
		{"нулевая скорость атак", func(c *Config) { c.Enemy.MeleeAttackSpeed = 0 }},
		{"форма попадания", func(c *Config) { c.Player.HitShape = "circle" }},
		{"max_targets", func(c *Config) {
			w := c.Weapons["dagger"]
			w.MaxTargets = 0
			c.Weapons["dagger"] = w
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_EnvFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "horde.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  players: 2\n"), 0644))

	t.Setenv(EnvConfigPath, path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Simulation.Players)

	t.Setenv(EnvConfigPath, "")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Simulation.Players, "Без файла используются значения по умолчанию")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestGetPortWithEnvFallback(t *testing.T) {
	s := ServerConfig{}
	t.Setenv("HORDE_REST_PORT", "9000")
	assert.Equal(t, 9000, s.GetRESTPort())

	s.RESTPort = 8123
	assert.Equal(t, 8123, s.GetRESTPort(), "Порт из конфига приоритетнее переменной окружения")

	t.Setenv("HORDE_METRICS_PORT", "not-a-port")
	assert.Equal(t, 2112, s.GetMetricsPort())
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "horde.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  seed: 1\n"), 0644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	tmp := filepath.Join(dir, "horde.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("simulation:\n  seed: 42\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case cfg := <-w.Updates:
		require.NotNil(t, cfg)
		assert.Equal(t, int64(42), cfg.Simulation.Seed)
	case <-time.After(5 * time.Second):
		t.Fatal("Обновление конфига не получено")
	}
}
