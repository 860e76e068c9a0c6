package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-arena/internal/game"
)

func TestSimulationMetrics_Events(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSimulationMetrics(reg)

	m.EnemyKilled(game.KillEvent{Source: "Dagger"})
	m.EnemyKilled(game.KillEvent{Source: "Dagger"})
	m.EnemyKilled(game.KillEvent{Source: "Bow"})
	m.WaveSpawned(game.WaveEvent{Wave: 1})
	m.GameOver(game.RunSummary{Survived: 12.5})
	m.Restarted(game.RestartEvent{RunID: "r2"})
	m.TickCompleted(game.TickStats{
		Duration:    time.Millisecond,
		Enemies:     4,
		Pending:     2,
		Projectiles: 3,
		Fired:       2,
		Hits:        1,
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.kills.WithLabelValues("Dagger")), "убийства кинжалом")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.kills.WithLabelValues("Bow")), "убийства луком")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.waves))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gameOvers))
	assert.Equal(t, 12.5, testutil.ToFloat64(m.lastSurvived))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.restarts))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.enemies))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pending))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.projectiles))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.fired))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits))

	count, err := testutil.GatherAndCount(reg, "horde_tick_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSimulationMetrics_WithSimulation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSimulationMetrics(reg)

	sim := game.New(game.DefaultParams(), m)
	sim.Start()
	for i := 0; i < 30; i++ {
		sim.Tick(0.05, nil)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.waves), "первая волна появляется через секунду")
	assert.Equal(t, float64(sim.LiveEnemies()), testutil.ToFloat64(m.enemies))
	assert.Equal(t, float64(sim.Scheduler().Len()), testutil.ToFloat64(m.pending))
}

func TestSimulationMetrics_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewSimulationMetrics(reg)
	assert.Panics(t, func() { NewSimulationMetrics(reg) }, "повторная регистрация в том же реестре")
}
