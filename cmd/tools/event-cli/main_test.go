package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-arena/internal/eventbus"
	"github.com/annel0/horde-arena/internal/game"
)

func TestParseStringList(t *testing.T) {
	assert.Nil(t, parseStringList(""))
	assert.Equal(t, []string{"EnemyKilled", "GameOver"}, parseStringList(" EnemyKilled, ,GameOver "))
}

func TestFormatEvent(t *testing.T) {
	ev, err := eventbus.NewEnvelope("arena-1", eventbus.TypeGameOver, eventbus.PriorityCritical, game.RunSummary{
		RunID:    "run-1",
		Kills:    12,
		Waves:    3,
		Survived: 42.5,
	})
	require.NoError(t, err)
	ev.CorrelationID = "run-1"
	ev.Timestamp = time.Date(2024, 1, 1, 10, 20, 30, 0, time.UTC)

	out := formatEvent(ev)
	assert.Contains(t, out, "[10:20:30] arena-1 [GameOver] run=run-1")
	assert.Contains(t, out, "Убито: 12 Волн: 3 Время: 42.5с")
}

func TestFormatEventWave(t *testing.T) {
	ev, err := eventbus.NewEnvelope("arena-1", eventbus.TypeWaveSpawned, eventbus.PriorityNormal, game.WaveEvent{Wave: 2, Enemies: 5})
	require.NoError(t, err)

	assert.Contains(t, formatEvent(ev), "Волна: 2 Врагов: 5", "детали волны должны быть в выводе")
}
