package game

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/annel0/horde-arena/internal/entity"
	"github.com/annel0/horde-arena/internal/logging"
	"github.com/annel0/horde-arena/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	NopObserver
	kills    []KillEvent
	waves    []WaveEvent
	overs    []RunSummary
	restarts int
	ticks    int
}

func (r *recorder) EnemyKilled(ev KillEvent) { r.kills = append(r.kills, ev) }
func (r *recorder) WaveSpawned(ev WaveEvent) { r.waves = append(r.waves, ev) }
func (r *recorder) GameOver(s RunSummary)    { r.overs = append(r.overs, s) }
func (r *recorder) Restarted(RestartEvent)   { r.restarts++ }
func (r *recorder) TickCompleted(TickStats)  { r.ticks++ }

func runFor(s *Simulation, seconds, dt float64) {
	for elapsed := 0.0; elapsed < seconds-1e-9; elapsed += dt {
		s.Tick(dt, nil)
	}
}

func TestSimulation_WaveSizes(t *testing.T) {
	rec := &recorder{}
	s := New(DefaultParams(), rec)

	runFor(s, 2.0, 0.05)
	require.Len(t, rec.waves, 1, "Первая волна через секунду после старта")
	assert.Equal(t, 3, rec.waves[0].Enemies)
	assert.Equal(t, 1, rec.waves[0].Wave)
	assert.InDelta(t, 1.0, rec.waves[0].GameTime, 0.051)

	runFor(s, 4.0, 0.05)
	require.Len(t, rec.waves, 2, "Следующая волна через 4 секунды")
	assert.Equal(t, 5, rec.waves[1].Enemies)
	assert.InDelta(t, 5.0, rec.waves[1].GameTime, 0.051)
	assert.Equal(t, 2, s.State().WaveIndex)
}

func TestSimulation_WaveSpawnsInsideWorld(t *testing.T) {
	s := New(DefaultParams(), nil)
	runFor(s, 1.1, 0.05)

	b := s.World().Boundaries()
	require.NotEmpty(t, s.Enemies())
	for _, e := range s.Enemies() {
		assert.True(t, e.Position.X >= b.Left() && e.Position.X <= b.Right(), "Враг %d вне мира по X", e.ID())
		assert.True(t, e.Position.Y >= b.Top() && e.Position.Y <= b.Bottom(), "Враг %d вне мира по Y", e.ID())
	}
}

func TestSimulation_DeathRemovedAfterDelay(t *testing.T) {
	rec := &recorder{}
	s := New(DefaultParams(), rec)
	s.Start()

	enemy := s.SpawnEnemy(vec.Vec2Float{X: 20, Y: 20})
	s.Tick(0.05, nil)

	enemy.TakeDamage(1000, "test")
	killedAt := s.State().GameTime
	require.Len(t, rec.kills, 1)
	assert.Equal(t, enemy.ID(), rec.kills[0].EnemyID)
	assert.Equal(t, 1, s.State().KillCounter)

	contains := func() bool {
		for _, e := range s.Enemies() {
			if e == enemy {
				return true
			}
		}
		return false
	}

	for i := 0; i < 40; i++ {
		s.Tick(0.05, nil)
		if s.State().GameTime < killedAt+entity.DeathRemovalDelay {
			require.True(t, contains(), "Враг удалён раньше задержки (t=%.2f)", s.State().GameTime)
		} else {
			require.False(t, contains(), "Враг не удалён после задержки (t=%.2f)", s.State().GameTime)
		}
	}
	assert.Equal(t, 1, s.State().KillCounter, "Убийство засчитано один раз")
}

func TestSimulation_DeltaClamped(t *testing.T) {
	s := New(DefaultParams(), nil)
	s.Tick(1.0, nil)
	assert.InDelta(t, 0.05, s.State().GameTime, 1e-12)

	s.Tick(-1, nil)
	assert.InDelta(t, 0.05, s.State().GameTime, 1e-12)
}

func TestSimulation_WaveTargetedInSameTick(t *testing.T) {
	s := New(DefaultParams(), nil)

	for i := 0; i < 40 && s.LiveEnemies() == 0; i++ {
		s.Tick(0.05, nil)
	}
	require.Positive(t, s.LiveEnemies(), "Первая волна должна появиться")
	assert.InDelta(t, 1.0, s.State().GameTime, 0.051)

	w := s.Players()[0].Weapons.Weapons()[0]
	assert.NotNil(t, w.Target(), "Враги новой волны получают оружие в тик появления")
	for _, e := range s.Enemies() {
		assert.NotNil(t, e.Target(), "Враг %d выбирает цель в тик появления", e.ID())
	}
}

func TestSimulation_EnemiesChaseUpdatedPlayer(t *testing.T) {
	s := New(DefaultParams(), nil)
	s.Start()

	player := s.Players()[0]
	start := player.Position
	enemy := s.SpawnEnemy(vec.Vec2Float{X: start.X - 5, Y: start.Y - 300})
	require.Equal(t, vec.Right, enemy.Direction)

	// До шага игрок чуть впереди по курсу врага, после шага влево он позади
	s.Tick(0.05, []entity.InputState{{Left: true}})

	require.InDelta(t, start.X-15, player.Position.X, 1e-9, "Игрок сдвинулся до хода врагов")
	assert.InDelta(t, vec.Down.X, enemy.Direction.X, 1e-9, "Курс строится от новой позиции игрока")
	assert.InDelta(t, vec.Down.Y, enemy.Direction.Y, 1e-9)
}

func TestSimulation_GameOverAndRestart(t *testing.T) {
	rec := &recorder{}
	s := New(DefaultParams(), rec)
	runFor(s, 1.5, 0.05)

	player := s.Players()[0]
	player.TakeDamage(1000, "test")
	s.Tick(0.05, nil)

	state := s.State()
	require.True(t, state.GameOver)
	require.Len(t, rec.overs, 1)
	assert.Equal(t, 0, s.Scheduler().Len(), "Планировщик очищен при конце игры")
	assert.Equal(t, 1, rec.overs[0].Waves)
	firstRun := rec.overs[0].RunID
	require.NotEmpty(t, firstRun)
	assert.Equal(t, state.RunID, firstRun)
	assert.Equal(t, firstRun, rec.waves[0].RunID, "события забега несут его идентификатор")

	frozen := state.GameTime
	s.Tick(0.05, []entity.InputState{{Right: true}})
	assert.Equal(t, frozen, s.State().GameTime, "После конца игры время стоит")

	s.Tick(0.05, []entity.InputState{{Start: true}})

	state = s.State()
	assert.False(t, state.GameOver)
	assert.Equal(t, 0.0, state.GameTime)
	assert.Equal(t, 0, state.KillCounter)
	assert.Equal(t, 0, state.WaveIndex)
	assert.Empty(t, s.Enemies())
	assert.Equal(t, 1, rec.restarts)
	assert.NotEqual(t, firstRun, state.RunID, "рестарт открывает новый забег")
	assert.True(t, player.Alive())
	assert.Equal(t, 100, player.Health)
	assert.Equal(t, player.Spawn, player.Position)

	next, ok := s.Scheduler().NextFireTime()
	require.True(t, ok)
	assert.Equal(t, 2.0, next, "После рестарта первая волна через 2 секунды")
	assert.Equal(t, 1, s.Scheduler().Len())
}

func TestSimulation_SetParamsAppliedOnRestart(t *testing.T) {
	s := New(DefaultParams(), nil)
	params := DefaultParams()
	params.Players = 2
	s.SetParams(params)

	assert.Len(t, s.Players(), 1, "Параметры не меняются до рестарта")

	s.Restart()
	require.Len(t, s.Players(), 2)
	assert.NotEqual(t, s.Players()[0].Position, s.Players()[1].Position)
	assert.Equal(t, 1, s.Players()[1].Index)
}

func TestSimulation_Snapshot(t *testing.T) {
	s := New(DefaultParams(), nil)
	s.SpawnEnemy(vec.Vec2Float{X: 100, Y: 100})
	s.Tick(0.016, nil)

	snap := s.Snapshot()
	require.Len(t, snap.Players, 1)
	assert.Len(t, snap.Weapons, 2)
	require.Len(t, snap.Enemies, 1)
	assert.Equal(t, KindEnemy, snap.Enemies[0].Kind)
	assert.Equal(t, 100, snap.HUD.Players[0].Health)
	assert.Equal(t, 1, snap.HUD.Enemies)
	assert.Equal(t, 1140.0, snap.Bounds.Width)
	assert.Equal(t, uint64(1), snap.Tick)
}

func TestRunner_InputAndStep(t *testing.T) {
	s := New(DefaultParams(), nil)
	r := NewRunner(s, 60)
	start := s.Players()[0].Position

	assert.True(t, r.SetInput(0, entity.InputState{Right: true}))
	assert.False(t, r.SetInput(3, entity.InputState{}), "Неизвестный игрок")

	r.Step(0.05)

	snap := r.Snapshot()
	assert.InDelta(t, start.X+15, snap.Players[0].X, 1e-9)
	assert.Equal(t, "right", snap.Players[0].Facing)
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	s := New(DefaultParams(), nil)
	r := NewRunner(s, 120)
	var buf bytes.Buffer
	r.log = logging.NewWriterLogger("runner", &buf, logging.INFO)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, r.State().Started)
	assert.Contains(t, buf.String(), "Игровой цикл остановлен")
}
