// Package game связывает участников боя в покадровую симуляцию: волны,
// удаление павших, конец игры и рестарт.
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/horde-arena/internal/entity"
	"github.com/annel0/horde-arena/internal/scheduler"
	"github.com/annel0/horde-arena/internal/vec"
	"github.com/annel0/horde-arena/internal/weapon"
	"github.com/annel0/horde-arena/internal/world"
)

// State счётчики забега
type State struct {
	RunID       string  `json:"run_id"`
	GameTime    float64 `json:"game_time"`
	KillCounter int     `json:"kills"`
	WaveIndex   int     `json:"wave"`
	GameOver    bool    `json:"game_over"`
	Started     bool    `json:"started"`
	Tick        uint64  `json:"tick"`
}

// Simulation однопоточная симуляция боя. Все методы вызываются из одного
// потока; для доступа из нескольких горутин используется Runner.
type Simulation struct {
	params   Params
	pending  *Params // Новые параметры, применяются при рестарте
	world    *world.World
	sched    *scheduler.EventScheduler
	state    State
	players  []*entity.Player
	enemies  []*entity.Enemy
	nextID   uint64
	rng      *rand.Rand
	observer Observer
	hooks    *simHooks
	clock    func() time.Time
	newRunID func() string

	startedAt time.Time
}

// New создаёт симуляцию. observer может быть nil.
func New(params Params, observer Observer) *Simulation {
	if observer == nil {
		observer = NopObserver{}
	}
	s := &Simulation{
		params:   params,
		world:    world.New(params.ScreenWidth, params.ScreenHeight),
		sched:    scheduler.New(),
		rng:      rand.New(rand.NewSource(params.Seed)),
		observer: observer,
		clock:    time.Now,
		newRunID: uuid.NewString,
	}
	s.hooks = &simHooks{s: s}
	s.createPlayers()
	return s
}

// Start планирует первую волну. Повторный вызов ничего не делает.
func (s *Simulation) Start() {
	if s.state.Started {
		return
	}
	s.state.Started = true
	s.state.RunID = s.newRunID()
	s.startedAt = s.clock()
	s.scheduleWave(s.state.GameTime + s.params.Wave.FirstDelay)
}

// Tick продвигает симуляцию на dt секунд. inputs[i]: ввод игрока с индексом i.
func (s *Simulation) Tick(dt float64, inputs []entity.InputState) {
	if s.state.GameOver {
		if startPressed(inputs) {
			s.Restart()
		}
		return
	}
	if !s.state.Started {
		s.Start()
	}

	began := time.Now()
	dt = clampDelta(dt, s.params.MaxDeltaTime)
	s.state.Tick++
	s.state.GameTime += dt

	executed := s.sched.RunPending(s.state.GameTime)
	s.compactEnemies()

	for i, p := range s.players {
		var in entity.InputState
		if i < len(inputs) {
			in = inputs[i]
		}
		p.Update(s.world, dt, in)
	}

	for _, e := range s.enemies {
		e.Update(s.world, dt, s.players)
	}

	targets := s.targets()
	fired, hits := 0, 0
	for _, p := range s.players {
		if !p.Alive() {
			continue
		}
		f, h := p.Weapons.Update(dt, targets)
		fired += f
		hits += h
	}

	if !s.anyPlayerAlive() {
		s.gameOver()
	}

	s.observer.TickCompleted(TickStats{
		Duration:    time.Since(began),
		Delta:       dt,
		Executed:    executed,
		Pending:     s.sched.Len(),
		Enemies:     s.LiveEnemies(),
		Projectiles: s.projectileCount(),
		Fired:       fired,
		Hits:        hits,
	})
}

// Restart начинает забег заново: игроки восстановлены, враги убраны,
// планировщик пересоздан, первая волна через RestartDelay.
func (s *Simulation) Restart() {
	if s.pending != nil {
		s.applyParams(*s.pending)
		s.pending = nil
	}

	s.state = State{Started: true, RunID: s.newRunID()}
	s.sched = scheduler.New()
	s.enemies = nil
	s.startedAt = s.clock()

	for i, p := range s.players {
		p.Spawn = s.spawnPoint(i)
		p.Reset()
	}

	s.scheduleWave(s.state.GameTime + s.params.Wave.RestartDelay)
	s.observer.Restarted(RestartEvent{RunID: s.state.RunID, GameTime: s.state.GameTime})
}

// SetParams сохраняет новые параметры; они вступят в силу при рестарте
func (s *Simulation) SetParams(params Params) {
	s.pending = &params
}

// Params возвращает действующие параметры
func (s *Simulation) Params() Params { return s.params }

// Resize подстраивает мир под новый размер экрана
func (s *Simulation) Resize(screenWidth, screenHeight int) {
	s.world.Resize(screenWidth, screenHeight)
}

// World возвращает мир
func (s *Simulation) World() *world.World { return s.world }

// State возвращает копию счётчиков забега
func (s *Simulation) State() State { return s.state }

// Players возвращает игроков
func (s *Simulation) Players() []*entity.Player { return s.players }

// Enemies возвращает врагов, включая павших, ещё не убранных из мира
func (s *Simulation) Enemies() []*entity.Enemy { return s.enemies }

// Scheduler возвращает текущий планировщик
func (s *Simulation) Scheduler() *scheduler.EventScheduler { return s.sched }

// LiveEnemies возвращает число живых врагов
func (s *Simulation) LiveEnemies() int {
	n := 0
	for _, e := range s.enemies {
		if e.Alive() {
			n++
		}
	}
	return n
}

// SpawnEnemy добавляет врага в указанную точку
func (s *Simulation) SpawnEnemy(pos vec.Vec2Float) *entity.Enemy {
	e := entity.NewEnemy(s.newID(), pos, s.params.Enemy, s.hooks)
	s.enemies = append(s.enemies, e)
	return e
}

func (s *Simulation) createPlayers() {
	count := max(s.params.Players, 1)
	s.players = make([]*entity.Player, 0, count)
	for i := 0; i < count; i++ {
		s.players = append(s.players, entity.NewPlayer(s.newID(), i, s.spawnPoint(i), s.params.Player))
	}
}

func (s *Simulation) applyParams(params Params) {
	s.params = params
	s.world.Resize(params.ScreenWidth, params.ScreenHeight)
	s.rng = rand.New(rand.NewSource(params.Seed))
	s.createPlayers()
}

// spawnPoint игроки появляются в центре мира, разнесённые по горизонтали
func (s *Simulation) spawnPoint(index int) vec.Vec2Float {
	center := s.world.Center()
	count := max(s.params.Players, 1)
	shift := (float64(index) - float64(count-1)/2) * s.params.PlayerSpread
	return s.world.Clamp(vec.Vec2Float{X: center.X + shift, Y: center.Y}, s.params.Player.Size)
}

func (s *Simulation) newID() uint64 {
	s.nextID++
	return s.nextID
}

// compactEnemies убирает врагов, у которых истекла задержка после смерти.
// Выполняется отдельным проходом после обработки событий.
func (s *Simulation) compactEnemies() {
	kept := s.enemies[:0]
	for _, e := range s.enemies {
		if !e.MarkedForRemoval() {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(s.enemies); i++ {
		s.enemies[i] = nil
	}
	s.enemies = kept
}

func (s *Simulation) targets() []weapon.Target {
	targets := make([]weapon.Target, len(s.enemies))
	for i, e := range s.enemies {
		targets[i] = e
	}
	return targets
}

func (s *Simulation) projectileCount() int {
	n := 0
	for _, p := range s.players {
		n += p.Weapons.ProjectileCount()
	}
	return n
}

func (s *Simulation) anyPlayerAlive() bool {
	for _, p := range s.players {
		if p.Alive() {
			return true
		}
	}
	return false
}

// gameOver останавливает забег: планировщик очищается, время замирает
func (s *Simulation) gameOver() {
	s.state.GameOver = true
	s.sched.Clear()
	s.observer.GameOver(RunSummary{
		RunID:     s.state.RunID,
		Kills:     s.state.KillCounter,
		Waves:     s.state.WaveIndex,
		Survived:  s.state.GameTime,
		StartedAt: s.startedAt,
		EndedAt:   s.clock(),
	})
}

func clampDelta(dt, limit float64) float64 {
	if dt < 0 {
		return 0
	}
	if limit > 0 && dt > limit {
		return limit
	}
	return dt
}

func startPressed(inputs []entity.InputState) bool {
	for _, in := range inputs {
		if in.Start {
			return true
		}
	}
	return false
}

// simHooks связывает врагов с симуляцией без владения ею
type simHooks struct {
	s *Simulation
}

func (h *simHooks) Now() float64 { return h.s.state.GameTime }

func (h *simHooks) Schedule(fireTime float64, fn func()) {
	h.s.sched.Schedule(fireTime, fn)
}

func (h *simHooks) EnemyKilled(e *entity.Enemy, source string) {
	h.s.state.KillCounter++
	h.s.observer.EnemyKilled(KillEvent{
		RunID:    h.s.state.RunID,
		EnemyID:  e.ID(),
		Source:   source,
		GameTime: h.s.state.GameTime,
		Kills:    h.s.state.KillCounter,
	})
}
