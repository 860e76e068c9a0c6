package game

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/horde-arena/internal/entity"
	"github.com/annel0/horde-arena/internal/logging"
)

// Runner владеет единственной горутиной, продвигающей симуляцию, и
// защищает её мьютексом. Снимки отдаются копиями, ввод копится до
// следующего тика.
type Runner struct {
	mu       sync.Mutex
	sim      *Simulation
	fps      int
	inputs   []entity.InputState
	snapshot Snapshot
	running  bool
	log      *logging.Logger // nil: журнал компонента runner
}

// NewRunner создаёт цикл с частотой fps тиков в секунду
func NewRunner(sim *Simulation, fps int) *Runner {
	if fps <= 0 {
		fps = 60
	}
	r := &Runner{
		sim:    sim,
		fps:    fps,
		inputs: make([]entity.InputState, len(sim.Players())),
	}
	r.snapshot = sim.Snapshot()
	return r
}

// Run крутит игровой цикл до отмены контекста
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.sim.Start()
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	ticker := time.NewTicker(time.Second / time.Duration(r.fps))
	defer ticker.Stop()

	logger := r.log
	if logger == nil {
		logger = logging.GetRunnerLogger()
	}
	logger.Info("🎮 Игровой цикл запущен (%d FPS)", r.fps)

	lastTick := time.Now()
	for {
		select {
		case <-ctx.Done():
			logger.Info("🛑 Игровой цикл остановлен")
			return ctx.Err()
		case tickTime := <-ticker.C:
			// Вычисляем дельту времени между тиками
			dt := tickTime.Sub(lastTick).Seconds()
			lastTick = tickTime
			r.Step(dt)
		}
	}
}

// Step выполняет один тик с накопленным вводом
func (r *Runner) Step(dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sim.Tick(dt, r.inputs)

	// Start срабатывает один раз на нажатие
	for i := range r.inputs {
		r.inputs[i].Start = false
	}
	if len(r.inputs) != len(r.sim.Players()) {
		r.inputs = make([]entity.InputState, len(r.sim.Players()))
	}
	r.snapshot = r.sim.Snapshot()
}

// SetInput задаёт ввод игрока. Нажатие Start сохраняется до ближайшего тика.
func (r *Runner) SetInput(player int, in entity.InputState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if player < 0 || player >= len(r.inputs) {
		return false
	}
	in.Start = in.Start || r.inputs[player].Start
	r.inputs[player] = in
	return true
}

// Restart перезапускает забег
func (r *Runner) Restart() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sim.Restart()
	r.inputs = make([]entity.InputState, len(r.sim.Players()))
	r.snapshot = r.sim.Snapshot()
}

// Snapshot возвращает снимок последнего тика
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

// HUD возвращает данные интерфейса последнего тика
func (r *Runner) HUD() HUD {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot.HUD
}

// State возвращает счётчики забега
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sim.State()
}

// SetParams передаёт новые параметры симуляции; применяются при рестарте
func (r *Runner) SetParams(params Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sim.SetParams(params)
}

// Do выполняет fn под блокировкой цикла
func (r *Runner) Do(fn func(sim *Simulation)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.sim)
	r.snapshot = r.sim.Snapshot()
}

// FPS возвращает частоту тиков
func (r *Runner) FPS() int { return r.fps }
