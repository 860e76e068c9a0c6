package game

import "time"

// KillEvent враг погиб
type KillEvent struct {
	RunID    string  `json:"run_id"`
	EnemyID  uint64  `json:"enemy_id"`
	Source   string  `json:"source"`
	GameTime float64 `json:"game_time"`
	Kills    int     `json:"kills"`
}

// WaveEvent появилась волна
type WaveEvent struct {
	RunID    string  `json:"run_id"`
	Wave     int     `json:"wave"`
	Enemies  int     `json:"enemies"`
	GameTime float64 `json:"game_time"`
}

// RunSummary итог забега
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Kills     int       `json:"kills"`
	Waves     int       `json:"waves"`
	Survived  float64   `json:"survived"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// RestartEvent забег начат заново
type RestartEvent struct {
	RunID    string  `json:"run_id"`
	GameTime float64 `json:"game_time"`
}

// TickStats статистика одного тика
type TickStats struct {
	Duration    time.Duration
	Delta       float64
	Executed    int // Выполнено отложенных событий
	Pending     int // Осталось в планировщике
	Enemies     int
	Projectiles int
	Fired       int
	Hits        int
}

// Observer получает события симуляции. Вызывается из игрового цикла,
// реализации не должны блокировать.
type Observer interface {
	EnemyKilled(ev KillEvent)
	WaveSpawned(ev WaveEvent)
	GameOver(summary RunSummary)
	Restarted(ev RestartEvent)
	TickCompleted(stats TickStats)
}

// NopObserver игнорирует все события
type NopObserver struct{}

func (NopObserver) EnemyKilled(KillEvent)   {}
func (NopObserver) WaveSpawned(WaveEvent)   {}
func (NopObserver) GameOver(RunSummary)     {}
func (NopObserver) Restarted(RestartEvent)  {}
func (NopObserver) TickCompleted(TickStats) {}

// Observers рассылает события нескольким наблюдателям по порядку
type Observers []Observer

func (o Observers) EnemyKilled(ev KillEvent) {
	for _, obs := range o {
		obs.EnemyKilled(ev)
	}
}

func (o Observers) WaveSpawned(ev WaveEvent) {
	for _, obs := range o {
		obs.WaveSpawned(ev)
	}
}

func (o Observers) GameOver(summary RunSummary) {
	for _, obs := range o {
		obs.GameOver(summary)
	}
}

func (o Observers) Restarted(ev RestartEvent) {
	for _, obs := range o {
		obs.Restarted(ev)
	}
}

func (o Observers) TickCompleted(stats TickStats) {
	for _, obs := range o {
		obs.TickCompleted(stats)
	}
}
