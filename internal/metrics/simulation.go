package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/horde-arena/internal/game"
)

// SimulationMetrics экспортирует состояние боя в Prometheus.
// Реализует game.Observer и вызывается из игрового цикла.
//
// Метрики:
// * horde_tick_duration_seconds: histogram
// * horde_enemies_alive, horde_scheduler_pending: gauge
// * horde_kills_total, horde_waves_total, horde_projectiles_fired_total,
//   horde_projectile_hits_total, horde_game_overs_total, horde_restarts_total: counter
type SimulationMetrics struct {
	tickDuration prometheus.Histogram
	enemies      prometheus.Gauge
	pending      prometheus.Gauge
	projectiles  prometheus.Gauge
	kills        *prometheus.CounterVec
	waves        prometheus.Counter
	fired        prometheus.Counter
	hits         prometheus.Counter
	gameOvers    prometheus.Counter
	restarts     prometheus.Counter
	lastSurvived prometheus.Gauge
}

// NewSimulationMetrics создаёт метрики и регистрирует их в reg
func NewSimulationMetrics(reg prometheus.Registerer) *SimulationMetrics {
	const ns = "horde"
	m := &SimulationMetrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика симуляции.",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		}),
		enemies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "enemies_alive",
			Help:      "Живые враги на арене.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "scheduler_pending",
			Help:      "Отложенные события в планировщике.",
		}),
		projectiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "projectiles_in_flight",
			Help:      "Снаряды в полёте.",
		}),
		kills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "kills_total",
			Help:      "Убитые враги по источнику урона.",
		}, []string{"source"}),
		waves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "waves_total",
			Help:      "Появившиеся волны.",
		}),
		fired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "projectiles_fired_total",
			Help:      "Выпущенные снаряды.",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "projectile_hits_total",
			Help:      "Попадания снарядов.",
		}),
		gameOvers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "game_overs_total",
			Help:      "Завершённые забеги.",
		}),
		restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "restarts_total",
			Help:      "Перезапуски забега.",
		}),
		lastSurvived: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "last_run_survived_seconds",
			Help:      "Игровое время последнего завершённого забега.",
		}),
	}

	reg.MustRegister(
		m.tickDuration, m.enemies, m.pending, m.projectiles,
		m.kills, m.waves, m.fired, m.hits,
		m.gameOvers, m.restarts, m.lastSurvived,
	)
	return m
}

func (m *SimulationMetrics) EnemyKilled(ev game.KillEvent) {
	m.kills.WithLabelValues(ev.Source).Inc()
}

func (m *SimulationMetrics) WaveSpawned(game.WaveEvent) {
	m.waves.Inc()
}

func (m *SimulationMetrics) GameOver(summary game.RunSummary) {
	m.gameOvers.Inc()
	m.lastSurvived.Set(summary.Survived)
}

func (m *SimulationMetrics) Restarted(game.RestartEvent) {
	m.restarts.Inc()
}

func (m *SimulationMetrics) TickCompleted(stats game.TickStats) {
	m.tickDuration.Observe(stats.Duration.Seconds())
	m.enemies.Set(float64(stats.Enemies))
	m.pending.Set(float64(stats.Pending))
	m.projectiles.Set(float64(stats.Projectiles))
	if stats.Fired > 0 {
		m.fired.Add(float64(stats.Fired))
	}
	if stats.Hits > 0 {
		m.hits.Add(float64(stats.Hits))
	}
}

var _ game.Observer = (*SimulationMetrics)(nil)
