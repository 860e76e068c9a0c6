package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/horde-arena/internal/game"
	"github.com/annel0/horde-arena/internal/logging"
)

// GamePublisher переводит события симуляции в Envelope и публикует их в шину
// из отдельной горутины. CorrelationID события равен идентификатору забега.
type GamePublisher struct {
	game.NopObserver

	bus     EventBus
	source  string
	queue   chan *Envelope
	dropped uint64
	lost    uint64 // Отброшенные критичные события
	timeout time.Duration

	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewGamePublisher создаёт и запускает публикатор с очередью capacity
func NewGamePublisher(bus EventBus, source string, capacity int) *GamePublisher {
	if capacity <= 0 {
		capacity = 256
	}
	p := &GamePublisher{
		bus:     bus,
		source:  source,
		queue:   make(chan *Envelope, capacity),
		timeout: 2 * time.Second,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

// Dropped возвращает число событий, не поместившихся в очередь
func (p *GamePublisher) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

// DroppedCritical возвращает число отброшенных событий с PriorityCritical
func (p *GamePublisher) DroppedCritical() uint64 {
	return atomic.LoadUint64(&p.lost)
}

func (p *GamePublisher) EnemyKilled(ev game.KillEvent) {
	p.enqueue(TypeEnemyKilled, PriorityLow, ev.RunID, ev)
}

func (p *GamePublisher) WaveSpawned(ev game.WaveEvent) {
	p.enqueue(TypeWaveSpawned, PriorityNormal, ev.RunID, ev)
}

func (p *GamePublisher) GameOver(summary game.RunSummary) {
	p.enqueue(TypeGameOver, PriorityCritical, summary.RunID, summary)
}

func (p *GamePublisher) Restarted(ev game.RestartEvent) {
	p.enqueue(TypeRunRestarted, PriorityNormal, ev.RunID, ev)
}

// Close дожидается отправки очереди
func (p *GamePublisher) Close() {
	p.once.Do(func() {
		close(p.quit)
		<-p.done
	})
}

// enqueue не блокирует: при заполненной очереди событие теряется
func (p *GamePublisher) enqueue(eventType string, priority int, runID string, payload interface{}) {
	env, err := NewEnvelope(p.source, eventType, priority, payload)
	if err != nil {
		logging.Warn("⚠️ Событие %s не сериализовано: %v", eventType, err)
		return
	}
	env.CorrelationID = runID

	select {
	case p.queue <- env:
	default:
		atomic.AddUint64(&p.dropped, 1)
		if priority >= PriorityCritical {
			atomic.AddUint64(&p.lost, 1)
			logging.Warn("🚨 Очередь событий переполнена, %s забега %s потеряно", eventType, runID)
		}
	}
}

func (p *GamePublisher) loop() {
	defer close(p.done)
	for {
		select {
		case env := <-p.queue:
			p.publish(env)
		case <-p.quit:
			// Досылаем то, что уже в очереди
			for {
				select {
				case env := <-p.queue:
					p.publish(env)
				default:
					return
				}
			}
		}
	}
}

func (p *GamePublisher) publish(env *Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.bus.Publish(ctx, env); err != nil {
		logging.Warn("⚠️ Публикация %s не удалась: %v", env.EventType, err)
	}
}
