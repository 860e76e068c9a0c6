package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-arena/internal/game"
)

type collector struct {
	mu     sync.Mutex
	events []*Envelope
}

func (c *collector) handle(_ context.Context, ev *Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) snapshot() []*Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Envelope(nil), c.events...)
}

func TestMemoryBusFilter(t *testing.T) {
	bus := NewMemoryBus(16)

	var kills, all collector
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypeEnemyKilled}}, kills.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{}, all.handle)
	require.NoError(t, err)

	for _, typ := range []string{TypeEnemyKilled, TypeWaveSpawned, TypeEnemyKilled} {
		env, err := NewEnvelope("test", typ, PriorityNormal, map[string]int{"n": 1})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(context.Background(), env))
	}

	// Close дожидается доставки всех событий
	require.NoError(t, bus.Close())

	assert.Len(t, kills.snapshot(), 2, "фильтр по типу должен пропускать только убийства")
	assert.Len(t, all.snapshot(), 3, "пустой фильтр принимает всё")

	stats := bus.Metrics()
	assert.Equal(t, uint64(3), stats.Published)
	assert.Equal(t, uint64(5), stats.Consumed)
}

func TestMemoryBusClosed(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close(), "повторное закрытие допустимо")

	env, err := NewEnvelope("test", TypeGameOver, PriorityCritical, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, bus.Publish(context.Background(), env), ErrClosed)

	_, err = bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	var c collector
	sub, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	env, _ := NewEnvelope("test", TypeWaveSpawned, PriorityNormal, nil)
	require.NoError(t, bus.Publish(context.Background(), env))
	require.NoError(t, bus.Close())

	assert.Empty(t, c.snapshot(), "отписанный обработчик не должен вызываться")
}

func TestGamePublisher(t *testing.T) {
	bus := NewMemoryBus(64)
	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	pub := NewGamePublisher(bus, "arena", 16)

	pub.EnemyKilled(game.KillEvent{RunID: "run-1", EnemyID: 7, Source: "Dagger", GameTime: 1.5, Kills: 1})
	pub.GameOver(game.RunSummary{RunID: "run-1", Kills: 1, Waves: 1, Survived: 3})
	pub.Restarted(game.RestartEvent{RunID: "run-2"})
	pub.TickCompleted(game.TickStats{})

	pub.Close()
	require.NoError(t, bus.Close())
	assert.Zero(t, pub.Dropped())

	events := c.snapshot()
	require.Len(t, events, 3, "тики не публикуются")

	byType := make(map[string]*Envelope)
	for _, ev := range events {
		byType[ev.EventType] = ev
	}

	kill := byType[TypeEnemyKilled]
	require.NotNil(t, kill)
	assert.Equal(t, "run-1", kill.CorrelationID)
	assert.Equal(t, "arena", kill.Source)
	var ke game.KillEvent
	require.NoError(t, kill.Decode(&ke))
	assert.Equal(t, uint64(7), ke.EnemyID)
	assert.Equal(t, "Dagger", ke.Source)

	assert.Equal(t, PriorityCritical, byType[TypeGameOver].Priority)

	restart := byType[TypeRunRestarted]
	require.NotNil(t, restart)
	assert.Equal(t, "run-2", restart.CorrelationID, "рестарт открывает новый забег")
}

func TestGamePublisherDropsWhenFull(t *testing.T) {
	bus := &blockingBus{release: make(chan struct{})}
	pub := NewGamePublisher(bus, "arena", 1)

	// Первое событие забирает горутина и застревает в Publish,
	// второе занимает очередь, остальные отбрасываются
	pub.WaveSpawned(game.WaveEvent{Wave: 1})
	require.Eventually(t, func() bool { return bus.calls.Load() == 1 }, time.Second, time.Millisecond)
	for i := 0; i < 5; i++ {
		pub.WaveSpawned(game.WaveEvent{Wave: 2 + i})
	}
	assert.Equal(t, uint64(4), pub.Dropped())
	assert.Zero(t, pub.DroppedCritical())

	pub.GameOver(game.RunSummary{RunID: "run-9"})
	assert.Equal(t, uint64(5), pub.Dropped())
	assert.Equal(t, uint64(1), pub.DroppedCritical(), "потерянный GameOver учитывается отдельно")

	close(bus.release)
	pub.Close()
	assert.Equal(t, int32(2), bus.calls.Load())
}

// blockingBus держит Publish до закрытия release
type blockingBus struct {
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingBus) Publish(ctx context.Context, _ *Envelope) error {
	b.calls.Add(1)
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func (b *blockingBus) Subscribe(context.Context, Filter, Handler) (Subscription, error) {
	return nil, ErrClosed
}

func (b *blockingBus) Metrics() Stats { return Stats{} }
func (b *blockingBus) Close() error   { return nil }

func TestMetricsExporter(t *testing.T) {
	bus := NewMemoryBus(8)
	reg := prometheus.NewRegistry()
	exp := NewMetricsExporter(bus, reg)
	exp.interval = 10 * time.Millisecond
	exp.Start()

	for i := 0; i < 3; i++ {
		env, _ := NewEnvelope("test", TypeWaveSpawned, PriorityNormal, i)
		require.NoError(t, bus.Publish(context.Background(), env))
	}

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(exp.published) == 3
	}, time.Second, 10*time.Millisecond)

	exp.Stop()
	require.NoError(t, bus.Close())

	count, err := testutil.GatherAndCount(reg, "eventbus_messages_published_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
