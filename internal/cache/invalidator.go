package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/horde-arena/internal/eventbus"
	"github.com/annel0/horde-arena/internal/logging"
)

// BusInvalidator сбрасывает кеш таблицы лидеров по событиям GameOver из шины.
// С JetStream события приходят от всех экземпляров сервера, поэтому
// общий Redis-кеш обновляется и после чужих забегов.
//
// Повторные события одного забега в пределах окна дедупликации игнорируются.
type BusInvalidator struct {
	cache        *LeaderboardCache
	sub          eventbus.Subscription
	timeout      time.Duration
	dedupeWindow time.Duration
	now          func() time.Time

	mu     sync.Mutex
	recent map[string]time.Time // RunID -> время последней инвалидации

	receivedCount int64
	errorsCount   int64
}

// InvalidatorStats счётчики BusInvalidator
type InvalidatorStats struct {
	Received int64 `json:"received"`
	Errors   int64 `json:"errors"`
}

// NewBusInvalidator подписывается на события завершения забегов
func NewBusInvalidator(bus eventbus.EventBus, cache *LeaderboardCache) (*BusInvalidator, error) {
	inv := &BusInvalidator{
		cache:        cache,
		timeout:      2 * time.Second,
		dedupeWindow: 5 * time.Second,
		now:          time.Now,
		recent:       make(map[string]time.Time),
	}

	sub, err := bus.Subscribe(context.Background(), eventbus.Filter{
		Types: []string{eventbus.TypeGameOver},
	}, inv.handle)
	if err != nil {
		return nil, err
	}
	inv.sub = sub
	return inv, nil
}

func (i *BusInvalidator) handle(ctx context.Context, ev *eventbus.Envelope) {
	atomic.AddInt64(&i.receivedCount, 1)
	if i.duplicate(ev.CorrelationID) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	if err := i.cache.Invalidate(ctx); err != nil {
		atomic.AddInt64(&i.errorsCount, 1)
		logging.Warn("Инвалидация таблицы лидеров не удалась: %v", err)
		return
	}
	logging.Debug("Кеш таблицы лидеров сброшен (run=%s, src=%s)", ev.CorrelationID, ev.Source)
}

// duplicate отмечает runID и сообщает, видели ли его недавно
func (i *BusInvalidator) duplicate(runID string) bool {
	if runID == "" {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	for id, at := range i.recent {
		if now.Sub(at) > i.dedupeWindow {
			delete(i.recent, id)
		}
	}
	if _, ok := i.recent[runID]; ok {
		return true
	}
	i.recent[runID] = now
	return false
}

// Stats возвращает счётчики
func (i *BusInvalidator) Stats() InvalidatorStats {
	return InvalidatorStats{
		Received: atomic.LoadInt64(&i.receivedCount),
		Errors:   atomic.LoadInt64(&i.errorsCount),
	}
}

// Close отписывается от шины
func (i *BusInvalidator) Close() {
	i.sub.Unsubscribe()
}
