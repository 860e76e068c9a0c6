package api

import (
	"context"
	"sync"

	"github.com/annel0/horde-arena/internal/eventbus"
)

// EventLog хранит последние события шины в кольцевом буфере
type EventLog struct {
	mu       sync.RWMutex
	buf      []*eventbus.Envelope
	next     int
	full     bool
	sub      eventbus.Subscription
	capacity int
}

// NewEventLog подписывается на все события bus и хранит последние capacity
func NewEventLog(bus eventbus.EventBus, capacity int) (*EventLog, error) {
	if capacity <= 0 {
		capacity = 256
	}
	l := &EventLog{
		buf:      make([]*eventbus.Envelope, capacity),
		capacity: capacity,
	}
	sub, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		l.Append(ev)
	})
	if err != nil {
		return nil, err
	}
	l.sub = sub
	return l, nil
}

// Append добавляет событие, вытесняя самое старое
func (l *EventLog) Append(ev *eventbus.Envelope) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf[l.next] = ev
	l.next = (l.next + 1) % l.capacity
	if l.next == 0 {
		l.full = true
	}
}

// Recent возвращает до limit последних событий, новые первыми.
// Пустой eventType: все типы.
func (l *EventLog) Recent(eventType string, limit int) []*eventbus.Envelope {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := l.next
	if l.full {
		size = l.capacity
	}

	result := make([]*eventbus.Envelope, 0, min(limit, size))
	for i := 0; i < size && len(result) < limit; i++ {
		idx := (l.next - 1 - i + l.capacity) % l.capacity
		ev := l.buf[idx]
		if eventType != "" && ev.EventType != eventType {
			continue
		}
		result = append(result, ev)
	}
	return result
}

// Close отписывается от шины
func (l *EventLog) Close() {
	if l.sub != nil {
		l.sub.Unsubscribe()
	}
}
