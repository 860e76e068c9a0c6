// Package scheduler реализует очередь отложенных вызовов, упорядоченную по
// игровому времени.
package scheduler

import "container/heap"

// Callback отложенное действие. Может изменять состояние мира и
// планировать новые события.
type Callback func()

// event запланированное событие; seq разрешает равенство времён в порядке вставки
type event struct {
	fireTime float64
	seq      uint64
	callback Callback
}

// eventHeap двоичная min-куча по (fireTime, seq)
type eventHeap []event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].fireTime != h[j].fireTime {
		return h[i].fireTime < h[j].fireTime
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(event)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = event{} // отпускаем замыкание
	*h = old[:n-1]
	return ev
}

// EventScheduler очередь отложенных вызовов по игровому времени (секунды).
// Не потокобезопасен: используется только из игрового цикла.
type EventScheduler struct {
	queue eventHeap
	seq   uint64
}

// New создаёт пустой планировщик
func New() *EventScheduler {
	return &EventScheduler{}
}

// Schedule планирует вызов callback в момент fireTime. Вставка O(log n).
// События с одинаковым временем выполняются в порядке планирования.
func (s *EventScheduler) Schedule(fireTime float64, callback Callback) {
	if callback == nil {
		return
	}
	heap.Push(&s.queue, event{fireTime: fireTime, seq: s.seq, callback: callback})
	// uint64 не переполнится за реальное время сессии (2^64 вставок)
	s.seq++
}

// RunPending выполняет все события с fireTime <= now в порядке неубывания времени.
// События, запланированные колбэками во время выполнения с fireTime <= now,
// выполняются в этом же вызове. Возвращает число выполненных событий.
func (s *EventScheduler) RunPending(now float64) int {
	executed := 0
	for len(s.queue) > 0 && s.queue[0].fireTime <= now {
		ev := heap.Pop(&s.queue).(event)
		ev.callback()
		executed++
	}
	return executed
}

// Clear отбрасывает все ожидающие события, не вызывая их
func (s *EventScheduler) Clear() {
	s.queue = nil
}

// Len возвращает число ожидающих событий
func (s *EventScheduler) Len() int {
	return len(s.queue)
}

// NextFireTime возвращает время ближайшего события
func (s *EventScheduler) NextFireTime() (float64, bool) {
	if len(s.queue) == 0 {
		return 0, false
	}
	return s.queue[0].fireTime, true
}
