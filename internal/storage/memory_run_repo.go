package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRunRepo реализует RunRepo в памяти.
// Используется как fallback, когда Redis или BadgerDB недоступны,
// и в тестах. Данные теряются при перезапуске сервера.
type MemoryRunRepo struct {
	mu   sync.RWMutex
	data map[string]RunRecord
}

// NewMemoryRunRepo создает новый репозиторий забегов в памяти.
func NewMemoryRunRepo() *MemoryRunRepo {
	return &MemoryRunRepo{
		data: make(map[string]RunRecord),
	}
}

func (r *MemoryRunRepo) Save(ctx context.Context, rec RunRecord) error {
	if err := validate(rec); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[rec.ID] = rec
	return nil
}

func (r *MemoryRunRepo) Get(ctx context.Context, id string) (RunRecord, error) {
	select {
	case <-ctx.Done():
		return RunRecord{}, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.data[id]
	if !ok {
		return RunRecord{}, fmt.Errorf("забег %s: %w", id, ErrRunNotFound)
	}
	return rec, nil
}

func (r *MemoryRunRepo) Top(ctx context.Context, limit int) ([]RunRecord, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	r.mu.RLock()
	records := make([]RunRecord, 0, len(r.data))
	for _, rec := range r.data {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	return rank(records, limit), nil
}

func (r *MemoryRunRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data), nil
}

// Clear очищает все записи (для тестов).
func (r *MemoryRunRepo) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = make(map[string]RunRecord)
}

func (r *MemoryRunRepo) Close() error { return nil }
