package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/horde-arena/internal/logging"
	"github.com/annel0/horde-arena/internal/storage"
)

const topKeyPrefix = "leaderboard:top:"

// LeaderboardCache кеширует выборки таблицы лидеров поверх RunRepo.
// Save и Invalidate сбрасывают все закешированные выборки.
type LeaderboardCache struct {
	repo  storage.RunRepo
	cache CacheRepo
	ttl   time.Duration

	mu     sync.Mutex
	limits map[int]struct{} // Лимиты, которые могли попасть в кеш
}

// NewLeaderboardCache оборачивает repo. ttl <= 0 означает хранение до инвалидации.
func NewLeaderboardCache(repo storage.RunRepo, cache CacheRepo, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		limits: make(map[int]struct{}),
	}
}

func topKey(limit int) string {
	return fmt.Sprintf("%s%d", topKeyPrefix, limit)
}

// Save сохраняет забег и сбрасывает кеш
func (l *LeaderboardCache) Save(ctx context.Context, rec storage.RunRecord) error {
	if err := l.repo.Save(ctx, rec); err != nil {
		return err
	}
	return l.Invalidate(ctx)
}

func (l *LeaderboardCache) Get(ctx context.Context, id string) (storage.RunRecord, error) {
	return l.repo.Get(ctx, id)
}

// Top отдаёт выборку из кеша; при промахе читает хранилище и кладёт результат в кеш.
// Ошибки кеша не мешают ответу.
func (l *LeaderboardCache) Top(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	key := topKey(limit)

	data, err := l.cache.Get(ctx, key)
	if err == nil {
		var records []storage.RunRecord
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		logging.Warn("Повреждённая запись кеша %s, читаем хранилище", key)
	} else if !IsCacheMiss(err) {
		logging.Warn("Кеш таблицы лидеров недоступен: %v", err)
	}

	records, err := l.repo.Top(ctx, limit)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(records)
	if err != nil {
		return records, nil
	}

	l.mu.Lock()
	l.limits[limit] = struct{}{}
	l.mu.Unlock()

	if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
		logging.Warn("Не удалось закешировать %s: %v", key, err)
	}
	return records, nil
}

func (l *LeaderboardCache) Count(ctx context.Context) (int, error) {
	return l.repo.Count(ctx)
}

// Invalidate удаляет все известные выборки таблицы лидеров
func (l *LeaderboardCache) Invalidate(ctx context.Context) error {
	l.mu.Lock()
	keys := make([]string, 0, len(l.limits))
	for limit := range l.limits {
		keys = append(keys, topKey(limit))
	}
	l.mu.Unlock()

	return l.cache.Delete(ctx, keys...)
}

// Metrics возвращает метрики нижележащего кеша
func (l *LeaderboardCache) Metrics() CacheMetrics {
	return l.cache.GetMetrics()
}

// Close закрывает кеш и хранилище
func (l *LeaderboardCache) Close() error {
	return errors.Join(l.cache.Close(), l.repo.Close())
}

var _ storage.RunRepo = (*LeaderboardCache)(nil)
