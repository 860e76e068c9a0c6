package app

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/horde-arena/internal/cache"
	"github.com/annel0/horde-arena/internal/config"
	"github.com/annel0/horde-arena/internal/eventbus"
	"github.com/annel0/horde-arena/internal/logging"
	"github.com/annel0/horde-arena/internal/storage"
)

// OpenRunRepo открывает хранилище забегов по конфигурации.
// Недоступный Redis или BadgerDB заменяется хранилищем в памяти.
func OpenRunRepo(ctx context.Context, cfg config.StorageConfig) storage.RunRepo {
	repo, err := openRunRepo(ctx, cfg)
	if err != nil {
		logging.Warn("⚠️ Хранилище %s недоступно (%v), забеги хранятся в памяти", cfg.Backend, err)
		return storage.NewMemoryRunRepo()
	}
	logging.Info("💾 Хранилище забегов: %s", cfg.Backend)
	return repo
}

func openRunRepo(ctx context.Context, cfg config.StorageConfig) (storage.RunRepo, error) {
	switch cfg.Backend {
	case "", "memory":
		return storage.NewMemoryRunRepo(), nil
	case "badger":
		return storage.NewBadgerRunRepo(cfg.BadgerPath, cfg.Compress)
	case "redis":
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return storage.NewRedisRunRepo(ctx, &storage.RedisConfig{
			Addr:           cfg.RedisAddr,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			LeaderboardKey: cfg.LeaderboardKey,
		})
	default:
		return nil, fmt.Errorf("неизвестный бэкенд %q", cfg.Backend)
	}
}

// CacheLeaderboard оборачивает repo кешем таблицы лидеров.
// Возвращает nil, если кеш выключен. Недоступный Redis заменяется кешем в памяти.
func CacheLeaderboard(ctx context.Context, cfg config.StorageConfig, repo storage.RunRepo) *cache.LeaderboardCache {
	var backend cache.CacheRepo
	switch cfg.CacheBackend {
	case "", "off":
		return nil
	case "redis":
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, &cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logging.Warn("⚠️ Redis-кеш недоступен (%v), таблица лидеров кешируется в памяти", err)
			backend = cache.NewMemoryCache()
		} else {
			backend = rc
		}
	default:
		backend = cache.NewMemoryCache()
	}
	logging.Info("⚡ Кеш таблицы лидеров: %s, ttl=%v", cfg.CacheBackend, cfg.CacheTTL)
	return cache.NewLeaderboardCache(repo, backend, cfg.CacheTTL)
}

// OpenEventBus подключается к NATS JetStream, если задан URL,
// иначе или при ошибке возвращает шину в памяти.
func OpenEventBus(cfg config.EventBusConfig) eventbus.EventBus {
	if cfg.URL == "" {
		return eventbus.NewMemoryBus(1024)
	}

	retention := time.Duration(cfg.Retention) * time.Hour
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, retention)
	if err != nil {
		logging.Warn("⚠️ JetStream недоступен (%v), используется шина в памяти", err)
		return eventbus.NewMemoryBus(1024)
	}
	logging.Info("📨 Шина событий: JetStream %s, stream=%s", cfg.URL, cfg.Stream)
	return bus
}
