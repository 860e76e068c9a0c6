package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/horde-arena/internal/logging"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr           string // Адрес Redis сервера
	Password       string // Пароль (пустой если не требуется)
	DB             int    // Номер базы данных
	KeyPrefix      string // Префикс ключей записей
	LeaderboardKey string // Sorted set таблицы лидеров
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:           "localhost:6379",
		KeyPrefix:      "horde:run:",
		LeaderboardKey: "horde:leaderboard",
	}
}

// RedisRunRepo хранит записи забегов строками JSON, а рейтинг в sorted set
type RedisRunRepo struct {
	client    *redis.Client
	keyPrefix string
	boardKey  string
}

// NewRedisRunRepo подключается к Redis и проверяет соединение
func NewRedisRunRepo(ctx context.Context, config *RedisConfig) (*RedisRunRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("🔴 Connected to Redis at %s", config.Addr)
	return newRedisRunRepo(client, config), nil
}

func newRedisRunRepo(client *redis.Client, config *RedisConfig) *RedisRunRepo {
	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = DefaultRedisConfig().KeyPrefix
	}
	board := config.LeaderboardKey
	if board == "" {
		board = DefaultRedisConfig().LeaderboardKey
	}
	return &RedisRunRepo{client: client, keyPrefix: prefix, boardKey: board}
}

// Score вес записи в sorted set: убийства, затем выживание
func Score(rec RunRecord) float64 {
	return float64(rec.Kills)*1e6 + math.Min(rec.Survived, 1e6-1)
}

func (r *RedisRunRepo) Save(ctx context.Context, rec RunRecord) error {
	if err := validate(rec); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keyPrefix+rec.ID, data, 0)
		pipe.ZAdd(ctx, r.boardKey, &redis.Z{Score: Score(rec), Member: rec.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (r *RedisRunRepo) Get(ctx context.Context, id string) (RunRecord, error) {
	data, err := r.client.Get(ctx, r.keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return RunRecord{}, fmt.Errorf("забег %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to get run: %w", err)
	}

	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return RunRecord{}, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return rec, nil
}

func (r *RedisRunRepo) Top(ctx context.Context, limit int) ([]RunRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := r.client.ZRevRange(ctx, r.boardKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if len(ids) == 0 {
		return []RunRecord{}, nil
	}

	// Получаем записи пайплайном
	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, r.keyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}

	records := make([]RunRecord, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			logging.Warn("⚠️ Забег %s есть в рейтинге, но запись недоступна: %v", ids[i], err)
			continue
		}
		var rec RunRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			logging.Warn("⚠️ Failed to unmarshal run %s: %v", ids[i], err)
			continue
		}
		records = append(records, rec)
	}

	// Внутри одинакового счёта Redis упорядочивает по имени, выравниваем по Less
	return rank(records, 0), nil
}

func (r *RedisRunRepo) Count(ctx context.Context) (int, error) {
	n, err := r.client.ZCard(ctx, r.boardKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return int(n), nil
}

// Close закрывает соединение с Redis
func (r *RedisRunRepo) Close() error {
	return r.client.Close()
}
