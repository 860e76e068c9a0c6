package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-arena/internal/game"
)

func sampleRuns() []RunRecord {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return []RunRecord{
		{ID: "a", Kills: 10, Waves: 3, Survived: 30, EndedAt: base},
		{ID: "b", Kills: 25, Waves: 5, Survived: 50, EndedAt: base},
		{ID: "c", Kills: 10, Waves: 4, Survived: 45, EndedAt: base},
		{ID: "d", Kills: 0, Waves: 1, Survived: 4, EndedAt: base},
	}
}

// testRunRepo проверяет общий контракт RunRepo
func testRunRepo(t *testing.T, repo RunRepo) {
	ctx := context.Background()

	t.Run("Save and Get", func(t *testing.T) {
		for _, rec := range sampleRuns() {
			require.NoError(t, repo.Save(ctx, rec), "Ошибка сохранения забега %s", rec.ID)
		}

		got, err := repo.Get(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, 10, got.Kills)
		assert.Equal(t, 45.0, got.Survived)
		assert.True(t, got.EndedAt.Equal(sampleRuns()[2].EndedAt))
	})

	t.Run("Not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.True(t, errors.Is(err, ErrRunNotFound), "ожидалась ErrRunNotFound, получено %v", err)
	})

	t.Run("Top order", func(t *testing.T) {
		top, err := repo.Top(ctx, 3)
		require.NoError(t, err)
		require.Len(t, top, 3)
		assert.Equal(t, []string{"b", "c", "a"}, []string{top[0].ID, top[1].ID, top[2].ID},
			"больше убийств выше, при равенстве дольше выживший")

		all, err := repo.Top(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, RunRecord{ID: "d", Kills: 100, Survived: 1}))
		top, err := repo.Top(ctx, 1)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, "d", top[0].ID)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, count, "перезапись не добавляет запись")
	})

	t.Run("Invalid", func(t *testing.T) {
		assert.Error(t, repo.Save(ctx, RunRecord{}))
		assert.Error(t, repo.Save(ctx, RunRecord{ID: "x", Kills: -1}))
	})
}

func TestMemoryRunRepo(t *testing.T) {
	repo := NewMemoryRunRepo()
	testRunRepo(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, repo.Save(ctx, RunRecord{ID: "z"}), context.Canceled)

	repo.Clear()
	count, _ := repo.Count(context.Background())
	assert.Zero(t, count)
}

func TestBadgerRunRepo(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "json"
		if compress {
			name = "zstd"
		}
		t.Run(name, func(t *testing.T) {
			repo, err := NewBadgerRunRepo(t.TempDir(), compress)
			require.NoError(t, err, "Не удалось создать хранилище")
			defer repo.Close()
			testRunRepo(t, repo)
		})
	}
}

func TestBadgerRunRepo_ReopenWithOtherCodec(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewBadgerRunRepo(dir, true)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, RunRecord{ID: "packed", Kills: 3, Survived: 9}))
	require.NoError(t, repo.Close())
	require.NoError(t, repo.Close(), "повторное закрытие безопасно")

	repo, err = NewBadgerRunRepo(dir, false)
	require.NoError(t, err)
	defer repo.Close()

	rec, err := repo.Get(ctx, "packed")
	require.NoError(t, err, "сжатые записи читаются без сжатия")
	assert.Equal(t, 3, rec.Kills)
}

func TestRedisRunRepo(t *testing.T) {
	addr := os.Getenv("HORDE_TEST_REDIS")
	if addr == "" {
		t.Skip("HORDE_TEST_REDIS не задан")
	}

	cfg := DefaultRedisConfig()
	cfg.Addr = addr
	cfg.KeyPrefix = "horde:test:" + time.Now().Format("150405.000") + ":"
	cfg.LeaderboardKey = cfg.KeyPrefix + "board"

	repo, err := NewRedisRunRepo(context.Background(), cfg)
	require.NoError(t, err)
	defer func() {
		ctx := context.Background()
		keys, _ := repo.client.Keys(ctx, cfg.KeyPrefix+"*").Result()
		if len(keys) > 0 {
			repo.client.Del(ctx, keys...)
		}
		repo.Close()
	}()

	testRunRepo(t, repo)
}

func TestNewRunRecord(t *testing.T) {
	rec := NewRunRecord(game.RunSummary{RunID: "run-1", Kills: 4, Waves: 2, Survived: 7.5})
	assert.Equal(t, "run-1", rec.ID)
	assert.Equal(t, 4, rec.Kills)
	assert.Equal(t, 2, rec.Waves)

	anon := NewRunRecord(game.RunSummary{})
	assert.NotEmpty(t, anon.ID, "без RunID генерируется UUID")
}

func TestScore(t *testing.T) {
	assert.Greater(t, Score(RunRecord{Kills: 2}), Score(RunRecord{Kills: 1, Survived: 900000}),
		"убийства важнее времени")
	assert.Greater(t, Score(RunRecord{Kills: 1, Survived: 10}), Score(RunRecord{Kills: 1, Survived: 5}))
}
