// Package app собирает сервер из частей: хранилище, шину событий и
// наблюдателей симуляции.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/horde-arena/internal/game"
	"github.com/annel0/horde-arena/internal/logging"
	"github.com/annel0/horde-arena/internal/storage"
)

// RunRecorder сохраняет итог каждого забега в RunRepo.
// Запись идёт в отдельной горутине, игровой цикл не ждёт хранилище.
type RunRecorder struct {
	game.NopObserver

	repo    storage.RunRepo
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRunRecorder создаёт наблюдателя, пишущего в repo
func NewRunRecorder(repo storage.RunRepo) *RunRecorder {
	return &RunRecorder{repo: repo, timeout: 5 * time.Second}
}

func (r *RunRecorder) GameOver(summary game.RunSummary) {
	rec := storage.NewRunRecord(summary)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.repo.Save(ctx, rec); err != nil {
			logging.Error("❌ Забег %s не сохранён: %v", rec.ID, err)
			return
		}
		logging.Info("🏁 Забег %s сохранён: убийств=%d волн=%d время=%.1fс", rec.ID, rec.Kills, rec.Waves, rec.Survived)
	}()
}

// Wait дожидается незавершённых записей
func (r *RunRecorder) Wait() {
	r.wg.Wait()
}
