package storage

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/horde-arena/internal/game"
)

// ErrRunNotFound возвращается, когда забег с таким ID не сохранён
var ErrRunNotFound = errors.New("storage: забег не найден")

// RunRecord итог завершённого забега
type RunRecord struct {
	ID        string    `json:"id"`
	Kills     int       `json:"kills"`
	Waves     int       `json:"waves"`
	Survived  float64   `json:"survived"` // Игровые секунды
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// NewRunRecord создаёт запись из итога забега. Пустой RunID заменяется новым UUID.
func NewRunRecord(summary game.RunSummary) RunRecord {
	runID := summary.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	return RunRecord{
		ID:        runID,
		Kills:     summary.Kills,
		Waves:     summary.Waves,
		Survived:  summary.Survived,
		StartedAt: summary.StartedAt,
		EndedAt:   summary.EndedAt,
	}
}

// RunRepo хранит завершённые забеги и строит по ним таблицу лидеров.
type RunRepo interface {
	// Save сохраняет или перезаписывает запись с тем же ID.
	Save(ctx context.Context, rec RunRecord) error

	// Get возвращает запись или ErrRunNotFound.
	Get(ctx context.Context, id string) (RunRecord, error)

	// Top возвращает не более limit лучших забегов в порядке Less.
	Top(ctx context.Context, limit int) ([]RunRecord, error)

	// Count возвращает число сохранённых забегов.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Less задаёт порядок таблицы лидеров: больше убийств, затем дольше продержался,
// затем раньше закончил.
func Less(a, b RunRecord) bool {
	if a.Kills != b.Kills {
		return a.Kills > b.Kills
	}
	if a.Survived != b.Survived {
		return a.Survived > b.Survived
	}
	if !a.EndedAt.Equal(b.EndedAt) {
		return a.EndedAt.Before(b.EndedAt)
	}
	return a.ID < b.ID
}

// rank сортирует записи и обрезает до limit (limit <= 0: без ограничения)
func rank(records []RunRecord, limit int) []RunRecord {
	slices.SortFunc(records, func(a, b RunRecord) int {
		switch {
		case Less(a, b):
			return -1
		case Less(b, a):
			return 1
		}
		return 0
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

func validate(rec RunRecord) error {
	if rec.ID == "" {
		return errors.New("storage: пустой ID забега")
	}
	if rec.Kills < 0 || rec.Waves < 0 || rec.Survived < 0 {
		return errors.New("storage: отрицательные показатели забега")
	}
	return nil
}
