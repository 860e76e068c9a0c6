package game

import "github.com/annel0/horde-arena/internal/entity"

// WaveParams параметры волн врагов
type WaveParams struct {
	BaseEnemies    int     // Врагов в первой волне
	EnemiesPerWave int     // Прирост за волну
	Interval       float64 // Пауза между волнами, сек
	FirstDelay     float64 // Задержка первой волны при старте
	RestartDelay   float64 // Задержка первой волны после рестарта
}

// Params параметры симуляции
type Params struct {
	ScreenWidth  int
	ScreenHeight int
	MaxDeltaTime float64 // Верхняя граница dt за тик
	Seed         int64
	Players      int
	PlayerSpread float64 // Расстояние между точками появления игроков
	Player       entity.PlayerParams
	Enemy        entity.EnemyParams
	Wave         WaveParams
}

// DefaultParams возвращает параметры по умолчанию
func DefaultParams() Params {
	return Params{
		ScreenWidth:  1280,
		ScreenHeight: 720,
		MaxDeltaTime: 0.05,
		Seed:         1,
		Players:      1,
		PlayerSpread: 60,
		Player:       entity.DefaultPlayerParams(),
		Enemy:        entity.DefaultEnemyParams(),
		Wave: WaveParams{
			BaseEnemies:    3,
			EnemiesPerWave: 2,
			Interval:       4,
			FirstDelay:     1,
			RestartDelay:   2,
		},
	}
}

// WaveSize возвращает число врагов в волне с индексом waveIndex (с нуля)
func (w WaveParams) WaveSize(waveIndex int) int {
	return w.BaseEnemies + w.EnemiesPerWave*waveIndex
}
