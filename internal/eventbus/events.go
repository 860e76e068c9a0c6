package eventbus

// Типы событий боя
const (
	TypeEnemyKilled  = "EnemyKilled"
	TypeWaveSpawned  = "WaveSpawned"
	TypeGameOver     = "GameOver"
	TypeRunRestarted = "RunRestarted"
)

// Приоритеты: убийства можно терять под нагрузкой, итоги забега нельзя
const (
	PriorityLow      = 1
	PriorityNormal   = 4
	PriorityCritical = 9
)
