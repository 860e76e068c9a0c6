package entity

// Hooks невладеющая ссылка врага на симуляцию. Враг не управляет её
// временем жизни и пользуется только этими операциями.
type Hooks interface {
	// Now возвращает текущее игровое время
	Now() float64
	// Schedule планирует вызов на момент fireTime
	Schedule(fireTime float64, fn func())
	// EnemyKilled вызывается один раз при гибели врага
	EnemyKilled(e *Enemy, source string)
}
