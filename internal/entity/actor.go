// Package entity содержит участников боя: игрока и врагов.
package entity

import (
	"github.com/annel0/horde-arena/internal/physics"
	"github.com/annel0/horde-arena/internal/vec"
)

// State состояние актёра, оно же тег отображения
type State string

const (
	StateIdle           State = "idle"
	StateMoving         State = "moving"
	StateAttackingMelee State = "attacking_melee"
	StateDead           State = "dead"
)

// DeathRemovalDelay сколько секунд игрового времени мёртвый враг остаётся в мире
const DeathRemovalDelay = 1.0

// Actor общая часть игрока и врага: положение, размер, здоровье, состояние
type Actor struct {
	id        uint64
	Position  vec.Vec2Float // Центр
	Size      vec.Vec2Float
	Health    int
	MaxHealth int
	State     State
	Mask      *physics.ShapeMask // nil сплошной прямоугольник
}

func newActor(id uint64, pos, size vec.Vec2Float, maxHealth int) Actor {
	return Actor{
		id:        id,
		Position:  pos,
		Size:      size,
		Health:    maxHealth,
		MaxHealth: maxHealth,
		State:     StateIdle,
	}
}

// ID возвращает идентификатор актёра
func (a *Actor) ID() uint64 { return a.id }

// Center возвращает центр актёра
func (a *Actor) Center() vec.Vec2Float { return a.Position }

// Alive сообщает, жив ли актёр
func (a *Actor) Alive() bool { return a.State != StateDead }

// Bounds возвращает AABB актёра
func (a *Actor) Bounds() physics.Rect {
	return physics.RectFromCenter(a.Position, a.Size)
}

// HitRegion возвращает область попадания с маской формы, если она задана
func (a *Actor) HitRegion() physics.HitRegion {
	return physics.HitRegion{Rect: a.Bounds(), Mask: a.Mask}
}

// applyDamage вычитает урон. Возвращает true, если актёр погиб именно сейчас.
// Урон по мёртвому актёру игнорируется.
func (a *Actor) applyDamage(amount int) bool {
	if !a.Alive() {
		return false
	}
	a.Health -= amount
	if a.Health > a.MaxHealth {
		a.Health = a.MaxHealth
	}
	if a.Health <= 0 {
		a.State = StateDead
		return true
	}
	return false
}
