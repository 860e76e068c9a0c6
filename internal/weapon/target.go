package weapon

import (
	"github.com/annel0/horde-arena/internal/physics"
	"github.com/annel0/horde-arena/internal/vec"
)

// Target цель оружия. Оружие не владеет целью: ссылка может пережить
// врага, поэтому перед использованием всегда проверяется Alive.
type Target interface {
	ID() uint64
	Center() vec.Vec2Float
	HitRegion() physics.HitRegion
	Alive() bool
	TakeDamage(amount int, source string)
}

// Owner носитель оружия (игрок)
type Owner interface {
	Center() vec.Vec2Float
}

// isLive сообщает, указывает ли ссылка на живую цель
func isLive(t Target) bool {
	return t != nil && t.Alive()
}
