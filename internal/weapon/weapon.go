// Package weapon реализует оружие игрока: цикл атаки, распределение целей
// между стволами и снаряды.
package weapon

import (
	"github.com/annel0/horde-arena/internal/physics"
	"github.com/annel0/horde-arena/internal/vec"
)

// Kind тип оружия
type Kind string

const (
	KindMelee  Kind = "melee"
	KindRanged Kind = "ranged"
)

// State состояние цикла атаки
type State string

const (
	StateIdle      State = "idle"
	StateAttacking State = "attacking"
	StateCooldown  State = "cooldown"
)

const (
	// DefaultOffset расстояние от центра игрока до оружия
	DefaultOffset = 30.0
	// DefaultProjectileSpeed скорость снаряда оружия с бесконечной дальностью
	DefaultProjectileSpeed = 1500.0
)

// Spec описывает характеристики оружия
type Spec struct {
	Name             string
	Kind             Kind
	Damage           int
	Range            *float64 // nil бесконечная дальность
	AttackDuration   float64  // Длительность атаки и время жизни снаряда, сек
	CooldownDuration float64  // Перезарядка после атаки, сек
	PiercingCount    int      // Сколько врагов снаряд пробивает насквозь
	MaxTargets       int
	Offset           float64
	SpriteSize       vec.Vec2Float
	ProjectileSpeed  float64 // Используется при бесконечной дальности
}

// DaggerSpec возвращает стартовый кинжал
func DaggerSpec() Spec {
	r := 300.0
	return Spec{
		Name:             "dagger",
		Kind:             KindMelee,
		Damage:           20,
		Range:            &r,
		AttackDuration:   0.2,
		CooldownDuration: 1.0,
		PiercingCount:    0,
		MaxTargets:       1,
		Offset:           DefaultOffset,
		SpriteSize:       vec.Vec2Float{X: 20, Y: 10},
		ProjectileSpeed:  DefaultProjectileSpeed,
	}
}

// projectileSpeed снаряд долетает до границы дальности за время атаки
func (s Spec) projectileSpeed() float64 {
	if s.Range != nil && s.AttackDuration > 0 {
		return *s.Range / s.AttackDuration
	}
	if s.ProjectileSpeed > 0 {
		return s.ProjectileSpeed
	}
	return DefaultProjectileSpeed
}

// Weapon одно оружие игрока с циклом idle → attacking → cooldown → idle
type Weapon struct {
	Spec
	Slot      int
	State     State
	Position  vec.Vec2Float
	Direction vec.Vec2Float
	Visible   bool

	owner         Owner
	targets       []Target
	attackTimer   float64
	cooldownTimer float64
	attack        *Attack
}

// New создаёт оружие для носителя
func New(spec Spec, owner Owner, slot int) *Weapon {
	if spec.MaxTargets < 1 {
		spec.MaxTargets = 1
	}
	w := &Weapon{
		Spec:      spec,
		Slot:      slot,
		State:     StateIdle,
		Direction: vec.Right,
		Visible:   true,
		owner:     owner,
	}
	w.attack = newAttack(w)
	if owner != nil {
		w.Position = owner.Center().Add(vec.Right.Mul(spec.Offset))
	}
	return w
}

// SetTargets назначает цели, первая из них основная
func (w *Weapon) SetTargets(targets []Target) {
	w.targets = targets
}

// Target возвращает основную цель или nil, если её нет или она мертва
func (w *Weapon) Target() Target {
	if len(w.targets) == 0 || !isLive(w.targets[0]) {
		return nil
	}
	return w.targets[0]
}

// Targets возвращает назначенные цели
func (w *Weapon) Targets() []Target {
	return w.targets
}

// Attack возвращает атаку оружия вместе с её снарядами
func (w *Weapon) Attack() *Attack {
	return w.attack
}

// Bounds возвращает повёрнутый по направлению прямоугольник оружия
func (w *Weapon) Bounds() physics.Rect {
	return physics.RectFromCenter(w.Position, physics.RotatedSize(w.SpriteSize, w.Direction))
}

// CheckAttackCondition оружие готово, цель жива и в пределах дальности
// (граница включительно, от позиции оружия)
func (w *Weapon) CheckAttackCondition() bool {
	if w.State != StateIdle {
		return false
	}
	target := w.Target()
	if target == nil {
		return false
	}
	if w.Range == nil {
		return true
	}
	return w.Position.DistanceTo(target.Center()) <= *w.Range
}

// Update продвигает цикл атаки на dt. Возвращает число выпущенных снарядов.
func (w *Weapon) Update(dt float64) int {
	w.updatePosition()
	w.aim()

	fired := 0
	if w.CheckAttackCondition() {
		fired = w.attack.Execute()
		w.State = StateAttacking
		w.attackTimer = 0
	}

	if w.State == StateAttacking {
		w.attackTimer += dt
		if w.attackTimer >= w.AttackDuration {
			w.attackTimer = 0
			w.Visible = true
			w.State = StateCooldown
		}
	}

	if w.State == StateCooldown {
		w.cooldownTimer += dt
		if w.cooldownTimer >= w.CooldownDuration {
			w.State = StateIdle
			w.cooldownTimer = 0
		}
	}

	return fired
}

// Reset возвращает оружие в исходное состояние и уничтожает снаряды
func (w *Weapon) Reset() {
	w.State = StateIdle
	w.Visible = true
	w.targets = nil
	w.attackTimer = 0
	w.cooldownTimer = 0
	w.Direction = vec.Right
	w.attack.reset()
	w.updatePosition()
}

// updatePosition ставит оружие на Offset от носителя в сторону цели
func (w *Weapon) updatePosition() {
	if w.owner == nil {
		return
	}
	center := w.owner.Center()
	w.Direction = directionTo(center, w.Target())
	w.Position = center.Add(w.Direction.Mul(w.Offset))
}

// aim наводит оружие из его позиции на цель
func (w *Weapon) aim() {
	w.Direction = directionTo(w.Position, w.Target())
}

// directionTo единичный вектор от from к цели; вправо, если цели нет
// или она совпадает с from
func directionTo(from vec.Vec2Float, target Target) vec.Vec2Float {
	if target == nil {
		return vec.Right
	}
	dir, ok := target.Center().Sub(from).TryNormalize()
	if !ok {
		return vec.Right
	}
	return dir
}
