package weapon

import (
	"github.com/annel0/horde-arena/internal/physics"
	"github.com/annel0/horde-arena/internal/vec"
)

// ProjectileState состояние снаряда
type ProjectileState string

const (
	ProjectileInFlight ProjectileState = "in_flight"
	ProjectileSpent    ProjectileState = "spent"
)

// Projectile летит прямо по направлению выстрела и живёт AttackDuration секунд
type Projectile struct {
	Position  vec.Vec2Float
	Direction vec.Vec2Float
	Speed     float64
	Damage    int
	Size      vec.Vec2Float
	State     ProjectileState

	weapon     *Weapon
	age        float64
	lifetime   float64
	pierceLeft int
	hit        map[uint64]struct{}
}

func newProjectile(w *Weapon) *Projectile {
	return &Projectile{
		Position:   w.Position,
		Direction:  w.Direction,
		Speed:      w.projectileSpeed(),
		Damage:     w.Damage,
		Size:       physics.RotatedSize(w.SpriteSize, w.Direction),
		State:      ProjectileInFlight,
		weapon:     w,
		lifetime:   w.AttackDuration,
		pierceLeft: w.PiercingCount,
		hit:        make(map[uint64]struct{}),
	}
}

// Weapon возвращает оружие, выпустившее снаряд
func (p *Projectile) Weapon() *Weapon {
	return p.weapon
}

// Age возвращает время полёта
func (p *Projectile) Age() float64 {
	return p.age
}

// PierceLeft возвращает оставшийся запас пробития
func (p *Projectile) PierceLeft() int {
	return p.pierceLeft
}

// Bounds возвращает AABB снаряда
func (p *Projectile) Bounds() physics.Rect {
	return physics.RectFromCenter(p.Position, p.Size)
}

// Update продвигает снаряд и проверяет попадание. За тик снаряд поражает
// не более одного врага; мёртвые и уже поражённые этим снарядом пропускаются.
// Возвращает true при попадании.
func (p *Projectile) Update(dt float64, enemies []Target) bool {
	if p.State == ProjectileSpent {
		return false
	}

	p.age += dt
	if p.age >= p.lifetime {
		p.State = ProjectileSpent
		return false
	}

	p.Position = p.Position.Add(p.Direction.Mul(p.Speed * dt))

	region := physics.HitRegion{Rect: p.Bounds()}
	for _, e := range enemies {
		if !isLive(e) {
			continue
		}
		if _, seen := p.hit[e.ID()]; seen {
			continue
		}
		if !region.Overlaps(e.HitRegion()) {
			continue
		}
		p.onHit(e)
		return true
	}
	return false
}

func (p *Projectile) onHit(e Target) {
	p.hit[e.ID()] = struct{}{}
	e.TakeDamage(p.Damage, p.weapon.Name)

	if p.pierceLeft == 0 {
		p.State = ProjectileSpent
		return
	}
	p.pierceLeft--
}
