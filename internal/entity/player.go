package entity

import (
	"math"

	"github.com/annel0/horde-arena/internal/physics"
	"github.com/annel0/horde-arena/internal/vec"
	"github.com/annel0/horde-arena/internal/weapon"
	"github.com/annel0/horde-arena/internal/world"
)

// Facing направление взгляда игрока для выбора анимации
type Facing string

const (
	FacingUp    Facing = "up"
	FacingDown  Facing = "down"
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// PlayerParams характеристики игрока
type PlayerParams struct {
	Speed       float64
	Size        vec.Vec2Float
	MaxHealth   int
	HitShape    string // "rect" или "ellipse"
	Weapon      weapon.Spec
	WeaponCount int
}

// DefaultPlayerParams возвращает характеристики по умолчанию
func DefaultPlayerParams() PlayerParams {
	return PlayerParams{
		Speed:       300,
		Size:        vec.Vec2Float{X: 42, Y: 75},
		MaxHealth:   100,
		HitShape:    "rect",
		Weapon:      weapon.DaggerSpec(),
		WeaponCount: 2,
	}
}

// Player управляемый персонаж с оружием
type Player struct {
	Actor
	Index   int // Слот ввода
	Speed   float64
	Facing  Facing
	Moving  bool
	Spawn   vec.Vec2Float
	Weapons *weapon.Manager
}

// NewPlayer создаёт игрока в точке появления со стартовым оружием
func NewPlayer(id uint64, index int, spawn vec.Vec2Float, params PlayerParams) *Player {
	p := &Player{
		Actor:  newActor(id, spawn, params.Size, params.MaxHealth),
		Index:  index,
		Speed:  params.Speed,
		Facing: FacingDown,
		Spawn:  spawn,
	}
	if params.HitShape == "ellipse" {
		p.Mask = ellipseMask(params.Size)
	}
	p.Weapons = weapon.NewManager(p)
	p.Weapons.AddMany(params.Weapon, params.WeaponCount)
	return p
}

// Update перемещает игрока по вводу и удерживает его в пределах мира.
// Оружие обновляется отдельно, после врагов.
func (p *Player) Update(w *world.World, dt float64, in InputState) {
	if !p.Alive() {
		return
	}

	next := p.Position
	p.Moving = false

	step := p.Speed * dt
	if in.Up {
		next.Y -= step
		p.Facing = FacingUp
		p.Moving = true
	}
	if in.Down {
		next.Y += step
		p.Facing = FacingDown
		p.Moving = true
	}
	if in.Left {
		next.X -= step
		p.Facing = FacingLeft
		p.Moving = true
	}
	if in.Right {
		next.X += step
		p.Facing = FacingRight
		p.Moving = true
	}

	p.Position = w.Clamp(next, p.Size)
	if p.Moving {
		p.State = StateMoving
	} else {
		p.State = StateIdle
	}
}

// TakeDamage наносит урон игроку
func (p *Player) TakeDamage(amount int, _ string) {
	p.applyDamage(amount)
}

// Reset возвращает игрока в точку появления с полным здоровьем
func (p *Player) Reset() {
	p.Position = p.Spawn
	p.Health = p.MaxHealth
	p.State = StateIdle
	p.Facing = FacingDown
	p.Moving = false
	p.Weapons.Reset()
}

// ellipseMask приближает силуэт персонажа эллипсом, вписанным в его размер
func ellipseMask(size vec.Vec2Float) *physics.ShapeMask {
	return physics.NewEllipseMask(int(math.Ceil(size.X)), int(math.Ceil(size.Y)))
}
