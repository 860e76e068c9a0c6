package entity

import (
	"math"

	"github.com/annel0/horde-arena/internal/physics"
	"github.com/annel0/horde-arena/internal/vec"
	"github.com/annel0/horde-arena/internal/world"
)

// StateHit тег отображения врага в тик, когда он получил урон
const StateHit State = "hit"

// EnemyParams характеристики врага
type EnemyParams struct {
	Speed            float64
	Size             vec.Vec2Float
	MaxHealth        int
	Melee            bool
	MeleeDamage      int
	MeleeAttackSpeed float64 // Атак в секунду
	RotationSpeed    float64 // Рад/сек
}

// DefaultEnemyParams возвращает характеристики по умолчанию
func DefaultEnemyParams() EnemyParams {
	return EnemyParams{
		Speed:            150,
		Size:             vec.Vec2Float{X: 20, Y: 20},
		MaxHealth:        30,
		Melee:            true,
		MeleeDamage:      1,
		MeleeAttackSpeed: 1.0,
		RotationSpeed:    1.5,
	}
}

// Enemy враг, преследующий ближайшего игрока
type Enemy struct {
	Actor
	Direction vec.Vec2Float // Текущий курс, единичный вектор

	params      EnemyParams
	hooks       Hooks
	target      *Player
	lastMeleeAt float64
	hasMeleed   bool
	hit         bool
	removed     bool
}

// NewEnemy создаёт врага с курсом вправо
func NewEnemy(id uint64, pos vec.Vec2Float, params EnemyParams, hooks Hooks) *Enemy {
	return &Enemy{
		Actor:     newActor(id, pos, params.Size, params.MaxHealth),
		Direction: vec.Right,
		params:    params,
		hooks:     hooks,
	}
}

// Params возвращает характеристики врага
func (e *Enemy) Params() EnemyParams { return e.params }

// Target возвращает текущую цель или nil
func (e *Enemy) Target() *Player { return e.target }

// MarkedForRemoval сообщает, что задержка после смерти истекла
func (e *Enemy) MarkedForRemoval() bool { return e.removed }

// DisplayState возвращает тег для отрисовки
func (e *Enemy) DisplayState() State {
	if e.hit && e.Alive() {
		return StateHit
	}
	return e.State
}

// Update выполняет один тик поведения: выбор цели, поворот, атака или шаг
func (e *Enemy) Update(w *world.World, dt float64, players []*Player) {
	e.hit = false
	if !e.Alive() {
		return
	}

	e.target = ClosestPlayer(e.Position, players)
	if e.target != nil {
		if toTarget, ok := e.target.Position.Sub(e.Position).TryNormalize(); ok {
			e.Direction = Steer(e.Direction, toTarget, e.params.RotationSpeed*dt)
		}
	}

	e.decideAction(w, dt, players)
}

// ClosestPlayer возвращает ближайшего живого игрока. При равных расстояниях
// побеждает игрок, идущий раньше в срезе.
func ClosestPlayer(from vec.Vec2Float, players []*Player) *Player {
	var closest *Player
	best := math.Inf(1)
	for _, p := range players {
		if p == nil || !p.Alive() {
			continue
		}
		if d := from.DistanceTo(p.Position); d < best {
			best = d
			closest = p
		}
	}
	return closest
}

// Steer поворачивает курс heading к единичному вектору toTarget.
// Если цель позади (скалярное произведение < 0), курс сразу становится
// ближайшим к цели осевым направлением; иначе поворот ограничен maxRotation.
func Steer(heading, toTarget vec.Vec2Float, maxRotation float64) vec.Vec2Float {
	if heading.Dot(toTarget) < 0 {
		return CardinalDirection(toTarget)
	}
	return RotateTowards(heading, toTarget, maxRotation)
}

// CardinalDirection выбирает осевое направление по преобладающей компоненте.
// При равных модулях выбирается горизонталь.
func CardinalDirection(d vec.Vec2Float) vec.Vec2Float {
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X > 0 {
			return vec.Right
		}
		return vec.Left
	}
	if d.Y > 0 {
		return vec.Down
	}
	return vec.Up
}

// RotateTowards поворачивает heading к target не более чем на maxRotation радиан
func RotateTowards(heading, target vec.Vec2Float, maxRotation float64) vec.Vec2Float {
	current := heading.Angle()
	goal := target.Angle()
	diff := vec.NormalizeAngle(goal - current)

	if math.Abs(diff) <= maxRotation {
		return vec.FromAngle(goal)
	}
	return vec.FromAngle(current + math.Copysign(maxRotation, diff))
}

// decideAction атакует, если шаг приведёт к столкновению с игроком, иначе идёт
func (e *Enemy) decideAction(w *world.World, dt float64, players []*Player) {
	next := e.Position.Add(e.Direction.Mul(e.params.Speed * dt))

	if e.params.Melee && e.collidesAt(next, players) {
		e.attackMelee()
		return
	}

	e.State = StateMoving
	e.Position = w.Clamp(next, e.Size)
}

// collidesAt проверяет, пересечётся ли враг в точке pos с живым игроком
func (e *Enemy) collidesAt(pos vec.Vec2Float, players []*Player) bool {
	region := physics.HitRegion{Rect: physics.RectFromCenter(pos, e.Size), Mask: e.Mask}
	for _, p := range players {
		if p == nil || !p.Alive() {
			continue
		}
		if region.Overlaps(p.HitRegion()) {
			return true
		}
	}
	return false
}

// MeleeCooldown возвращает перезарядку ближней атаки в секундах
func (e *Enemy) MeleeCooldown() float64 {
	if e.params.MeleeAttackSpeed <= 0 {
		return math.Inf(1)
	}
	return 1.0 / e.params.MeleeAttackSpeed
}

// attackMelee бьёт цель, если перезарядка по игровому времени прошла
func (e *Enemy) attackMelee() {
	now := e.now()
	if e.hasMeleed && now-e.lastMeleeAt < e.MeleeCooldown() {
		e.State = StateIdle
		return
	}
	if e.target == nil || !e.target.Alive() {
		return
	}

	e.State = StateAttackingMelee
	e.target.TakeDamage(e.params.MeleeDamage, "melee")
	e.lastMeleeAt = now
	e.hasMeleed = true
}

// TakeDamage наносит урон. Гибель засчитывается один раз, удаление из мира
// планируется через DeathRemovalDelay.
func (e *Enemy) TakeDamage(amount int, source string) {
	if !e.Alive() {
		return
	}
	e.hit = true
	if !e.applyDamage(amount) {
		return
	}
	e.onDeath(source)
}

func (e *Enemy) onDeath(source string) {
	if e.hooks == nil {
		return
	}
	e.hooks.EnemyKilled(e, source)
	e.hooks.Schedule(e.hooks.Now()+DeathRemovalDelay, func() {
		e.removed = true
	})
}

func (e *Enemy) now() float64 {
	if e.hooks == nil {
		return 0
	}
	return e.hooks.Now()
}
