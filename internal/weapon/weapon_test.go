package weapon

import (
	"testing"

	"github.com/annel0/horde-arena/internal/physics"
	"github.com/annel0/horde-arena/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	id     uint64
	pos    vec.Vec2Float
	size   vec.Vec2Float
	health int
	hits   int
}

func newFakeTarget(id uint64, x, y float64) *fakeTarget {
	return &fakeTarget{id: id, pos: vec.Vec2Float{X: x, Y: y}, size: vec.Vec2Float{X: 20, Y: 20}, health: 1000}
}

func (f *fakeTarget) ID() uint64            { return f.id }
func (f *fakeTarget) Center() vec.Vec2Float { return f.pos }
func (f *fakeTarget) Alive() bool           { return f.health > 0 }

func (f *fakeTarget) HitRegion() physics.HitRegion {
	return physics.HitRegion{Rect: physics.RectFromCenter(f.pos, f.size)}
}

func (f *fakeTarget) TakeDamage(amount int, _ string) {
	f.health -= amount
	f.hits++
}

type fakeOwner struct {
	pos vec.Vec2Float
}

func (o *fakeOwner) Center() vec.Vec2Float { return o.pos }

func targets(ts ...*fakeTarget) []Target {
	out := make([]Target, len(ts))
	for i, t := range ts {
		out[i] = t
	}
	return out
}

func TestWeapon_RangeBoundaryInclusive(t *testing.T) {
	tests := []struct {
		name     string
		targetX  float64
		expected bool
	}{
		// оружие стоит на 30 единиц ближе к цели, чем игрок
		{"ровно на границе дальности", 330, true},
		{"за границей дальности", 331, false},
		{"вплотную", 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := &fakeOwner{}
			m := NewManager(owner)
			w := m.Add(DaggerSpec())

			m.Distribute(targets(newFakeTarget(1, tt.targetX, 0)))
			w.updatePosition()
			w.aim()

			assert.InDelta(t, tt.targetX-30, w.Position.DistanceTo(vec.Vec2Float{X: tt.targetX}), 1e-9)
			assert.Equal(t, tt.expected, w.CheckAttackCondition())
		})
	}
}

func TestWeapon_NoTargetDefaults(t *testing.T) {
	owner := &fakeOwner{pos: vec.Vec2Float{X: 100, Y: 100}}
	m := NewManager(owner)
	w := m.Add(DaggerSpec())

	fired, _ := m.Update(0.016, nil)

	assert.Equal(t, 0, fired)
	assert.Nil(t, w.Target())
	assert.False(t, w.CheckAttackCondition(), "Без цели атаки нет")
	assert.Equal(t, vec.Right, w.Direction, "Без цели оружие смотрит вправо")
	assert.Equal(t, vec.Vec2Float{X: 130, Y: 100}, w.Position)
}

func TestWeapon_DeadTargetIsNoTarget(t *testing.T) {
	owner := &fakeOwner{}
	w := New(DaggerSpec(), owner, 0)
	dead := newFakeTarget(1, 50, 0)
	dead.health = 0
	w.SetTargets(targets(dead))

	assert.Nil(t, w.Target(), "Мёртвая цель считается отсутствующей")
	assert.False(t, w.CheckAttackCondition())
}

func TestWeapon_InfiniteRange(t *testing.T) {
	spec := DaggerSpec()
	spec.Range = nil
	w := New(spec, &fakeOwner{}, 0)
	w.SetTargets(targets(newFakeTarget(1, 1e6, 0)))
	w.updatePosition()

	assert.True(t, w.CheckAttackCondition())
	assert.Equal(t, DefaultProjectileSpeed, spec.projectileSpeed())
}

func TestWeapon_AttackCycle(t *testing.T) {
	owner := &fakeOwner{}
	m := NewManager(owner)
	w := m.Add(DaggerSpec())
	enemy := newFakeTarget(1, 200, 0)

	fired, _ := m.Update(0.1, targets(enemy))
	assert.Equal(t, 1, fired)
	assert.Equal(t, StateAttacking, w.State)
	assert.False(t, w.Visible, "Оружие ближнего боя скрыто во время атаки")
	assert.Equal(t, 1, w.Attack().Counter())

	m.Update(0.1, nil)
	assert.Equal(t, StateCooldown, w.State)
	assert.True(t, w.Visible)

	for i := 0; i < 12; i++ {
		m.Update(0.1, nil)
	}
	assert.Equal(t, StateIdle, w.State, "После перезарядки оружие снова готово")
}

func TestManager_RoundRobinDistribution(t *testing.T) {
	owner := &fakeOwner{}
	m := NewManager(owner)
	m.AddMany(DaggerSpec(), 5)

	near := newFakeTarget(1, 100, 0)
	far := newFakeTarget(2, 200, 0)
	m.Distribute(targets(far, near))

	ws := m.Weapons()
	require.Len(t, ws, 5)
	assert.Same(t, near, ws[0].Target())
	assert.Same(t, far, ws[1].Target())
	// оружие i и i+E получают одну цель
	for i := 0; i+2 < len(ws); i++ {
		assert.Same(t, ws[i].Target(), ws[i+2].Target(), "Оружие %d и %d должны делить цель", i, i+2)
	}

	m.Distribute(nil)
	for i, w := range ws {
		assert.Nil(t, w.Target(), "Оружие %d без врагов должно остаться без цели", i)
	}
}

func TestManager_DistributionSkipsDead(t *testing.T) {
	m := NewManager(&fakeOwner{})
	w := m.Add(DaggerSpec())

	dead := newFakeTarget(1, 10, 0)
	dead.health = 0
	alive := newFakeTarget(2, 500, 0)
	m.Distribute(targets(dead, alive))

	assert.Same(t, alive, w.Target())
}

func TestManager_TieBreakByID(t *testing.T) {
	a := newFakeTarget(7, 100, 0)
	b := newFakeTarget(3, -100, 0)

	sorted := SortByDistance(&fakeOwner{}, targets(a, b))

	require.Len(t, sorted, 2)
	assert.Equal(t, uint64(3), sorted[0].ID(), "При равном расстоянии раньше идёт меньший ID")
}

func TestManager_MultipleTargets(t *testing.T) {
	spec := DaggerSpec()
	spec.MaxTargets = 3
	m := NewManager(&fakeOwner{})
	m.AddMany(spec, 2)

	e1 := newFakeTarget(1, 100, 0)
	e2 := newFakeTarget(2, 0, 150)
	m.Distribute(targets(e1, e2))

	ws := m.Weapons()
	assert.Equal(t, []Target{e1, e2}, ws[0].Targets(), "Дополнительных целей не больше числа врагов")
	assert.Equal(t, []Target{e2, e1}, ws[1].Targets())
}

func TestProjectile_PiercesOnceThenSpent(t *testing.T) {
	spec := DaggerSpec()
	spec.PiercingCount = 1
	m := NewManager(&fakeOwner{})
	w := m.Add(spec)

	first := newFakeTarget(1, 100, 0)
	second := newFakeTarget(2, 160, 0)
	third := newFakeTarget(3, 220, 0)
	enemies := targets(first, second, third)

	fired, _ := m.Update(0.01, enemies)
	require.Equal(t, 1, fired)
	require.Len(t, w.Attack().Projectiles(), 1)
	p := w.Attack().Projectiles()[0]
	assert.InDelta(t, 1500.0, p.Speed, 1e-6, "Снаряд пролетает дальность за время атаки")

	totalHits := 0
	for i := 0; i < 15; i++ {
		_, hits := m.Update(0.01, enemies)
		totalHits += hits
	}

	assert.Equal(t, 1, first.hits, "Первый враг поражён ровно один раз")
	assert.Equal(t, 1, second.hits, "Второй враг поражён ровно один раз")
	assert.Equal(t, 0, third.hits, "После второго попадания снаряд уничтожен")
	assert.Equal(t, 2, totalHits)
	assert.Equal(t, ProjectileSpent, p.State)
	assert.Empty(t, w.Attack().Projectiles())
}

func TestProjectile_ExpiresAfterAttackDuration(t *testing.T) {
	m := NewManager(&fakeOwner{})
	w := m.Add(DaggerSpec())

	m.Update(0.01, targets(newFakeTarget(1, 200, 0)))
	require.Len(t, w.Attack().Projectiles(), 1)

	for i := 0; i < 25; i++ {
		m.Update(0.01, nil)
	}
	assert.Empty(t, w.Attack().Projectiles(), "Снаряд живёт не дольше длительности атаки")
}

func TestProjectile_RotatedBounds(t *testing.T) {
	size := physics.RotatedSize(vec.Vec2Float{X: 20, Y: 10}, vec.Down)
	assert.InDelta(t, 10, size.X, 1e-9)
	assert.InDelta(t, 20, size.Y, 1e-9)
}

func TestProjectile_OneHitPerTick(t *testing.T) {
	spec := DaggerSpec()
	spec.PiercingCount = 5
	m := NewManager(&fakeOwner{})
	w := m.Add(spec)

	a := newFakeTarget(1, 100, 0)
	b := newFakeTarget(2, 101, 0)
	enemies := targets(a, b)

	hits := 0
	for i := 0; i < 15 && hits == 0; i++ {
		_, hits = m.Update(0.01, enemies)
	}
	require.Equal(t, 1, hits, "Снаряд задевает обоих врагов, но поражает одного")
	require.Len(t, w.Attack().Projectiles(), 1)
	p := w.Attack().Projectiles()[0]
	require.True(t, p.Bounds().Overlaps(b.HitRegion().Rect), "Второй враг уже пересекается со снарядом")
	assert.Equal(t, 1, a.hits)
	assert.Equal(t, 0, b.hits)

	_, hits = m.Update(0.01, enemies)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, a.hits, "Повторно тот же враг не поражается")
	assert.Equal(t, 1, b.hits, "Второй враг поражён на следующем тике")
	assert.Equal(t, 3, p.PierceLeft())
}
