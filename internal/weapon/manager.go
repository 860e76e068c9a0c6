package weapon

import (
	"cmp"
	"slices"
)

// Manager управляет оружием одного игрока и распределяет между ним цели
type Manager struct {
	owner   Owner
	weapons []*Weapon
}

// NewManager создаёт пустой менеджер оружия
func NewManager(owner Owner) *Manager {
	return &Manager{owner: owner}
}

// Add добавляет оружие в следующий слот
func (m *Manager) Add(spec Spec) *Weapon {
	w := New(spec, m.owner, len(m.weapons))
	m.weapons = append(m.weapons, w)
	return w
}

// AddMany добавляет count одинаковых стволов
func (m *Manager) AddMany(spec Spec, count int) {
	for i := 0; i < count; i++ {
		m.Add(spec)
	}
}

// Weapons возвращает оружие в порядке слотов
func (m *Manager) Weapons() []*Weapon {
	return m.weapons
}

// ProjectileCount возвращает число снарядов в полёте
func (m *Manager) ProjectileCount() int {
	n := 0
	for _, w := range m.weapons {
		n += len(w.attack.projectiles)
	}
	return n
}

// SortByDistance возвращает живых врагов по возрастанию расстояния от точки.
// При равных расстояниях раньше идёт враг с меньшим ID.
func SortByDistance(from Owner, enemies []Target) []Target {
	type ranked struct {
		target   Target
		distance float64
	}

	origin := from.Center()
	live := make([]ranked, 0, len(enemies))
	for _, e := range enemies {
		if !isLive(e) {
			continue
		}
		live = append(live, ranked{target: e, distance: origin.DistanceTo(e.Center())})
	}

	slices.SortStableFunc(live, func(a, b ranked) int {
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		return cmp.Compare(a.target.ID(), b.target.ID())
	})

	sorted := make([]Target, len(live))
	for i, r := range live {
		sorted[i] = r.target
	}
	return sorted
}

// Distribute назначает цели по кругу: оружие i получает i-го ближайшего
// врага (по модулю числа врагов), дополнительные цели берутся следующими по списку.
// Без врагов цели у всех стволов сбрасываются.
func (m *Manager) Distribute(enemies []Target) {
	if m.owner == nil {
		m.clearTargets()
		return
	}

	sorted := SortByDistance(m.owner, enemies)
	count := len(sorted)
	if count == 0 {
		m.clearTargets()
		return
	}

	for i, w := range m.weapons {
		n := min(w.MaxTargets, count)
		targets := make([]Target, 0, n)
		for k := 0; k < n; k++ {
			targets = append(targets, sorted[(i+k)%count])
		}
		w.SetTargets(targets)
	}
}

// Update распределяет цели и продвигает оружие и его снаряды.
// Возвращает число выпущенных снарядов и попаданий за тик.
func (m *Manager) Update(dt float64, enemies []Target) (fired, hits int) {
	m.Distribute(enemies)
	for _, w := range m.weapons {
		fired += w.Update(dt)
		hits += w.attack.UpdateProjectiles(dt, enemies)
	}
	return fired, hits
}

// Reset возвращает всё оружие в исходное состояние
func (m *Manager) Reset() {
	for _, w := range m.weapons {
		w.Reset()
	}
}

func (m *Manager) clearTargets() {
	for _, w := range m.weapons {
		w.SetTargets(nil)
	}
}
