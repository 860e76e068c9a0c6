package weapon

// Attack выпускает снаряды оружия и владеет ими до их уничтожения
type Attack struct {
	weapon      *Weapon
	counter     int
	projectiles []*Projectile
}

func newAttack(w *Weapon) *Attack {
	return &Attack{weapon: w}
}

// Execute выполняет атаку: по снаряду на каждую живую назначенную цель.
// Оружие ближнего боя скрывается на время полёта снаряда.
func (a *Attack) Execute() int {
	a.counter++
	if a.weapon.Kind == KindMelee {
		a.weapon.Visible = false
	}

	fired := 0
	for i, t := range a.weapon.targets {
		if i >= a.weapon.MaxTargets {
			break
		}
		if !isLive(t) {
			continue
		}
		a.projectiles = append(a.projectiles, newProjectile(a.weapon))
		fired++
	}
	return fired
}

// Counter возвращает число выполненных атак
func (a *Attack) Counter() int {
	return a.counter
}

// Projectiles возвращает снаряды в полёте
func (a *Attack) Projectiles() []*Projectile {
	return a.projectiles
}

// UpdateProjectiles продвигает снаряды и удаляет отработавшие.
// Возвращает число попаданий за тик.
func (a *Attack) UpdateProjectiles(dt float64, enemies []Target) int {
	hits := 0
	alive := a.projectiles[:0]
	for _, p := range a.projectiles {
		if p.Update(dt, enemies) {
			hits++
		}
		if p.State != ProjectileSpent {
			alive = append(alive, p)
		}
	}
	for i := len(alive); i < len(a.projectiles); i++ {
		a.projectiles[i] = nil
	}
	a.projectiles = alive
	return hits
}

func (a *Attack) reset() {
	a.projectiles = nil
}
