package config

import (
	"fmt"

	"github.com/annel0/horde-arena/internal/entity"
	"github.com/annel0/horde-arena/internal/game"
	"github.com/annel0/horde-arena/internal/vec"
	"github.com/annel0/horde-arena/internal/weapon"
)

// WeaponSpec собирает характеристики оружия по имени
func (c *Config) WeaponSpec(name string) (weapon.Spec, error) {
	wc, ok := c.Weapons[name]
	if !ok {
		return weapon.Spec{}, fmt.Errorf("оружие %q не описано", name)
	}

	spec := weapon.Spec{
		Name:             name,
		Kind:             weapon.Kind(wc.Kind),
		Damage:           wc.Damage,
		AttackDuration:   wc.AttackDuration,
		CooldownDuration: wc.CooldownDuration,
		PiercingCount:    wc.PiercingCount,
		MaxTargets:       wc.MaxTargets,
		Offset:           wc.Offset,
		SpriteSize:       vec.Vec2Float{X: wc.Width, Y: wc.Height},
		ProjectileSpeed:  wc.ProjectileSpeed,
	}
	if wc.Range > 0 {
		r := wc.Range
		spec.Range = &r
	}
	if spec.ProjectileSpeed <= 0 {
		spec.ProjectileSpeed = weapon.DefaultProjectileSpeed
	}
	return spec, nil
}

// GameParams переводит конфигурацию в параметры симуляции
func (c *Config) GameParams() (game.Params, error) {
	params := game.Params{
		ScreenWidth:  c.Simulation.ScreenWidth,
		ScreenHeight: c.Simulation.ScreenHeight,
		MaxDeltaTime: c.Simulation.MaxDeltaTime,
		Seed:         c.Simulation.Seed,
		Players:      c.Simulation.Players,
		PlayerSpread: c.Simulation.PlayerSpread,
		Player: entity.PlayerParams{
			Speed:       c.Player.Speed,
			Size:        vec.Vec2Float{X: c.Player.Width, Y: c.Player.Height},
			MaxHealth:   c.Player.Health,
			HitShape:    c.Player.HitShape,
			WeaponCount: c.Player.WeaponCount,
		},
		Enemy: entity.EnemyParams{
			Speed:            c.Enemy.Speed,
			Size:             vec.Vec2Float{X: c.Enemy.Width, Y: c.Enemy.Height},
			MaxHealth:        c.Enemy.Health,
			Melee:            c.Enemy.Melee,
			MeleeDamage:      c.Enemy.MeleeDamage,
			MeleeAttackSpeed: c.Enemy.MeleeAttackSpeed,
			RotationSpeed:    c.Enemy.RotationSpeed,
		},
		Wave: game.WaveParams{
			BaseEnemies:    c.Waves.BaseEnemies,
			EnemiesPerWave: c.Waves.EnemiesPerWave,
			Interval:       c.Waves.Interval,
			FirstDelay:     c.Waves.FirstDelay,
			RestartDelay:   c.Waves.RestartDelay,
		},
	}

	if c.Player.WeaponCount > 0 {
		spec, err := c.WeaponSpec(c.Player.StartingWeapon)
		if err != nil {
			return game.Params{}, fmt.Errorf("стартовое оружие: %w", err)
		}
		params.Player.Weapon = spec
	}
	return params, nil
}
