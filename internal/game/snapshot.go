package game

import (
	"github.com/annel0/horde-arena/internal/entity"
	"github.com/annel0/horde-arena/internal/vec"
)

// Виды отрисовываемых объектов
const (
	KindPlayer     = "player"
	KindEnemy      = "enemy"
	KindWeapon     = "weapon"
	KindProjectile = "projectile"
)

// Drawable то, что нужно отрисовщику для одного объекта
type Drawable struct {
	ID        uint64  `json:"id,omitempty"`
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"w"`
	Height    float64 `json:"h"`
	Angle     float64 `json:"angle"`
	Visible   bool    `json:"visible"`
	State     string  `json:"state"`
	Facing    string  `json:"facing,omitempty"`
	Health    int     `json:"health,omitempty"`
	MaxHealth int     `json:"max_health,omitempty"`
	Attacks   int     `json:"attacks,omitempty"`
}

// Bounds игровая область и её смещение на экране
type Bounds struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	ScreenW int     `json:"screen_w"`
	ScreenH int     `json:"screen_h"`
}

// PlayerHUD показатели одного игрока
type PlayerHUD struct {
	Index     int  `json:"index"`
	Health    int  `json:"health"`
	MaxHealth int  `json:"max_health"`
	Alive     bool `json:"alive"`
}

// HUD данные для интерфейса
type HUD struct {
	Players  []PlayerHUD `json:"players"`
	GameTime float64     `json:"game_time"`
	Kills    int         `json:"kills"`
	Wave     int         `json:"wave"`
	Enemies  int         `json:"enemies"`
	GameOver bool        `json:"game_over"`
}

// Snapshot копия состояния кадра только для чтения
type Snapshot struct {
	Tick        uint64     `json:"tick"`
	Bounds      Bounds     `json:"bounds"`
	Players     []Drawable `json:"players"`
	Enemies     []Drawable `json:"enemies"`
	Weapons     []Drawable `json:"weapons"`
	Projectiles []Drawable `json:"projectiles"`
	HUD         HUD        `json:"hud"`
}

// HUD собирает данные интерфейса
func (s *Simulation) HUD() HUD {
	hud := HUD{
		Players:  make([]PlayerHUD, 0, len(s.players)),
		GameTime: s.state.GameTime,
		Kills:    s.state.KillCounter,
		Wave:     s.state.WaveIndex,
		Enemies:  s.LiveEnemies(),
		GameOver: s.state.GameOver,
	}
	for _, p := range s.players {
		hud.Players = append(hud.Players, PlayerHUD{
			Index:     p.Index,
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
			Alive:     p.Alive(),
		})
	}
	return hud
}

// Snapshot собирает снимок кадра. Срезы принадлежат вызывающему.
func (s *Simulation) Snapshot() Snapshot {
	size := s.world.Boundaries()
	offset := s.world.DrawOffset()
	screen := s.world.ScreenSize()

	snap := Snapshot{
		Tick: s.state.Tick,
		Bounds: Bounds{
			Width:   size.Width,
			Height:  size.Height,
			OffsetX: offset.X,
			OffsetY: offset.Y,
			ScreenW: screen.X,
			ScreenH: screen.Y,
		},
		Players: make([]Drawable, 0, len(s.players)),
		Enemies: make([]Drawable, 0, len(s.enemies)),
		HUD:     s.HUD(),
	}

	for _, p := range s.players {
		snap.Players = append(snap.Players, Drawable{
			ID:        p.ID(),
			Kind:      KindPlayer,
			X:         p.Position.X,
			Y:         p.Position.Y,
			Width:     p.Size.X,
			Height:    p.Size.Y,
			Visible:   true,
			State:     string(p.State),
			Facing:    string(p.Facing),
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
		})

		for _, w := range p.Weapons.Weapons() {
			snap.Weapons = append(snap.Weapons, Drawable{
				Kind:    KindWeapon,
				X:       w.Position.X,
				Y:       w.Position.Y,
				Width:   w.SpriteSize.X,
				Height:  w.SpriteSize.Y,
				Angle:   w.Direction.Angle(),
				Visible: w.Visible && p.Alive(),
				State:   string(w.State),
				Attacks: w.Attack().Counter(),
			})
			for _, pr := range w.Attack().Projectiles() {
				snap.Projectiles = append(snap.Projectiles, Drawable{
					Kind:    KindProjectile,
					X:       pr.Position.X,
					Y:       pr.Position.Y,
					Width:   w.SpriteSize.X,
					Height:  w.SpriteSize.Y,
					Angle:   pr.Direction.Angle(),
					Visible: true,
					State:   string(pr.State),
				})
			}
		}
	}

	for _, e := range s.enemies {
		snap.Enemies = append(snap.Enemies, Drawable{
			ID:        e.ID(),
			Kind:      KindEnemy,
			X:         e.Position.X,
			Y:         e.Position.Y,
			Width:     e.Size.X,
			Height:    e.Size.Y,
			Angle:     e.Direction.Angle(),
			Visible:   true,
			State:     string(e.DisplayState()),
			Health:    e.Health,
			MaxHealth: e.MaxHealth,
		})
	}

	return snap
}

// ScreenPosition переводит мировые координаты в экранные
func (b Bounds) ScreenPosition(x, y float64) vec.Vec2Float {
	return vec.Vec2Float{X: x + b.OffsetX, Y: y + b.OffsetY}
}

var _ entity.Hooks = (*simHooks)(nil)
