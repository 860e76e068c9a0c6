package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/annel0/horde-arena/internal/config"
	"github.com/annel0/horde-arena/internal/entity"
	"github.com/annel0/horde-arena/internal/game"
	"github.com/annel0/horde-arena/internal/logging"
)

var (
	colorBackground = color.RGBA{20, 20, 28, 255}
	colorArena      = color.RGBA{40, 44, 56, 255}
	colorPlayer     = color.RGBA{80, 160, 255, 255}
	colorDeadPlayer = color.RGBA{90, 90, 90, 255}
	colorEnemy      = color.RGBA{220, 70, 70, 255}
	colorAttacking  = color.RGBA{255, 160, 60, 255}
	colorWeapon     = color.RGBA{240, 240, 240, 255}
	colorProjectile = color.RGBA{255, 230, 90, 255}
	colorHealthBack = color.RGBA{100, 0, 0, 255}
	colorHealth     = color.RGBA{0, 255, 0, 255}
)

// keyLayout клавиши управления одного игрока
type keyLayout struct {
	up, down, left, right ebiten.Key
}

var layouts = []keyLayout{
	{up: ebiten.KeyW, down: ebiten.KeyS, left: ebiten.KeyA, right: ebiten.KeyD},
	{up: ebiten.KeyArrowUp, down: ebiten.KeyArrowDown, left: ebiten.KeyArrowLeft, right: ebiten.KeyArrowRight},
}

// arena связывает симуляцию с окном ebiten
type arena struct {
	sim    *game.Simulation
	inputs []entity.InputState
	width  int
	height int
}

func (a *arena) Update() error {
	for i := range a.inputs {
		a.inputs[i] = readInput(i)
	}
	a.sim.Tick(1/float64(ebiten.TPS()), a.inputs)
	return nil
}

func readInput(player int) entity.InputState {
	var in entity.InputState
	if player < len(layouts) {
		l := layouts[player]
		in.Up = ebiten.IsKeyPressed(l.up)
		in.Down = ebiten.IsKeyPressed(l.down)
		in.Left = ebiten.IsKeyPressed(l.left)
		in.Right = ebiten.IsKeyPressed(l.right)
	}
	in.Start = ebiten.IsKeyPressed(ebiten.KeyEnter) || ebiten.IsKeyPressed(ebiten.KeySpace)
	return in
}

func (a *arena) Draw(screen *ebiten.Image) {
	snap := a.sim.Snapshot()
	b := snap.Bounds

	screen.Fill(colorBackground)
	vector.DrawFilledRect(screen, float32(b.OffsetX), float32(b.OffsetY), float32(b.Width), float32(b.Height), colorArena, false)

	for _, e := range snap.Enemies {
		clr := colorEnemy
		switch entity.State(e.State) {
		case entity.StateAttackingMelee:
			clr = colorAttacking
		case entity.StateHit:
			clr = colorWeapon
		}
		drawBox(screen, b, e, clr)
		drawHealthBar(screen, b, e)
	}
	for _, p := range snap.Players {
		clr := colorPlayer
		if entity.State(p.State) == entity.StateDead {
			clr = colorDeadPlayer
		}
		drawBox(screen, b, p, clr)
		drawHealthBar(screen, b, p)
	}
	for _, w := range snap.Weapons {
		if w.Visible {
			drawBox(screen, b, w, colorWeapon)
		}
	}
	for _, pr := range snap.Projectiles {
		drawBox(screen, b, pr, colorProjectile)
	}

	drawHUD(screen, snap)
}

func drawBox(screen *ebiten.Image, b game.Bounds, d game.Drawable, clr color.Color) {
	pos := b.ScreenPosition(d.X-d.Width/2, d.Y-d.Height/2)
	vector.DrawFilledRect(screen, float32(pos.X), float32(pos.Y), float32(d.Width), float32(d.Height), clr, true)
}

func drawHealthBar(screen *ebiten.Image, b game.Bounds, d game.Drawable) {
	if d.MaxHealth <= 0 {
		return
	}
	const barHeight = 4
	pos := b.ScreenPosition(d.X-d.Width/2, d.Y-d.Height/2-barHeight-2)
	ratio := float64(max(d.Health, 0)) / float64(d.MaxHealth)
	vector.DrawFilledRect(screen, float32(pos.X), float32(pos.Y), float32(d.Width), barHeight, colorHealthBack, true)
	vector.DrawFilledRect(screen, float32(pos.X), float32(pos.Y), float32(d.Width*ratio), barHeight, colorHealth, true)
}

func drawHUD(screen *ebiten.Image, snap game.Snapshot) {
	hud := snap.HUD
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Время: %.1f  Волна: %d  Убито: %d  Врагов: %d",
		hud.GameTime, hud.Wave, hud.Kills, hud.Enemies), 8, 8)
	for i, p := range hud.Players {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Игрок %d: %d/%d", p.Index+1, p.Health, p.MaxHealth), 8, 24+16*i)
	}
	if hud.GameOver {
		ebitenutil.DebugPrintAt(screen, "ИГРА ОКОНЧЕНА - Enter для рестарта", snap.Bounds.ScreenW/2-100, snap.Bounds.ScreenH/2)
	}
}

func (a *arena) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != a.width || outsideHeight != a.height {
		a.width, a.height = outsideWidth, outsideHeight
		a.sim.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func main() {
	configPath := flag.String("config", os.Getenv("HORDE_CONFIG"), "путь к YAML конфигурации")
	flag.Parse()

	if err := logging.InitDefaultLogger("arena"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	params, err := cfg.GameParams()
	if err != nil {
		log.Fatalf("❌ Некорректные параметры игры: %v", err)
	}

	sim := game.New(params, nil)
	sim.Start()

	a := &arena{
		sim:    sim,
		inputs: make([]entity.InputState, len(sim.Players())),
		width:  params.ScreenWidth,
		height: params.ScreenHeight,
	}

	ebiten.SetWindowSize(params.ScreenWidth, params.ScreenHeight)
	ebiten.SetWindowTitle("Horde Arena")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Simulation.FPS)

	logging.Info("🎮 Локальная арена запущена: %d игрок(ов)", len(a.inputs))
	if err := ebiten.RunGame(a); err != nil {
		log.Fatalf("❌ %v", err)
	}
}
