package world

import (
	"math/rand"

	"github.com/annel0/horde-arena/internal/physics"
	"github.com/annel0/horde-arena/internal/vec"
)

const (
	// WorldScreenRatio доля экрана, занимаемая миром
	WorldScreenRatio = 0.9
	// MarginRatio доля меньшей стороны мира, уходящая на поля
	MarginRatio = 0.01
)

// World описывает игровое поле, производное от размеров экрана.
// Игровая область: прямоугольник [0, PlayableWidth] × [0, PlayableHeight]
// в мировых координатах; на экране она смещена на DrawOffset.
type World struct {
	screen   vec.Vec2 // Размер экрана в пикселях
	size     vec.Vec2 // Размер мира с полями
	margin   int      // Ширина поля
	playable vec.Vec2 // Размер игровой области
}

// New создаёт мир по размеру экрана
func New(screenWidth, screenHeight int) *World {
	w := &World{}
	w.Resize(screenWidth, screenHeight)
	return w
}

// Resize пересчитывает размеры мира под новый экран
func (w *World) Resize(screenWidth, screenHeight int) {
	w.screen = vec.Vec2{X: screenWidth, Y: screenHeight}
	w.size = vec.Vec2{
		X: int(float64(screenWidth) * WorldScreenRatio),
		Y: int(float64(screenHeight) * WorldScreenRatio),
	}
	w.margin = int(float64(min(w.size.X, w.size.Y)) * MarginRatio)
	w.playable = vec.Vec2{
		X: max(w.size.X-2*w.margin, 0),
		Y: max(w.size.Y-2*w.margin, 0),
	}
}

// ScreenSize возвращает размер экрана
func (w *World) ScreenSize() vec.Vec2 { return w.screen }

// Size возвращает размер мира вместе с полями
func (w *World) Size() vec.Vec2 { return w.size }

// Margin возвращает ширину поля
func (w *World) Margin() int { return w.margin }

// PlayableSize возвращает размер игровой области
func (w *World) PlayableSize() vec.Vec2 { return w.playable }

// Boundaries возвращает игровую область в мировых координатах
func (w *World) Boundaries() physics.Rect {
	return physics.Rect{
		X:      0,
		Y:      0,
		Width:  float64(w.playable.X),
		Height: float64(w.playable.Y),
	}
}

// Center возвращает центр игровой области
func (w *World) Center() vec.Vec2Float {
	return w.Boundaries().Center()
}

// DrawOffset возвращает смещение игровой области на экране:
// мир центрируется на экране, игровая область: внутри мира с учётом полей.
func (w *World) DrawOffset() vec.Vec2Float {
	return vec.Vec2Float{
		X: float64((w.screen.X-w.size.X)/2 + w.margin),
		Y: float64((w.screen.Y-w.size.Y)/2 + w.margin),
	}
}

// Clamp удерживает центр объекта заданного размера внутри игровой области
func (w *World) Clamp(center, size vec.Vec2Float) vec.Vec2Float {
	return w.Boundaries().ClampCenter(center, size)
}

// RandomPoint возвращает равномерно распределённую точку, в которой объект
// размера size целиком помещается в игровую область
func (w *World) RandomPoint(rng *rand.Rand, size vec.Vec2Float) vec.Vec2Float {
	b := w.Boundaries()
	spanX := b.Width - size.X
	spanY := b.Height - size.Y
	p := vec.Vec2Float{X: b.Width / 2, Y: b.Height / 2}
	if spanX > 0 {
		p.X = size.X/2 + rng.Float64()*spanX
	}
	if spanY > 0 {
		p.Y = size.Y/2 + rng.Float64()*spanY
	}
	return p
}
