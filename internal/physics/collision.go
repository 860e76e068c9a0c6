package physics

import (
	"math"

	"github.com/annel0/horde-arena/internal/vec"
)

// Rect представляет ось-ориентированный прямоугольник в мировых координатах
type Rect struct {
	X, Y          float64 // Левый верхний угол
	Width, Height float64
}

// RectFromCenter создаёт прямоугольник с центром в указанной точке
func RectFromCenter(center, size vec.Vec2Float) Rect {
	return Rect{
		X:      center.X - size.X/2,
		Y:      center.Y - size.Y/2,
		Width:  size.X,
		Height: size.Y,
	}
}

// Left возвращает левую границу
func (r Rect) Left() float64 { return r.X }

// Top возвращает верхнюю границу
func (r Rect) Top() float64 { return r.Y }

// Right возвращает правую границу
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom возвращает нижнюю границу
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center возвращает центр прямоугольника
func (r Rect) Center() vec.Vec2Float {
	return vec.Vec2Float{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Overlaps проверяет пересечение двух прямоугольников.
// Касание рёбрами пересечением не считается.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.Right() &&
		r.Right() > other.X &&
		r.Y < other.Bottom() &&
		r.Bottom() > other.Y
}

// ContainsPoint проверяет, находится ли точка внутри прямоугольника
func (r Rect) ContainsPoint(p vec.Vec2Float) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// ClampCenter ограничивает центр объекта размера size так, чтобы объект целиком
// оставался внутри r
func (r Rect) ClampCenter(center, size vec.Vec2Float) vec.Vec2Float {
	halfWidth := size.X / 2
	halfHeight := size.Y / 2

	return vec.Vec2Float{
		X: math.Max(r.Left()+halfWidth, math.Min(r.Right()-halfWidth, center.X)),
		Y: math.Max(r.Top()+halfHeight, math.Min(r.Bottom()-halfHeight, center.Y)),
	}
}

// RotatedSize возвращает размер описанного AABB для прямоугольника size,
// повёрнутого по направлению dir
func RotatedSize(size, dir vec.Vec2Float) vec.Vec2Float {
	cos := math.Abs(dir.X)
	sin := math.Abs(dir.Y)
	if n := dir.Length(); n > 0 {
		cos /= n
		sin /= n
	} else {
		cos, sin = 1, 0
	}
	return vec.Vec2Float{
		X: size.X*cos + size.Y*sin,
		Y: size.X*sin + size.Y*cos,
	}
}

// HitRegion описывает область попадания: грубый прямоугольник и, при наличии,
// точная маска формы. Маска nil означает сплошной прямоугольник.
type HitRegion struct {
	Rect Rect
	Mask *ShapeMask
}

// Overlaps проверяет пересечение двух областей: сначала по прямоугольникам,
// затем по маскам, если хотя бы у одной области маска задана
func (h HitRegion) Overlaps(other HitRegion) bool {
	if !h.Rect.Overlaps(other.Rect) {
		return false
	}
	if h.Mask == nil && other.Mask == nil {
		return true
	}

	a := h.Mask
	if a == nil {
		a = NewRectMask(pixels(h.Rect.Width), pixels(h.Rect.Height))
	}
	b := other.Mask
	if b == nil {
		b = NewRectMask(pixels(other.Rect.Width), pixels(other.Rect.Height))
	}

	offset := vec.Vec2{
		X: int(math.Round(other.Rect.X - h.Rect.X)),
		Y: int(math.Round(other.Rect.Y - h.Rect.Y)),
	}
	return a.Overlap(b, offset)
}

func pixels(v float64) int {
	return int(math.Ceil(v))
}
