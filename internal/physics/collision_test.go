package physics

import (
	"testing"

	"github.com/annel0/horde-arena/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestRect_Overlaps(t *testing.T) {
	a := RectFromCenter(vec.Vec2Float{X: 0, Y: 0}, vec.Vec2Float{X: 20, Y: 20})

	tests := []struct {
		name   string
		center vec.Vec2Float
		want   bool
	}{
		{"совпадают", vec.Vec2Float{X: 0, Y: 0}, true},
		{"частичное пересечение", vec.Vec2Float{X: 15, Y: 5}, true},
		{"касание ребром", vec.Vec2Float{X: 20, Y: 0}, false},
		{"далеко", vec.Vec2Float{X: 100, Y: 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := RectFromCenter(tt.center, vec.Vec2Float{X: 20, Y: 20})
			assert.Equal(t, tt.want, a.Overlaps(b))
			assert.Equal(t, tt.want, b.Overlaps(a), "Пересечение должно быть симметричным")
		})
	}
}

func TestRect_ClampCenter(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 100, Height: 50}
	size := vec.Vec2Float{X: 20, Y: 10}

	assert.Equal(t, vec.Vec2Float{X: 10, Y: 5}, bounds.ClampCenter(vec.Vec2Float{X: -30, Y: -30}, size))
	assert.Equal(t, vec.Vec2Float{X: 90, Y: 45}, bounds.ClampCenter(vec.Vec2Float{X: 300, Y: 300}, size))
	assert.Equal(t, vec.Vec2Float{X: 50, Y: 20}, bounds.ClampCenter(vec.Vec2Float{X: 50, Y: 20}, size))
}

func TestRotatedSize(t *testing.T) {
	size := vec.Vec2Float{X: 20, Y: 10}

	horizontal := RotatedSize(size, vec.Right)
	assert.InDelta(t, 20, horizontal.X, 1e-9)
	assert.InDelta(t, 10, horizontal.Y, 1e-9)

	vertical := RotatedSize(size, vec.Down)
	assert.InDelta(t, 10, vertical.X, 1e-9)
	assert.InDelta(t, 20, vertical.Y, 1e-9)

	degenerate := RotatedSize(size, vec.Vec2Float{})
	assert.Equal(t, size, degenerate, "Без направления размер не меняется")
}

func TestHitRegion_MaskRefinesRect(t *testing.T) {
	// Эллипс 40x40: углы описанного прямоугольника пустые
	player := HitRegion{
		Rect: RectFromCenter(vec.Vec2Float{X: 20, Y: 20}, vec.Vec2Float{X: 40, Y: 40}),
		Mask: NewEllipseMask(40, 40),
	}

	// Маленький квадрат в левом верхнем углу: прямоугольники пересекаются, маски нет
	corner := HitRegion{Rect: Rect{X: -2, Y: -2, Width: 4, Height: 4}}
	assert.True(t, player.Rect.Overlaps(corner.Rect))
	assert.False(t, player.Overlaps(corner), "Угол эллипса пустой")

	// Квадрат у центра пересекается по маске
	center := HitRegion{Rect: RectFromCenter(vec.Vec2Float{X: 20, Y: 20}, vec.Vec2Float{X: 4, Y: 4})}
	assert.True(t, player.Overlaps(center))
	assert.True(t, center.Overlaps(player))
}

func TestShapeMask_Overlap(t *testing.T) {
	a := NewShapeMask(4, 4)
	a.Set(3, 3, true)
	b := NewShapeMask(4, 4)
	b.Set(0, 0, true)

	assert.True(t, a.Overlap(b, vec.Vec2{X: 3, Y: 3}))
	assert.False(t, a.Overlap(b, vec.Vec2{X: 2, Y: 3}))
	assert.False(t, a.Overlap(b, vec.Vec2{X: 10, Y: 10}), "Маски не перекрываются")
	assert.True(t, b.Overlap(a, vec.Vec2{X: -3, Y: -3}))

	assert.Equal(t, 16, NewRectMask(4, 4).Count())
	assert.False(t, a.Get(-1, 0))
}
