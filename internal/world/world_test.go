package world

import (
	"math/rand"
	"testing"

	"github.com/annel0/horde-arena/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestWorld_Dimensions(t *testing.T) {
	w := New(1280, 720)

	assert.Equal(t, vec.Vec2{X: 1152, Y: 648}, w.Size(), "Мир занимает 90% экрана")
	assert.Equal(t, 6, w.Margin(), "Поле: 1% меньшей стороны")
	assert.Equal(t, vec.Vec2{X: 1140, Y: 636}, w.PlayableSize())

	b := w.Boundaries()
	assert.Equal(t, 0.0, b.Left())
	assert.Equal(t, 0.0, b.Top())
	assert.Equal(t, 1140.0, b.Right())
	assert.Equal(t, 636.0, b.Bottom())
}

func TestWorld_DrawOffset(t *testing.T) {
	w := New(1280, 720)
	// (1280-1152)/2 + 6 = 70, (720-648)/2 + 6 = 42
	assert.Equal(t, vec.Vec2Float{X: 70, Y: 42}, w.DrawOffset())
}

func TestWorld_Resize(t *testing.T) {
	w := New(1280, 720)
	w.Resize(1000, 1000)

	assert.Equal(t, vec.Vec2{X: 900, Y: 900}, w.Size())
	assert.Equal(t, 9, w.Margin())
	assert.Equal(t, vec.Vec2{X: 882, Y: 882}, w.PlayableSize())
}

func TestWorld_RandomPointInBounds(t *testing.T) {
	w := New(1280, 720)
	rng := rand.New(rand.NewSource(42))
	size := vec.Vec2Float{X: 20, Y: 20}
	b := w.Boundaries()

	for i := 0; i < 1000; i++ {
		p := w.RandomPoint(rng, size)
		assert.GreaterOrEqual(t, p.X, b.Left()+size.X/2)
		assert.LessOrEqual(t, p.X, b.Right()-size.X/2)
		assert.GreaterOrEqual(t, p.Y, b.Top()+size.Y/2)
		assert.LessOrEqual(t, p.Y, b.Bottom()-size.Y/2)
	}
}

func TestWorld_Clamp(t *testing.T) {
	w := New(1280, 720)
	size := vec.Vec2Float{X: 42, Y: 75}

	got := w.Clamp(vec.Vec2Float{X: -100, Y: 10000}, size)
	assert.Equal(t, vec.Vec2Float{X: 21, Y: 636 - 37.5}, got)
}
