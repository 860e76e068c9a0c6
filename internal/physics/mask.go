package physics

import "github.com/annel0/horde-arena/internal/vec"

// ShapeMask побитовая маска непрозрачных пикселей формы
type ShapeMask struct {
	width  int
	height int
	bits   []bool
}

// NewShapeMask создаёт пустую маску
func NewShapeMask(width, height int) *ShapeMask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &ShapeMask{
		width:  width,
		height: height,
		bits:   make([]bool, width*height),
	}
}

// NewRectMask создаёт полностью заполненную маску
func NewRectMask(width, height int) *ShapeMask {
	m := NewShapeMask(width, height)
	for i := range m.bits {
		m.bits[i] = true
	}
	return m
}

// NewEllipseMask создаёт маску эллипса, вписанного в прямоугольник width x height.
// Используется как силуэт персонажа, пока спрайт недоступен.
func NewEllipseMask(width, height int) *ShapeMask {
	m := NewShapeMask(width, height)
	rx := float64(width) / 2
	ry := float64(height) / 2
	if rx == 0 || ry == 0 {
		return m
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Центр пикселя
			dx := (float64(x) + 0.5 - rx) / rx
			dy := (float64(y) + 0.5 - ry) / ry
			if dx*dx+dy*dy <= 1 {
				m.bits[y*width+x] = true
			}
		}
	}
	return m
}

// Size возвращает размер маски
func (m *ShapeMask) Size() vec.Vec2 {
	return vec.Vec2{X: m.width, Y: m.height}
}

// Get возвращает значение пикселя; за пределами маски: false
func (m *ShapeMask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

// Set устанавливает значение пикселя; за пределами маски вызов игнорируется
func (m *ShapeMask) Set(x, y int, value bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.bits[y*m.width+x] = value
}

// Count возвращает количество установленных пикселей
func (m *ShapeMask) Count() int {
	count := 0
	for _, b := range m.bits {
		if b {
			count++
		}
	}
	return count
}

// Overlap проверяет, пересекается ли маска other, сдвинутая на offset
// относительно левого верхнего угла m, хотя бы одним пикселем
func (m *ShapeMask) Overlap(other *ShapeMask, offset vec.Vec2) bool {
	if m == nil || other == nil {
		return false
	}

	// Область пересечения в координатах m
	startX := max(0, offset.X)
	startY := max(0, offset.Y)
	endX := min(m.width, offset.X+other.width)
	endY := min(m.height, offset.Y+other.height)

	for y := startY; y < endY; y++ {
		for x := startX; x < endX; x++ {
			if m.bits[y*m.width+x] && other.bits[(y-offset.Y)*other.width+(x-offset.X)] {
				return true
			}
		}
	}
	return false
}
