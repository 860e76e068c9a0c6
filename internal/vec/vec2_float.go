package vec

import "math"

// Vec2Float представляет 2D координаты с плавающей точкой
type Vec2Float struct {
	X, Y float64
}

// Единичные векторы сторон света (ось Y направлена вниз, как на экране)
var (
	Right = Vec2Float{X: 1, Y: 0}
	Left  = Vec2Float{X: -1, Y: 0}
	Down  = Vec2Float{X: 0, Y: 1}
	Up    = Vec2Float{X: 0, Y: -1}
)

// ToVec2 преобразует в целочисленные координаты (отбрасывая дробную часть)
func (v Vec2Float) ToVec2() Vec2 {
	return Vec2{X: int(v.X), Y: int(v.Y)}
}

// FromVec2 создает Vec2Float из Vec2
func FromVec2(v Vec2) Vec2Float {
	return Vec2Float{X: float64(v.X), Y: float64(v.Y)}
}

// FromAngle возвращает единичный вектор для угла в радианах
func FromAngle(angle float64) Vec2Float {
	return Vec2Float{X: math.Cos(angle), Y: math.Sin(angle)}
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Dot возвращает скалярное произведение
func (v Vec2Float) Dot(other Vec2Float) float64 {
	return v.X*other.X + v.Y*other.Y
}

// IsZero сообщает, является ли вектор нулевым
func (v Vec2Float) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalized возвращает нормализованный вектор
func (v Vec2Float) Normalized() Vec2Float {
	length := v.Length()
	if length == 0 {
		return Vec2Float{X: 0, Y: 0}
	}
	return Vec2Float{X: v.X / length, Y: v.Y / length}
}

// TryNormalize нормализует вектор; для вектора нулевой длины возвращает false
// и исходный вектор без изменений
func (v Vec2Float) TryNormalize() (Vec2Float, bool) {
	length := v.Length()
	if length == 0 {
		return v, false
	}
	return Vec2Float{X: v.X / length, Y: v.Y / length}, true
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Angle возвращает угол вектора относительно оси X в радианах
func (v Vec2Float) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// AngleTo возвращает кратчайший поворот от v к other в диапазоне (-π, π]
func (v Vec2Float) AngleTo(other Vec2Float) float64 {
	return NormalizeAngle(other.Angle() - v.Angle())
}

// NormalizeAngle приводит угол к диапазону (-π, π]
func NormalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}
