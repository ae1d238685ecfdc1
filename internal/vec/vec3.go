package vec

import "math"

// Vec3 представляет целочисленную ячейку решётки (одна ячейка = один трайл)
type Vec3 struct {
	X int
	Y int
	Z int
}

// Vec3Float представляет трехмерный вектор с плавающими координатами
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// Часто используемые векторы
var (
	Zero  = Vec3Float{}
	One   = Vec3Float{X: 1, Y: 1, Z: 1}
	Up    = Vec3Float{Y: 1}
	Down  = Vec3Float{Y: -1}
	UnitX = Vec3Float{X: 1}
	UnitY = Vec3Float{Y: 1}
	UnitZ = Vec3Float{Z: 1}
)

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// ToFloat возвращает угол ячейки в мировых координатах
func (v Vec3) ToFloat() Vec3Float {
	return Vec3Float{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// CellOf возвращает ячейку, в которую попадает точка
func CellOf(p Vec3Float) Vec3 {
	return Vec3{
		X: int(math.Floor(p.X)),
		Y: int(math.Floor(p.Y)),
		Z: int(math.Floor(p.Z)),
	}
}

func (v Vec3Float) Add(o Vec3Float) Vec3Float {
	return Vec3Float{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3Float) Sub(o Vec3Float) Vec3Float {
	return Vec3Float{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale умножает вектор на скаляр
func (v Vec3Float) Scale(s float64) Vec3Float {
	return Vec3Float{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Mul покомпонентное умножение (используется для масок осей)
func (v Vec3Float) Mul(o Vec3Float) Vec3Float {
	return Vec3Float{X: v.X * o.X, Y: v.Y * o.Y, Z: v.Z * o.Z}
}

func (v Vec3Float) Neg() Vec3Float {
	return Vec3Float{X: -v.X, Y: -v.Y, Z: -v.Z}
}

func (v Vec3Float) Dot(o Vec3Float) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Abs возвращает вектор из модулей компонент
func (v Vec3Float) Abs() Vec3Float {
	return Vec3Float{X: math.Abs(v.X), Y: math.Abs(v.Y), Z: math.Abs(v.Z)}
}

// Sign возвращает вектор знаков компонент (-1, 0, 1)
func (v Vec3Float) Sign() Vec3Float {
	return Vec3Float{X: sign(v.X), Y: sign(v.Y), Z: sign(v.Z)}
}

// Length возвращает длину вектора
func (v Vec3Float) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// IsZero проверяет, что все компоненты равны нулю
func (v Vec3Float) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Invert возвращает дополнение маски: One - v
func (v Vec3Float) Invert() Vec3Float {
	return One.Sub(v)
}

// Sum возвращает сумму компонент
func (v Vec3Float) Sum() float64 {
	return v.X + v.Y + v.Z
}

// AlmostClamp обнуляет компоненты, модуль которых меньше epsilon
func (v Vec3Float) AlmostClamp(epsilon float64) Vec3Float {
	return Vec3Float{X: almostZero(v.X, epsilon), Y: almostZero(v.Y, epsilon), Z: almostZero(v.Z, epsilon)}
}

// Clamp ограничивает каждую компоненту отрезком [-limit, limit]
func (v Vec3Float) Clamp(limit float64) Vec3Float {
	return Vec3Float{X: clamp(v.X, limit), Y: clamp(v.Y, limit), Z: clamp(v.Z, limit)}
}

// DistanceTo возвращает расстояние до другого вектора
func (v Vec3Float) DistanceTo(other Vec3Float) float64 {
	return v.Sub(other).Length()
}

func sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

func almostZero(f, epsilon float64) float64 {
	if math.Abs(f) < epsilon {
		return 0
	}
	return f
}

func clamp(f, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, f))
}
