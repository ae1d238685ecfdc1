package vec

import "math"

// Масштаб решётки: трайл делится на 16 трикселей по каждой оси
const (
	TrixelsPerTrile = 16
	TrixelSize      = 1.0 / TrixelsPerTrile
	QuarterUnit     = 0.25
)

// gridTolerance — допуск, в пределах которого координата считается лежащей на линии сетки
const gridTolerance = 1e-9

// OnQuarterGrid проверяет, лежит ли координата на линии сетки с шагом 1/4
// (с точностью до погрешности вычислений)
func OnQuarterGrid(f float64) bool {
	r := math.Mod(math.Abs(f), QuarterUnit)
	return r < gridTolerance || QuarterUnit-r < gridTolerance
}

// SnapToTrixel округляет координату до ближайшего трикселя
func SnapToTrixel(f float64) float64 {
	return math.Round(f*TrixelsPerTrile) / TrixelsPerTrile
}
