package collision

import (
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

// QueryOptions управляет пространственным запросом
type QueryOptions struct {
	Background bool                      // сущность за видимым слоем: предпочитать дальний трайл и заднюю грань
	Simple     bool                      // только центральная проба ребра
	Facing     world.HorizontalDirection // порядок концов вертикального ребра
	Ignore     *world.Trile              // трайл самой сущности, он не мешает себе

	// PreviousViewpoint — вид до последнего поворота камеры. Падение в фоновом слое
	// повторяется в этом виде, если в текущем опоры не нашлось.
	PreviousViewpoint world.Viewpoint
}

// CollisionResult — результат одной попытки движения точки
type CollisionResult struct {
	Collided        bool
	ShouldBeClamped bool
	Response        vec.Vec3Float // вектор отталкивания, добавляемый к скорости
	NearestDistance vec.Vec3Float // расстояние от начала движения до блокирующей грани
	Destination     *world.Trile
}

// MultipleHits — пара результатов для двух концов ребра.
// NearLow — ближний/нижний конец, FarHigh — дальний/верхний.
type MultipleHits[T comparable] struct {
	NearLow T
	FarHigh T
}

// First возвращает NearLow, если он заполнен, иначе FarHigh
func (h MultipleHits[T]) First() T {
	var zero T
	if h.NearLow != zero {
		return h.NearLow
	}
	return h.FarHigh
}

// AnyCollided проверяет, столкнулся ли хотя бы один конец ребра
func AnyCollided(h MultipleHits[CollisionResult]) bool {
	return h.NearLow.Collided || h.FarHigh.Collided
}

// AnyClamped проверяет, предложил ли хотя бы один конец прижатие к земле
func AnyClamped(h MultipleHits[CollisionResult]) bool {
	return (h.NearLow.Collided && h.NearLow.ShouldBeClamped) || (h.FarHigh.Collided && h.FarHigh.ShouldBeClamped)
}

// StrongestResponse возвращает отклик столкнувшегося конца с наибольшей величиной,
// чтобы ни один из концов не остался внутри геометрии
func StrongestResponse(h MultipleHits[CollisionResult]) vec.Vec3Float {
	var best vec.Vec3Float
	for _, r := range [...]CollisionResult{h.NearLow, h.FarHigh} {
		if r.Collided && r.Response.Length() > best.Length() {
			best = r.Response
		}
	}
	return best
}

// PointCollision — выборка перекрытия в одной точке (углы тела сущности)
type PointCollision struct {
	Point     vec.Vec3Float
	Instances world.NearestTriles
}

// Direction2D — ось, вдоль которой движется ребро
type Direction2D uint8

const (
	Horizontal Direction2D = iota
	Vertical
)
