package physics

import (
	"github.com/annel0/trile-physics/internal/collision"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

// Индексы угловых выборок тела
const (
	CornerTopFront = iota
	CornerBottomFront
	CornerTopBack
	CornerBottomBack
	CornerCount
)

// Body — общее физическое состояние любой движущейся сущности.
// Игрок и подвижные трайлы хранят его одинаково, поэтому интегратор обслуживает всех.
type Body struct {
	Center         vec.Vec3Float
	Velocity       vec.Vec3Float
	Size           vec.Vec3Float // размер при виде Front; под Left/Right оси X и Z меняются местами
	GroundMovement vec.Vec3Float // перенос от подвижной опоры за текущий тик
	Elasticity     float64
	Background     bool // сущность находится за видимым слоем
	Facing         world.HorizontalDirection

	Ground  collision.MultipleHits[*world.Trile]
	Ceiling collision.MultipleHits[collision.CollisionResult]
	Wall    collision.MultipleHits[collision.CollisionResult]
	Corners [CornerCount]collision.PointCollision

	// LeaveGroundVelocity — скорость в момент схода с опоры; nil, пока сущность на земле
	LeaveGroundVelocity *vec.Vec3Float

	// Флаги, которые выставляет слой состояний (за пределами ядра)
	Climbing        bool
	IgnoreCollision bool
	Swimming        bool
	Sliding         bool
	NoGravity       bool
	NoVelocityClamp bool
	KeepInFront     bool

	// Owned — трайл, которым является сама сущность; он исключается из её запросов
	Owned *world.Trile
}

// Grounded сообщает, стоит ли сущность на опоре
func (b *Body) Grounded() bool {
	return b.Ground.First() != nil
}

// HitCeiling сообщает, упёрлась ли сущность в потолок на последнем тике
func (b *Body) HitCeiling() bool {
	return collision.AnyCollided(b.Ceiling)
}

// HitWall сообщает, упёрлась ли сущность в стену на последнем тике
func (b *Body) HitWall() bool {
	return collision.AnyCollided(b.Wall)
}

// OrientedSize возвращает размер тела в мировых осях для точки обзора
func OrientedSize(size vec.Vec3Float, viewpoint world.Viewpoint) vec.Vec3Float {
	if viewpoint == world.ViewpointRight || viewpoint == world.ViewpointLeft {
		size.X, size.Z = size.Z, size.X
	}
	return size
}

// Entity — контракт физической сущности: всё, что трогает интегратор, лежит в Body
type Entity interface {
	Body() *Body
}

// Anchored — сущность, положение которой отражено в решётке (толкаемые трайлы,
// движущиеся платформы). После перемещения интегратор переносит её трайл.
type Anchored interface {
	Entity
	Anchor(center vec.Vec3Float) error
}
