package entity

import (
	"fmt"

	"github.com/annel0/trile-physics/internal/physics"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

// TrileActor — подвижный трайл (толкаемый блок, движущаяся платформа).
// Его тело живёт в интеграторе, а положение и скорость отражаются в решётке,
// чтобы другие сущности видели его как опору.
type TrileActor struct {
	ID    uint64
	Trile *world.Trile

	grid *world.Grid
	body physics.Body

	// Маршрут платформы-марионетки: точки центра, которые она обходит по кругу
	path      []vec.Vec3Float
	waypoint  int
	pathSpeed float64
}

// NewTrileActor делает трайл из решётки подвижным. Трайл должен уже стоять в решётке.
func NewTrileActor(id uint64, grid *world.Grid, t *world.Trile, state world.TrilePhysicsState) (*TrileActor, error) {
	if grid.At(t.Cell) != t {
		return nil, fmt.Errorf("trile %d is not placed at %v", t.ID, t.Cell)
	}
	t.PhysicsState = &state

	a := &TrileActor{
		ID:    id,
		Trile: t,
		grid:  grid,
		body: physics.Body{
			Center:     t.Center(),
			Size:       t.TransformedSize(),
			Elasticity: state.Elasticity,
			Facing:     world.DirectionRight,
			Owned:      t,
		},
	}
	return a, nil
}

// Body реализует physics.Entity
func (a *TrileActor) Body() *physics.Body {
	return &a.body
}

// Anchor переносит трайл в решётке вслед за телом
func (a *TrileActor) Anchor(center vec.Vec3Float) error {
	if err := a.grid.MoveTo(a.Trile, center); err != nil {
		return fmt.Errorf("anchor trile %d: %w", a.Trile.ID, err)
	}
	return nil
}

// Sync записывает итог шага тела в физическое состояние трайла
func (a *TrileActor) Sync() {
	ps := a.Trile.PhysicsState
	if ps == nil {
		return
	}
	ps.Velocity = a.body.Velocity
	ps.GroundMovement = a.body.GroundMovement
}

// FollowPath превращает актёра в платформу-марионетку, которая обходит точки маршрута
// с постоянной скоростью без гравитации и столкновений
func (a *TrileActor) FollowPath(speed float64, path ...vec.Vec3Float) {
	a.path = path
	a.waypoint = 0
	a.pathSpeed = speed
	a.body.NoGravity = true
	a.body.IgnoreCollision = true
	if ps := a.Trile.PhysicsState; ps != nil {
		ps.Puppet = true
	}
}

// Drive задаёт скорость к следующей точке маршрута. Вызывается до шага интегратора.
func (a *TrileActor) Drive() {
	if len(a.path) == 0 {
		return
	}
	target := a.path[a.waypoint]
	delta := target.Sub(a.body.Center)
	dist := delta.Length()
	if dist <= a.pathSpeed {
		a.body.Velocity = delta
		a.waypoint = (a.waypoint + 1) % len(a.path)
		return
	}
	a.body.Velocity = delta.Scale(a.pathSpeed / dist)
}

// Velocity возвращает скорость, с которой трайл двигался на последнем шаге
func (a *TrileActor) Velocity() vec.Vec3Float {
	return a.body.Velocity
}
