package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

func TestNewTrileActor_RequiresPlacedTrile(t *testing.T) {
	s := newStage()
	kind, _ := s.set.Get(world.SolidTrileID)
	loose := world.NewTrile(99, kind, vec.Vec3{X: 4})

	_, err := NewTrileActor(1, s.grid, loose, world.TrilePhysicsState{})
	assert.Error(t, err, "Трайл вне решётки нельзя сделать подвижным")
	assert.Nil(t, loose.PhysicsState)

	placed := s.place(t, world.SolidTrileID, 0, 0, 0)
	a, err := NewTrileActor(2, s.grid, placed, world.TrilePhysicsState{Sticky: true})
	require.NoError(t, err)
	require.NotNil(t, placed.PhysicsState)
	assert.True(t, placed.PhysicsState.Sticky)
	assert.Equal(t, placed.Center(), a.Body().Center)
	assert.Same(t, placed, a.Body().Owned, "Тело должно исключать собственный трайл из запросов")
}

func TestTrileActor_Anchor(t *testing.T) {
	s := newStage()
	tr := s.place(t, world.SolidTrileID, 0, 0, 0)
	a, err := NewTrileActor(1, s.grid, tr, world.TrilePhysicsState{})
	require.NoError(t, err)

	require.NoError(t, a.Anchor(vec.Vec3Float{X: 1.5, Y: 0.5, Z: 0.5}))
	assert.Equal(t, vec.Vec3{X: 1}, tr.Cell)
	assert.Same(t, tr, s.grid.At(vec.Vec3{X: 1}))
	assert.Nil(t, s.grid.At(vec.Vec3{}), "Старая ячейка должна освободиться")

	s.place(t, world.SolidTrileID, 2, 0, 0)
	err = a.Anchor(vec.Vec3Float{X: 2.5, Y: 0.5, Z: 0.5})
	assert.ErrorIs(t, err, world.ErrCellOccupied)
	assert.Equal(t, vec.Vec3{X: 1}, tr.Cell, "При ошибке трайл остаётся на месте")
	assert.Same(t, tr, s.grid.At(vec.Vec3{X: 1}))
}

func TestTrileActor_Sync(t *testing.T) {
	s := newStage()
	tr := s.place(t, world.SolidTrileID, 0, 0, 0)
	a, err := NewTrileActor(1, s.grid, tr, world.TrilePhysicsState{})
	require.NoError(t, err)

	a.Body().Velocity = vec.Vec3Float{X: 0.1}
	a.Body().GroundMovement = vec.Vec3Float{Y: 0.05}
	a.Sync()

	assert.Equal(t, vec.Vec3Float{X: 0.1}, tr.PhysicsState.Velocity)
	assert.Equal(t, vec.Vec3Float{Y: 0.05}, tr.PhysicsState.GroundMovement)
	assert.Equal(t, vec.Vec3Float{X: 0.1}, a.Velocity())
}

func TestTrileActor_Drive(t *testing.T) {
	s := newStage()
	tr := s.place(t, world.SolidTrileID, 0, 0, 0)
	a, err := NewTrileActor(1, s.grid, tr, world.TrilePhysicsState{})
	require.NoError(t, err)

	a.Drive()
	assert.True(t, a.Body().Velocity.IsZero(), "Без маршрута актёр не движется")

	a.FollowPath(0.1, vec.Vec3Float{X: 2.5, Y: 0.5, Z: 0.5}, vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5})
	assert.True(t, a.Body().NoGravity)
	assert.True(t, a.Body().IgnoreCollision)
	assert.True(t, tr.PhysicsState.Puppet)

	a.Drive()
	assert.InDelta(t, 0.1, a.Body().Velocity.X, 1e-12)
	assert.InDelta(t, 0.0, a.Body().Velocity.Y, 1e-12)

	// Последний отрезок короче шага: скорость ровно до точки, затем следующая точка
	a.Body().Center = vec.Vec3Float{X: 2.45, Y: 0.5, Z: 0.5}
	a.Drive()
	assert.InDelta(t, 0.05, a.Body().Velocity.X, 1e-12)
	a.Body().Center = vec.Vec3Float{X: 2.5, Y: 0.5, Z: 0.5}
	a.Drive()
	assert.InDelta(t, -0.1, a.Body().Velocity.X, 1e-12, "После точки маршрута актёр идёт к следующей")
}

func TestTrileActor_PathMovesTrileInGrid(t *testing.T) {
	s := newStage()
	tr := s.place(t, world.SolidTrileID, 0, 0, 0)
	a, err := NewTrileActor(1, s.grid, tr, world.TrilePhysicsState{})
	require.NoError(t, err)
	a.FollowPath(0.1, vec.Vec3Float{X: 1.5, Y: 0.5, Z: 0.5})
	integrator := s.integrator()

	for tick := 0; tick < 10; tick++ {
		a.Drive()
		integrator.Update(a)
		a.Sync()
	}

	assert.InDelta(t, 1.5, a.Body().Center.X, 1e-9)
	assert.Equal(t, vec.Vec3{X: 1}, tr.Cell)
	assert.InDelta(t, 1.5, tr.Center().X, 1e-9, "Трайл в решётке должен следовать за телом")
}

func TestTrileActor_BlockedByOccupiedCell(t *testing.T) {
	s := newStage()
	tr := s.place(t, world.SolidTrileID, 0, 0, 0)
	s.place(t, world.SolidTrileID, 1, 0, 0)
	a, err := NewTrileActor(1, s.grid, tr, world.TrilePhysicsState{})
	require.NoError(t, err)
	a.FollowPath(0.1, vec.Vec3Float{X: 2.5, Y: 0.5, Z: 0.5})

	a.Drive()
	moved := s.integrator().Update(a)

	assert.False(t, moved, "Занятая ячейка должна остановить актёра")
	assert.Equal(t, vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5}, a.Body().Center)
	assert.True(t, a.Body().Velocity.IsZero())
	assert.Same(t, tr, s.grid.At(vec.Vec3{}))
}

func TestTrileActor_CarriesRiderUpwards(t *testing.T) {
	s := newStage()
	tr := s.place(t, world.SolidTrileID, 0, 0, 0)
	platform, err := NewTrileActor(1, s.grid, tr, world.TrilePhysicsState{})
	require.NoError(t, err)
	platform.FollowPath(0.05, vec.Vec3Float{X: 0.5, Y: 3.5, Z: 0.5})

	rider := NewPlayer(2, vec.Vec3Float{X: 0.5, Y: 1 + PlayerSize.Y/2, Z: 0.5})
	integrator := s.integrator()
	integrator.Update(rider)
	require.True(t, rider.Body().Grounded(), "Игрок должен стоять на платформе")

	for tick := 0; tick < 40; tick++ {
		platform.Drive()
		integrator.Update(platform)
		platform.Sync()
		integrator.Update(rider)

		top := tr.Center().Y + tr.TransformedSize().Y/2
		bottom := rider.Body().Center.Y - PlayerSize.Y/2
		require.InDelta(t, top, bottom, 1e-6, "Тик %d: игрок должен стоять на поднимающейся платформе", tick)
		require.True(t, rider.Body().Grounded(), "Тик %d: игрок не должен терять опору", tick)
	}
	assert.InDelta(t, 3.0, tr.Center().Y+0.5, 1e-9)
}
