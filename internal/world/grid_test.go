package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/trile-physics/internal/vec"
)

type gridFixture struct {
	t      *testing.T
	set    *TrileSet
	grid   *Grid
	nextID uint64
}

func newGridFixture(t *testing.T) *gridFixture {
	return &gridFixture{t: t, set: StandardSet(), grid: NewGrid()}
}

func (f *gridFixture) place(id TrileID, x, y, z int) *Trile {
	kind, ok := f.set.Get(id)
	require.True(f.t, ok)
	f.nextID++
	tr := NewTrile(f.nextID, kind, vec.Vec3{X: x, Y: y, Z: z})
	require.NoError(f.t, f.grid.Add(tr))
	return tr
}

func TestGrid_AddOccupied(t *testing.T) {
	f := newGridFixture(t)
	first := f.place(SolidTrileID, 1, 2, 3)

	kind, _ := f.set.Get(SolidTrileID)
	err := f.grid.Add(NewTrile(99, kind, vec.Vec3{X: 1, Y: 2, Z: 3}))
	assert.ErrorIs(t, err, ErrCellOccupied)
	assert.Same(t, first, f.grid.At(vec.Vec3{X: 1, Y: 2, Z: 3}))
	assert.Equal(t, 1, f.grid.Len())

	lo, hi := f.grid.Bounds()
	assert.Equal(t, vec.Vec3{X: 1, Y: 2, Z: 3}, lo)
	assert.Equal(t, vec.Vec3{X: 1, Y: 2, Z: 3}, hi)
}

func TestGrid_LargeTrileCoversCells(t *testing.T) {
	f := newGridFixture(t)
	kind, err := NewTrileKind(20, "slab", vec.Vec3Float{X: 2, Y: 1, Z: 1}, UniformFaces(CollisionAllSides))
	require.NoError(t, err)
	require.NoError(t, f.set.Add(kind))

	slab := NewTrile(1, kind, vec.Vec3{})
	require.NoError(t, f.grid.Add(slab))

	assert.Same(t, slab, f.grid.At(vec.Vec3{X: 1}))
	assert.Same(t, slab, f.grid.InstanceAt(vec.Vec3Float{X: 1.9, Y: 0.1, Z: 0.1}))

	n := f.grid.NearestTrile(vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5}, ViewpointRight, nil)
	assert.Same(t, slab, n.Surface)
	assert.Nil(t, n.Deep, "Один трайл в двух ячейках не считается дважды")
}

func TestGrid_OffsetTrileOnlyWhereItCovers(t *testing.T) {
	f := newGridFixture(t)
	kind, ok := f.set.Get(SolidTrileID)
	require.True(t, ok)

	shifted := NewTrile(1, kind, vec.Vec3{})
	shifted.Offset = vec.Vec3Float{X: 0.5}
	require.NoError(t, f.grid.Add(shifted))
	require.Same(t, shifted, f.grid.At(vec.Vec3{}), "Трайл числится в исходной ячейке")
	require.Same(t, shifted, f.grid.At(vec.Vec3{X: 1}), "и в ячейке, куда выступает")

	n := f.grid.NearestTrile(vec.Vec3Float{X: 0.2, Y: 0.5, Z: 0.5}, ViewpointFront, nil)
	assert.Nil(t, n.Surface, "Левая половина ячейки 0 трайлом не накрыта")
	assert.Nil(t, f.grid.InstanceAt(vec.Vec3Float{X: 0.2, Y: 0.5, Z: 0.5}))

	for _, x := range []float64{0.7, 1.3} {
		n = f.grid.NearestTrile(vec.Vec3Float{X: x, Y: 0.5, Z: 0.5}, ViewpointFront, nil)
		assert.Same(t, shifted, n.Surface, "X=%v", x)
	}

	// В виде справа ось X скрыта, трайл виден с любой X
	n = f.grid.NearestTrile(vec.Vec3Float{X: 0.2, Y: 0.5, Z: 0.5}, ViewpointRight, nil)
	assert.Same(t, shifted, n.Surface)

	n = f.grid.NearestTrile(vec.Vec3Float{X: 0.2, Y: 0.5, Z: 0.5}, ViewpointPerspective, nil)
	assert.Nil(t, n.Surface)
}

func TestGrid_MovingTrileCoversPreStepBox(t *testing.T) {
	f := newGridFixture(t)
	kind, ok := f.set.Get(PlatformTrileID)
	require.True(t, ok)

	// Платформа опустилась на 0.05 за этот тик: верх был на 3.0, теперь на 2.95
	lift := NewTrile(1, kind, vec.Vec3{Y: 2})
	lift.Offset = vec.Vec3Float{Y: -0.05}
	require.NoError(t, f.grid.Add(lift))
	p := vec.Vec3Float{X: 0.5, Y: 2.97, Z: 0.5}

	assert.Nil(t, f.grid.NearestTrile(p, ViewpointFront, nil).Surface, "Неподвижный трайл точку над собой не накрывает")

	lift.PhysicsState = &TrilePhysicsState{Velocity: vec.Vec3Float{Y: -0.05}}
	assert.Same(t, lift, f.grid.NearestTrile(p, ViewpointFront, nil).Surface, "Положение до шага тоже считается")
}

func TestGrid_MoveTo(t *testing.T) {
	f := newGridFixture(t)
	crate := f.place(SolidTrileID, 0, 0, 0)
	blocker := f.place(SolidTrileID, 2, 0, 0)

	require.NoError(t, f.grid.MoveTo(crate, vec.Vec3Float{X: 1.5, Y: 0.5, Z: 0.5}))
	assert.Equal(t, vec.Vec3{X: 1}, crate.Cell)
	assert.Nil(t, f.grid.At(vec.Vec3{}))
	assert.Same(t, crate, f.grid.At(vec.Vec3{X: 1}))

	err := f.grid.MoveTo(crate, vec.Vec3Float{X: 2.5, Y: 0.5, Z: 0.5})
	assert.ErrorIs(t, err, ErrCellOccupied)
	assert.Equal(t, vec.Vec3{X: 1}, crate.Cell, "При занятой ячейке трайл остаётся на месте")
	assert.Same(t, crate, f.grid.At(vec.Vec3{X: 1}))
	assert.Same(t, blocker, f.grid.At(vec.Vec3{X: 2}))

	require.NoError(t, f.grid.MoveTo(crate, vec.Vec3Float{X: 1.4, Y: 0.5, Z: 0.5}))
	assert.InDelta(t, -0.1, crate.Offset.X, 1e-9, "Субъединичное смещение сохраняется")
	assert.InDelta(t, 1.4, crate.Center().X, 1e-9)
	assert.Same(t, crate, f.grid.At(vec.Vec3{}), "Смещённый трайл занимает обе ячейки")
	assert.Same(t, crate, f.grid.At(vec.Vec3{X: 1}))

	err = f.grid.MoveTo(crate, vec.Vec3Float{X: 1.6, Y: 0.5, Z: 0.5})
	assert.ErrorIs(t, err, ErrCellOccupied, "Выступ в занятую ячейку недопустим")
}

func TestGrid_NearestTrileOrderPerViewpoint(t *testing.T) {
	f := newGridFixture(t)
	front := f.place(SolidTrileID, 0, 0, 5)
	middle := f.place(PlatformTrileID, 0, 0, 2)
	back := f.place(DecorationTrileID, 0, 0, 0)
	p := vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5}

	n := f.grid.NearestTrile(p, ViewpointFront, nil)
	assert.Same(t, front, n.Surface, "Спереди ближе всех трайл с наибольшим Z")
	assert.Same(t, back, n.Deep, "Дальний — самый удалённый")

	n = f.grid.NearestTrile(p, ViewpointBack, nil)
	assert.Same(t, back, n.Surface)
	assert.Same(t, front, n.Deep)

	n = f.grid.NearestTrile(p, ViewpointFront, front)
	assert.Same(t, middle, n.Surface, "Игнорируемый трайл пропускается")
	assert.Same(t, back, n.Deep)

	back.Enabled = false
	n = f.grid.NearestTrile(p, ViewpointFront, nil)
	assert.Same(t, middle, n.Deep, "Выключенный трайл пропускается")
}

func TestGrid_NearestTrileSideViews(t *testing.T) {
	f := newGridFixture(t)
	east := f.place(SolidTrileID, 4, 1, 0)
	west := f.place(SolidTrileID, -3, 1, 0)
	p := vec.Vec3Float{X: 0.5, Y: 1.5, Z: 0.5}

	n := f.grid.NearestTrile(p, ViewpointRight, nil)
	assert.Same(t, east, n.Surface, "Камера справа видит трайл с наибольшим X")
	assert.Same(t, west, n.Deep)

	n = f.grid.NearestTrile(p, ViewpointLeft, nil)
	assert.Same(t, west, n.Surface)
	assert.Same(t, east, n.Deep)

	assert.Equal(t, NearestTriles{}, f.grid.NearestTrile(vec.Vec3Float{X: 0.5, Y: 5, Z: 0.5}, ViewpointRight, nil))
}

func TestGrid_NearestTrileSkipsImmaterial(t *testing.T) {
	f := newGridFixture(t)
	solid := f.place(SolidTrileID, 0, 0, 0)
	kind, err := NewTrileKind(30, "air", vec.One, UniformFaces(CollisionNone))
	require.NoError(t, err)
	kind.Immaterial = true
	require.NoError(t, f.grid.Add(NewTrile(50, kind, vec.Vec3{Z: 3})))

	n := f.grid.NearestTrile(vec.Vec3Float{X: 0.5, Y: 0.5}, ViewpointFront, nil)
	assert.Same(t, solid, n.Surface)
	assert.Nil(t, n.Deep)
	assert.Same(t, solid, n.Any())
}

func TestGrid_NearestTrilePerspectiveIsExact(t *testing.T) {
	f := newGridFixture(t)
	f.place(SolidTrileID, 0, 0, 5)
	here := f.place(SolidTrileID, 0, 0, 0)

	n := f.grid.NearestTrile(vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5}, ViewpointPerspective, nil)
	assert.Same(t, here, n.Surface)
	assert.Nil(t, n.Deep)

	n = f.grid.NearestTrile(vec.Vec3Float{X: 0.5, Y: 0.5, Z: 2.5}, ViewpointPerspective, nil)
	assert.Nil(t, n.Any(), "Без проекции пустая ячейка пуста")
}
