package physics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/annel0/trile-physics/internal/collision"
	"github.com/annel0/trile-physics/internal/config"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

type testSpace struct {
	grid    *world.Grid
	gravity float64
}

func (s *testSpace) NearestTrile(p vec.Vec3Float, viewpoint world.Viewpoint, ignore *world.Trile) world.NearestTriles {
	return s.grid.NearestTrile(p, viewpoint, ignore)
}

func (s *testSpace) GravityFactor() float64 { return s.gravity }

type testCamera struct {
	current world.Viewpoint
	last    world.Viewpoint
}

func (c *testCamera) Viewpoint() world.Viewpoint     { return c.current }
func (c *testCamera) LastViewpoint() world.Viewpoint { return c.last }

type testEntity struct {
	body Body
}

func (e *testEntity) Body() *Body { return &e.body }

// stuckEntity — привязанная сущность, трайл которой нельзя перенести
type stuckEntity struct {
	testEntity
}

func (e *stuckEntity) Anchor(vec.Vec3Float) error {
	return errors.New("занято")
}

type fixture struct {
	t          *testing.T
	set        *world.TrileSet
	grid       *world.Grid
	space      *testSpace
	camera     *testCamera
	cfg        config.PhysicsConfig
	metrics    *Metrics
	integrator *Integrator
	nextID     uint64
}

func newFixture(t *testing.T, gravity float64) *fixture {
	f := &fixture{
		t:      t,
		set:    world.StandardSet(),
		grid:   world.NewGrid(),
		camera: &testCamera{current: world.ViewpointFront, last: world.ViewpointFront},
		cfg:    config.Default().Physics,
	}
	f.space = &testSpace{grid: f.grid, gravity: gravity}
	f.rebuild()
	return f
}

// rebuild пересоздаёт интегратор после правки f.cfg
func (f *fixture) rebuild() {
	f.metrics = NewMetrics(nil)
	f.integrator = NewIntegrator(collision.NewEngine(f.space, nil), f.camera, nil, f.cfg, f.metrics)
}

func (f *fixture) place(id world.TrileID, x, y, z int) *world.Trile {
	kind, ok := f.set.Get(id)
	require.True(f.t, ok)
	f.nextID++
	tr := world.NewTrile(f.nextID, kind, vec.Vec3{X: x, Y: y, Z: z})
	require.NoError(f.t, f.grid.Add(tr))
	return tr
}

// player создаёт сущность размера игрока, стоящую нижней гранью на высоте bottom
func player(x, bottom, z float64) *testEntity {
	return &testEntity{body: Body{
		Center: vec.Vec3Float{X: x, Y: bottom + 0.875, Z: z},
		Size:   vec.Vec3Float{X: 0.75, Y: 1.75, Z: 0.75},
		Facing: world.DirectionRight,
	}}
}
