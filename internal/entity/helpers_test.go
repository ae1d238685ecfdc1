package entity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/annel0/trile-physics/internal/collision"
	"github.com/annel0/trile-physics/internal/config"
	"github.com/annel0/trile-physics/internal/physics"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

// stage — минимальный мир для тестов: решётка, гравитация и неподвижная камера
type stage struct {
	grid      *world.Grid
	set       *world.TrileSet
	gravity   float64
	viewpoint world.Viewpoint
	nextID    uint64
}

func newStage() *stage {
	return &stage{grid: world.NewGrid(), set: world.StandardSet(), gravity: 1, viewpoint: world.ViewpointFront}
}

func (s *stage) NearestTrile(p vec.Vec3Float, viewpoint world.Viewpoint, ignore *world.Trile) world.NearestTriles {
	return s.grid.NearestTrile(p, viewpoint, ignore)
}

func (s *stage) GravityFactor() float64          { return s.gravity }
func (s *stage) Viewpoint() world.Viewpoint     { return s.viewpoint }
func (s *stage) LastViewpoint() world.Viewpoint { return s.viewpoint }

func (s *stage) place(t *testing.T, id world.TrileID, x, y, z int) *world.Trile {
	kind, ok := s.set.Get(id)
	require.True(t, ok)
	s.nextID++
	tr := world.NewTrile(s.nextID, kind, vec.Vec3{X: x, Y: y, Z: z})
	require.NoError(t, s.grid.Add(tr))
	return tr
}

func (s *stage) integrator() *physics.Integrator {
	return physics.NewIntegrator(collision.NewEngine(s, nil), s, nil, config.Default().Physics, nil)
}
