package sim

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/trile-physics/internal/camera"
	"github.com/annel0/trile-physics/internal/collision"
	"github.com/annel0/trile-physics/internal/config"
	"github.com/annel0/trile-physics/internal/entity"
	"github.com/annel0/trile-physics/internal/level"
	"github.com/annel0/trile-physics/internal/physics"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

type testRig struct {
	sim    *Simulation
	level  *level.Level
	camera *camera.Camera
}

func newRig(t *testing.T, lvl *level.Level, rotationTicks int) *testRig {
	t.Helper()
	if lvl == nil {
		lvl = level.New("test", world.StandardSet(), nil)
	}
	cfg := config.Default()
	cfg.Sim.RotationTicks = rotationTicks
	reg := prometheus.NewRegistry()

	cam := camera.New(world.ViewpointFront, cfg.Sim.RotationTicks)
	engine := collision.NewEngine(lvl, collision.NewMetrics(reg))
	integrator := physics.NewIntegrator(engine, cam, lvl, cfg.Physics, physics.NewMetrics(reg))

	return &testRig{
		sim:    New(integrator, cam, lvl, cfg.Sim, NewMetrics(reg)),
		level:  lvl,
		camera: cam,
	}
}

func (r *testRig) floor(t *testing.T, fromX, toX int) {
	t.Helper()
	for x := fromX; x <= toX; x++ {
		_, err := r.level.Place(world.SolidTrileID, vec.Vec3{X: x})
		require.NoError(t, err)
	}
}

func TestSimulation_PlatformsUpdateFirst(t *testing.T) {
	r := newRig(t, nil, 4)
	tr, err := r.level.Place(world.SolidTrileID, vec.Vec3{})
	require.NoError(t, err)
	platform, err := entity.NewTrileActor(100, r.level.Grid(), tr, world.TrilePhysicsState{})
	require.NoError(t, err)
	platform.FollowPath(0.05, vec.Vec3Float{X: 0.5, Y: 3.5, Z: 0.5})

	rider := entity.NewPlayer(1, vec.Vec3Float{X: 0.5, Y: 1 + entity.PlayerSize.Y/2, Z: 0.5})

	// Игрок добавлен раньше платформы, но обновляться всё равно будет после неё
	r.sim.Add(rider)
	r.sim.Add(platform)

	for tick := 1; tick <= 30; tick++ {
		r.sim.Step()
		if tick < 2 {
			continue
		}
		top := tr.Center().Y + 0.5
		bottom := rider.Body().Center.Y - entity.PlayerSize.Y/2
		require.InDelta(t, top, bottom, 1e-6, "Тик %d: игрок должен ехать на платформе", tick)
		require.True(t, rider.Body().Grounded(), "Тик %d", tick)
	}
	assert.Equal(t, uint64(30), r.sim.Tick())
	assert.Equal(t, 30.0, testutil.ToFloat64(r.sim.metrics.ticks))
}

func TestSimulation_RotationResamplesCorners(t *testing.T) {
	r := newRig(t, nil, 2)
	r.floor(t, -1, 2)
	p := entity.NewPlayer(1, vec.Vec3Float{X: 0.5, Y: 1 + entity.PlayerSize.Y/2, Z: 0.5})
	r.sim.Add(p)

	r.sim.Step()
	require.True(t, p.Body().Grounded())

	require.NoError(t, r.camera.RotateCW())
	r.sim.Step()
	assert.Equal(t, world.ViewpointFront, r.sim.Viewpoint(), "Поворот ещё идёт")

	r.sim.Step()
	assert.Equal(t, world.ViewpointRight, r.sim.Viewpoint())
	assert.False(t, r.level.InvalidationPending(), "Отложенный пересчёт выполняется в конце тика")

	b := p.Body()
	corner := b.Corners[physics.CornerTopFront].Point
	assert.InDelta(t, b.Center.X, corner.X, 1e-9, "В виде справа скрыта ось X")
	assert.InDelta(t, b.Center.Z-(entity.PlayerSize.Z/2-0.001), corner.Z, 1e-9)
	assert.False(t, b.Background)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sim.metrics.rotations))
}

func TestSimulation_ExplicitInvalidation(t *testing.T) {
	r := newRig(t, nil, 2)
	r.floor(t, -1, 4)
	p := entity.NewPlayer(1, vec.Vec3Float{X: 0.5, Y: 1 + entity.PlayerSize.Y/2, Z: 0.5})
	r.sim.Add(p)
	r.sim.Step()

	p.Body().Center.X = 2.5
	r.level.InvalidateScreen()
	r.sim.Step()

	assert.False(t, r.level.InvalidationPending())
	corner := p.Body().Corners[physics.CornerBottomFront].Point
	assert.InDelta(t, p.Body().Center.X+entity.PlayerSize.X/2-0.001, corner.X, 1e-9)
}

func TestSimulation_Run(t *testing.T) {
	r := newRig(t, nil, 2)
	r.floor(t, 0, 2)
	r.sim.Add(entity.NewPlayer(1, vec.Vec3Float{X: 1.5, Y: 3, Z: 0.5}))

	require.NoError(t, r.sim.Run(context.Background(), 5))
	assert.Equal(t, uint64(5), r.sim.Tick())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.sim.Run(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(5), r.sim.Tick(), "После отмены новые тики не начинаются")
}

func TestSimulation_RunRealtime(t *testing.T) {
	r := newRig(t, nil, 2)
	r.sim.cfg.TickRate = 1000

	require.NoError(t, r.sim.RunRealtime(context.Background(), 3))
	assert.Equal(t, uint64(3), r.sim.Tick())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.sim.RunRealtime(ctx, 0), context.Canceled)
}

func TestSimulation_Deterministic(t *testing.T) {
	run := func() []vec.Vec3Float {
		lvl, err := level.Generate("det", world.StandardSet(), world.NewLevelGenerator(11, vec.Vec3{X: 16, Y: 10, Z: 6}))
		require.NoError(t, err)
		r := newRig(t, lvl, 4)

		var players []*entity.Player
		for i := 0; i < 4; i++ {
			p := entity.NewPlayer(uint64(i+1), vec.Vec3Float{X: 2.5 + float64(i)*3, Y: 12, Z: 3.5})
			p.SetState(entity.NewWanderState(p))
			r.sim.Add(p)
			players = append(players, p)
		}

		for tick := 0; tick < 300; tick++ {
			if tick == 100 || tick == 200 {
				require.NoError(t, r.camera.RotateCW())
			}
			r.sim.Step()
		}

		centers := make([]vec.Vec3Float, len(players))
		for i, p := range players {
			centers[i] = p.Body().Center
		}
		return centers
	}

	assert.Equal(t, run(), run(), "Одинаковый вход должен давать побитово одинаковый результат")
}
