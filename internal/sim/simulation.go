package sim

import (
	"context"
	"time"

	"github.com/annel0/trile-physics/internal/camera"
	"github.com/annel0/trile-physics/internal/config"
	"github.com/annel0/trile-physics/internal/entity"
	"github.com/annel0/trile-physics/internal/level"
	"github.com/annel0/trile-physics/internal/logging"
	"github.com/annel0/trile-physics/internal/physics"
	"github.com/annel0/trile-physics/internal/world"
)

// Platform — подвижный трайл, который обновляется раньше остальных сущностей,
// чтобы стоящие на нём видели его скорость уже в этом тике
type Platform interface {
	physics.Entity
	Drive()
	Sync()
}

// Thinker — сущность с собственным поведением; Think вызывается перед шагом интегратора
type Thinker interface {
	Think(s entity.Surroundings)
}

// Simulation — однопоточный цикл тиков. Порядок внутри тика фиксирован:
// камера, платформы, остальные сущности в порядке добавления, переходы между
// слоями после поворота, отложенный пересчёт угловых выборок.
type Simulation struct {
	integrator *physics.Integrator
	camera     *camera.Camera
	level      *level.Level
	cfg        config.SimConfig

	platforms []Platform
	entities  []physics.Entity

	tick    uint64
	metrics *Metrics
	logger  *logging.Logger
}

// New создаёт симуляцию; metrics может быть nil
func New(integrator *physics.Integrator, cam *camera.Camera, lvl *level.Level, cfg config.SimConfig, metrics *Metrics) *Simulation {
	return &Simulation{
		integrator: integrator,
		camera:     cam,
		level:      lvl,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logging.GetSimLogger(),
	}
}

// Add добавляет сущность. Платформы попадают в отдельную очередь, обновляемую первой.
func (s *Simulation) Add(e physics.Entity) {
	if p, ok := e.(Platform); ok {
		s.platforms = append(s.platforms, p)
	} else {
		s.entities = append(s.entities, e)
	}
	s.metrics.setEntities(len(s.platforms), len(s.entities))
}

// Tick возвращает номер последнего выполненного тика
func (s *Simulation) Tick() uint64 {
	return s.tick
}

// Viewpoint реализует entity.Surroundings
func (s *Simulation) Viewpoint() world.Viewpoint {
	return s.camera.Viewpoint()
}

// GravityFactor реализует entity.Surroundings
func (s *Simulation) GravityFactor() float64 {
	return s.level.GravityFactor()
}

// Camera возвращает камеру симуляции
func (s *Simulation) Camera() *camera.Camera {
	return s.camera
}

// Step выполняет один тик
func (s *Simulation) Step() {
	start := time.Now()
	s.tick++

	rotated := s.camera.Advance()
	if rotated {
		s.metrics.rotation()
		if s.cfg.DeferResample {
			s.level.InvalidateScreen()
		}
	}

	for _, p := range s.platforms {
		p.Drive()
		s.integrator.Update(p)
		p.Sync()
	}

	for _, e := range s.entities {
		if t, ok := e.(Thinker); ok {
			t.Think(s)
		}
		s.integrator.Update(e)
	}

	if rotated {
		for _, e := range s.entities {
			b := e.Body()
			if b.IgnoreCollision {
				continue
			}
			s.integrator.DetermineInBackground(e, true, true, b.KeepInFront)
		}
	}

	if s.level.InvalidationPending() {
		for _, p := range s.platforms {
			s.integrator.DetermineOverlaps(p)
		}
		for _, e := range s.entities {
			s.integrator.DetermineOverlaps(e)
		}
		s.level.ClearInvalidation()
	}

	elapsed := time.Since(start)
	s.metrics.tick(elapsed)
	if s.logger.Enabled(logging.TRACE) {
		s.logger.Trace("Тик %d: %v", s.tick, elapsed)
	}
}

// Run выполняет ticks тиков подряд без пауз. Отмена контекста проверяется только
// между тиками: начатый тик всегда доводится до конца.
func (s *Simulation) Run(ctx context.Context, ticks int) error {
	for n := 0; n < ticks; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Step()
	}
	return nil
}

// RunRealtime выполняет тики с частотой TickRate до отмены контекста или до ticks
// тиков (ticks <= 0 — без ограничения)
func (s *Simulation) RunRealtime(ctx context.Context, ticks int) error {
	rate := s.cfg.GetTickRate()
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	s.logger.Info("Симуляция запущена: %d тиков/с", rate)
	for n := 0; ticks <= 0 || n < ticks; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Step()
		}
	}
	return nil
}
