package physics

import (
	"math"

	"github.com/annel0/trile-physics/internal/collision"
	"github.com/annel0/trile-physics/internal/config"
	"github.com/annel0/trile-physics/internal/logging"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

// Camera — источник точки обзора. LastViewpoint — вид до последнего поворота.
type Camera interface {
	Viewpoint() world.Viewpoint
	LastViewpoint() world.Viewpoint
}

// Screen сообщает, ждёт ли уровень пересборки экрана (после поворота камеры угловые
// выборки всё равно устареют, их пересчитывают одним проходом в конце тика)
type Screen interface {
	InvalidationPending() bool
}

// UpdateOptions управляет одним шагом интегратора
type UpdateOptions struct {
	Simple     bool // только центральные пробы рёбер
	ReHugWalls bool // после перемещения прижать сущность к стенам
}

// Integrator продвигает сущности на один тик: гравитация, перенос опорой, столкновения,
// трение, интегрирование позиции и переходы между слоями
type Integrator struct {
	engine  *collision.Engine
	camera  Camera
	screen  Screen
	cfg     config.PhysicsConfig
	metrics *Metrics
	logger  *logging.Logger
}

// NewIntegrator создаёт интегратор; screen и metrics могут быть nil
func NewIntegrator(engine *collision.Engine, camera Camera, screen Screen, cfg config.PhysicsConfig, metrics *Metrics) *Integrator {
	return &Integrator{
		engine:  engine,
		camera:  camera,
		screen:  screen,
		cfg:     cfg,
		metrics: metrics,
		logger:  logging.GetPhysicsLogger(),
	}
}

// Engine возвращает движок запросов интегратора
func (i *Integrator) Engine() *collision.Engine {
	return i.engine
}

// Update выполняет полный шаг с повторным прижатием к стенам
func (i *Integrator) Update(e Entity) bool {
	return i.UpdateWith(e, UpdateOptions{ReHugWalls: true})
}

// UpdateWith выполняет шаг интегратора и сообщает, сдвинулась ли сущность
func (i *Integrator) UpdateWith(e Entity, o UpdateOptions) bool {
	i.metrics.update()
	b := e.Body()
	viewpoint := i.camera.Viewpoint()
	gravity := i.engine.GravityFactor()

	if !b.NoGravity && !b.Climbing {
		b.Velocity.Y -= i.cfg.GravityPerTick * gravity
	}

	if b.IgnoreCollision {
		return i.integrate(e, b.Velocity)
	}

	i.MoveAlongWithGround(e)

	preCenter := b.Center
	impulse := b.Velocity
	opts := i.queryOptions(b, o.Simple)
	horizontal, vertical := i.engine.CollideRectangle(b.Center, impulse, OrientedSize(b.Size, viewpoint), opts, b.Elasticity, viewpoint)

	i.recordContacts(b, horizontal, vertical, impulse, viewpoint, gravity)

	b.Velocity = b.Velocity.Add(collision.StrongestResponse(horizontal)).Add(collision.StrongestResponse(vertical))
	i.applyFriction(b, gravity)
	b.Velocity = b.Velocity.AlmostClamp(i.cfg.NearZeroEpsilon)
	if !b.NoVelocityClamp {
		b.Velocity.Y = math.Max(-i.cfg.MaxVerticalSpeed, math.Min(i.cfg.MaxVerticalSpeed, b.Velocity.Y))
	}

	moved := i.integrate(e, b.Velocity.Add(b.GroundMovement))
	if moved {
		if b.Background {
			i.DetermineInBackground(e, false, false, false)
		}
		if collision.AnyClamped(vertical) && b.Grounded() && b.Elasticity == 0 {
			target := b.Center
			target.Y = preCenter.Y + strongest(vertical).NearestDistance.Y + b.GroundMovement.Y
			i.ClampToGround(e, &target, viewpoint)
			// Прижатое тело лежит на опоре и не должно отрываться от неё по инерции
			if b.Velocity.Y*gravity > 0 {
				b.Velocity.Y = 0
			}
		}
		if o.ReHugWalls {
			i.HugWalls(e, false, false, b.KeepInFront)
		}
	}

	if i.screen == nil || !i.screen.InvalidationPending() {
		i.DetermineOverlaps(e)
	}
	return moved
}

func (i *Integrator) queryOptions(b *Body, simple bool) collision.QueryOptions {
	return collision.QueryOptions{
		Background: b.Background,
		Simple:     simple,
		Facing:     b.Facing,
		Ignore:     b.Owned,

		PreviousViewpoint: i.camera.LastViewpoint(),
	}
}

// recordContacts обновляет записи опоры, потолка и стены по результатам проб
func (i *Integrator) recordContacts(b *Body, horizontal, vertical collision.MultipleHits[collision.CollisionResult], impulse vec.Vec3Float, viewpoint world.Viewpoint, gravity float64) {
	wasGrounded := b.Grounded()
	b.Wall = horizontal

	fallingOrStill := impulse.Y == 0 || (gravity >= 0) == (impulse.Y < 0)
	if fallingOrStill {
		face := viewpoint.VisibleOrientation()
		if b.Background {
			face = face.Opposite()
		}
		b.Ground = collision.MultipleHits[*world.Trile]{
			NearLow: groundCandidate(vertical.NearLow, face),
			FarHigh: groundCandidate(vertical.FarHigh, face),
		}
		b.Ceiling = collision.MultipleHits[collision.CollisionResult]{}
	} else {
		b.Ground = collision.MultipleHits[*world.Trile]{}
		if collision.AnyCollided(vertical) {
			b.Ceiling = vertical
		} else {
			b.Ceiling = collision.MultipleHits[collision.CollisionResult]{}
		}
	}

	switch {
	case wasGrounded && !b.Grounded():
		v := b.Velocity
		b.LeaveGroundVelocity = &v
	case b.Grounded():
		b.LeaveGroundVelocity = nil
	}
}

func groundCandidate(r collision.CollisionResult, face world.FaceOrientation) *world.Trile {
	if !r.Collided || r.Destination == nil {
		return nil
	}
	if r.Destination.RotatedFace(face) == world.CollisionNone {
		return nil
	}
	return r.Destination
}

// strongest возвращает столкнувшийся результат с наибольшим откликом
func strongest(h collision.MultipleHits[collision.CollisionResult]) collision.CollisionResult {
	best := h.NearLow
	if !best.Collided || (h.FarHigh.Collided && h.FarHigh.Response.Length() > best.Response.Length()) {
		best = h.FarHigh
	}
	return best
}

// Friction возвращает коэффициент трения для состояния тела
func (i *Integrator) Friction(b *Body) float64 {
	switch {
	case b.Swimming:
		return i.cfg.WaterFriction
	case !b.Grounded():
		return i.cfg.AirFriction
	case b.Sliding:
		return i.cfg.SlidingFriction
	default:
		return i.cfg.GroundFriction
	}
}

func (i *Integrator) applyFriction(b *Body, gravity float64) {
	f := math.Pow(i.Friction(b), math.Abs(gravity))
	b.Velocity.X *= f
	b.Velocity.Z *= f
}

// integrate сдвигает центр на delta и переносит трайл привязанной сущности.
// Если трайл перенести нельзя, сущность остаётся на месте и теряет скорость.
func (i *Integrator) integrate(e Entity, delta vec.Vec3Float) bool {
	if delta.IsZero() {
		return false
	}
	if !i.place(e, e.Body().Center.Add(delta)) {
		e.Body().Velocity = vec.Zero
		return false
	}
	return true
}

// place ставит центр сущности в center, синхронизируя решётку для привязанных сущностей
func (i *Integrator) place(e Entity, center vec.Vec3Float) bool {
	if a, ok := e.(Anchored); ok {
		if err := a.Anchor(center); err != nil {
			i.metrics.anchorFailure()
			i.logger.Debug("Трайл не перенесён в %v: %v", center, err)
			return false
		}
	}
	e.Body().Center = center
	return true
}

// MoveAlongWithGround вычисляет перенос сущности подвижной опорой.
// Липкая опора переносит по всем осям, остальные только в плоскости экрана.
func (i *Integrator) MoveAlongWithGround(e Entity) {
	b := e.Body()
	b.GroundMovement = vec.Zero

	ground := b.Ground.First()
	if ground == nil || ground.PhysicsState == nil {
		return
	}
	ps := ground.PhysicsState
	if ps.Static {
		return
	}

	carry := ps.Velocity
	if !ps.Puppet {
		carry = carry.Add(ps.GroundMovement)
	}
	if !ps.Sticky {
		carry = carry.Mul(i.camera.Viewpoint().ScreenMask())
	}
	b.GroundMovement = carry.Clamp(i.cfg.MaxGroundCarry).AlmostClamp(i.cfg.NearZeroEpsilon)
}

// ClampToGround переносит экранные компоненты позиции из target, сохраняя глубину
func (i *Integrator) ClampToGround(e Entity, target *vec.Vec3Float, viewpoint world.Viewpoint) {
	if target == nil {
		return
	}
	depth := viewpoint.DepthMask()
	i.place(e, e.Body().Center.Mul(depth).Add(target.Mul(depth.Invert())))
}
