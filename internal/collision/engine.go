package collision

import (
	"math"

	"github.com/annel0/trile-physics/internal/logging"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

const (
	// BoundaryEpsilon — сдвиг точки, лежащей ровно на линии сетки 1/4, перед
	// решающей пробой прижатия к земле
	BoundaryEpsilon = 0.001
	// EdgeInset — отступ концов ребра от углов тела, чтобы пол не считался стеной
	EdgeInset = 0.001
)

// Space — пространство, в котором выполняются запросы: решётка уровня и гравитация.
// Реализуется уровнем.
type Space interface {
	NearestTrile(p vec.Vec3Float, viewpoint world.Viewpoint, ignore *world.Trile) world.NearestTriles
	GravityFactor() float64
}

// Engine отвечает на вопрос "во что упрётся тело, сдвинутое на impulse".
// Запросы не имеют побочных эффектов, кроме метрик.
type Engine struct {
	space   Space
	metrics *Metrics
	logger  *logging.Logger
}

// NewEngine создаёт движок запросов; metrics может быть nil
func NewEngine(space Space, metrics *Metrics) *Engine {
	return &Engine{
		space:   space,
		metrics: metrics,
		logger:  logging.GetCollisionLogger(),
	}
}

// GravityFactor возвращает текущий множитель гравитации пространства
func (e *Engine) GravityFactor() float64 {
	return e.space.GravityFactor()
}

// NearestTrile проксирует пространственный запрос
func (e *Engine) NearestTrile(p vec.Vec3Float, viewpoint world.Viewpoint, ignore *world.Trile) world.NearestTriles {
	return e.space.NearestTrile(p, viewpoint, ignore)
}

// movesWithGravity — движение направлено по гравитации (падение)
func movesWithGravity(impulseY, gravityFactor float64) bool {
	if gravityFactor < 0 {
		return impulseY > 0
	}
	return impulseY < 0
}

// candidates возвращает трайлы в порядке предпочтения: обычно сначала поверхностный,
// в фоновом режиме — только дальний
func candidates(n world.NearestTriles, opts QueryOptions) []*world.Trile {
	if opts.Background {
		if n.Deep != nil {
			return []*world.Trile{n.Deep}
		}
		return []*world.Trile{n.Surface}
	}
	return []*world.Trile{n.Surface, n.Deep}
}

// CollidePoint определяет, во что упрётся точка, сдвинутая из position на impulse
func (e *Engine) CollidePoint(position, impulse vec.Vec3Float, opts QueryOptions, elasticity float64, viewpoint world.Viewpoint) CollisionResult {
	e.metrics.query("point")
	if impulse.IsZero() {
		return CollisionResult{}
	}

	gravity := e.space.GravityFactor()
	destination := position.Add(impulse)

	result := e.collideNearest(position, destination, impulse, e.space.NearestTrile(destination, viewpoint, opts.Ignore), opts, elasticity, viewpoint, gravity)
	landing := viewpoint

	// Падение в фоновом слое: повтор в виде до поворота камеры ловит переход между
	// слоями, пока сущность ещё стоит на геометрии прежнего вида
	if prev := opts.PreviousViewpoint; !result.Collided && impulse.Y < 0 && opts.Background && prev.IsOrthographic() && prev != viewpoint {
		retry := e.collideNearest(position, destination, impulse, e.space.NearestTrile(destination, prev, opts.Ignore), opts, elasticity, prev, gravity)
		if retry.Collided && crosses(retry, impulse) {
			e.metrics.retry()
			result = retry
			landing = prev
		}
	}

	if result.Collided && movesWithGravity(impulse.Y, gravity) {
		result.ShouldBeClamped = e.confirmLanding(destination, impulse, opts, landing, gravity)
		if result.ShouldBeClamped {
			e.metrics.clamp()
		}
	}

	if result.Collided {
		e.metrics.hit()
	}
	return result
}

// crosses проверяет, что блокирующая грань лежит на пути движения, а не позади
// исходной точки
func crosses(r CollisionResult, impulse vec.Vec3Float) bool {
	return r.NearestDistance.Dot(impulse.Sign()) >= -EdgeInset
}

// confirmLanding повторяет запрос в слегка сдвинутой точке: координаты ровно на
// линии сетки 1/4 сдвигаются на BoundaryEpsilon, чтобы исход на границе ячеек
// не мерцал от кадра к кадру
func (e *Engine) confirmLanding(destination, impulse vec.Vec3Float, opts QueryOptions, viewpoint world.Viewpoint, gravity float64) bool {
	sample := destination
	if vec.OnQuarterGrid(sample.X) {
		sample.X += BoundaryEpsilon
	}
	if vec.OnQuarterGrid(sample.Z) {
		sample.Z += BoundaryEpsilon
	}

	for _, t := range candidates(e.space.NearestTrile(sample, viewpoint, opts.Ignore), opts) {
		if t == nil || !t.Enabled || t.IsImmaterial() {
			continue
		}
		if faceFor(t, impulse, opts, viewpoint).Stops(impulse.Y, gravity) {
			return true
		}
	}
	return false
}

func (e *Engine) collideNearest(origin, destination, impulse vec.Vec3Float, nearest world.NearestTriles, opts QueryOptions, elasticity float64, viewpoint world.Viewpoint, gravity float64) CollisionResult {
	var first CollisionResult
	for i, t := range candidates(nearest, opts) {
		r := collideWithInstance(origin, destination, impulse, t, opts, elasticity, viewpoint, gravity)
		if r.Collided {
			return r
		}
		if i == 0 {
			first = r
		}
	}
	return first
}

// faceFor возвращает классификацию грани трайла, по которой идёт проверка.
// В ортогональном виде это всегда видимая грань (задняя, если зондируем из-за слоя);
// в режиме от первого лица — грань, встречная направлению движения.
func faceFor(t *world.Trile, impulse vec.Vec3Float, opts QueryOptions, viewpoint world.Viewpoint) world.CollisionType {
	if !viewpoint.IsOrthographic() {
		return t.RotatedFace(opposingFace(impulse))
	}
	face := viewpoint.VisibleOrientation()
	if opts.Background {
		face = face.Opposite()
	}
	return t.RotatedFace(face)
}

// opposingFace — грань, в которую упирается движение вдоль доминирующей оси
func opposingFace(impulse vec.Vec3Float) world.FaceOrientation {
	a := impulse.Abs()
	switch {
	case a.Y >= a.X && a.Y >= a.Z:
		if impulse.Y < 0 {
			return world.FaceTop
		}
		return world.FaceDown
	case a.X >= a.Z:
		if impulse.X < 0 {
			return world.FaceRight
		}
		return world.FaceLeft
	default:
		if impulse.Z < 0 {
			return world.FaceFront
		}
		return world.FaceBack
	}
}

func collideWithInstance(origin, destination, impulse vec.Vec3Float, t *world.Trile, opts QueryOptions, elasticity float64, viewpoint world.Viewpoint, gravity float64) CollisionResult {
	var result CollisionResult
	if t == nil || !t.Enabled || t.IsImmaterial() {
		return result
	}
	result.Destination = t

	class := faceFor(t, impulse, opts, viewpoint)
	if !class.Stops(impulse.Y, gravity) {
		return result
	}

	half := t.TransformedSize().Scale(0.5)
	direction := impulse.Sign()
	axes := direction.Abs()
	face := t.Center().Sub(direction.Mul(half))
	tolerance := EdgeInset
	if ps := t.PhysicsState; ps != nil {
		// Подвижные трайлы сдвигаются раньше остальных сущностей: грань берём в
		// положении до их шага, а сам шаг седоку добавит перенос опорой.
		// Только что приземлившийся седок отстаёт от платформы на один её шаг.
		face = face.Sub(ps.Velocity)
		tolerance += math.Abs(ps.Velocity.Y)
	}

	// Платформа держит только того, кто пришёл со стороны её верха
	if class.IsTopOnly() && (face.Y-origin.Y)*direction.Y < -tolerance {
		return result
	}

	result.Collided = true
	result.NearestDistance = face.Sub(origin).Mul(axes)
	result.Response = face.Sub(destination).Mul(axes)
	if elasticity > 0 {
		result.Response = result.Response.Add(impulse.Mul(axes).Scale(-elasticity))
	}
	return result
}

// CollideEdge проверяет ведущее ребро тела: оба конца по отдельности и, если ближний
// конец не столкнулся (или запрос простой), центр ребра
func (e *Engine) CollideEdge(position, impulse, halfSize vec.Vec3Float, direction Direction2D, opts QueryOptions, elasticity float64, viewpoint world.Viewpoint) MultipleHits[CollisionResult] {
	e.metrics.query("edge")
	var result MultipleHits[CollisionResult]
	if impulse.IsZero() {
		return result
	}

	sign := impulse.Sign()
	if !opts.Simple {
		var span vec.Vec3Float
		if direction == Horizontal {
			span = vec.Up
		} else {
			span = viewpoint.RightVector().Scale(opts.Facing.Sign())
		}
		inset := halfSize.Sub(span.Abs().Scale(EdgeInset))

		nearLow := position.Add(sign.Mul(halfSize)).Sub(span.Mul(inset))
		farHigh := position.Add(sign.Mul(halfSize)).Add(span.Mul(inset))
		result.NearLow = e.CollidePoint(nearLow, impulse, opts, elasticity, viewpoint)
		result.FarHigh = e.CollidePoint(farHigh, impulse, opts, elasticity, viewpoint)
	}

	if opts.Simple || !result.NearLow.Collided {
		center := position.Add(sign.Mul(halfSize))
		result.NearLow = e.CollidePoint(center, impulse, opts, elasticity, viewpoint)
	}
	return result
}

// CollideRectangle проверяет прямоугольник тела в плоскости экрана: горизонтальное и
// вертикальное рёбра независимо. При диагональном движении без столкновений
// повторяет пробы из смещённой по другой оси позиции, чтобы поймать срезание угла.
func (e *Engine) CollideRectangle(position, impulse, size vec.Vec3Float, opts QueryOptions, elasticity float64, viewpoint world.Viewpoint) (horizontal, vertical MultipleHits[CollisionResult]) {
	e.metrics.query("rectangle")
	half := size.Scale(0.5)
	horizontalImpulse := impulse.Mul(viewpoint.SideMask())
	verticalImpulse := impulse.Mul(vec.UnitY)

	horizontal = e.CollideEdge(position, horizontalImpulse, half, Horizontal, opts, elasticity, viewpoint)
	vertical = e.CollideEdge(position, verticalImpulse, half, Vertical, opts, elasticity, viewpoint)

	if !AnyCollided(horizontal) && !AnyCollided(vertical) && !horizontalImpulse.IsZero() && !verticalImpulse.IsZero() {
		horizontal = e.CollideEdge(position.Add(verticalImpulse), horizontalImpulse, half, Horizontal, opts, elasticity, viewpoint)
		vertical = e.CollideEdge(position.Add(horizontalImpulse), verticalImpulse, half, Vertical, opts, elasticity, viewpoint)
		if e.logger.Enabled(logging.TRACE) && (AnyCollided(horizontal) || AnyCollided(vertical)) {
			e.logger.Trace("Срезание угла в %v при импульсе %v", position, impulse)
		}
	}
	return horizontal, vertical
}
