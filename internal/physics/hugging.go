package physics

import (
	"github.com/annel0/trile-physics/internal/collision"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

// cornerInset держит угловые выборки внутри тела, чтобы касание грани не давало перекрытия
const cornerInset = 0.001

// DetermineOverlaps пересчитывает четыре угловые выборки тела для текущего вида
func (i *Integrator) DetermineOverlaps(e Entity) {
	i.sampleCorners(e, i.camera.Viewpoint())
}

func (i *Integrator) sampleCorners(e Entity, viewpoint world.Viewpoint) {
	b := e.Body()
	half := OrientedSize(b.Size, viewpoint).Scale(0.5).Sub(vec.One.Scale(cornerInset))
	right := viewpoint.RightVector().Scale(b.Facing.Sign())
	up := vec.Up
	if i.engine.GravityFactor() < 0 {
		up = vec.Down
	}

	offsets := [CornerCount]vec.Vec3Float{
		CornerTopFront:    right.Add(up),
		CornerBottomFront: right.Sub(up),
		CornerTopBack:     right.Neg().Add(up),
		CornerBottomBack:  right.Neg().Sub(up),
	}
	for c, off := range offsets {
		p := b.Center.Add(off.Mul(half))
		b.Corners[c] = collision.PointCollision{
			Point:     p,
			Instances: i.engine.NearestTrile(p, viewpoint, b.Owned),
		}
	}
}

// huggable выбирает трайл угловой выборки, к которому можно прижаться:
// сначала поверхностный, затем дальний
func (i *Integrator) huggable(n world.NearestTriles, b *Body, face world.FaceOrientation) *world.Trile {
	for _, t := range [...]*world.Trile{n.Surface, n.Deep} {
		if t == nil || !t.Enabled || t.IsImmaterial() || t.PhysicsState != nil || t == b.Owned {
			continue
		}
		switch t.RotatedFace(face) {
		case world.CollisionImmaterial, world.CollisionTopNoStraightLedge, world.CollisionAllSides:
			continue
		}
		return t
	}
	return nil
}

// HugWalls проверяет, не ушла ли сущность за видимую грань соседнего трайла.
// determineBackground: только выставить флаг фона при глубоком проникновении.
// keepInFront: вытолкнуть сущность обратно к грани. postRotation: повторить проверку
// для вида до поворота камеры. Возвращает true, если сущность сдвинута.
func (i *Integrator) HugWalls(e Entity, determineBackground, postRotation, keepInFront bool) bool {
	viewpoint := i.camera.Viewpoint()
	hugged := i.hugAlong(e, viewpoint, determineBackground, keepInFront)

	if postRotation {
		last := i.camera.LastViewpoint()
		if last.IsOrthographic() && last != viewpoint {
			i.sampleCorners(e, last)
			if i.hugAlong(e, last, determineBackground, keepInFront) {
				hugged = true
			}
			i.sampleCorners(e, viewpoint)
		}
	}
	return hugged
}

func (i *Integrator) hugAlong(e Entity, viewpoint world.Viewpoint, determineBackground, keepInFront bool) bool {
	if !viewpoint.IsOrthographic() || (!determineBackground && !keepInFront) {
		return false
	}
	b := e.Body()

	// Из фона прижимаемся к задним граням, глядя навстречу камере
	forward := viewpoint.ForwardVector()
	face := viewpoint.VisibleOrientation()
	if b.Background {
		forward = forward.Neg()
		face = face.Opposite()
	}
	depthMask := viewpoint.DepthMask()
	entityHalfDepth := OrientedSize(b.Size, viewpoint).Mul(depthMask).Sum() / 2

	hugged := false
	for _, corner := range b.Corners {
		t := i.huggable(corner.Instances, b, face)
		if t == nil {
			continue
		}
		trileHalfDepth := t.TransformedSize().Mul(depthMask).Sum() / 2
		nearFace := t.Center().Dot(forward) - trileHalfDepth
		penetration := b.Center.Dot(forward) - nearFace
		if penetration <= i.cfg.HuggingDistance {
			continue
		}

		if determineBackground {
			if penetration > entityHalfDepth+trileHalfDepth {
				b.Background = true
			}
			continue
		}

		next := b.Center.Sub(forward.Scale(penetration + i.cfg.HuggingDistance))
		if i.place(e, next) {
			hugged = true
		}
	}
	return hugged
}

// stabilize повторяет выборку углов и прижатие, пока сущность не перестанет сдвигаться.
// Число итераций ограничено; при исчерпании остаётся последняя позиция.
func (i *Integrator) stabilize(e Entity, postRotation, keepInFront bool) bool {
	limit := i.cfg.MaxHugIterations
	for n := 1; n <= limit; n++ {
		i.DetermineOverlaps(e)
		if !i.HugWalls(e, false, postRotation, keepInFront) {
			i.metrics.hugLoop(n, false)
			return true
		}
	}
	i.metrics.hugLoop(limit, true)
	i.logger.Warn("Прижатие к стенам не сошлось за %d итераций, центр %v", limit, e.Body().Center)
	return false
}

// groundRest пробует опору чуть ниже тела (по направлению гравитации) в заданном виде
// и возвращает центр, при котором тело лежит ровно на опоре
func (i *Integrator) groundRest(e Entity, viewpoint world.Viewpoint) (vec.Vec3Float, bool) {
	b := e.Body()
	reach := vec.Down.Scale(i.cfg.GroundCheckDistance)
	if i.engine.GravityFactor() < 0 {
		reach = reach.Neg()
	}
	half := OrientedSize(b.Size, viewpoint).Scale(0.5)
	hits := i.engine.CollideEdge(b.Center, reach, half, collision.Vertical, i.queryOptions(b, false), 0, viewpoint)
	if !collision.AnyCollided(hits) {
		return vec.Zero, false
	}
	rest := b.Center
	rest.Y += strongest(hits).NearestDistance.Y
	return rest, true
}

// DetermineInBackground решает, находится ли сущность за видимым слоем.
//
// allowEnter: разрешён переход в фон (обычно после поворота камеры). Тогда флаг
// определяется заново по глубине проникновения, а если при этом теряется найденная
// до проверки опора, переход откатывается. Без allowEnter сущность может только
// выйти из фона, когда рядом не осталось геометрии, за которой можно прятаться.
func (i *Integrator) DetermineInBackground(e Entity, allowEnter, postRotation, keepInFront bool) {
	b := e.Body()
	viewpoint := i.camera.Viewpoint()
	wasBackground := b.Background

	if !allowEnter {
		if !b.Background {
			return
		}
		i.DetermineOverlaps(e)
		face := viewpoint.VisibleOrientation().Opposite()
		for _, corner := range b.Corners {
			if i.huggable(corner.Instances, b, face) != nil {
				return
			}
		}
		b.Background = false
		i.metrics.transition(false)
		i.logger.Trace("Сущность в %v вышла из фона", b.Center)
		return
	}

	var rest *vec.Vec3Float
	if b.Grounded() {
		if r, ok := i.groundRest(e, viewpoint); ok {
			rest = &r
		} else if r, ok := i.groundRest(e, viewpoint.Opposite()); ok {
			rest = &r
		}
	}
	origin := b.Center

	b.Background = false
	i.DetermineOverlaps(e)
	i.HugWalls(e, true, postRotation, keepInFront)
	i.stabilize(e, postRotation, keepInFront)

	if rest != nil {
		if _, ok := i.groundRest(e, viewpoint); !ok {
			i.metrics.rollback()
			i.logger.Debug("Переход в фон в %v откатан: потеряна опора", origin)
			b.Background = wasBackground
			i.place(e, origin)
			if last := i.camera.LastViewpoint(); last.IsOrthographic() {
				i.ClampToGround(e, rest, last)
			}
			i.ClampToGround(e, rest, viewpoint)
			b.Velocity = b.Velocity.Mul(vec.UnitY)
			i.stabilize(e, postRotation, keepInFront)
		}
	}

	if b.Background != wasBackground {
		i.metrics.transition(b.Background)
	}
}
