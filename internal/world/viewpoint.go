package world

import "github.com/annel0/trile-physics/internal/vec"

// Viewpoint определяет одну из фиксированных ортогональных точек обзора камеры.
// Для ортогональных точек обзора одна из мировых осей (X или Z) скрыта —
// это ось глубины, вдоль которой все трайлы считаются "соединёнными".
type Viewpoint uint8

const (
	ViewpointNone Viewpoint = iota
	ViewpointFront
	ViewpointRight
	ViewpointBack
	ViewpointLeft
	ViewpointUp
	ViewpointDown
	ViewpointPerspective // переходный режим от первого лица
)

// String возвращает строковое представление точки обзора
func (v Viewpoint) String() string {
	switch v {
	case ViewpointFront:
		return "Front"
	case ViewpointRight:
		return "Right"
	case ViewpointBack:
		return "Back"
	case ViewpointLeft:
		return "Left"
	case ViewpointUp:
		return "Up"
	case ViewpointDown:
		return "Down"
	case ViewpointPerspective:
		return "Perspective"
	default:
		return "None"
	}
}

// IsOrthographic возвращает true для четырёх боковых точек обзора
func (v Viewpoint) IsOrthographic() bool {
	return v >= ViewpointFront && v <= ViewpointLeft
}

// RightVector возвращает направление "вправо по экрану" в мировых координатах
func (v Viewpoint) RightVector() vec.Vec3Float {
	switch v {
	case ViewpointFront:
		return vec.Vec3Float{X: 1}
	case ViewpointRight:
		return vec.Vec3Float{Z: -1}
	case ViewpointBack:
		return vec.Vec3Float{X: -1}
	case ViewpointLeft:
		return vec.Vec3Float{Z: 1}
	default:
		return vec.Vec3Float{X: 1}
	}
}

// ForwardVector возвращает направление взгляда камеры (вглубь экрана)
func (v Viewpoint) ForwardVector() vec.Vec3Float {
	switch v {
	case ViewpointFront:
		return vec.Vec3Float{Z: -1}
	case ViewpointRight:
		return vec.Vec3Float{X: -1}
	case ViewpointBack:
		return vec.Vec3Float{Z: 1}
	case ViewpointLeft:
		return vec.Vec3Float{X: 1}
	default:
		return vec.Vec3Float{Z: -1}
	}
}

// DepthMask возвращает маску скрытой оси
func (v Viewpoint) DepthMask() vec.Vec3Float {
	return v.ForwardVector().Abs()
}

// SideMask возвращает маску горизонтальной оси экрана
func (v Viewpoint) SideMask() vec.Vec3Float {
	return v.RightVector().Abs()
}

// ScreenMask возвращает маску плоскости экрана (горизонталь + вертикаль)
func (v Viewpoint) ScreenMask() vec.Vec3Float {
	return v.DepthMask().Invert()
}

// VisibleOrientation возвращает грань трайла, обращённую к камере
func (v Viewpoint) VisibleOrientation() FaceOrientation {
	switch v {
	case ViewpointRight:
		return FaceRight
	case ViewpointBack:
		return FaceBack
	case ViewpointLeft:
		return FaceLeft
	default:
		return FaceFront
	}
}

// Opposite возвращает точку обзора, повёрнутую на 180°
func (v Viewpoint) Opposite() Viewpoint {
	switch v {
	case ViewpointFront:
		return ViewpointBack
	case ViewpointBack:
		return ViewpointFront
	case ViewpointRight:
		return ViewpointLeft
	case ViewpointLeft:
		return ViewpointRight
	case ViewpointUp:
		return ViewpointDown
	case ViewpointDown:
		return ViewpointUp
	default:
		return v
	}
}

// RotateCW возвращает следующую точку обзора при повороте по часовой стрелке
func (v Viewpoint) RotateCW() Viewpoint {
	if !v.IsOrthographic() {
		return v
	}
	return ViewpointFront + (v-ViewpointFront+1)%4
}

// RotateCCW возвращает следующую точку обзора при повороте против часовой стрелки
func (v Viewpoint) RotateCCW() Viewpoint {
	if !v.IsOrthographic() {
		return v
	}
	return ViewpointFront + (v-ViewpointFront+3)%4
}

// Project проецирует мировую точку на плоскость экрана
func (v Viewpoint) Project(p vec.Vec3Float) vec.Vec2Float {
	return vec.Vec2Float{X: p.Dot(v.RightVector()), Y: p.Y}
}

// Depth возвращает координату точки вдоль направления взгляда
func (v Viewpoint) Depth(p vec.Vec3Float) float64 {
	return p.Dot(v.ForwardVector())
}

// HorizontalDirection — направление взгляда сущности по горизонтали экрана
type HorizontalDirection int8

const (
	DirectionLeft  HorizontalDirection = -1
	DirectionNone  HorizontalDirection = 0
	DirectionRight HorizontalDirection = 1
)

// Sign возвращает знак направления; отсутствие направления считается взглядом вправо
func (d HorizontalDirection) Sign() float64 {
	if d < 0 {
		return -1
	}
	return 1
}
