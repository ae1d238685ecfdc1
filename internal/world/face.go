package world

import "github.com/annel0/trile-physics/internal/vec"

// FaceOrientation определяет грань трайла в мировых или логических координатах
type FaceOrientation uint8

const (
	FaceLeft  FaceOrientation = iota // -X
	FaceDown                         // -Y
	FaceBack                         // -Z
	FaceRight                        // +X
	FaceTop                          // +Y
	FaceFront                        // +Z
)

// AllFaces перечисляет все грани в порядке объявления
var AllFaces = [...]FaceOrientation{FaceLeft, FaceDown, FaceBack, FaceRight, FaceTop, FaceFront}

// Боковые грани в порядке поворота вокруг +Y на 90°
var sideRing = [...]FaceOrientation{FaceFront, FaceRight, FaceBack, FaceLeft}

func (f FaceOrientation) String() string {
	switch f {
	case FaceLeft:
		return "Left"
	case FaceDown:
		return "Down"
	case FaceBack:
		return "Back"
	case FaceRight:
		return "Right"
	case FaceTop:
		return "Top"
	case FaceFront:
		return "Front"
	default:
		return "Unknown"
	}
}

// Opposite возвращает противоположную грань
func (f FaceOrientation) Opposite() FaceOrientation {
	return (f + 3) % 6
}

// IsSide возвращает true для граней, перпендикулярных горизонтальной плоскости
func (f FaceOrientation) IsSide() bool {
	return f != FaceTop && f != FaceDown
}

// Vector возвращает нормаль грани
func (f FaceOrientation) Vector() vec.Vec3Float {
	switch f {
	case FaceLeft:
		return vec.Vec3Float{X: -1}
	case FaceDown:
		return vec.Vec3Float{Y: -1}
	case FaceBack:
		return vec.Vec3Float{Z: -1}
	case FaceRight:
		return vec.Vec3Float{X: 1}
	case FaceTop:
		return vec.Vec3Float{Y: 1}
	default:
		return vec.Vec3Float{Z: 1}
	}
}

// Rotate поворачивает боковую грань на заданное число четвертей оборота вокруг +Y.
// Верх и низ при повороте не меняются.
func (f FaceOrientation) Rotate(quarterTurns int) FaceOrientation {
	if !f.IsSide() {
		return f
	}
	idx := 0
	for i, side := range sideRing {
		if side == f {
			idx = i
			break
		}
	}
	n := len(sideRing)
	return sideRing[((idx+quarterTurns)%n+n)%n]
}
