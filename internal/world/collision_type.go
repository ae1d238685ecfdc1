package world

// CollisionType классифицирует грань трайла для столкновений
type CollisionType uint8

const (
	CollisionNone CollisionType = iota
	CollisionImmaterial
	CollisionTopOnly
	CollisionTopNoStraightLedge
	CollisionAllSides
)

func (c CollisionType) String() string {
	switch c {
	case CollisionNone:
		return "None"
	case CollisionImmaterial:
		return "Immaterial"
	case CollisionTopOnly:
		return "TopOnly"
	case CollisionTopNoStraightLedge:
		return "TopNoStraightLedge"
	case CollisionAllSides:
		return "AllSides"
	default:
		return "Unknown"
	}
}

// ParseCollisionType разбирает имя классификации; используется при чтении описаний трайлов
func ParseCollisionType(s string) (CollisionType, bool) {
	for c := CollisionNone; c <= CollisionAllSides; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return CollisionNone, false
}

// IsTopOnly возвращает true для платформ, которые держат только сверху
func (c CollisionType) IsTopOnly() bool {
	return c == CollisionTopOnly || c == CollisionTopNoStraightLedge
}

// Stops решает, останавливает ли грань движение с вертикальной составляющей impulseY
// при заданном знаке гравитации. TopOnly-грани держат только движение по направлению
// гравитации (падение на платформу).
func (c CollisionType) Stops(impulseY, gravityFactor float64) bool {
	switch c {
	case CollisionAllSides:
		return true
	case CollisionTopOnly, CollisionTopNoStraightLedge:
		if gravityFactor < 0 {
			return impulseY > 0
		}
		return impulseY < 0
	default:
		return false
	}
}
