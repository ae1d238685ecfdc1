package entity

import (
	"math/rand"

	"github.com/annel0/trile-physics/internal/physics"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

// PlayerSize — размер тела игрока в трайлах
var PlayerSize = vec.Vec3Float{X: 0.75, Y: 1.75, Z: 0.75}

// Скорости игрока в трайлах за тик
const (
	DefaultWalkSpeed = 0.05
	DefaultJumpSpeed = 0.15
)

// Player — управляемая сущность со сложным телом
type Player struct {
	ID        uint64
	WalkSpeed float64
	JumpSpeed float64

	body  physics.Body
	state State
	rng   *rand.Rand
}

// NewPlayer создаёт игрока с центром в center, смотрящего вправо
func NewPlayer(id uint64, center vec.Vec3Float) *Player {
	return &Player{
		ID:        id,
		WalkSpeed: DefaultWalkSpeed,
		JumpSpeed: DefaultJumpSpeed,
		body: physics.Body{
			Center:      center,
			Size:        PlayerSize,
			Facing:      world.DirectionRight,
			KeepInFront: true,
		},
		// Свой генератор на сущность: поведение воспроизводимо при одинаковом ID
		rng: rand.New(rand.NewSource(int64(id))),
	}
}

// Body реализует physics.Entity
func (p *Player) Body() *physics.Body {
	return &p.body
}

// Walk задаёт горизонтальную скорость по экрану. DirectionNone останавливает игрока.
func (p *Player) Walk(direction world.HorizontalDirection, viewpoint world.Viewpoint) {
	b := &p.body
	speed := 0.0
	if direction != world.DirectionNone {
		speed = p.WalkSpeed * direction.Sign()
		b.Facing = direction
	}
	b.Velocity = b.Velocity.Mul(viewpoint.SideMask().Invert()).Add(viewpoint.RightVector().Scale(speed))
}

// Jump отталкивает игрока от опоры против гравитации
func (p *Player) Jump(gravityFactor float64) bool {
	if !p.body.Grounded() {
		return false
	}
	up := p.JumpSpeed
	if gravityFactor < 0 {
		up = -up
	}
	p.body.Velocity.Y = up
	return true
}
