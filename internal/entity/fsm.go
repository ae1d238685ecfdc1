package entity

import (
	"github.com/annel0/trile-physics/internal/world"
)

// Surroundings — то, что состояния знают о мире
type Surroundings interface {
	Viewpoint() world.Viewpoint
	GravityFactor() float64
}

// State представляет состояние конечного автомата игрока
type State interface {
	Enter(p *Player)
	Update(p *Player, s Surroundings) State
	Exit(p *Player)
}

// SetState устанавливает новое состояние
func (p *Player) SetState(state State) {
	if p.state != nil {
		p.state.Exit(p)
	}

	p.state = state

	if p.state != nil {
		p.state.Enter(p)
	}
}

// State возвращает текущее состояние
func (p *Player) State() State {
	return p.state
}

// Think выполняет шаг автомата. Вызывается до шага интегратора.
func (p *Player) Think(s Surroundings) {
	if p.state == nil {
		return
	}
	next := p.state.Update(p, s)
	if next != p.state {
		p.SetState(next)
	}
}

// === Конкретные состояния ===

// IdleState - состояние бездействия
type IdleState struct {
	Ticks    int
	MaxTicks int
}

// NewIdleState создаёт состояние бездействия на 60-180 тиков
func NewIdleState(p *Player) *IdleState {
	return &IdleState{MaxTicks: 60 + p.rng.Intn(120)}
}

func (s *IdleState) Enter(p *Player) {
	s.Ticks = 0
}

func (s *IdleState) Update(p *Player, env Surroundings) State {
	s.Ticks++
	// Останавливаемся, сохраняя падение
	p.Walk(world.DirectionNone, env.Viewpoint())

	if s.Ticks >= s.MaxTicks {
		return NewWanderState(p)
	}
	return s
}

func (s *IdleState) Exit(p *Player) {}

// WanderState - состояние блуждания: идём в одну сторону, у стены подпрыгиваем
type WanderState struct {
	Direction world.HorizontalDirection
	Ticks     int
	MaxTicks  int
	Jumps     int
}

// NewWanderState создаёт состояние блуждания на 120-360 тиков
func NewWanderState(p *Player) *WanderState {
	return &WanderState{MaxTicks: 120 + p.rng.Intn(240)}
}

func (s *WanderState) Enter(p *Player) {
	s.Ticks = 0
	s.Jumps = 0
	s.Direction = world.DirectionRight
	if p.rng.Intn(2) == 0 {
		s.Direction = world.DirectionLeft
	}
}

func (s *WanderState) Update(p *Player, env Surroundings) State {
	s.Ticks++
	if s.Ticks >= s.MaxTicks {
		return NewIdleState(p)
	}

	b := p.Body()
	if b.HitWall() && b.Grounded() {
		// Упёрлись: сначала пробуем запрыгнуть, потом разворачиваемся
		if s.Jumps < 2 && p.Jump(env.GravityFactor()) {
			s.Jumps++
		} else {
			s.Direction = -s.Direction
			s.Jumps = 0
		}
	}

	p.Walk(s.Direction, env.Viewpoint())
	return s
}

func (s *WanderState) Exit(p *Player) {}
