package camera

import (
	"errors"
	"fmt"

	"github.com/annel0/trile-physics/internal/logging"
	"github.com/annel0/trile-physics/internal/world"
)

var (
	// ErrRotating — новый поворот нельзя начать, пока идёт предыдущий
	ErrRotating = errors.New("camera is rotating")
	// ErrNotOrthographic — поворачивать можно только между ортогональными видами
	ErrNotOrthographic = errors.New("viewpoint is not orthographic")
)

// Camera — поворотная камера. Смена вида растянута на несколько тиков: пока поворот
// идёт, физика продолжает работать в действующем виде, а целевой вид становится
// действующим только на последнем тике интерполяции.
type Camera struct {
	current world.Viewpoint // действующий вид
	last    world.Viewpoint // вид до последнего завершённого поворота
	target  world.Viewpoint

	rotationTicks int
	remaining     int
	justRotated   bool

	logger *logging.Logger
}

// New создаёт камеру в виде initial; rotationTicks — длительность поворота в тиках
func New(initial world.Viewpoint, rotationTicks int) *Camera {
	return &Camera{
		current:       initial,
		last:          initial,
		target:        initial,
		rotationTicks: max(1, rotationTicks),
		logger:        logging.GetCameraLogger(),
	}
}

// Viewpoint возвращает действующий вид
func (c *Camera) Viewpoint() world.Viewpoint {
	return c.current
}

// LastViewpoint возвращает вид до последней смены
func (c *Camera) LastViewpoint() world.Viewpoint {
	return c.last
}

// Target возвращает вид, к которому идёт поворот (или действующий, если поворота нет)
func (c *Camera) Target() world.Viewpoint {
	return c.target
}

// Rotating сообщает, идёт ли поворот
func (c *Camera) Rotating() bool {
	return c.remaining > 0
}

// JustRotated — поворот завершился на последнем Advance
func (c *Camera) JustRotated() bool {
	return c.justRotated
}

// Progress возвращает долю пройденного поворота от 0 до 1
func (c *Camera) Progress() float64 {
	if c.remaining == 0 {
		return 1
	}
	return 1 - float64(c.remaining)/float64(c.rotationTicks)
}

// RotateTo начинает поворот к виду target
func (c *Camera) RotateTo(target world.Viewpoint) error {
	if !target.IsOrthographic() || !c.current.IsOrthographic() {
		return fmt.Errorf("rotate %s -> %s: %w", c.current, target, ErrNotOrthographic)
	}
	if c.Rotating() {
		return fmt.Errorf("rotate to %s while heading to %s: %w", target, c.target, ErrRotating)
	}
	if target == c.current {
		return nil
	}
	c.target = target
	c.remaining = c.rotationTicks
	c.logger.Debug("Поворот камеры %s -> %s за %d тиков", c.current, target, c.rotationTicks)
	return nil
}

// RotateCW поворачивает камеру на четверть оборота по часовой стрелке
func (c *Camera) RotateCW() error {
	return c.RotateTo(c.current.RotateCW())
}

// RotateCCW поворачивает камеру на четверть оборота против часовой стрелки
func (c *Camera) RotateCCW() error {
	return c.RotateTo(c.current.RotateCCW())
}

// SetViewpoint мгновенно меняет вид без интерполяции (вход в режим от первого лица,
// загрузка уровня). Незавершённый поворот отменяется.
func (c *Camera) SetViewpoint(v world.Viewpoint) {
	if v != c.current {
		c.last = c.current
	}
	c.current = v
	c.target = v
	c.remaining = 0
	c.justRotated = false
}

// Advance продвигает поворот на один тик и сообщает, завершился ли он на этом тике
func (c *Camera) Advance() bool {
	c.justRotated = false
	if c.remaining == 0 {
		return false
	}
	c.remaining--
	if c.remaining > 0 {
		return false
	}

	c.last = c.current
	c.current = c.target
	c.justRotated = true
	c.logger.Debug("Поворот камеры завершён: %s", c.current)
	return true
}
