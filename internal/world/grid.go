package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/trile-physics/internal/vec"
)

// ErrCellOccupied — ячейка уже занята другим трайлом
var ErrCellOccupied = errors.New("cell already occupied")

// NearestTriles — результат пространственного запроса: до двух трайлов вдоль скрытой оси.
// Surface ближе к камере, Deep — самый дальний из найденных (если отличается от Surface).
type NearestTriles struct {
	Surface *Trile
	Deep    *Trile
}

// Any возвращает Surface, если он есть, иначе Deep
func (n NearestTriles) Any() *Trile {
	if n.Surface != nil {
		return n.Surface
	}
	return n.Deep
}

// Grid хранит трайлы уровня в целочисленной решётке.
// Доступ только из потока симуляции, поэтому блокировок нет.
type Grid struct {
	cells  map[vec.Vec3]*Trile
	triles map[uint64]*Trile
	min    vec.Vec3
	max    vec.Vec3
}

// NewGrid создаёт пустую решётку
func NewGrid() *Grid {
	return &Grid{
		cells:  make(map[vec.Vec3]*Trile),
		triles: make(map[uint64]*Trile),
	}
}

// Len возвращает количество трайлов
func (g *Grid) Len() int {
	return len(g.triles)
}

// Bounds возвращает минимальную и максимальную занятые ячейки.
// Границы только расширяются: удаление трайлов их не сужает.
func (g *Grid) Bounds() (vec.Vec3, vec.Vec3) {
	return g.min, g.max
}

// cellEpsilon — допуск, чтобы трайл, лежащий ровно на границе, не захватывал соседнюю ячейку
const cellEpsilon = 1e-9

// coveredCells возвращает все ячейки, которые пересекает коробка трайла.
// Трайл со смещением занимает и соседние ячейки, в которые выступает.
func coveredCells(t *Trile) []vec.Vec3 {
	lo := t.Position()
	hi := lo.Add(t.TransformedSize())

	from := vec.Vec3{
		X: int(math.Floor(lo.X + cellEpsilon)),
		Y: int(math.Floor(lo.Y + cellEpsilon)),
		Z: int(math.Floor(lo.Z + cellEpsilon)),
	}
	to := vec.Vec3{
		X: max(from.X, int(math.Ceil(hi.X-cellEpsilon))-1),
		Y: max(from.Y, int(math.Ceil(hi.Y-cellEpsilon))-1),
		Z: max(from.Z, int(math.Ceil(hi.Z-cellEpsilon))-1),
	}

	cells := make([]vec.Vec3, 0, (to.X-from.X+1)*(to.Y-from.Y+1)*(to.Z-from.Z+1))
	for x := from.X; x <= to.X; x++ {
		for y := from.Y; y <= to.Y; y++ {
			for z := from.Z; z <= to.Z; z++ {
				cells = append(cells, vec.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	return cells
}

// Add размещает трайл в решётке
func (g *Grid) Add(t *Trile) error {
	cells := coveredCells(t)
	for _, c := range cells {
		if other, ok := g.cells[c]; ok && other != t {
			return fmt.Errorf("trile %d at %v (held by %d): %w", t.ID, c, other.ID, ErrCellOccupied)
		}
	}

	if len(g.triles) == 0 {
		g.min, g.max = cells[0], cells[0]
	}
	for _, c := range cells {
		g.cells[c] = t
		g.grow(c)
	}
	g.triles[t.ID] = t
	return nil
}

func (g *Grid) grow(c vec.Vec3) {
	g.min = vec.Vec3{X: min(g.min.X, c.X), Y: min(g.min.Y, c.Y), Z: min(g.min.Z, c.Z)}
	g.max = vec.Vec3{X: max(g.max.X, c.X), Y: max(g.max.Y, c.Y), Z: max(g.max.Z, c.Z)}
}

// Remove убирает трайл из решётки
func (g *Grid) Remove(t *Trile) {
	for _, c := range coveredCells(t) {
		if g.cells[c] == t {
			delete(g.cells, c)
		}
	}
	delete(g.triles, t.ID)
}

// MoveTo переносит трайл так, чтобы его центр оказался в center.
// Если новые ячейки заняты, трайл остаётся на месте.
func (g *Grid) MoveTo(t *Trile, center vec.Vec3Float) error {
	oldCell, oldOffset := t.Cell, t.Offset
	g.Remove(t)

	t.Cell, t.Offset = OriginCellFor(center, t.TransformedSize())
	if err := g.Add(t); err != nil {
		t.Cell, t.Offset = oldCell, oldOffset
		if rollbackErr := g.Add(t); rollbackErr != nil {
			return errors.Join(err, rollbackErr)
		}
		return err
	}
	return nil
}

// At возвращает трайл в ячейке
func (g *Grid) At(cell vec.Vec3) *Trile {
	return g.cells[cell]
}

// InstanceAt возвращает трайл, реально содержащий точку (без проекции по глубине)
func (g *Grid) InstanceAt(p vec.Vec3Float) *Trile {
	if t := g.cells[vec.CellOf(p)]; t != nil && covers(t, p, vec.One) {
		return t
	}
	return nil
}

// Each обходит все трайлы
func (g *Grid) Each(fn func(t *Trile)) {
	for _, t := range g.triles {
		fn(t)
	}
}

func queryable(t, ignore *Trile) bool {
	return t != nil && t != ignore && t.Enabled && !t.IsImmaterial()
}

// covers проверяет, что коробка трайла содержит p по осям mask. Трайл со
// смещением числится и в соседних ячейках, но точку там он может не накрывать.
// Для подвижного трайла коробка включает и положение до его шага в этом тике.
func covers(t *Trile, p, mask vec.Vec3Float) bool {
	lo := t.Position()
	hi := lo.Add(t.TransformedSize())
	if ps := t.PhysicsState; ps != nil {
		before := lo.Sub(ps.Velocity)
		lo = vec.Vec3Float{X: min(lo.X, before.X), Y: min(lo.Y, before.Y), Z: min(lo.Z, before.Z)}
		before = hi.Sub(ps.Velocity)
		hi = vec.Vec3Float{X: max(hi.X, before.X), Y: max(hi.Y, before.Y), Z: max(hi.Z, before.Z)}
	}
	axes := [...]struct{ m, p, lo, hi float64 }{
		{mask.X, p.X, lo.X, hi.X},
		{mask.Y, p.Y, lo.Y, hi.Y},
		{mask.Z, p.Z, lo.Z, hi.Z},
	}
	for _, a := range axes {
		if a.m != 0 && (a.p < a.lo-cellEpsilon || a.p > a.hi+cellEpsilon) {
			return false
		}
	}
	return true
}

// NearestTrile находит трайлы вдоль скрытой оси точки обзора, проходящей через p.
// Обход идёт от камеры вглубь экрана; ignore исключается (сам объект не мешает себе).
// Для неортогональной точки обзора выполняется точный поиск по ячейке.
func (g *Grid) NearestTrile(p vec.Vec3Float, viewpoint Viewpoint, ignore *Trile) NearestTriles {
	var result NearestTriles
	cell := vec.CellOf(p)

	if !viewpoint.IsOrthographic() {
		if t := g.cells[cell]; queryable(t, ignore) && covers(t, p, vec.One) {
			result.Surface = t
		}
		return result
	}
	if len(g.cells) == 0 {
		return result
	}

	forward := viewpoint.ForwardVector()
	alongX := forward.X != 0
	lo, hi := g.min.Z, g.max.Z
	step := int(forward.Z)
	if alongX {
		lo, hi = g.min.X, g.max.X
		step = int(forward.X)
	}

	// Камера находится со стороны, противоположной направлению взгляда
	from, to := lo, hi
	if step < 0 {
		from, to = hi, lo
	}

	screen := viewpoint.ScreenMask()
	var last *Trile
	for d := from; ; d += step {
		c := cell
		if alongX {
			c.X = d
		} else {
			c.Z = d
		}

		if t := g.cells[c]; t != last && queryable(t, ignore) && covers(t, p, screen) {
			if result.Surface == nil {
				result.Surface = t
			} else {
				result.Deep = t
			}
			last = t
		}

		if d == to {
			break
		}
	}
	return result
}
