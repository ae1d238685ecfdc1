package level

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/trile-physics/internal/logging"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

// ErrInvalidGravity — множитель гравитации должен быть конечным числом
var ErrInvalidGravity = errors.New("invalid gravity factor")

// Level — загруженный уровень: решётка трайлов, набор типов, множитель гравитации
// и флаг ожидающей пересборки экрана. Реализует collision.Space и physics.Screen.
type Level struct {
	Name string

	set     *world.TrileSet
	grid    *world.Grid
	gravity float64
	nextID  uint64

	invalidation bool

	logger *logging.Logger
}

// New создаёт уровень поверх готовой решётки; grid может быть nil
func New(name string, set *world.TrileSet, grid *world.Grid) *Level {
	if grid == nil {
		grid = world.NewGrid()
	}
	l := &Level{
		Name:    name,
		set:     set,
		grid:    grid,
		gravity: 1,
		logger:  logging.GetLevelLogger(),
	}
	grid.Each(func(t *world.Trile) {
		l.nextID = max(l.nextID, t.ID)
	})
	return l
}

// Generate строит процедурный уровень генератором gen
func Generate(name string, set *world.TrileSet, gen *world.LevelGenerator) (*Level, error) {
	grid, err := gen.Generate(set)
	if err != nil {
		return nil, fmt.Errorf("generate level %s: %w", name, err)
	}
	l := New(name, set, grid)
	lo, hi := grid.Bounds()
	l.logger.Info("Уровень %s: %d трайлов, границы %v..%v", name, grid.Len(), lo, hi)
	return l, nil
}

// Grid возвращает решётку уровня
func (l *Level) Grid() *world.Grid {
	return l.grid
}

// Set возвращает набор типов трайлов
func (l *Level) Set() *world.TrileSet {
	return l.set
}

// NearestTrile реализует collision.Space
func (l *Level) NearestTrile(p vec.Vec3Float, viewpoint world.Viewpoint, ignore *world.Trile) world.NearestTriles {
	return l.grid.NearestTrile(p, viewpoint, ignore)
}

// GravityFactor возвращает множитель гравитации; отрицательный — гравитация вверх
func (l *Level) GravityFactor() float64 {
	return l.gravity
}

// SetGravityFactor меняет множитель гравитации
func (l *Level) SetGravityFactor(g float64) error {
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return fmt.Errorf("gravity %v: %w", g, ErrInvalidGravity)
	}
	if g != l.gravity {
		l.logger.Debug("Гравитация уровня %s: %v -> %v", l.Name, l.gravity, g)
	}
	l.gravity = g
	return nil
}

// Place добавляет трайл типа kind в ячейку cell
func (l *Level) Place(kind world.TrileID, cell vec.Vec3) (*world.Trile, error) {
	k, ok := l.set.Get(kind)
	if !ok {
		return nil, fmt.Errorf("place kind %d at %v: %w", kind, cell, world.ErrUnknownKind)
	}
	l.nextID++
	t := world.NewTrile(l.nextID, k, cell)
	if err := l.grid.Add(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Remove убирает трайл с уровня
func (l *Level) Remove(t *world.Trile) {
	l.grid.Remove(t)
}

// InvalidateScreen откладывает пересчёт угловых выборок до конца тика
func (l *Level) InvalidateScreen() {
	l.invalidation = true
}

// InvalidationPending реализует physics.Screen
func (l *Level) InvalidationPending() bool {
	return l.invalidation
}

// ClearInvalidation снимает флаг после пересчёта
func (l *Level) ClearInvalidation() {
	l.invalidation = false
}
