package world

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/annel0/trile-physics/internal/logging"
	"github.com/annel0/trile-physics/internal/vec"
)

var (
	// ErrIncompleteFaces — у типа трайла классифицированы не все шесть граней
	ErrIncompleteFaces = errors.New("trile kind has unclassified faces")
	// ErrDuplicateKind — тип с таким ID уже зарегистрирован
	ErrDuplicateKind = errors.New("trile kind already registered")
	// ErrUnknownKind — тип трайла не найден в наборе
	ErrUnknownKind = errors.New("unknown trile kind")
)

// TrileID представляет идентификатор типа трайла
type TrileID uint16

// TrileKind описывает тип трайла: размер и классификацию логических граней
type TrileKind struct {
	ID         TrileID
	Name       string
	Size       vec.Vec3Float
	Immaterial bool
	Faces      map[FaceOrientation]CollisionType
}

// NewTrileKind создаёт тип трайла и проверяет, что все грани классифицированы
func NewTrileKind(id TrileID, name string, size vec.Vec3Float, faces map[FaceOrientation]CollisionType) (*TrileKind, error) {
	for _, f := range AllFaces {
		if _, ok := faces[f]; !ok {
			return nil, fmt.Errorf("kind %d (%s), face %s: %w", id, name, f, ErrIncompleteFaces)
		}
	}
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		size = vec.One
	}
	return &TrileKind{ID: id, Name: name, Size: size, Faces: faces}, nil
}

// UniformFaces возвращает таблицу, где все грани имеют одну классификацию
func UniformFaces(c CollisionType) map[FaceOrientation]CollisionType {
	faces := make(map[FaceOrientation]CollisionType, len(AllFaces))
	for _, f := range AllFaces {
		faces[f] = c
	}
	return faces
}

// TrileSet — набор типов трайлов уровня
type TrileSet struct {
	kinds map[TrileID]*TrileKind
}

// NewTrileSet создаёт пустой набор
func NewTrileSet() *TrileSet {
	return &TrileSet{kinds: make(map[TrileID]*TrileKind)}
}

// Add регистрирует тип трайла
func (s *TrileSet) Add(kind *TrileKind) error {
	if _, exists := s.kinds[kind.ID]; exists {
		return fmt.Errorf("kind %d: %w", kind.ID, ErrDuplicateKind)
	}
	s.kinds[kind.ID] = kind
	return nil
}

// Get возвращает тип по ID
func (s *TrileSet) Get(id TrileID) (*TrileKind, bool) {
	kind, ok := s.kinds[id]
	return kind, ok
}

// IDs возвращает отсортированный список зарегистрированных ID
func (s *TrileSet) IDs() []TrileID {
	ids := make([]TrileID, 0, len(s.kinds))
	for id := range s.kinds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Стандартные типы трайлов
const (
	SolidTrileID TrileID = iota + 1
	PlatformTrileID
	LedgeTrileID
	GhostTrileID
	DecorationTrileID
)

// StandardSet возвращает набор из базовых типов: сплошной блок, платформа,
// платформа без прямого уступа, призрачный блок и декорация
func StandardSet() *TrileSet {
	set := NewTrileSet()
	defs := []struct {
		id         TrileID
		name       string
		faces      CollisionType
		immaterial bool
	}{
		{SolidTrileID, "solid", CollisionAllSides, false},
		{PlatformTrileID, "platform", CollisionTopOnly, false},
		{LedgeTrileID, "ledge", CollisionTopNoStraightLedge, false},
		{GhostTrileID, "ghost", CollisionImmaterial, false},
		{DecorationTrileID, "decoration", CollisionNone, false},
	}
	for _, d := range defs {
		kind, _ := NewTrileKind(d.id, d.name, vec.One, UniformFaces(d.faces))
		kind.Immaterial = d.immaterial
		_ = set.Add(kind)
	}
	return set
}

// TrilePhysicsState — физическое состояние подвижного трайла (толкаемый блок,
// движущаяся платформа). Существует, пока трайл входит в подвижную группу.
type TrilePhysicsState struct {
	Velocity       vec.Vec3Float
	GroundMovement vec.Vec3Float
	Sticky         bool // переносит стоящих на нём по всем трём осям
	Puppet         bool // движется скриптом, собственный перенос не учитывается
	Static         bool // неподвижен, ничего не переносит
	Elasticity     float64
}

// Trile — экземпляр трайла, размещённый в ячейке решётки
type Trile struct {
	ID           uint64
	Kind         *TrileKind
	Cell         vec.Vec3
	Offset       vec.Vec3Float // субъединичное смещение внутри ячейки
	Phi          float64       // поворот вокруг +Y в радианах, кратен π/2
	Enabled      bool
	PhysicsState *TrilePhysicsState
}

// NewTrile создаёт включённый экземпляр трайла
func NewTrile(id uint64, kind *TrileKind, cell vec.Vec3) *Trile {
	return &Trile{ID: id, Kind: kind, Cell: cell, Enabled: true}
}

// QuarterTurns возвращает поворот Phi в четвертях оборота (0..3)
func (t *Trile) QuarterTurns() int {
	q := int(math.Round(t.Phi / (math.Pi / 2)))
	return (q%4 + 4) % 4
}

// TransformedSize возвращает размер с учётом поворота (X и Z меняются местами при
// нечётном числе четвертей)
func (t *Trile) TransformedSize() vec.Vec3Float {
	size := t.Kind.Size
	if t.QuarterTurns()%2 == 1 {
		size.X, size.Z = size.Z, size.X
	}
	return size
}

// Position возвращает минимальный угол трайла в мировых координатах
func (t *Trile) Position() vec.Vec3Float {
	return t.Cell.ToFloat().Add(t.Offset)
}

// Center возвращает центр трайла
func (t *Trile) Center() vec.Vec3Float {
	return t.Position().Add(t.TransformedSize().Scale(0.5))
}

// IsImmaterial возвращает true для трайлов, сквозь которые всё проходит
func (t *Trile) IsImmaterial() bool {
	return t.Kind == nil || t.Kind.Immaterial
}

// RotatedFace возвращает классификацию мировой грани с учётом поворота Phi.
// Отсутствующая запись — дефект контента: логируется и считается None.
func (t *Trile) RotatedFace(face FaceOrientation) CollisionType {
	if t.Kind == nil {
		return CollisionNone
	}
	logical := face.Rotate(-t.QuarterTurns())
	c, ok := t.Kind.Faces[logical]
	if !ok {
		logging.GetWorldLogger().Error("Трайл %d (%s): нет классификации грани %s", t.ID, t.Kind.Name, logical)
		return CollisionNone
	}
	return c
}

// OriginCellFor возвращает ячейку-основание для трайла с заданным центром и
// смещение внутри неё
func OriginCellFor(center, size vec.Vec3Float) (vec.Vec3, vec.Vec3Float) {
	corner := center.Sub(size.Scale(0.5))
	cell := vec.CellOf(corner.Add(vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5}))
	return cell, corner.Sub(cell.ToFloat())
}
