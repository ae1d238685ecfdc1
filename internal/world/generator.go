package world

import (
	"fmt"
	"math/rand"

	"github.com/annel0/trile-physics/internal/util"
	"github.com/annel0/trile-physics/internal/vec"
)

// LevelGenerator строит процедурные уровни для стресс-тестов и сценариев.
// Загрузка настоящих уровней — забота внешнего загрузчика контента.
type LevelGenerator struct {
	Seed           int64
	Size           vec.Vec3 // ширина (X), высота (Y), глубина (Z) в трайлах
	NoiseScale     float64  // масштаб шума рельефа
	PlatformChance float64  // шанс висячей платформы над колонной
	LedgeChance    float64  // шанс, что верх колонны — уступ без прямого края
	DecorChance    float64  // шанс декорации поверх колонны
}

// NewLevelGenerator создаёт генератор с настройками по умолчанию
func NewLevelGenerator(seed int64, size vec.Vec3) *LevelGenerator {
	return &LevelGenerator{
		Seed:           seed,
		Size:           size,
		NoiseScale:     0.08,
		PlatformChance: 0.04,
		LedgeChance:    0.1,
		DecorChance:    0.05,
	}
}

// Generate заполняет новую решётку по шуму Перлина. Результат детерминирован для сида.
func (lg *LevelGenerator) Generate(set *TrileSet) (*Grid, error) {
	kinds := make(map[TrileID]*TrileKind)
	for _, id := range []TrileID{SolidTrileID, PlatformTrileID, LedgeTrileID, DecorationTrileID} {
		kind, ok := set.Get(id)
		if !ok {
			return nil, fmt.Errorf("generator needs kind %d: %w", id, ErrUnknownKind)
		}
		kinds[id] = kind
	}

	noise := util.NewNoise(lg.Seed)
	rng := rand.New(rand.NewSource(lg.Seed))
	grid := NewGrid()
	var nextID uint64 = 1

	place := func(id TrileID, cell vec.Vec3) error {
		t := NewTrile(nextID, kinds[id], cell)
		nextID++
		return grid.Add(t)
	}

	maxHeight := max(1, lg.Size.Y/2)
	for x := 0; x < lg.Size.X; x++ {
		for z := 0; z < lg.Size.Z; z++ {
			h := 1 + int(noise.Noise2D(float64(x)*lg.NoiseScale, float64(z)*lg.NoiseScale)*float64(maxHeight-1))

			for y := 0; y < h; y++ {
				id := SolidTrileID
				if y == h-1 && rng.Float64() < lg.LedgeChance {
					id = LedgeTrileID
				}
				if err := place(id, vec.Vec3{X: x, Y: y, Z: z}); err != nil {
					return nil, err
				}
			}

			if h < lg.Size.Y && rng.Float64() < lg.DecorChance {
				if err := place(DecorationTrileID, vec.Vec3{X: x, Y: h, Z: z}); err != nil {
					return nil, err
				}
			}

			if rng.Float64() < lg.PlatformChance {
				y := h + 2 + rng.Intn(max(1, lg.Size.Y-h-2))
				if y < lg.Size.Y {
					if err := place(PlatformTrileID, vec.Vec3{X: x, Y: y, Z: z}); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return grid, nil
}
