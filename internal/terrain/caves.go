package terrain

import (
	"math/rand"

	"github.com/latticeworld/worldcore/internal/vec"
)

// caStepCount and caWallThreshold tune the cellular automaton: enough
// iterations to smooth the initial noise into connected rooms, with a
// majority-of-neighbors rule for what stays a wall.
const (
	caStepCount     = 4
	caWallThreshold = 5
)

// Caves is the per-layer cellular-automaton cave-wall pass (spec.md §4.4
// step 4), grounded on provider.rs's Caves::new(rng, layer, cutoff,
// height_grid, entrance) / CellularGrid usage.
type Caves struct {
	rng        *rand.Rand
	layer      uint8
	cutoff     uint8
	heightGrid *DscGrid
	entrance   []vec.Vec2
}

// NewCaves builds the pass for one layer. entrance is the optional
// translated anchor from Provider.placeEntrance (0 or 1 elements,
// mirroring the original's Option<V2> carried as a slice).
func NewCaves(rng *rand.Rand, layer, cutoff uint8, heightGrid *DscGrid, entrance []vec.Vec2) *Caves {
	return &Caves{rng: rng, layer: layer, cutoff: cutoff, heightGrid: heightGrid, entrance: entrance}
}

func (p *Caves) Init() *CellularGrid {
	return newCellularGrid(3*vec.ChunkSize + 1)
}

// Load locks the border shared with an already-generated neighbor's
// cave-wall layer, so adjoining chunks' walls line up at the seam.
func (p *Caves) Load(g *CellularGrid, dir vec.Vec2, neighbor *ChunkSummary) {
	base := superBase(dir)
	layer := neighbor.CaveWallLayer(p.layer)
	for y := 0; y <= vec.ChunkSize; y++ {
		for x := 0; x <= vec.ChunkSize; x++ {
			wall := layer[gridIndex(vec.Vec2{X: x, Y: y})]
			g.Lock(base.Add(vec.Vec2{X: x, Y: y}), wall)
		}
	}
}

func (p *Caves) Generate(g *CellularGrid) {
	g.Init(func(pos vec.Vec2) bool {
		v, ok := p.heightGrid.GetValue(pos)
		return ok && v >= p.cutoff
	})
	for _, anchor := range p.entrance {
		// Carve a short tunnel through the entrance anchor so
		// place_entrance's pattern match actually opens a passage.
		for dx := -1; dx <= 1; dx++ {
			g.Lock(anchor.Add(vec.Vec2{X: dx, Y: 0}), false)
		}
	}
	for i := 0; i < caStepCount; i++ {
		g.Step(caWallThreshold)
	}
}

func (p *Caves) Save(g *CellularGrid, summ *ChunkSummary) {
	base := vec.Vec2{X: vec.ChunkSize, Y: vec.ChunkSize}
	layer := summ.CaveWallLayer(p.layer)
	for y := 0; y <= vec.ChunkSize; y++ {
		for x := 0; x <= vec.ChunkSize; x++ {
			layer[gridIndex(vec.Vec2{X: x, Y: y})] = g.Get(base.Add(vec.Vec2{X: x, Y: y}))
		}
	}
}
