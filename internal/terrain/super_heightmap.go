package terrain

import (
	"math/rand"

	"github.com/latticeworld/worldcore/internal/vec"
)

// SuperHeightmap produces one diamond-square height grid per 8x8
// superchunk (spec.md §4.4 step 1), grounded on provider.rs's
// get_super_heightmap/super_height.
type SuperHeightmap struct {
	rng *rand.Rand
}

// NewSuperHeightmap builds the pass for superchunk scpos, seeded
// independently of every other property per generate()'s determinism
// requirement.
func NewSuperHeightmap(scpos vec.Vec2, seed int64) *SuperHeightmap {
	return &SuperHeightmap{rng: rand.New(rand.NewSource(seed))}
}

func (p *SuperHeightmap) Init() *DscGrid {
	return newDscGrid(SuperchunkSize + 1)
}

// Load is a no-op: superchunks are generated independently of their
// neighbors — it is the finer per-chunk Heightmap pass that needs
// cross-chunk border continuity, not this coarse one.
func (p *SuperHeightmap) Load(*DscGrid, vec.Vec2, *SuperchunkSummary) {}

func (p *SuperHeightmap) Generate(g *DscGrid) {
	span := SuperchunkSize
	// Pin all four corners at a shared baseline so adjoining superchunks'
	// diamond-square passes agree at the seams.
	g.setValue(vec.Vec2{X: 0, Y: 0}, 100)
	g.setValue(vec.Vec2{X: span, Y: 0}, 100)
	g.setValue(vec.Vec2{X: 0, Y: span}, 100)
	g.setValue(vec.Vec2{X: span, Y: span}, 100)
	g.DiamondSquare(p.rng, 0.55)
}

func (p *SuperHeightmap) Save(g *DscGrid, summ *SuperchunkSummary) {
	span := SuperchunkSize + 1
	for y := 0; y < span; y++ {
		for x := 0; x < span; x++ {
			v, _ := g.GetValue(vec.Vec2{X: x, Y: y})
			summ.DSLevels[y*span+x] = v
		}
	}
}
