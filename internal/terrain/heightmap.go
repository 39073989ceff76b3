package terrain

import (
	"math/rand"

	"github.com/latticeworld/worldcore/internal/vec"
)

// Heightmap refines a chunk's per-vertex heights from the coarse
// superchunk grid down to CHUNK_SIZE resolution (spec.md §4.4 step 2),
// grounded on provider.rs's Heightmap::new(cpos, seed, super_height).
type Heightmap struct {
	cpos        vec.Vec2
	rng         *rand.Rand
	superHeight func(vec.Vec2) (uint8, error)
	err         error
}

// NewHeightmap builds the pass for chunk cpos. superHeight resolves the
// coarse height at any chunk position, closing over Provider's
// superchunk cache the way the original closes over self.super_height.
func NewHeightmap(cpos vec.Vec2, seed int64, superHeight func(vec.Vec2) (uint8, error)) *Heightmap {
	return &Heightmap{cpos: cpos, rng: rand.New(rand.NewSource(seed)), superHeight: superHeight}
}

// Err reports any error superHeight raised during Generate.
func (p *Heightmap) Err() error {
	return p.err
}

func (p *Heightmap) Init() *DscGrid {
	return newDscGrid(3*vec.ChunkSize + 1)
}

// Load seeds the border shared with an already-generated neighbor chunk
// directly from its heightmap, so adjoining chunks agree at the seam.
func (p *Heightmap) Load(g *DscGrid, dir vec.Vec2, neighbor *ChunkSummary) {
	base := superBase(dir)
	for y := 0; y <= vec.ChunkSize; y++ {
		for x := 0; x <= vec.ChunkSize; x++ {
			v := neighbor.Heightmap[gridIndex(vec.Vec2{X: x, Y: y})]
			g.setValue(base.Add(vec.Vec2{X: x, Y: y}), v)
		}
	}
}

func (p *Heightmap) Generate(g *DscGrid) {
	// Seed the coarse per-chunk corners (every CHUNK_SIZE vertices across
	// the 3x3 supergrid) from the superchunk heightmap, then refine.
	for dy := -1; dy <= 2; dy++ {
		for dx := -1; dx <= 2; dx++ {
			pos := vec.Vec2{X: (dx + 1) * vec.ChunkSize, Y: (dy + 1) * vec.ChunkSize}
			if g.isSet(pos) {
				continue
			}
			h, err := p.superHeight(p.cpos.Add(vec.Vec2{X: dx, Y: dy}))
			if err != nil {
				p.err = err
				return
			}
			g.setValue(pos, h)
		}
	}
	g.DiamondSquare(p.rng, 0.55)
}

func (p *Heightmap) Save(g *DscGrid, summ *ChunkSummary) {
	base := vec.Vec2{X: vec.ChunkSize, Y: vec.ChunkSize}
	for y := 0; y <= vec.ChunkSize; y++ {
		for x := 0; x <= vec.ChunkSize; x++ {
			v, _ := g.GetValue(base.Add(vec.Vec2{X: x, Y: y}))
			summ.Heightmap[gridIndex(vec.Vec2{X: x, Y: y})] = v
		}
	}
}
