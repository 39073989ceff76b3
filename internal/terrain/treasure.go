package terrain

import (
	"math/rand"

	"github.com/latticeworld/worldcore/internal/vec"
)

// Treasure is the per-layer Poisson-disk treasure-placement pass, a
// direct port of treasure.rs (the only fully available LocalProperty in
// the example pack).
type Treasure struct {
	rng      *rand.Rand
	layer    uint8
	caveGrid *CellularGrid
}

func NewTreasure(rng *rand.Rand, layer uint8, caveGrid *CellularGrid) *Treasure {
	return &Treasure{rng: rng, layer: layer, caveGrid: caveGrid}
}

// checkPlacement reports whether all four grid corners around pos are
// open floor (not cave wall) — treasure.rs's check_placement.
func (p *Treasure) checkPlacement(pos vec.Vec2) bool {
	for _, off := range [4]vec.Vec2{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}} {
		if p.caveGrid.Get(pos.Add(off)) {
			return false
		}
	}
	return true
}

func (p *Treasure) Init() *DiskSampler {
	// All treasure so far is 1 tile in size; the grid resolution can't go
	// below min_spacing=2 without the sampler degenerating.
	return newDiskSampler(vec.Vec2{X: 3 * vec.ChunkSize, Y: 3 * vec.ChunkSize}, 2, 6)
}

func (p *Treasure) Load(samp *DiskSampler, dir vec.Vec2, neighbor *ChunkSummary) {
	base := superBase(dir)
	for _, pos := range neighbor.TreasureOffsets[p.layer] {
		samp.AddInitPoint(pos.Add(base))
	}
}

func (p *Treasure) Generate(samp *DiskSampler) {
	samp.Generate(p.rng, 30)
}

func (p *Treasure) Save(samp *DiskSampler, summ *ChunkSummary) {
	bounds := vec.NewRegion2(vec.Vec2{X: vec.ChunkSize, Y: vec.ChunkSize}, vec.Vec2{X: vec.ChunkSize, Y: vec.ChunkSize})

	var offsets []vec.Vec2
	for _, pos := range samp.Points() {
		if bounds.Contains(pos) && p.checkPlacement(pos) {
			offsets = append(offsets, pos.Sub(bounds.Min))
		}
	}
	summ.TreasureOffsets[p.layer] = offsets
}
