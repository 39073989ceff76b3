package terrain

import (
	"math/rand"

	"github.com/latticeworld/worldcore/internal/vec"
)

// Trees is the Poisson-disk tree/rock sampling pass (spec.md §4.4 step
// 3), grounded on treasure.rs's DiskSampler usage (trees.rs is not
// present in the example pack, so the minimum spacing below is chosen
// generously enough that trees never crowd a 1x1 footprint).
type Trees struct {
	rng *rand.Rand
}

func NewTrees(seed int64) *Trees {
	return &Trees{rng: rand.New(rand.NewSource(seed))}
}

func (p *Trees) Init() *DiskSampler {
	return newDiskSampler(vec.Vec2{X: 3 * vec.ChunkSize, Y: 3 * vec.ChunkSize}, 3, 6)
}

// Load carries over an already-generated neighbor's tree offsets,
// translated into this pass's 3x3 supergrid, so trees never end up
// crowded across a chunk seam.
func (p *Trees) Load(samp *DiskSampler, dir vec.Vec2, neighbor *ChunkSummary) {
	base := superBase(dir)
	for _, pos := range neighbor.TreeOffsets {
		samp.AddInitPoint(pos.Add(base))
	}
}

func (p *Trees) Generate(samp *DiskSampler) {
	samp.Generate(p.rng, 30)
}

// Save keeps only the points that fall in the central chunk, stored as
// chunk-local offsets.
func (p *Trees) Save(samp *DiskSampler, summ *ChunkSummary) {
	bounds := vec.NewRegion2(vec.Vec2{X: vec.ChunkSize, Y: vec.ChunkSize}, vec.Vec2{X: vec.ChunkSize, Y: vec.ChunkSize})
	var offsets []vec.Vec2
	for _, pos := range samp.Points() {
		if bounds.Contains(pos) {
			offsets = append(offsets, pos.Sub(bounds.Min))
		}
	}
	summ.TreeOffsets = offsets
}
