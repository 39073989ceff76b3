package terrain

import (
	"math/rand"

	"github.com/latticeworld/worldcore/internal/vec"
)

// DiskSampler is a Poisson-disk point sampler over a rectangular grid
// region, grounded on treasure.rs's DiskSampler::new(size, min, max)/
// add_init_point/generate/points usage (the only LocalProperty::Temporary
// consumer present in the example pack).
type DiskSampler struct {
	bounds     vec.Vec2
	minSpacing float64
	points     []vec.Vec2
}

func newDiskSampler(bounds vec.Vec2, minSpacing, maxSpacing int) *DiskSampler {
	return &DiskSampler{bounds: bounds, minSpacing: float64(minSpacing)}
}

// AddInitPoint seeds an already-placed point (e.g. one carried over from
// a neighbor's summary) so later candidates keep their distance from it.
func (d *DiskSampler) AddInitPoint(pos vec.Vec2) {
	d.points = append(d.points, pos)
}

// Points returns every accepted point, init and generated alike.
func (d *DiskSampler) Points() []vec.Vec2 {
	return d.points
}

func (d *DiskSampler) farEnough(pos vec.Vec2) bool {
	for _, p := range d.points {
		dx := float64(pos.X - p.X)
		dy := float64(pos.Y - p.Y)
		if dx*dx+dy*dy < d.minSpacing*d.minSpacing {
			return false
		}
	}
	return true
}

// Generate dart-throws candidates across the full bounds, accepting any
// that clear minSpacing from every existing point and retrying a
// rejected draw up to attempts times, matching samp.generate(rng, 30)'s
// per-candidate attempt budget.
func (d *DiskSampler) Generate(rng *rand.Rand, attempts int) {
	area := d.bounds.X * d.bounds.Y
	cell := int(d.minSpacing * d.minSpacing)
	if cell < 1 {
		cell = 1
	}
	target := area / cell
	for i := 0; i < target; i++ {
		for a := 0; a < attempts; a++ {
			cand := vec.Vec2{X: rng.Intn(d.bounds.X), Y: rng.Intn(d.bounds.Y)}
			if d.farEnough(cand) {
				d.points = append(d.points, cand)
				break
			}
		}
	}
}
