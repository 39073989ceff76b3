package terrain

import (
	"math/rand"

	"github.com/latticeworld/worldcore/internal/vec"
)

// DscGrid is a diamond-square height grid spanning a 3x3 block of chunks
// (vertex-addressed), so a chunk's Heightmap pass always has neighbor
// context at its borders (spec.md §4.4: "Temporary... typically 3x3
// chunks wide").
type DscGrid struct {
	size   int
	values []uint8
	set    []bool
}

func newDscGrid(size int) *DscGrid {
	return &DscGrid{size: size, values: make([]uint8, size*size), set: make([]bool, size*size)}
}

func (g *DscGrid) idx(pos vec.Vec2) (int, bool) {
	if pos.X < 0 || pos.Y < 0 || pos.X >= g.size || pos.Y >= g.size {
		return 0, false
	}
	return pos.Y*g.size + pos.X, true
}

// GetValue returns the vertex value at pos, or (0, false) if pos is
// outside the grid or has not yet been seeded/generated — matches the
// original's Option<u8>.
func (g *DscGrid) GetValue(pos vec.Vec2) (uint8, bool) {
	i, ok := g.idx(pos)
	if !ok || !g.set[i] {
		return 0, false
	}
	return g.values[i], true
}

func (g *DscGrid) isSet(pos vec.Vec2) bool {
	i, ok := g.idx(pos)
	return ok && g.set[i]
}

func (g *DscGrid) setValue(pos vec.Vec2, v uint8) {
	i, ok := g.idx(pos)
	if !ok {
		return
	}
	g.values[i] = v
	g.set[i] = true
}

// DiamondSquare fills every unset vertex by midpoint displacement,
// starting from the largest power-of-two step below size-1 and halving
// until step reaches 1. Already-set vertices (seeded borders, pinned
// corners) are never overwritten, so neighbor seams agree exactly.
func (g *DscGrid) DiamondSquare(rng *rand.Rand, roughness float64) {
	step := 1
	for step*2 < g.size {
		step *= 2
	}
	spread := 96.0
	for step >= 1 {
		half := step / 2
		if half == 0 {
			break
		}
		for y := half; y < g.size; y += step {
			for x := half; x < g.size; x += step {
				g.square(rng, x, y, half, spread)
			}
		}
		for y := 0; y < g.size; y += half {
			xStart := 0
			if (y/half)%2 == 0 {
				xStart = half
			}
			for x := xStart; x < g.size; x += step {
				g.diamond(rng, x, y, half, spread)
			}
		}
		spread *= roughness
		step = half
	}
}

func (g *DscGrid) square(rng *rand.Rand, x, y, half int, spread float64) {
	pos := vec.Vec2{X: x, Y: y}
	if g.isSet(pos) {
		return
	}
	corners := [4]vec.Vec2{
		{X: x - half, Y: y - half}, {X: x + half, Y: y - half},
		{X: x - half, Y: y + half}, {X: x + half, Y: y + half},
	}
	g.setValue(pos, g.average(corners[:], rng, spread))
}

func (g *DscGrid) diamond(rng *rand.Rand, x, y, half int, spread float64) {
	pos := vec.Vec2{X: x, Y: y}
	if g.isSet(pos) {
		return
	}
	neighbors := [4]vec.Vec2{
		{X: x - half, Y: y}, {X: x + half, Y: y},
		{X: x, Y: y - half}, {X: x, Y: y + half},
	}
	g.setValue(pos, g.average(neighbors[:], rng, spread))
}

func (g *DscGrid) average(points []vec.Vec2, rng *rand.Rand, spread float64) uint8 {
	sum, n := 0.0, 0
	for _, p := range points {
		if v, ok := g.GetValue(p); ok {
			sum += float64(v)
			n++
		}
	}
	if n == 0 {
		return 100
	}
	avg := sum/float64(n) + (rng.Float64()*2-1)*spread
	return clampU8(avg)
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// superBase translates a neighbor direction (-1/0/1 on each axis) to the
// offset of that neighbor's origin within the local 3x3-chunk supergrid,
// matching the (dir+scalar(1))*scalar(CHUNK_SIZE) scheme in treasure.rs.
func superBase(dir vec.Vec2) vec.Vec2 {
	return dir.Add(vec.Vec2{X: 1, Y: 1}).Scale(vec.ChunkSize)
}

// eightDirs are the 8 neighbor directions LocalProperty.Load is called
// with, per spec.md §4.4.
var eightDirs = []vec.Vec2{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}
