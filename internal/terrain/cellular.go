package terrain

import "github.com/latticeworld/worldcore/internal/vec"

// CellularGrid is a bool grid addressed directly by world-local position
// (not index), matching treasure.rs's cave_grid.get(pos+offset) calls.
// Positions outside the grid read as false (open floor), since the
// generator only ever probes a few cells around a point already known to
// be in range.
type CellularGrid struct {
	size   int
	cells  []bool
	locked []bool
}

func newCellularGrid(size int) *CellularGrid {
	return &CellularGrid{size: size, cells: make([]bool, size*size), locked: make([]bool, size*size)}
}

func (g *CellularGrid) idx(pos vec.Vec2) (int, bool) {
	if pos.X < 0 || pos.Y < 0 || pos.X >= g.size || pos.Y >= g.size {
		return 0, false
	}
	return pos.Y*g.size + pos.X, true
}

// Get reports whether pos is a cave wall.
func (g *CellularGrid) Get(pos vec.Vec2) bool {
	i, ok := g.idx(pos)
	if !ok {
		return false
	}
	return g.cells[i]
}

// Set marks pos a wall (or clears it).
func (g *CellularGrid) Set(pos vec.Vec2, wall bool) {
	i, ok := g.idx(pos)
	if !ok {
		return
	}
	g.cells[i] = wall
}

// Lock sets pos and marks it immune to both Init and Step — used to seed
// a neighbor-chunk border that must stay fixed across the whole pass so
// adjoining chunks agree at the seam.
func (g *CellularGrid) Lock(pos vec.Vec2, wall bool) {
	i, ok := g.idx(pos)
	if !ok {
		return
	}
	g.cells[i] = wall
	g.locked[i] = true
}

// Init fills every non-locked cell via f.
func (g *CellularGrid) Init(f func(vec.Vec2) bool) {
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			i := y*g.size + x
			if g.locked[i] {
				continue
			}
			g.cells[i] = f(vec.Vec2{X: x, Y: y})
		}
	}
}

// Step runs one cellular-automaton generation: a non-locked cell becomes
// (or stays) wall if at least wallThreshold of its eight Moore neighbors
// are walls, with out-of-grid neighbors counted as open floor. Locked
// cells never change.
func (g *CellularGrid) Step(wallThreshold int) {
	next := make([]bool, len(g.cells))
	copy(next, g.cells)
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			i := y*g.size + x
			if g.locked[i] {
				continue
			}
			count := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if g.Get(vec.Vec2{X: x + dx, Y: y + dy}) {
						count++
					}
				}
			}
			next[i] = count >= wallThreshold
		}
	}
	g.cells = next
}
