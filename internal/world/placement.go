package world

import (
	"strings"

	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/vec"
)

// blockShape resolves what a terrain cell contains as a coarse three-way
// placement shape. Grounded on ops.rs's shape_at, used only by
// checkPlacement. Block names follow the generator's naming scheme
// (spec.md §4.4): "empty" for unemitted (OUTSIDE_KEY) cells,
// "cave/{key}/z0/{floor_type}" for a walkable surface, anything else
// (walls, z1 ceilings, cave_top) solid.
type blockShape int

const (
	shapeEmpty blockShape = iota
	shapeFloor
	shapeSolid
)

func blockShapeOf(id data.BlockID, tables *data.Tables) blockShape {
	if id == data.MissingBlockID {
		return shapeEmpty
	}
	name, ok := tables.Blocks.Name(id)
	if !ok {
		return shapeEmpty
	}
	if name == "empty" {
		return shapeEmpty
	}
	if strings.Contains(name, "/z0/") {
		return shapeFloor
	}
	return shapeSolid
}

// checkPlacement implements structure_check_placement (spec.md §4.2):
// every touched chunk must be loaded, must have no overlapping live
// structure, and every cell of bounds must sit on Empty terrain (or Floor
// at bounds.Min.Z).
func checkPlacement(w *World, plane StablePlaneID, bounds vec.Region3, ignore StructureID) bool {
	for _, key := range chunkKeysForBounds(plane, bounds) {
		tid, ok := w.ChunkAt(key)
		if !ok {
			return false
		}
		for sid := range w.StructuresInChunk(key) {
			if sid == ignore {
				continue
			}
			other, ok := w.Structures.Get(sid)
			if !ok {
				continue
			}
			def, ok := w.Tables.Templates.Def(other.Template)
			if !ok {
				continue
			}
			if bounds.Overlaps(other.Bounds(def)) {
				return false
			}
		}

		chunk, _ := w.Chunks.Get(tid)
		chunkBase := vec.Extend(key.Pos.Scale(vec.ChunkSize), 0)
		chunkBounds := vec.NewRegion3(chunkBase, vec.Vec3{X: vec.ChunkSize, Y: vec.ChunkSize, Z: vec.ChunkSize})

		for z := maxI(bounds.Min.Z, chunkBounds.Min.Z); z < minI(bounds.Max.Z, chunkBounds.Max.Z); z++ {
			for y := maxI(bounds.Min.Y, chunkBounds.Min.Y); y < minI(bounds.Max.Y, chunkBounds.Max.Y); y++ {
				for x := maxI(bounds.Min.X, chunkBounds.Min.X); x < minI(bounds.Max.X, chunkBounds.Max.X); x++ {
					global := vec.Vec3{X: x, Y: y, Z: z}
					local := global.Sub(chunkBase)
					shape := blockShapeOf(chunk.BlockAt(local), w.Tables)
					switch shape {
					case shapeEmpty:
						// ok
					case shapeFloor:
						if z != bounds.Min.Z {
							return false
						}
					default:
						return false
					}
				}
			}
		}
	}
	return true
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minI(a, b int) int {
	if a < b {
		return a
	}
	return b
}
