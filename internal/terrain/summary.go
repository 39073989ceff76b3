package terrain

import "github.com/latticeworld/worldcore/internal/vec"

// SuperchunkSize is the edge length, in chunks, of one SuperHeightmap unit
// (spec.md §4.4 step 1: "one per 8x8 superchunk").
const SuperchunkSize = 8

// NumLayers is the number of cave/hill layers generated per chunk.
const NumLayers = vec.ChunkSize / 2

// gridSpan is the vertex count along one axis of a per-chunk vertex grid
// (heightmap, cave-wall layers): CHUNK_SIZE+1, since a CHUNK_SIZE-wide
// chunk has CHUNK_SIZE+1 vertices on each edge.
const gridSpan = vec.ChunkSize + 1

func gridIndex(pos vec.Vec2) int {
	return pos.Y*gridSpan + pos.X
}

// ChunkSummary is the persisted per-chunk payload every LocalProperty pass
// reads and writes, keyed by (Stable<PlaneId>, cpos) in the Cache
// (spec.md §4.4).
type ChunkSummary struct {
	Heightmap       []uint8      `json:"heightmap"`
	CaveWalls       [][]bool     `json:"cave_walls"`
	TreeOffsets     []vec.Vec2   `json:"tree_offsets"`
	TreasureOffsets [][]vec.Vec2 `json:"treasure_offsets"`
}

// NewChunkSummary returns a zeroed summary with its layer slices already
// sized, matching what Cache.Create installs before the pipeline runs.
func NewChunkSummary() ChunkSummary {
	walls := make([][]bool, NumLayers)
	for i := range walls {
		walls[i] = make([]bool, gridSpan*gridSpan)
	}
	return ChunkSummary{
		Heightmap:       make([]uint8, gridSpan*gridSpan),
		CaveWalls:       walls,
		TreasureOffsets: make([][]vec.Vec2, NumLayers),
	}
}

// CaveWallLayer returns the cave-wall bitset for layer, indexed exactly
// like get_vertex_key's bounds.index(pos) in provider.rs.
func (s *ChunkSummary) CaveWallLayer(layer uint8) []bool {
	return s.CaveWalls[layer]
}

// SuperchunkSummary is SuperHeightmap's persisted payload: one height
// value per vertex of the (SuperchunkSize+1)^2 grid.
type SuperchunkSummary struct {
	DSLevels []uint8 `json:"ds_levels"`
}

// NewSuperchunkSummary returns a zeroed summary sized for SuperchunkSize.
func NewSuperchunkSummary() SuperchunkSummary {
	span := SuperchunkSize + 1
	return SuperchunkSummary{DSLevels: make([]uint8, span*span)}
}
