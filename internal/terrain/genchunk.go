package terrain

import (
	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/vec"
)

// GenChunk is Provider.Generate's output: a full chunk's worth of blocks
// plus any structures the pipeline decided to place in it (spec.md §4.4
// step 5).
type GenChunk struct {
	Blocks     [vec.ChunkSize * vec.ChunkSize * vec.ChunkSize]data.BlockID
	Structures []GenStructure
}

// GenStructure is a structure the generator wants placed at a chunk-local
// position on load (trees, rocks, cave junk).
type GenStructure struct {
	Pos      vec.Vec3
	Template data.TemplateID
}

// NewGenChunk returns an empty chunk (every block at BlockID(0), matching
// the teacher's zero-value-is-empty convention).
func NewGenChunk() *GenChunk {
	return &GenChunk{}
}

// SetBlock writes id at the chunk-local position, silently ignoring
// out-of-bounds positions the way ops.rs's bounds checks do — the caller
// already clipped to chunk bounds, this guard just makes the call safe.
func (c *GenChunk) SetBlock(pos vec.Vec3, id data.BlockID) {
	if pos.X < 0 || pos.Y < 0 || pos.Z < 0 ||
		pos.X >= vec.ChunkSize || pos.Y >= vec.ChunkSize || pos.Z >= vec.ChunkSize {
		return
	}
	idx := (pos.Z*vec.ChunkSize+pos.Y)*vec.ChunkSize + pos.X
	c.Blocks[idx] = id
}
