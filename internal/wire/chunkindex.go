package wire

import "github.com/latticeworld/worldcore/internal/vec"

// LocalSize is the edge length of a client's chunk ring, a power of two
// (spec.md §6).
const LocalSize = 16

// LocalChunkIndex addresses a chunk slot in a client's ring buffer.
// idx = ((cy+off_y) & (LocalSize-1)) * LocalSize + ((cx+off_x) & (LocalSize-1)),
// where off = local_base_chunk(pos, client_offset) - world_base_chunk(pos)
// — every TerrainChunk/UnloadChunk message carries this 16-bit value
// rather than the chunk's world coordinates.
func LocalChunkIndex(cpos vec.Vec2, off vec.Vec2) uint16 {
	x := (cpos.X + off.X) & (LocalSize - 1)
	y := (cpos.Y + off.Y) & (LocalSize - 1)
	return uint16(y*LocalSize + x)
}
