package world

import (
	"fmt"

	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/vec"
)

// TerrainChunkCreate installs a freshly generated chunk at pos. Fails if a
// chunk already exists there (spec.md §4.2).
func TerrainChunkCreate(f *Fragment, plane StablePlaneID, pos vec.Vec2, blocks [vec.ChunkSize * vec.ChunkSize * vec.ChunkSize]data.BlockID) (ChunkID, error) {
	w := f.WorldMut()
	key := ChunkKey{Plane: plane, Pos: pos}
	if w.ChunkLoaded(key) {
		return 0, fmt.Errorf("terrain_chunk_create: chunk already loaded at %v", pos)
	}

	chunk := newTerrainChunk(plane, pos)
	chunk.Blocks = blocks

	tid, ok := w.Chunks.Insert(*chunk)
	if !ok {
		return 0, fmt.Errorf("terrain_chunk_create: id space exhausted")
	}
	w.chunkIndex[key] = tid

	f.WithHooks(func(h *HookBus) { h.fireTerrainChunkCreate(key, tid) })
	return tid, nil
}

// TerrainChunkCreateUnchecked is the save-loader variant of
// TerrainChunkCreate: installs the chunk's blocks with no hook fired. Unlike
// the other tables, TerrainChunk carries no stable id of its own — it is
// already addressed by (plane, pos), which the save format uses directly
// (spec.md §4.2, §4.4).
func TerrainChunkCreateUnchecked(f *Fragment, plane StablePlaneID, pos vec.Vec2, blocks [vec.ChunkSize * vec.ChunkSize * vec.ChunkSize]data.BlockID) (ChunkID, error) {
	w := f.WorldMut()
	key := ChunkKey{Plane: plane, Pos: pos}
	if w.ChunkLoaded(key) {
		return 0, fmt.Errorf("terrain_chunk_create_unchecked: chunk already loaded at %v", pos)
	}

	chunk := newTerrainChunk(plane, pos)
	chunk.Blocks = blocks

	tid, ok := w.Chunks.Insert(*chunk)
	if !ok {
		return 0, fmt.Errorf("terrain_chunk_create_unchecked: id space exhausted")
	}
	w.chunkIndex[key] = tid
	return tid, nil
}

// TerrainChunkDestroy unloads a chunk, cascading to every structure
// attached to it (spec.md §4.2 "the chunk's destruction cascades to it").
func TerrainChunkDestroy(f *Fragment, plane StablePlaneID, pos vec.Vec2) error {
	w := f.WorldMut()
	key := ChunkKey{Plane: plane, Pos: pos}
	tid, ok := w.ChunkAt(key)
	if !ok {
		return fmt.Errorf("terrain_chunk_destroy: no chunk loaded at %v", pos)
	}
	chunk, _ := w.Chunks.Get(tid)

	for _, sid := range sortedKeys(chunk.ChildStructures) {
		if _, ok := w.Structures.Get(sid); ok {
			_ = StructureDestroy(f, sid)
		}
	}

	delete(w.chunkIndex, key)
	w.Chunks.Remove(tid)

	f.WithHooks(func(h *HookBus) { h.fireTerrainChunkDestroy(key, tid) })
	return nil
}
