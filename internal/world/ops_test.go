package world

import (
	"testing"

	"github.com/latticeworld/worldcore/internal/vec"
	"github.com/stretchr/testify/assert"
)

// P1: for every structure s, for every chunk in s.bounds.chunks(),
// sid in structures_by_chunk[chunk].
func TestP1StructuresByChunkConsistency(t *testing.T) {
	w, f := newTestWorld(t)
	loadChunk(t, f, ForestStablePlane, vec.Vec2{X: 0, Y: 0})

	tid, _ := w.Tables.Templates.GetID("tree")
	sid, err := StructureCreate(f, ForestStablePlane, vec.Vec3{X: 3, Y: 3, Z: 0}, tid)
	assert.NoError(t, err)

	def, _ := w.Tables.Templates.Def(tid)
	s, _ := w.Structures.Get(sid)
	bounds := s.Bounds(def)

	for _, key := range chunkKeysForBounds(ForestStablePlane, bounds) {
		set := w.StructuresInChunk(key)
		_, ok := set[sid]
		assert.True(t, ok, "structure must be indexed under every chunk its bbox touches")
	}
}

// Terrain chunk destruction cascades to structures attached to it.
func TestTerrainChunkDestroyCascadesToAttachedStructures(t *testing.T) {
	w, f := newTestWorld(t)
	pos := vec.Vec2{X: 0, Y: 0}
	loadChunk(t, f, ForestStablePlane, pos)

	tid, _ := w.Tables.Templates.GetID("tree")
	sid, _ := StructureCreate(f, ForestStablePlane, vec.Vec3{X: 1, Y: 1, Z: 0}, tid)

	chunkTid, _ := w.ChunkAt(ChunkKey{Plane: ForestStablePlane, Pos: pos})
	chunk, _ := w.Chunks.GetMut(chunkTid)
	chunk.ChildStructures[sid] = struct{}{}
	mut, _ := w.Structures.GetMut(sid)
	mut.Attachment = StructureAttachment{Kind: StructureAttachChunk, Chunk: chunkTid}

	err := TerrainChunkDestroy(f, ForestStablePlane, pos)
	assert.NoError(t, err)

	_, ok := w.Structures.Get(sid)
	assert.False(t, ok, "structure attached to a destroyed chunk must cascade-destroy")
	_, ok = w.ChunkAt(ChunkKey{Plane: ForestStablePlane, Pos: pos})
	assert.False(t, ok)
}

func TestStructureMoveRollsBackOnBlockedPlacement(t *testing.T) {
	w, f := newTestWorld(t)
	loadChunk(t, f, ForestStablePlane, vec.Vec2{X: 0, Y: 0})

	tid, _ := w.Tables.Templates.GetID("tree")
	rockTid, _ := w.Tables.Templates.GetID("rock")

	s1, _ := StructureCreate(f, ForestStablePlane, vec.Vec3{X: 0, Y: 0, Z: 0}, tid)
	s2, _ := StructureCreate(f, ForestStablePlane, vec.Vec3{X: 5, Y: 5, Z: 0}, rockTid)

	err := StructureMove(f, s2, vec.Vec3{X: 0, Y: 0, Z: 0})
	assert.Error(t, err, "moving onto another structure must fail")

	s2obj, _ := w.Structures.Get(s2)
	assert.Equal(t, vec.Vec3{X: 5, Y: 5, Z: 0}, s2obj.Pos, "position must roll back on failure")

	key := ChunkKey{Plane: ForestStablePlane, Pos: vec.Vec2{X: 0, Y: 0}}
	set := w.StructuresInChunk(key)
	_, stillThere := set[s1]
	assert.True(t, stillThere)
	_, movedIn := set[s2]
	assert.False(t, movedIn, "failed move must not leave the structure indexed at the destination")
}

func TestStructureReplaceUpdatesTemplate(t *testing.T) {
	w, f := newTestWorld(t)
	loadChunk(t, f, ForestStablePlane, vec.Vec2{X: 0, Y: 0})

	tid, _ := w.Tables.Templates.GetID("tree")
	rockTid, _ := w.Tables.Templates.GetID("rock")

	sid, _ := StructureCreate(f, ForestStablePlane, vec.Vec3{X: 2, Y: 2, Z: 0}, tid)

	err := StructureReplace(f, sid, rockTid)
	assert.NoError(t, err)

	s, _ := w.Structures.Get(sid)
	assert.Equal(t, rockTid, s.Template)
}

func TestStructureSaveLoadRoundTrip(t *testing.T) {
	w, f := newTestWorld(t)
	loadChunk(t, f, ForestStablePlane, vec.Vec2{X: 0, Y: 0})

	tid, _ := w.Tables.Templates.GetID("tree")
	sid, _ := StructureCreate(f, ForestStablePlane, vec.Vec3{X: 1, Y: 1, Z: 0}, tid)
	stable, ok := w.Structures.StableOf(sid)
	assert.True(t, ok)

	// Simulate a save/load cycle: destroy and recreate via the unchecked
	// path, forcing the same stable id, then StructurePostInit.
	assert.NoError(t, StructureDestroy(f, sid))

	newSid, err := StructureCreateUnchecked(f, ForestStablePlane, vec.Vec3{X: 1, Y: 1, Z: 0}, tid, stable)
	assert.NoError(t, err)
	assert.NoError(t, StructurePostInit(f, newSid))

	gotStable, ok := w.Structures.StableOf(newSid)
	assert.True(t, ok)
	assert.Equal(t, stable, gotStable, "save/load must preserve stable ids")

	key := ChunkKey{Plane: ForestStablePlane, Pos: vec.Vec2{X: 0, Y: 0}}
	_, indexed := w.StructuresInChunk(key)[newSid]
	assert.True(t, indexed, "StructurePostInit must restore the structures_by_chunk index")
}
