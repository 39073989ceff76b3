package world

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/storage"
	"github.com/latticeworld/worldcore/internal/vec"
)

// TestWorldSaveLoadRoundTrip builds one of each table, wired together
// (a client with a pawn entity, a structure attached to its chunk, and an
// inventory attached to the pawn), saves, loads into a fresh World, and
// checks every stable id and attachment survived (spec.md §8 round-trip law).
func TestWorldSaveLoadRoundTrip(t *testing.T) {
	tables := testTables(t)
	w := NewWorld(tables)
	f := NewFragment(w, NewHookBus())
	loadChunk(t, f, ForestStablePlane, vec.Vec2{X: 0, Y: 0})

	cid, err := ClientCreate(f, "alice", [2]uint8{1, 2})
	assert.NoError(t, err)
	eid, err := EntityCreate(f, vec.Vec3{X: 3, Y: 4, Z: 0}, 7, 99)
	assert.NoError(t, err)
	_, err = ClientSetPawn(f, cid, eid)
	assert.NoError(t, err)

	iid, err := InventoryCreate(f)
	assert.NoError(t, err)
	_, err = InventoryAttach(f, iid, InventoryAttachment{Kind: InventoryAttachEntity, Entity: eid})
	assert.NoError(t, err)
	_, err = InventoryUpdate(f, iid, data.ItemID(1), 5)
	assert.NoError(t, err)

	tid, ok := w.Tables.Templates.GetID("tree")
	assert.True(t, ok)
	sid, err := StructureCreate(f, ForestStablePlane, vec.Vec3{X: 1, Y: 1, Z: 0}, tid)
	assert.NoError(t, err)
	chunkTid, _ := w.ChunkAt(ChunkKey{Plane: ForestStablePlane, Pos: vec.Vec2{X: 0, Y: 0}})
	_, err = StructureAttach(f, sid, StructureAttachment{Kind: StructureAttachChunk, Chunk: chunkTid})
	assert.NoError(t, err)

	clientStable, _ := w.Clients.StableOf(cid)
	entityStable, _ := w.Entities.StableOf(eid)
	inventoryStable, _ := w.Inventories.StableOf(iid)
	structureStable, _ := w.Structures.StableOf(sid)

	snap := SaveWorld(f)
	assert.Len(t, snap.Chunks, 1)
	assert.Len(t, snap.Clients, 1)
	assert.Len(t, snap.Entities, 1)
	assert.Len(t, snap.Inventories, 1)
	assert.Len(t, snap.Structures, 1)

	w2 := NewWorld(tables)
	f2 := NewFragment(w2, NewHookBus())
	assert.NoError(t, LoadWorld(f2, snap))

	newCid, ok := w2.Clients.TransientOf(clientStable)
	assert.True(t, ok)
	newEid, ok := w2.Entities.TransientOf(entityStable)
	assert.True(t, ok)
	newIid, ok := w2.Inventories.TransientOf(inventoryStable)
	assert.True(t, ok)
	newSid, ok := w2.Structures.TransientOf(structureStable)
	assert.True(t, ok)

	client, ok := w2.Clients.Get(newCid)
	assert.True(t, ok)
	assert.Equal(t, "alice", client.Name)
	assert.NotNil(t, client.Pawn)
	assert.Equal(t, newEid, *client.Pawn)

	entity, ok := w2.Entities.Get(newEid)
	assert.True(t, ok)
	assert.Equal(t, EntityAttachClient, entity.Attachment.Kind)
	assert.Equal(t, newCid, entity.Attachment.Client)
	assert.Equal(t, uint16(7), entity.Anim)
	assert.Equal(t, uint32(99), entity.Appearance)

	inv, ok := w2.Inventories.Get(newIid)
	assert.True(t, ok)
	assert.Equal(t, InventoryAttachEntity, inv.Attachment.Kind)
	assert.Equal(t, newEid, inv.Attachment.Entity)
	assert.Equal(t, uint8(5), inv.Contents[data.ItemID(1)])

	structure, ok := w2.Structures.Get(newSid)
	assert.True(t, ok)
	assert.Equal(t, StructureAttachChunk, structure.Attachment.Kind)
	newChunkTid, _ := w2.ChunkAt(ChunkKey{Plane: ForestStablePlane, Pos: vec.Vec2{X: 0, Y: 0}})
	assert.Equal(t, newChunkTid, structure.Attachment.Chunk)

	_, indexed := w2.StructuresInChunk(ChunkKey{Plane: ForestStablePlane, Pos: vec.Vec2{X: 0, Y: 0}})[newSid]
	assert.True(t, indexed, "StructurePostInit must restore structures_by_chunk on load")
}

func TestSaveWorldToStoreRoundTrip(t *testing.T) {
	tables := testTables(t)
	w := NewWorld(tables)
	f := NewFragment(w, NewHookBus())
	loadChunk(t, f, ForestStablePlane, vec.Vec2{X: 0, Y: 0})
	tid, _ := w.Tables.Templates.GetID("tree")
	sid, err := StructureCreate(f, ForestStablePlane, vec.Vec3{X: 2, Y: 2, Z: 0}, tid)
	assert.NoError(t, err)
	structureStable, _ := w.Structures.StableOf(sid)

	store, err := storage.Open(filepath.Join(t.TempDir(), "world.badger"))
	assert.NoError(t, err)
	defer store.Close()

	assert.NoError(t, SaveWorldToStore(f, store))

	w2 := NewWorld(tables)
	f2 := NewFragment(w2, NewHookBus())
	assert.NoError(t, LoadWorldFromStore(f2, store))

	newSid, ok := w2.Structures.TransientOf(structureStable)
	assert.True(t, ok)
	structure, ok := w2.Structures.Get(newSid)
	assert.True(t, ok)
	assert.Equal(t, tid, structure.Template)
}

func TestLoadWorldFromStoreWithNoSavedGraphIsNoop(t *testing.T) {
	tables := testTables(t)
	w := NewWorld(tables)
	f := NewFragment(w, NewHookBus())

	store, err := storage.Open(filepath.Join(t.TempDir(), "world.badger"))
	assert.NoError(t, err)
	defer store.Close()

	assert.NoError(t, LoadWorldFromStore(f, store))
	assert.Equal(t, 0, w.Clients.Len())
}
