package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/vec"
	"github.com/stretchr/testify/assert"
)

// testTables builds a minimal Tables fixture: one "empty" block, one
// "cave/0/z0/grass" block acting as a walkable surface, and two 1x1x1
// templates, "tree" and "rock".
func testTables(t *testing.T) *data.Tables {
	t.Helper()
	dir := t.TempDir()

	blocksPath := filepath.Join(dir, "blocks.json")
	assert.NoError(t, os.WriteFile(blocksPath, []byte(`[
		{"id":0,"name":"empty"},
		{"id":1,"name":"cave/0/z0/grass"}
	]`), 0o644))

	templatesPath := filepath.Join(dir, "templates.json")
	assert.NoError(t, os.WriteFile(templatesPath, []byte(`[
		{"id":1,"name":"tree","size":[1,1,1],"shape":[1],"layer":0},
		{"id":2,"name":"rock","size":[1,1,1],"shape":[1],"layer":0}
	]`), 0o644))

	itemsPath := filepath.Join(dir, "items.json")
	assert.NoError(t, os.WriteFile(itemsPath, []byte(`[{"id":1,"name":"axe"}]`), 0o644))

	tables, err := data.Load(data.Paths{Blocks: blocksPath, Templates: templatesPath, Items: itemsPath})
	assert.NoError(t, err)
	return tables
}

func newTestWorld(t *testing.T) (*World, *Fragment) {
	w := NewWorld(testTables(t))
	f := NewFragment(w, NewHookBus())
	return w, f
}

// loadChunk installs a fully-grass chunk at pos so structures can be
// placed anywhere inside it.
func loadChunk(t *testing.T, f *Fragment, plane StablePlaneID, pos vec.Vec2) {
	t.Helper()
	var blocks [vec.ChunkSize * vec.ChunkSize * vec.ChunkSize]data.BlockID
	for i := range blocks {
		blocks[i] = data.BlockID(1) // grass surface everywhere
	}
	_, err := TerrainChunkCreate(f, plane, pos, blocks)
	assert.NoError(t, err)
}

func TestClientCreateDestroy(t *testing.T) {
	_, f := newTestWorld(t)

	cid, err := ClientCreate(f, "alice", [2]uint8{0, 0})
	assert.NoError(t, err)

	err = ClientDestroy(f, cid)
	assert.NoError(t, err)

	_, ok := f.World().Clients.Get(cid)
	assert.False(t, ok, "destroyed client must not remain in the table")
}

// P2: for every client c and every e in c.child_entities,
// world.entity(e).attachment == Client(c.id).
func TestClientSetPawnBidirectional(t *testing.T) {
	w, f := newTestWorld(t)

	cid, _ := ClientCreate(f, "alice", [2]uint8{0, 0})
	eid, _ := EntityCreate(f, vec.Vec3{}, 0, 0)

	_, err := ClientSetPawn(f, cid, eid)
	assert.NoError(t, err)

	client, _ := w.Clients.Get(cid)
	assert.NotNil(t, client.Pawn)
	assert.Equal(t, eid, *client.Pawn)

	entity, _ := w.Entities.Get(eid)
	assert.Equal(t, EntityAttachClient, entity.Attachment.Kind)
	assert.Equal(t, cid, entity.Attachment.Client)

	_, inSet := client.ChildEntities[eid]
	assert.True(t, inSet, "pawn entity must be in client.child_entities")
}

func TestEntityAttachChunkRejected(t *testing.T) {
	_, f := newTestWorld(t)
	eid, _ := EntityCreate(f, vec.Vec3{}, 0, 0)

	_, err := EntityAttach(f, eid, EntityAttachment{Kind: EntityAttachChunk})
	assert.Error(t, err, "EntityAttachment::Chunk must stay rejected")
	assert.Contains(t, err.Error(), "not yet supported")
}

// Scenario 1: placement collision.
func TestStructureCreatePlacementCollision(t *testing.T) {
	w, f := newTestWorld(t)
	loadChunk(t, f, ForestStablePlane, vec.Vec2{X: 0, Y: 0})

	tid, ok := w.Tables.Templates.GetID("tree")
	assert.True(t, ok)
	rockTid, ok := w.Tables.Templates.GetID("rock")
	assert.True(t, ok)

	s1, err := StructureCreate(f, ForestStablePlane, vec.Vec3{X: 0, Y: 0, Z: 0}, tid)
	assert.NoError(t, err)

	_, err = StructureCreate(f, ForestStablePlane, vec.Vec3{X: 0, Y: 0, Z: 0}, rockTid)
	assert.Error(t, err, "overlapping structure placement must fail")

	set := w.StructuresInChunk(ChunkKey{Plane: ForestStablePlane, Pos: vec.Vec2{X: 0, Y: 0}})
	assert.Equal(t, map[StructureID]struct{}{s1: {}}, set)
}

// Scenario 2: cascading destroy in textual hook order.
type recordingObserver struct {
	noopObserver
	events []string
}

func (r *recordingObserver) OnEntityDestroy(eid EntityID)       { r.events = append(r.events, "entity_destroy") }
func (r *recordingObserver) OnInventoryDestroy(iid InventoryID) { r.events = append(r.events, "inventory_destroy") }
func (r *recordingObserver) OnClientDestroy(cid ClientID)       { r.events = append(r.events, "client_destroy") }

func TestCascadingClientDestroyOrder(t *testing.T) {
	w, f := newTestWorld(t)
	rec := &recordingObserver{}
	hooks := NewHookBus()
	hooks.Register(rec)
	f = NewFragment(w, hooks)

	cid, _ := ClientCreate(f, "alice", [2]uint8{0, 0})
	eid, _ := EntityCreate(f, vec.Vec3{}, 0, 0)
	ClientSetPawn(f, cid, eid)
	iid, _ := InventoryCreate(f)
	InventoryAttach(f, iid, InventoryAttachment{Kind: InventoryAttachEntity, Entity: eid})
	entity, _ := w.Entities.GetMut(eid)
	entity.ChildInventories[iid] = struct{}{}

	err := ClientDestroy(f, cid)
	assert.NoError(t, err)

	assert.Equal(t, []string{"entity_destroy", "inventory_destroy", "client_destroy"}, rec.events)

	_, ok := w.Clients.Get(cid)
	assert.False(t, ok)
	_, ok = w.Entities.Get(eid)
	assert.False(t, ok)
	_, ok = w.Inventories.Get(iid)
	assert.False(t, ok)
}

func TestInventoryUpdateRoundTrip(t *testing.T) {
	_, f := newTestWorld(t)
	iid, _ := InventoryCreate(f)

	got, err := InventoryUpdate(f, iid, data.ItemID(1), 10)
	assert.NoError(t, err)
	assert.Equal(t, uint8(10), got)

	got, err = InventoryUpdate(f, iid, data.ItemID(1), -10)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0), got)
}

func TestInventoryUpdateSaturates(t *testing.T) {
	_, f := newTestWorld(t)
	iid, _ := InventoryCreate(f)

	got, _ := InventoryUpdate(f, iid, data.ItemID(1), 1000)
	assert.Equal(t, uint8(255), got, "must saturate at 255")

	got, _ = InventoryUpdate(f, iid, data.ItemID(1), -1000)
	assert.Equal(t, uint8(0), got, "must saturate at 0, not wrap")
}

// noopObserver implements Observer with no-ops so tests can embed it and
// override only the methods they care about.
type noopObserver struct{}

func (noopObserver) OnClientCreate(ClientID)                           {}
func (noopObserver) OnClientDestroy(ClientID)                          {}
func (noopObserver) OnClientChangePawn(ClientID, *EntityID, *EntityID) {}
func (noopObserver) OnTerrainChunkCreate(ChunkKey, ChunkID)            {}
func (noopObserver) OnTerrainChunkDestroy(ChunkKey, ChunkID)           {}
func (noopObserver) OnEntityCreate(EntityID)                           {}
func (noopObserver) OnEntityDestroy(EntityID)                          {}
func (noopObserver) OnStructureCreate(StructureID)                     {}
func (noopObserver) OnStructureDestroy(StructureID)                    {}
func (noopObserver) OnStructureReplace(StructureID, uint32, uint32)    {}
func (noopObserver) OnChunkInvalidate(ChunkKey)                        {}
func (noopObserver) OnInventoryCreate(InventoryID)                     {}
func (noopObserver) OnInventoryDestroy(InventoryID)                    {}
func (noopObserver) OnInventoryUpdate(InventoryID, uint16, uint8, uint8) {}
