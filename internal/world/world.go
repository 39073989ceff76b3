package world

import (
	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/ids"
	"github.com/latticeworld/worldcore/internal/logging"
	"github.com/latticeworld/worldcore/internal/vec"
)

var worldLog = logging.GetLogger("world")

// World owns every slot table plus the structures-by-chunk inverted
// index (spec.md §4.2). It has no mutex of its own — the scheduler (the
// sole owner, per §5) serializes all access the same way the teacher
// serializes WorldManager state behind its own single event loop.
type World struct {
	Planes      *ids.StableMap[Plane]
	Chunks      *ids.StableMap[TerrainChunk]
	Structures  *ids.StableMap[Structure]
	Entities    *ids.StableMap[Entity]
	Clients     *ids.StableMap[Client]
	Inventories *ids.StableMap[Inventory]

	// chunkIndex resolves (plane-stable, xy) -> transient chunk id without
	// a linear scan of the Chunks table.
	chunkIndex map[ChunkKey]ChunkID

	// structuresByChunk is the exact inverted index required by P1/P7:
	// for every live structure, its footprint's touched chunk keys all
	// list its id here.
	structuresByChunk map[ChunkKey]map[StructureID]struct{}

	Tables *data.Tables
}

// NewWorld creates an empty World seeded with the two well-known planes.
func NewWorld(tables *data.Tables) *World {
	w := &World{
		Planes:            ids.NewStableMap[Plane](),
		Chunks:            ids.NewStableMap[TerrainChunk](),
		Structures:        ids.NewStableMap[Structure](),
		Entities:          ids.NewStableMap[Entity](),
		Clients:           ids.NewStableMap[Client](),
		Inventories:       ids.NewStableMap[Inventory](),
		chunkIndex:        make(map[ChunkKey]ChunkID),
		structuresByChunk: make(map[ChunkKey]map[StructureID]struct{}),
		Tables:            tables,
	}
	w.seedWellKnownPlanes()
	return w
}

func (w *World) seedWellKnownPlanes() {
	limboTid, _ := w.Planes.Insert(Plane{Name: "limbo"})
	w.Planes.AssignStableValue(limboTid, LimboStablePlane)

	forestTid, _ := w.Planes.Insert(Plane{Name: "forest"})
	w.Planes.AssignStableValue(forestTid, ForestStablePlane)
}

// ChunkAt resolves a chunk key to its transient id, if loaded.
func (w *World) ChunkAt(key ChunkKey) (ChunkID, bool) {
	tid, ok := w.chunkIndex[key]
	return tid, ok
}

// ChunkLoaded reports whether a chunk exists at key.
func (w *World) ChunkLoaded(key ChunkKey) bool {
	_, ok := w.chunkIndex[key]
	return ok
}

// StructuresInChunk returns the live structure ids touching chunk key —
// the read side of the structures_by_chunk invariant (P1/P7).
func (w *World) StructuresInChunk(key ChunkKey) map[StructureID]struct{} {
	return w.structuresByChunk[key]
}

func (w *World) addStructureToChunk(key ChunkKey, sid StructureID) {
	set, ok := w.structuresByChunk[key]
	if !ok {
		set = make(map[StructureID]struct{})
		w.structuresByChunk[key] = set
	}
	set[sid] = struct{}{}
}

func (w *World) removeStructureFromChunk(key ChunkKey, sid StructureID) {
	set, ok := w.structuresByChunk[key]
	if !ok {
		return
	}
	delete(set, sid)
	if len(set) == 0 {
		delete(w.structuresByChunk, key)
	}
}

// chunkKeysForBounds returns every ChunkKey a 3D bounding box touches.
func chunkKeysForBounds(plane StablePlaneID, bounds vec.Region3) []ChunkKey {
	cb := bounds.ChunkBounds()
	pts := cb.Points()
	keys := make([]ChunkKey, len(pts))
	for i, p := range pts {
		keys[i] = ChunkKey{Plane: plane, Pos: p}
	}
	return keys
}

// Fragment is the handle ops receive: it exposes the world and a way to
// enqueue hook notifications that fire only once the mutation fully
// completes. Go has no borrow checker, so World() and WorldMut() return
// the same pointer — the split is documentary, mirroring how the teacher
// treats *WorldManager as a single mutable handle guarded by one owner.
type Fragment struct {
	w     *World
	hooks *HookBus
}

// NewFragment binds a World to the HookBus that observes its mutations.
func NewFragment(w *World, hooks *HookBus) *Fragment {
	return &Fragment{w: w, hooks: hooks}
}

func (f *Fragment) World() *World    { return f.w }
func (f *Fragment) WorldMut() *World { return f.w }

// WithHooks lets an op batch several hook calls, firing them as a single
// closure once its mutation is complete.
func (f *Fragment) WithHooks(fn func(*HookBus)) {
	fn(f.hooks)
}
