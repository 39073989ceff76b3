package world

// Observer is the single interface the engine supplies to the op layer
// (spec.md §4.3, §9 "Hook observers replace trait-object injection with a
// single interface the engine supplies"). Implementations must not call
// back into any op — they may only queue scheduler work.
type Observer interface {
	OnClientCreate(cid ClientID)
	OnClientDestroy(cid ClientID)
	OnClientChangePawn(cid ClientID, old, new_ *EntityID)

	OnTerrainChunkCreate(key ChunkKey, tid ChunkID)
	OnTerrainChunkDestroy(key ChunkKey, tid ChunkID)

	OnEntityCreate(eid EntityID)
	OnEntityDestroy(eid EntityID)

	OnStructureCreate(sid StructureID)
	OnStructureDestroy(sid StructureID)
	OnStructureReplace(sid StructureID, oldTid, newTid uint32)

	OnChunkInvalidate(key ChunkKey)

	OnInventoryCreate(iid InventoryID)
	OnInventoryDestroy(iid InventoryID)
	OnInventoryUpdate(iid InventoryID, item uint16, old, new_ uint8)
}

// HookBus fans out events to every registered Observer, in registration
// order, synchronously, after the mutating op has fully completed — no
// channel, no goroutine (spec.md §5: ops/hooks never block on I/O).
type HookBus struct {
	observers []Observer
}

// NewHookBus creates an empty bus.
func NewHookBus() *HookBus {
	return &HookBus{}
}

// Register adds an observer. Order of registration is the fan-out order.
func (b *HookBus) Register(o Observer) {
	b.observers = append(b.observers, o)
}

func (b *HookBus) fireClientCreate(cid ClientID) {
	for _, o := range b.observers {
		o.OnClientCreate(cid)
	}
}

func (b *HookBus) fireClientDestroy(cid ClientID) {
	for _, o := range b.observers {
		o.OnClientDestroy(cid)
	}
}

func (b *HookBus) fireClientChangePawn(cid ClientID, old, new_ *EntityID) {
	for _, o := range b.observers {
		o.OnClientChangePawn(cid, old, new_)
	}
}

func (b *HookBus) fireTerrainChunkCreate(key ChunkKey, tid ChunkID) {
	for _, o := range b.observers {
		o.OnTerrainChunkCreate(key, tid)
	}
}

func (b *HookBus) fireTerrainChunkDestroy(key ChunkKey, tid ChunkID) {
	for _, o := range b.observers {
		o.OnTerrainChunkDestroy(key, tid)
	}
}

func (b *HookBus) fireEntityCreate(eid EntityID) {
	for _, o := range b.observers {
		o.OnEntityCreate(eid)
	}
}

func (b *HookBus) fireEntityDestroy(eid EntityID) {
	for _, o := range b.observers {
		o.OnEntityDestroy(eid)
	}
}

func (b *HookBus) fireStructureCreate(sid StructureID) {
	for _, o := range b.observers {
		o.OnStructureCreate(sid)
	}
}

func (b *HookBus) fireStructureDestroy(sid StructureID) {
	for _, o := range b.observers {
		o.OnStructureDestroy(sid)
	}
}

func (b *HookBus) fireStructureReplace(sid StructureID, oldTid, newTid uint32) {
	for _, o := range b.observers {
		o.OnStructureReplace(sid, oldTid, newTid)
	}
}

func (b *HookBus) fireChunkInvalidate(key ChunkKey) {
	for _, o := range b.observers {
		o.OnChunkInvalidate(key)
	}
}

func (b *HookBus) fireInventoryCreate(iid InventoryID) {
	for _, o := range b.observers {
		o.OnInventoryCreate(iid)
	}
}

func (b *HookBus) fireInventoryDestroy(iid InventoryID) {
	for _, o := range b.observers {
		o.OnInventoryDestroy(iid)
	}
}

func (b *HookBus) fireInventoryUpdate(iid InventoryID, item uint16, old, new_ uint8) {
	for _, o := range b.observers {
		o.OnInventoryUpdate(iid, item, old, new_)
	}
}

// invalidateChunks fires on_chunk_invalidate for the union of two chunk
// key sets (spec.md §4.2 Invalidation) without duplicate notifications.
func (b *HookBus) invalidateChunks(a, c []ChunkKey) {
	seen := make(map[ChunkKey]struct{}, len(a)+len(c))
	emit := func(k ChunkKey) {
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		b.fireChunkInvalidate(k)
	}
	for _, k := range a {
		emit(k)
	}
	for _, k := range c {
		emit(k)
	}
}
