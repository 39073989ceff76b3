package eventbus

import (
	"context"
	"strconv"
	"time"

	"github.com/latticeworld/worldcore/internal/world"
)

// Sink adapts an EventBus into a world.Observer, so every hook the
// engine fires also lands on the durable bus as an Envelope (spec.md §4.3's
// Hook Bus, augmented — observers may only queue work, never block on I/O,
// so every publish here is fire-and-forget via a background context with a
// short deadline rather than the caller's).
type Sink struct {
	bus    EventBus
	source string
}

// NewSink wraps bus, tagging every published Envelope with source.
func NewSink(bus EventBus, source string) *Sink {
	return &Sink{bus: bus, source: source}
}

func (s *Sink) publish(eventType string, meta map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = s.bus.Publish(ctx, &Envelope{
		Timestamp: time.Now(),
		Source:    s.source,
		EventType: eventType,
		Version:   1,
		Priority:  3,
		Metadata:  meta,
	})
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }
func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
func u8(v uint8) string   { return strconv.FormatUint(uint64(v), 10) }

func (s *Sink) OnClientCreate(cid world.ClientID) {
	s.publish("ClientCreate", map[string]string{"client_id": u64(uint64(cid))})
}

func (s *Sink) OnClientDestroy(cid world.ClientID) {
	s.publish("ClientDestroy", map[string]string{"client_id": u64(uint64(cid))})
}

func (s *Sink) OnClientChangePawn(cid world.ClientID, old, new_ *world.EntityID) {
	meta := map[string]string{"client_id": u64(uint64(cid))}
	if old != nil {
		meta["old_entity_id"] = u64(uint64(*old))
	}
	if new_ != nil {
		meta["new_entity_id"] = u64(uint64(*new_))
	}
	s.publish("ClientChangePawn", meta)
}

func (s *Sink) OnTerrainChunkCreate(key world.ChunkKey, tid world.ChunkID) {
	s.publish("TerrainChunkCreate", chunkMeta(key, tid))
}

func (s *Sink) OnTerrainChunkDestroy(key world.ChunkKey, tid world.ChunkID) {
	s.publish("TerrainChunkDestroy", chunkMeta(key, tid))
}

func chunkMeta(key world.ChunkKey, tid world.ChunkID) map[string]string {
	return map[string]string{
		"chunk_id": u64(uint64(tid)),
		"plane":    u64(uint64(key.Plane)),
		"x":        strconv.Itoa(int(key.Pos.X)),
		"y":        strconv.Itoa(int(key.Pos.Y)),
	}
}

func (s *Sink) OnEntityCreate(eid world.EntityID) {
	s.publish("EntityCreate", map[string]string{"entity_id": u64(uint64(eid))})
}

func (s *Sink) OnEntityDestroy(eid world.EntityID) {
	s.publish("EntityDestroy", map[string]string{"entity_id": u64(uint64(eid))})
}

func (s *Sink) OnStructureCreate(sid world.StructureID) {
	s.publish("StructureCreate", map[string]string{"structure_id": u64(uint64(sid))})
}

func (s *Sink) OnStructureDestroy(sid world.StructureID) {
	s.publish("StructureDestroy", map[string]string{"structure_id": u64(uint64(sid))})
}

func (s *Sink) OnStructureReplace(sid world.StructureID, oldTid, newTid uint32) {
	s.publish("StructureReplace", map[string]string{
		"structure_id": u64(uint64(sid)),
		"old_template": u32(oldTid),
		"new_template": u32(newTid),
	})
}

func (s *Sink) OnChunkInvalidate(key world.ChunkKey) {
	s.publish("ChunkInvalidate", nil)
}

func (s *Sink) OnInventoryCreate(iid world.InventoryID) {
	s.publish("InventoryCreate", map[string]string{"inventory_id": u64(uint64(iid))})
}

func (s *Sink) OnInventoryDestroy(iid world.InventoryID) {
	s.publish("InventoryDestroy", map[string]string{"inventory_id": u64(uint64(iid))})
}

func (s *Sink) OnInventoryUpdate(iid world.InventoryID, item uint16, old, new_ uint8) {
	s.publish("InventoryUpdate", map[string]string{
		"inventory_id": u64(uint64(iid)),
		"item":         strconv.FormatUint(uint64(item), 10),
		"old":          u8(old),
		"new":          u8(new_),
	})
}
