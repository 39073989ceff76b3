package world

import (
	"encoding/json"
	"fmt"

	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/ids"
	"github.com/latticeworld/worldcore/internal/storage"
	"github.com/latticeworld/worldcore/internal/vec"
)

// persist.go round-trips the World graph through the *_unchecked +
// *_post_init creation path (spec.md §4.2, §8 round-trip law), the way the
// save loader is described as working. Attachments are recorded by stable
// id (never by transient id, which is meaningless across a reload) and
// resolved back to transient ids once every table has been restored.

type chunkSnapshot struct {
	Plane  StablePlaneID                                              `json:"plane"`
	Pos    vec.Vec2                                                   `json:"pos"`
	Blocks [vec.ChunkSize * vec.ChunkSize * vec.ChunkSize]data.BlockID `json:"blocks"`
}

type structureSnapshot struct {
	Stable      ids.StableID    `json:"stable"`
	Plane       StablePlaneID   `json:"plane"`
	Pos         vec.Vec3        `json:"pos"`
	Template    data.TemplateID `json:"template"`
	AttachChunk *vec.Vec2       `json:"attach_chunk,omitempty"`
}

type entitySnapshot struct {
	Stable       ids.StableID `json:"stable"`
	Pos          vec.Vec3     `json:"pos"`
	Anim         uint16       `json:"anim"`
	Appearance   uint32       `json:"appearance"`
	AttachClient ids.StableID `json:"attach_client,omitempty"`
}

type clientSnapshot struct {
	Stable      ids.StableID `json:"stable"`
	Name        string       `json:"name"`
	ChunkOffset [2]uint8     `json:"chunk_offset"`
	Pawn        ids.StableID `json:"pawn,omitempty"`
}

type inventorySnapshot struct {
	Stable       ids.StableID            `json:"stable"`
	Contents     map[data.ItemID]uint8   `json:"contents"`
	AttachKind   InventoryAttachmentKind `json:"attach_kind"`
	AttachParent ids.StableID            `json:"attach_parent,omitempty"`
}

// WorldSnapshot is the full persisted object graph (spec.md §8: "Save then
// load restores the full World graph and all stable-id mappings").
type WorldSnapshot struct {
	Chunks      []chunkSnapshot     `json:"chunks"`
	Structures  []structureSnapshot `json:"structures"`
	Clients     []clientSnapshot    `json:"clients"`
	Entities    []entitySnapshot    `json:"entities"`
	Inventories []inventorySnapshot `json:"inventories"`
}

// SaveWorld walks every table in ascending slot order (ids.StableMap.Each)
// and captures enough to rebuild the graph: positions, template/appearance
// data, and attachments expressed by stable id.
func SaveWorld(f *Fragment) *WorldSnapshot {
	w := f.World()
	snap := &WorldSnapshot{}

	w.Chunks.Each(func(_ ChunkID, c *TerrainChunk) bool {
		snap.Chunks = append(snap.Chunks, chunkSnapshot{Plane: c.Plane, Pos: c.Pos, Blocks: c.Blocks})
		return true
	})

	w.Structures.Each(func(tid StructureID, s *Structure) bool {
		stable, _ := w.Structures.StableOf(tid)
		ss := structureSnapshot{Stable: stable, Plane: s.Plane, Pos: s.Pos, Template: s.Template}
		if s.Attachment.Kind == StructureAttachChunk {
			if c, ok := w.Chunks.Get(s.Attachment.Chunk); ok {
				pos := c.Pos
				ss.AttachChunk = &pos
			}
		}
		snap.Structures = append(snap.Structures, ss)
		return true
	})

	w.Clients.Each(func(tid ClientID, c *Client) bool {
		stable, _ := w.Clients.StableOf(tid)
		cs := clientSnapshot{Stable: stable, Name: c.Name, ChunkOffset: c.ChunkOffset}
		if c.Pawn != nil {
			if pawnStable, ok := w.Entities.StableOf(*c.Pawn); ok {
				cs.Pawn = pawnStable
			}
		}
		snap.Clients = append(snap.Clients, cs)
		return true
	})

	w.Entities.Each(func(tid EntityID, e *Entity) bool {
		stable, _ := w.Entities.StableOf(tid)
		es := entitySnapshot{Stable: stable, Pos: e.Motion.EndPos, Anim: e.Anim, Appearance: e.Appearance}
		if e.Attachment.Kind == EntityAttachClient {
			if clientStable, ok := w.Clients.StableOf(e.Attachment.Client); ok {
				es.AttachClient = clientStable
			}
		}
		snap.Entities = append(snap.Entities, es)
		return true
	})

	w.Inventories.Each(func(tid InventoryID, inv *Inventory) bool {
		stable, _ := w.Inventories.StableOf(tid)
		is := inventorySnapshot{Stable: stable, Contents: inv.Contents, AttachKind: inv.Attachment.Kind}
		switch inv.Attachment.Kind {
		case InventoryAttachClient:
			if parentStable, ok := w.Clients.StableOf(inv.Attachment.Client); ok {
				is.AttachParent = parentStable
			}
		case InventoryAttachEntity:
			if parentStable, ok := w.Entities.StableOf(inv.Attachment.Entity); ok {
				is.AttachParent = parentStable
			}
		case InventoryAttachStructure:
			if parentStable, ok := w.Structures.StableOf(inv.Attachment.Structure); ok {
				is.AttachParent = parentStable
			}
		}
		snap.Inventories = append(snap.Inventories, is)
		return true
	})

	return snap
}

// LoadWorld restores a snapshot into f's (assumed empty) World, in
// dependency order: chunks, then structures (+ StructurePostInit), then
// clients, then entities (+ pawn attachment), then inventories. Every
// table entry goes through its table's *_unchecked creator so stable ids
// survive the round trip untouched (spec.md §4.2, §8).
func LoadWorld(f *Fragment, snap *WorldSnapshot) error {
	w := f.World()

	for _, cs := range snap.Chunks {
		if _, err := TerrainChunkCreateUnchecked(f, cs.Plane, cs.Pos, cs.Blocks); err != nil {
			return fmt.Errorf("load chunk %v: %w", cs.Pos, err)
		}
	}

	for _, ss := range snap.Structures {
		sid, err := StructureCreateUnchecked(f, ss.Plane, ss.Pos, ss.Template, ss.Stable)
		if err != nil {
			return fmt.Errorf("load structure %d: %w", ss.Stable, err)
		}
		if ss.AttachChunk != nil {
			ckey := ChunkKey{Plane: ss.Plane, Pos: *ss.AttachChunk}
			ctid, ok := w.ChunkAt(ckey)
			if !ok {
				return fmt.Errorf("load structure %d: attached chunk %v not loaded", ss.Stable, *ss.AttachChunk)
			}
			if _, err := StructureAttach(f, sid, StructureAttachment{Kind: StructureAttachChunk, Chunk: ctid}); err != nil {
				return fmt.Errorf("load structure %d: attach chunk: %w", ss.Stable, err)
			}
		}
		if err := StructurePostInit(f, sid); err != nil {
			return fmt.Errorf("load structure %d: post init: %w", ss.Stable, err)
		}
	}

	for _, cs := range snap.Clients {
		if _, err := ClientCreateUnchecked(f, cs.Name, cs.ChunkOffset, cs.Stable); err != nil {
			return fmt.Errorf("load client %d: %w", cs.Stable, err)
		}
	}

	for _, es := range snap.Entities {
		eid, err := EntityCreateUnchecked(f, es.Pos, es.Anim, es.Appearance, es.Stable)
		if err != nil {
			return fmt.Errorf("load entity %d: %w", es.Stable, err)
		}
		if es.AttachClient != ids.NoStableID {
			cid, ok := w.Clients.TransientOf(es.AttachClient)
			if !ok {
				return fmt.Errorf("load entity %d: attached client %d not loaded", es.Stable, es.AttachClient)
			}
			if _, err := EntityAttach(f, eid, EntityAttachment{Kind: EntityAttachClient, Client: cid}); err != nil {
				return fmt.Errorf("load entity %d: attach client: %w", es.Stable, err)
			}
		}
	}

	for _, cs := range snap.Clients {
		if cs.Pawn == ids.NoStableID {
			continue
		}
		cid, ok := w.Clients.TransientOf(cs.Stable)
		if !ok {
			return fmt.Errorf("load client %d: vanished before pawn restore", cs.Stable)
		}
		eid, ok := w.Entities.TransientOf(cs.Pawn)
		if !ok {
			return fmt.Errorf("load client %d: pawn entity %d not loaded", cs.Stable, cs.Pawn)
		}
		if _, err := ClientSetPawn(f, cid, eid); err != nil {
			return fmt.Errorf("load client %d: set pawn: %w", cs.Stable, err)
		}
	}

	for _, is := range snap.Inventories {
		iid, err := InventoryCreateUnchecked(f, is.Stable)
		if err != nil {
			return fmt.Errorf("load inventory %d: %w", is.Stable, err)
		}
		inv, _ := w.Inventories.GetMut(iid)
		inv.Contents = is.Contents

		var target InventoryAttachment
		switch is.AttachKind {
		case InventoryAttachClient:
			cid, ok := w.Clients.TransientOf(is.AttachParent)
			if !ok {
				return fmt.Errorf("load inventory %d: attached client %d not loaded", is.Stable, is.AttachParent)
			}
			target = InventoryAttachment{Kind: InventoryAttachClient, Client: cid}
		case InventoryAttachEntity:
			eid, ok := w.Entities.TransientOf(is.AttachParent)
			if !ok {
				return fmt.Errorf("load inventory %d: attached entity %d not loaded", is.Stable, is.AttachParent)
			}
			target = InventoryAttachment{Kind: InventoryAttachEntity, Entity: eid}
		case InventoryAttachStructure:
			sid, ok := w.Structures.TransientOf(is.AttachParent)
			if !ok {
				return fmt.Errorf("load inventory %d: attached structure %d not loaded", is.Stable, is.AttachParent)
			}
			target = InventoryAttachment{Kind: InventoryAttachStructure, Structure: sid}
		default:
			continue
		}
		if _, err := InventoryAttach(f, iid, target); err != nil {
			return fmt.Errorf("load inventory %d: attach: %w", is.Stable, err)
		}
	}

	return nil
}

// worldSnapshotKey is the single key the whole object graph is stored
// under, in the "world" namespace (internal/storage.StableKey).
var worldSnapshotKey = storage.StableKey("world", "graph", 0)

// SaveWorldToStore serializes and writes the World graph to store.
func SaveWorldToStore(f *Fragment, store *storage.BadgerStore) error {
	raw, err := json.Marshal(SaveWorld(f))
	if err != nil {
		return fmt.Errorf("marshal world snapshot: %w", err)
	}
	return store.Set(worldSnapshotKey, raw)
}

// LoadWorldFromStore reads and restores the World graph from store. A
// missing key is not an error — it means there is nothing saved yet, and f
// is left untouched.
func LoadWorldFromStore(f *Fragment, store *storage.BadgerStore) error {
	raw, ok, err := store.Get(worldSnapshotKey)
	if err != nil {
		return fmt.Errorf("read world snapshot: %w", err)
	}
	if !ok {
		return nil
	}
	var snap WorldSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("unmarshal world snapshot: %w", err)
	}
	return LoadWorld(f, &snap)
}
