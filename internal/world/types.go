// Package world implements the in-memory object graph — planes, terrain
// chunks, structures, entities, clients, inventories — and the "ops" layer
// that mutates it under invariants. Grounded on
// _examples/original_source/server/world/ops.rs, generalized from the
// teacher's BigChunk/WorldManager actor split in
// internal/world/world.go into the single-owner Fragment shape the
// scheduler drives.
package world

import (
	"time"

	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/ids"
	"github.com/latticeworld/worldcore/internal/vec"
)

// Id aliases keep call sites readable without losing the distinct slot
// tables each belongs to.
type (
	PlaneID     = ids.TransientID
	ChunkID     = ids.TransientID
	StructureID = ids.TransientID
	EntityID    = ids.TransientID
	ClientID    = ids.TransientID
	InventoryID = ids.TransientID

	StablePlaneID = ids.StableID
)

// Well-known planes (spec.md §3).
const (
	LimboPlane  PlaneID = 0
	ForestPlane PlaneID = 1
)

const (
	LimboStablePlane  StablePlaneID = 1
	ForestStablePlane StablePlaneID = 2
)

// ChunkKey addresses a terrain chunk within a plane.
type ChunkKey struct {
	Plane StablePlaneID
	Pos   vec.Vec2
}

// Plane is a horizontally infinite 2D layer of terrain chunks.
type Plane struct {
	Stable StablePlaneID
	Name   string
	Seed   int64
}

// TerrainChunk is the fixed CHUNK_SIZE^2 * CHUNK_SIZE array of block ids
// (CHUNK_TOTAL = 4096 entries, z-major then y then x, matching the
// generator's GenChunk layout).
type TerrainChunk struct {
	Plane           StablePlaneID
	Pos             vec.Vec2
	Blocks          [vec.ChunkSize * vec.ChunkSize * vec.ChunkSize]data.BlockID
	ChildStructures map[StructureID]struct{}
}

func newTerrainChunk(plane StablePlaneID, pos vec.Vec2) *TerrainChunk {
	return &TerrainChunk{
		Plane:           plane,
		Pos:             pos,
		ChildStructures: make(map[StructureID]struct{}),
	}
}

// BlockAt returns the block id at the local (x,y,z) offset within the chunk.
func (c *TerrainChunk) BlockAt(local vec.Vec3) data.BlockID {
	idx := (local.Z*vec.ChunkSize+local.Y)*vec.ChunkSize + local.X
	return c.Blocks[idx]
}

// StructureAttachmentKind tags which kind of parent a structure is bound to.
type StructureAttachmentKind int

const (
	StructureAttachWorld StructureAttachmentKind = iota
	StructureAttachChunk
)

// StructureAttachment is a tagged variant — World, or a specific chunk.
type StructureAttachment struct {
	Kind  StructureAttachmentKind
	Chunk ChunkID // valid only when Kind == StructureAttachChunk
}

// Structure occupies a 3D axis-aligned box identified by a template id.
type Structure struct {
	Stable           ids.StableID
	Plane            StablePlaneID
	Pos              vec.Vec3
	Template         data.TemplateID
	Attachment       StructureAttachment
	ChildInventories map[InventoryID]struct{}
}

func newStructure(plane StablePlaneID, pos vec.Vec3, tid data.TemplateID) *Structure {
	return &Structure{
		Plane:            plane,
		Pos:              pos,
		Template:         tid,
		Attachment:       StructureAttachment{Kind: StructureAttachWorld},
		ChildInventories: make(map[InventoryID]struct{}),
	}
}

// Bounds returns the structure's occupied box given its template's footprint.
func (s *Structure) Bounds(def *data.TemplateDef) vec.Region3 {
	return vec.NewRegion3(s.Pos, def.Size)
}

// Motion is the piecewise-linear path an entity follows between two points.
type Motion struct {
	StartPos  vec.Vec3
	EndPos    vec.Vec3
	StartTime time.Time
	Duration  time.Duration
}

// PosAt interpolates the motion at time now, clamped to its end.
func (m Motion) PosAt(now time.Time) vec.Vec3Float {
	if m.Duration <= 0 {
		return m.EndPos.ToFloat()
	}
	t := float64(now.Sub(m.StartTime)) / float64(m.Duration)
	return m.StartPos.ToFloat().Lerp(m.EndPos.ToFloat(), t)
}

// EntityAttachmentKind tags an entity's parent kind. Chunk is reserved but
// rejected by entity_attach (spec.md §4.2, §9 Open Questions) — it is kept
// here only so the tagged-variant type is complete, not because it is ever
// legally produced.
type EntityAttachmentKind int

const (
	EntityAttachWorld EntityAttachmentKind = iota
	EntityAttachChunk
	EntityAttachClient
)

type EntityAttachment struct {
	Kind   EntityAttachmentKind
	Chunk  ChunkID
	Client ClientID
}

// Entity is a mobile actor.
type Entity struct {
	Stable           ids.StableID
	Motion           Motion
	Anim             uint16
	Facing           vec.Vec3
	Appearance       uint32
	Attachment       EntityAttachment
	ChildInventories map[InventoryID]struct{}
}

func newEntity(pos vec.Vec3, anim uint16, appearance uint32) *Entity {
	return &Entity{
		Motion: Motion{StartPos: pos, EndPos: pos, StartTime: time.Now()},
		Anim:   anim,
		Appearance: appearance,
		Attachment: EntityAttachment{Kind: EntityAttachWorld},
		ChildInventories: make(map[InventoryID]struct{}),
	}
}

// ViewState is the rectangular region of chunks a client currently
// subscribes to (spec.md §4.5 CheckView / §6 per-client chunk indexing).
type ViewState struct {
	Region      vec.Region2
	ChunkOffset [2]uint8
}

// Client is a connected player session.
type Client struct {
	Stable          ids.StableID
	Name            string
	Pawn            *EntityID
	InputBits       uint16
	ChunkOffset     [2]uint8
	View            ViewState
	ChildEntities   map[EntityID]struct{}
	ChildInventories map[InventoryID]struct{}
}

func newClient(name string, chunkOffset [2]uint8) *Client {
	return &Client{
		Name:             name,
		ChunkOffset:      chunkOffset,
		ChildEntities:    make(map[EntityID]struct{}),
		ChildInventories: make(map[InventoryID]struct{}),
	}
}

// InventoryAttachmentKind tags an inventory's parent kind.
type InventoryAttachmentKind int

const (
	InventoryAttachWorld InventoryAttachmentKind = iota
	InventoryAttachClient
	InventoryAttachEntity
	InventoryAttachStructure
)

type InventoryAttachment struct {
	Kind      InventoryAttachmentKind
	Client    ClientID
	Entity    EntityID
	Structure StructureID
}

// Inventory maps item id to a saturating u8 count.
type Inventory struct {
	Stable     ids.StableID
	Contents   map[data.ItemID]uint8
	Attachment InventoryAttachment
}

func newInventory() *Inventory {
	return &Inventory{
		Contents:   make(map[data.ItemID]uint8),
		Attachment: InventoryAttachment{Kind: InventoryAttachWorld},
	}
}

// saturateU8Add adds adjust (which may be negative) to old, clamping to
// [0, 255] rather than wrapping — spec.md §4.2 inventory_update.
func saturateU8Add(old uint8, adjust int16) uint8 {
	v := int32(old) + int32(adjust)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
