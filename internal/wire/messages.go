package wire

import "github.com/latticeworld/worldcore/internal/world"

// LocalTime is the 16-bit wire-local time field carried by Input/Action/
// Pong and recovered to a full scheduler.Time by the scheduler's
// ToGlobal (spec.md §4.5).
type LocalTime = uint16

// Ping/Pong — client liveness probe, echoed back with the server's local
// time (spec.md §6).
type Ping struct {
	Cookie uint16
}

type Pong struct {
	Cookie    uint16
	LocalTime LocalTime
}

// Login establishes a client session. Secret is the 4xu32 credential
// payload hashed against internal/auth's stored secret.
type Login struct {
	Secret [4]uint32
	Name   string
}

// Init is the first message sent after a successful login.
type Init struct {
	EntityID   world.EntityID
	CameraPos  [2]int16
	ChunkCount uint16
	EntityCount uint16
}

// Input carries movement bits timestamped in the client's local clock.
type Input struct {
	LocalTime LocalTime
	Bits      uint16
}

// Action carries an action request timestamped in the client's local
// clock; Bits packs the action kind and its arguments (spec.md leaves the
// packing opaque to this layer).
type Action struct {
	LocalTime LocalTime
	Bits      uint32
}

// WireMotion is the wire-local encoding of world.Motion: times are local;
// the engine fills positions with the entity's world coordinates truncated
// to u16, not translated by the receiving client's chunk offset.
type WireMotion struct {
	StartTime LocalTime
	EndTime   LocalTime
	StartPos  [3]uint16
	EndPos    [3]uint16
}

// EntityUpdate broadcasts an entity's fresh motion to every connected
// client.
type EntityUpdate struct {
	EntityID world.EntityID
	Motion   WireMotion
	Anim     uint16
}

// TerrainChunk carries the RLE16-encoded block array for one chunk slot
// in the receiving client's local chunk ring.
type TerrainChunk struct {
	Index uint16
	RLE16 []byte
}

// UnloadChunk tells the client to drop whatever occupies a ring slot.
type UnloadChunk struct {
	Index uint16
}

// ClientRemoved confirms a RemoveClient request.
type ClientRemoved struct{}

// AddClient/RemoveClient are the in-band client-lifecycle requests
// (spec.md §6); AddClient never appears as a struct payload beyond
// carrying a Login, kept here only so the opcode table has a Go type for
// every row.
type AddClient struct {
	Login Login
}

type RemoveClient struct{}

// BadMessage reports an opcode the receiver doesn't know what to do with:
// malformed or deprecated. Carries the raw opcode for the log line.
type BadMessage struct {
	Opcode uint16
}
