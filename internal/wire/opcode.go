// Package wire defines the shapes carried across the client/server
// boundary (spec.md §6): opcodes, message structs, the RLE16 terrain
// codec, and per-client chunk-ring indexing. It does not open a socket or
// frame bytes onto a stream — that I/O task sits on the other side of the
// scheduler.Transport interface, outside this package's scope.
package wire

// Opcode tags every message that crosses the wire in either direction.
type Opcode uint16

const (
	OpPing Opcode = iota
	OpPong
	OpLogin
	OpInit
	OpInput
	OpAction
	OpEntityUpdate
	OpTerrainChunk
	OpUnloadChunk
	OpClientRemoved
	OpAddClient
	OpRemoveClient
	OpBadMessage

	// opcodeDeprecatedStart marks the boundary past which every value is a
	// retired opcode from an earlier protocol revision — treated exactly
	// like BadMessage on receipt (spec.md §4.5, §7).
	opcodeDeprecatedStart Opcode = 0x8000
)

// Deprecated reports whether op belongs to the retired range.
func (op Opcode) Deprecated() bool {
	return op >= opcodeDeprecatedStart
}

// Known reports whether op is one of the opcodes this package defines a
// shape for — anything else is malformed.
func (op Opcode) Known() bool {
	return op <= OpBadMessage
}
