package transport

import (
	"github.com/latticeworld/worldcore/internal/scheduler"
	"github.com/latticeworld/worldcore/internal/wire"
)

func wireLogin(l line) wire.Login   { return wire.Login{Secret: l.Secret, Name: l.Name} }
func wireInput(l line) wire.Input   { return wire.Input{LocalTime: l.Time, Bits: uint16(l.Bits)} }
func wireAction(l line) wire.Action { return wire.Action{LocalTime: l.Time, Bits: l.Bits} }
func wirePing(l line) wire.Ping     { return wire.Ping{Cookie: uint16(l.Cookie)} }

// fromResponse renders one scheduler.ResponsePayload into the wire shape.
func fromResponse(payload scheduler.ResponsePayload) line {
	switch p := payload.(type) {
	case scheduler.InitResponse:
		return line{
			Op:          "init",
			EntityID:    uint32(p.Init.EntityID),
			CameraPos:   p.Init.CameraPos,
			ChunkCount:  p.Init.ChunkCount,
			EntityCount: p.Init.EntityCount,
		}
	case scheduler.EntityUpdateResponse:
		return line{Op: "entity_update", EntityID: uint32(p.Update.EntityID)}
	case scheduler.TerrainChunkResponse:
		return line{Op: "terrain_chunk", Index: p.Chunk.Index, RLE16: p.Chunk.RLE16}
	case scheduler.UnloadChunkResponse:
		return line{Op: "unload_chunk", Index: p.Unload.Index}
	case scheduler.ClientRemovedResponse:
		return line{Op: "client_removed"}
	case scheduler.PongResponse:
		return line{Op: "pong", Cookie: uint32(p.Pong.Cookie), Time: p.Pong.LocalTime}
	default:
		return line{Op: "unknown"}
	}
}
