package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/latticeworld/worldcore/internal/scheduler"
	"github.com/latticeworld/worldcore/internal/wire"
)

func TestWireLoginCarriesSecretAndName(t *testing.T) {
	l := line{Op: "login", Name: "alice", Secret: [4]uint32{1, 2, 3, 4}}
	got := wireLogin(l)
	assert.Equal(t, wire.Login{Secret: [4]uint32{1, 2, 3, 4}, Name: "alice"}, got)
}

func TestFromResponseRendersEachVariant(t *testing.T) {
	cases := []struct {
		name string
		in   scheduler.ResponsePayload
		op   string
	}{
		{"init", scheduler.InitResponse{Init: wire.Init{EntityID: 7}}, "init"},
		{"entity_update", scheduler.EntityUpdateResponse{Update: wire.EntityUpdate{EntityID: 9}}, "entity_update"},
		{"terrain_chunk", scheduler.TerrainChunkResponse{Chunk: wire.TerrainChunk{Index: 2}}, "terrain_chunk"},
		{"unload_chunk", scheduler.UnloadChunkResponse{Unload: wire.UnloadChunk{Index: 3}}, "unload_chunk"},
		{"client_removed", scheduler.ClientRemovedResponse{}, "client_removed"},
		{"pong", scheduler.PongResponse{Pong: wire.Pong{Cookie: 1, LocalTime: 2}}, "pong"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.op, fromResponse(c.in).Op)
		})
	}
}

func TestToRequestRejectsBadLoginWithoutEnqueueing(t *testing.T) {
	tr := NewNDJSONTransport(fakeRepo{loginOK: false})
	_, ok := tr.toRequest(line{Op: "login", Name: "bob", Secret: [4]uint32{1, 1, 1, 1}})
	assert.False(t, ok)
}

func TestToRequestAcceptsGoodLogin(t *testing.T) {
	tr := NewNDJSONTransport(fakeRepo{loginOK: true})
	payload, ok := tr.toRequest(line{Op: "login", Name: "bob", Secret: [4]uint32{1, 1, 1, 1}})
	assert.True(t, ok)
	_, isLogin := payload.(scheduler.LoginRequest)
	assert.True(t, isLogin)
}

type fakeRepo struct{ loginOK bool }

func (f fakeRepo) Register(name string, secret [4]uint32) (bool, error) { return true, nil }
func (f fakeRepo) Login(name string, secret [4]uint32) (bool, error)    { return f.loginOK, nil }
