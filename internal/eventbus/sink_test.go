package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/latticeworld/worldcore/internal/vec"
	"github.com/latticeworld/worldcore/internal/world"
)

func TestSinkPublishesClientCreate(t *testing.T) {
	bus := NewMemoryBus(8)
	sink := NewSink(bus, "test")

	sink.OnClientCreate(world.ClientID(5))

	assert.Equal(t, uint64(1), bus.Metrics().Published)
}

func TestSinkImplementsObserver(t *testing.T) {
	var _ world.Observer = (*Sink)(nil)
}

func TestChunkMetaIncludesCoordinates(t *testing.T) {
	key := world.ChunkKey{Plane: world.ForestStablePlane, Pos: vec.Vec2{X: 1, Y: 2}}
	meta := chunkMeta(key, world.ChunkID(9))

	assert.Equal(t, "1", meta["x"])
	assert.Equal(t, "2", meta["y"])
	assert.Equal(t, "9", meta["chunk_id"])
}
