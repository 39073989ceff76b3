package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadgerStoreRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	assert.NoError(t, err)
	defer store.Close()

	key := Key("chunk", 2, 3, 4)
	assert.NoError(t, store.Set(key, []byte("hello world")))

	got, ok, err := store.Get(key)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello world", string(got))
}

func TestBadgerStoreMissingKey(t *testing.T) {
	store, err := Open(t.TempDir())
	assert.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get(Key("chunk", 2, 0, 0))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerStoreDelete(t *testing.T) {
	store, err := Open(t.TempDir())
	assert.NoError(t, err)
	defer store.Close()

	key := Key("superchunk", 2, 1, 1)
	assert.NoError(t, store.Set(key, []byte("x")))
	assert.NoError(t, store.Delete(key))

	_, ok, err := store.Get(key)
	assert.NoError(t, err)
	assert.False(t, ok)
}
