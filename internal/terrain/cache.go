// Package terrain implements the deterministic, seeded, chunked world
// generator built from LocalProperty passes, grounded on
// _examples/original_source/server/terrain_gen/forest/provider.rs and
// treasure.rs.
package terrain

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/latticeworld/worldcore/internal/ids"
	"github.com/latticeworld/worldcore/internal/logging"
	"github.com/latticeworld/worldcore/internal/storage"
	"github.com/latticeworld/worldcore/internal/vec"
)

var terrainLog = logging.GetLogger("terrain")

// ErrNotFound is returned by Cache.Load when no persisted summary exists
// at (pid, pos).
var ErrNotFound = fmt.Errorf("terrain: summary not found")

type cacheEntry struct {
	pid ids.StableID
	pos vec.Vec2
}

// Cache fronts a namespaced slice of the persistent store with an
// in-memory ristretto LRU (spec.md §4.4). Generic over the Summary
// payload type, constructed with a namespace string ("chunk",
// "superchunk") exactly as spec'd.
type Cache[S any] struct {
	store     *storage.BadgerStore
	mem       *ristretto.Cache
	namespace string
	zero      func() S
	dirty     map[string]cacheEntry
}

// NewCache builds a cache backed by store, namespaced by namespace. zero
// produces a fresh default Summary for Create.
func NewCache[S any](store *storage.BadgerStore, namespace string, zero func() S) (*Cache[S], error) {
	mem, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("terrain cache %q: %w", namespace, err)
	}
	return &Cache[S]{
		store:     store,
		mem:       mem,
		namespace: namespace,
		zero:      zero,
		dirty:     make(map[string]cacheEntry),
	}, nil
}

func (c *Cache[S]) memKey(pid ids.StableID, pos vec.Vec2) string {
	return fmt.Sprintf("%s|%d|%d,%d", c.namespace, pid, pos.X, pos.Y)
}

func (c *Cache[S]) storeKey(pid ids.StableID, pos vec.Vec2) []byte {
	return storage.Key(c.namespace, uint64(pid), pos.X, pos.Y)
}

// Load pulls the summary at (pid, pos) from persistent storage into the
// in-memory LRU. Returns ErrNotFound if nothing is persisted there.
func (c *Cache[S]) Load(pid ids.StableID, pos vec.Vec2) error {
	mk := c.memKey(pid, pos)
	if _, ok := c.mem.Get(mk); ok {
		return nil
	}
	raw, ok, err := c.store.Get(c.storeKey(pid, pos))
	if err != nil {
		return fmt.Errorf("terrain cache load %s: %w", mk, err)
	}
	if !ok {
		return ErrNotFound
	}
	s := c.zero()
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("terrain cache load %s: decode: %w", mk, err)
	}
	c.mem.Set(mk, &s, 1)
	c.mem.Wait()
	return nil
}

// Create inserts a fresh default summary at (pid, pos), marking it dirty.
func (c *Cache[S]) Create(pid ids.StableID, pos vec.Vec2) *S {
	s := c.zero()
	mk := c.memKey(pid, pos)
	c.mem.Set(mk, &s, 1)
	c.mem.Wait()
	c.dirty[mk] = cacheEntry{pid: pid, pos: pos}
	return &s
}

// Get returns the in-memory summary at (pid, pos), which must already be
// loaded or created.
func (c *Cache[S]) Get(pid ids.StableID, pos vec.Vec2) (*S, bool) {
	v, ok := c.mem.Get(c.memKey(pid, pos))
	if !ok {
		return nil, false
	}
	return v.(*S), true
}

// GetMut is Get's name in spec.md §4.4; Go pointers make the two identical.
func (c *Cache[S]) GetMut(pid ids.StableID, pos vec.Vec2) (*S, bool) {
	return c.Get(pid, pos)
}

// Touch marks (pid, pos) dirty — callers invoke this after mutating a
// summary obtained via Get so Flush knows to persist it.
func (c *Cache[S]) Touch(pid ids.StableID, pos vec.Vec2) {
	c.dirty[c.memKey(pid, pos)] = cacheEntry{pid: pid, pos: pos}
}

// Flush persists every dirty entry and clears the dirty set.
func (c *Cache[S]) Flush() error {
	for mk, e := range c.dirty {
		v, ok := c.mem.Get(mk)
		if !ok {
			continue
		}
		s := v.(*S)
		raw, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("terrain cache flush %s: encode: %w", mk, err)
		}
		if err := c.store.Set(c.storeKey(e.pid, e.pos), raw); err != nil {
			return fmt.Errorf("terrain cache flush %s: %w", mk, err)
		}
	}
	c.dirty = make(map[string]cacheEntry)
	return nil
}
