package terrain

import (
	"errors"

	"github.com/latticeworld/worldcore/internal/ids"
	"github.com/latticeworld/worldcore/internal/vec"
)

// LocalProperty is one pass of the forest pipeline (spec.md §4.4):
// a property declares a persisted Summary and a working Temporary, and
// runs init -> load(x8 neighbors) -> generate -> save.
type LocalProperty[S any, T any] interface {
	Init() T
	Load(tmp T, dir vec.Vec2, neighbor *S)
	Generate(tmp T)
	Save(tmp T, summary *S)
}

// GenerateInto runs prop's full init/load/generate/save cycle against
// cache at (pid, cpos), seeding the working grid's border from whichever
// of the 8 neighbor chunks have already been generated, and returns the
// working Temporary itself (not just the persisted Summary) — callers
// like Provider.generate still need it, e.g. to pattern-match entrances
// against the full-resolution height grid after Heightmap has run.
func GenerateInto[S any, T any](prop LocalProperty[S, T], cache *Cache[S], pid ids.StableID, cpos vec.Vec2) (T, error) {
	var zero T
	tmp := prop.Init()
	for _, dir := range eightDirs {
		npos := cpos.Add(dir)
		if err := cache.Load(pid, npos); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return zero, err
		}
		neighbor, ok := cache.Get(pid, npos)
		if !ok {
			continue
		}
		prop.Load(tmp, dir, neighbor)
	}

	prop.Generate(tmp)

	summary, ok := cache.Get(pid, cpos)
	if !ok {
		summary = cache.Create(pid, cpos)
	}
	prop.Save(tmp, summary)
	cache.Touch(pid, cpos)
	return tmp, nil
}
