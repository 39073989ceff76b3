// Package terrain implements the deterministic, seeded, chunked world
// generator built from LocalProperty passes, grounded on
// _examples/original_source/server/terrain_gen/forest/provider.rs and
// treasure.rs.
package terrain

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/ids"
	"github.com/latticeworld/worldcore/internal/storage"
	"github.com/latticeworld/worldcore/internal/vec"
)

// outsideKey is the cave_key value meaning "every surrounding vertex is
// outside the raised area" — provider.rs's OUTSIDE_KEY = 1+3+9+27.
const outsideKey = 1 + 1*3 + 1*3*3 + 1*3*3*3

// entrancePattern/entranceMask are the literal bit layouts from spec.md
// §6: a 4x3 window (columns x rows 2,1,0), two bits per cell, bit0 = "at
// or above cutoff", bit1 = "more than two below cutoff" (val+2 < cutoff).
const (
	entrancePattern = (0b_00_01_01_00 << 10) | (0b_00_00_00_00 << 0)
	entranceMask    = (0b_10_11_11_10 << 10) | (0b_11_11_11_11 << 0)
)

// Provider runs the forest-biome generation pipeline for one plane
// (spec.md §4.4), backed by two namespaced caches over the same
// persistent store.
type Provider struct {
	tables     *data.Tables
	rng        *rand.Rand
	cache      *Cache[ChunkSummary]
	superCache *Cache[SuperchunkSummary]
}

// NewProvider builds a Provider seeded from seed, loading/storing
// summaries through store.
func NewProvider(tables *data.Tables, store *storage.BadgerStore, seed int64) (*Provider, error) {
	cache, err := NewCache(store, "chunk", NewChunkSummary)
	if err != nil {
		return nil, err
	}
	superCache, err := NewCache(store, "superchunk", NewSuperchunkSummary)
	if err != nil {
		return nil, err
	}
	return &Provider{
		tables:     tables,
		rng:        rand.New(rand.NewSource(seed)),
		cache:      cache,
		superCache: superCache,
	}, nil
}

func (p *Provider) superHeightmap(pid ids.StableID, scpos vec.Vec2) ([]uint8, error) {
	if err := p.superCache.Load(pid, scpos); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		sh := NewSuperHeightmap(scpos, p.rng.Int63())
		if _, err := GenerateInto[SuperchunkSummary, *DscGrid](sh, p.superCache, pid, scpos); err != nil {
			return nil, err
		}
	}
	summ, ok := p.superCache.Get(pid, scpos)
	if !ok {
		return nil, fmt.Errorf("terrain: superchunk %v not present after generation", scpos)
	}
	return summ.DSLevels, nil
}

// superHeight is provider.rs's super_height: cpos == (0,0) is pinned to
// 98 regardless of what the superchunk grid would otherwise compute.
func (p *Provider) superHeight(pid ids.StableID, cpos vec.Vec2) (uint8, error) {
	if cpos.X == 0 && cpos.Y == 0 {
		return 98, nil
	}
	scpos := cpos.DivFloor(SuperchunkSize)
	base := scpos.Scale(SuperchunkSize)
	local := cpos.Sub(base)
	levels, err := p.superHeightmap(pid, scpos)
	if err != nil {
		return 0, err
	}
	span := SuperchunkSize + 1
	return levels[local.Y*span+local.X], nil
}

func (p *Provider) generateSummary(pid ids.StableID, cpos vec.Vec2) (*DscGrid, error) {
	hm := NewHeightmap(cpos, p.rng.Int63(), func(c vec.Vec2) (uint8, error) {
		return p.superHeight(pid, c)
	})
	heightGrid, err := GenerateInto[ChunkSummary, *DscGrid](hm, p.cache, pid, cpos)
	if err != nil {
		return nil, err
	}
	if hm.Err() != nil {
		return nil, hm.Err()
	}

	if _, err := GenerateInto[ChunkSummary, *DiskSampler](NewTrees(p.rng.Int63()), p.cache, pid, cpos); err != nil {
		return nil, err
	}

	for layer := uint8(0); layer < NumLayers; layer++ {
		cutoff := layer*2 + 100

		entrance := p.placeEntrance(heightGrid, cutoff)

		caves := NewCaves(rand.New(rand.NewSource(p.rng.Int63())), layer, cutoff, heightGrid, entrance)
		caveGrid, err := GenerateInto[ChunkSummary, *CellularGrid](caves, p.cache, pid, cpos)
		if err != nil {
			return nil, err
		}

		treasure := NewTreasure(rand.New(rand.NewSource(p.rng.Int63())), layer, caveGrid)
		if _, err := GenerateInto[ChunkSummary, *DiskSampler](treasure, p.cache, pid, cpos); err != nil {
			return nil, err
		}
	}

	return heightGrid, nil
}

// Generate runs the full forest pipeline for (pid, cpos) and materializes
// a GenChunk, per spec.md §4.4 step 5.
func (p *Provider) Generate(pid ids.StableID, cpos vec.Vec2) (*GenChunk, error) {
	if _, err := p.generateSummary(pid, cpos); err != nil {
		return nil, fmt.Errorf("generate summary at %v: %w", cpos, err)
	}

	summ, ok := p.cache.Get(pid, cpos)
	if !ok {
		return nil, fmt.Errorf("terrain: chunk %v not present after generation", cpos)
	}

	gc := NewGenChunk()
	blocks := p.tables.Blocks

	grassIDs := [4]data.BlockID{
		blocks.GetID("grass/center/v0"),
		blocks.GetID("grass/center/v1"),
		blocks.GetID("grass/center/v2"),
		blocks.GetID("grass/center/v3"),
	}
	for _, pos := range vec.NewRegion2(vec.Vec2{}, vec.Vec2{X: vec.ChunkSize, Y: vec.ChunkSize}).Points() {
		gc.SetBlock(vec.Extend(pos, 0), grassIDs[p.rng.Intn(len(grassIDs))])
	}

	for layer := uint8(0); layer < NumLayers; layer++ {
		floorType := "dirt"
		if layer == 0 {
			floorType = "grass"
		}
		layerZ := int(layer) * 2

		for _, pos := range vec.NewRegion2(vec.Vec2{}, vec.Vec2{X: vec.ChunkSize, Y: vec.ChunkSize}).Points() {
			caveKey, topKey := getCellKeys(summ, pos, layer)
			if caveKey == outsideKey {
				continue
			}
			gc.SetBlock(vec.Extend(pos, layerZ+0), blocks.GetID(fmt.Sprintf("cave/%d/z0/%s", caveKey, floorType)))
			gc.SetBlock(vec.Extend(pos, layerZ+1), blocks.GetID(fmt.Sprintf("cave/%d/z1", caveKey)))
			if layerZ+2 < vec.ChunkSize {
				gc.SetBlock(vec.Extend(pos, layerZ+2), blocks.GetID(fmt.Sprintf("cave_top/%d", topKey)))
			}
		}
	}

	p.placeTrees(gc, summ)
	p.placeTreasure(gc, summ)

	return gc, nil
}

func (p *Provider) placeTrees(gc *GenChunk, summ *ChunkSummary) {
	treeID, treeOK := p.tables.Templates.GetID("tree")
	rockID, rockOK := p.tables.Templates.GetID("rock")
	if !treeOK && !rockOK {
		return
	}
	gridBounds := vec.NewRegion2(vec.Vec2{}, vec.Vec2{X: vec.ChunkSize + 1, Y: vec.ChunkSize + 1})
	for _, pos := range summ.TreeOffsets {
		id, ok := treeID, treeOK
		if p.rng.Intn(3) >= 2 {
			id, ok = rockID, rockOK
		}
		if !ok {
			continue
		}
		height := summ.Heightmap[gridBounds.Min.X+pos.X+(gridBounds.Min.Y+pos.Y)*(vec.ChunkSize+1)]
		layer := 0
		if height >= 100 {
			layer = int(height-100)/2 + 1
		}
		gc.Structures = append(gc.Structures, GenStructure{Pos: vec.Extend(pos, layer*2), Template: id})
	}
}

func (p *Provider) placeTreasure(gc *GenChunk, summ *ChunkSummary) {
	var junkIDs []data.TemplateID
	for _, name := range []string{"cave_junk/0", "cave_junk/1", "cave_junk/2"} {
		if id, ok := p.tables.Templates.GetID(name); ok {
			junkIDs = append(junkIDs, id)
		}
	}
	if len(junkIDs) == 0 {
		return
	}
	for layer := uint8(0); layer < NumLayers; layer++ {
		layerZ := int(layer) * 2
		for _, pos := range summ.TreasureOffsets[layer] {
			id := junkIDs[p.rng.Intn(len(junkIDs))]
			gc.Structures = append(gc.Structures, GenStructure{Pos: vec.Extend(pos, layerZ), Template: id})
		}
	}
}

// placeEntrance pattern-matches the height grid against the §6 bit layout
// and picks one candidate uniformly at random, translating the match
// position back to the entrance's anchor (provider.rs's place_entrance).
func (p *Provider) placeEntrance(grid *DscGrid, cutoff uint8) []vec.Vec2 {
	candidates := findPattern(grid, cutoff, entrancePattern, entranceMask)
	if len(candidates) == 0 {
		return nil
	}
	pick := candidates[p.rng.Intn(len(candidates))]
	anchor := pick.Sub(vec.Vec2{X: 2, Y: 1})
	terrainLog.Debug("placing entrance at %v", anchor)
	return []vec.Vec2{anchor}
}

func cutoffFor(layer uint8) uint8 {
	return layer*2 + 100
}

// getVertexKey classifies one height-grid vertex: 1 = outside the raised
// area, 2 = inside but not a cave wall, 0 = a cave wall.
func getVertexKey(summ *ChunkSummary, pos vec.Vec2, layer uint8) uint8 {
	if summ.Heightmap[gridIndex(pos)] < cutoffFor(layer) {
		return 1
	}
	if !summ.CaveWallLayer(layer)[gridIndex(pos)] {
		return 2
	}
	return 0
}

// getCellKeys derives (cave_key, top_key) for one cell from its four
// surrounding vertices, in the MSB-first order (0,1),(1,1),(1,0),(0,0)
// (provider.rs's get_cell_keys).
func getCellKeys(summ *ChunkSummary, pos vec.Vec2, layer uint8) (uint8, uint8) {
	var accCave, accTop uint8
	for _, off := range [4]vec.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}} {
		val := getVertexKey(summ, pos.Add(off), layer)
		accCave = accCave*3 + val
		if val != 1 {
			accTop = accTop*2 + 1
		} else {
			accTop = accTop * 2
		}
	}
	return accCave, accTop
}

// findPattern slides a 4x3 window of 2-bit height-relation fields across
// grid, returning every position whose window matches bits under mask —
// a direct port of provider.rs's find_pattern.
func findPattern(grid *DscGrid, cutoff uint8, bits, mask uint32) []vec.Vec2 {
	base := vec.Vec2{X: vec.ChunkSize, Y: vec.ChunkSize}
	get := func(x, y int) uint32 {
		if y < 0 {
			return 0
		}
		val, ok := grid.GetValue(base.Add(vec.Vec2{X: x, Y: y}))
		if !ok {
			return 0
		}
		var above, below uint32
		if val >= cutoff {
			above = 1
		}
		if int(val)+2 < int(cutoff) {
			below = 1
		}
		return above | (below << 1)
	}

	var result []vec.Vec2
	for y := 0; y < vec.ChunkSize+1; y++ {
		var acc uint32
		for x := 0; x < vec.ChunkSize+1; x++ {
			acc <<= 2
			acc &^= (3 << 8) | (3 << 18) | (3 << 28)
			acc |= get(x, y-2) << 20
			acc |= get(x, y-1) << 10
			acc |= get(x, y-0) << 0

			if x >= 3 && y >= 1 && acc&mask == bits {
				result = append(result, vec.Vec2{X: x, Y: y})
			}
		}
	}
	return result
}
