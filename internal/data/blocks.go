// Package data holds the static tables the simulation core treats as an
// external collaborator (spec.md §1: "Static data loaders... referenced
// only by the interfaces they present to the core"). It is adapted from
// the teacher's internal/world/block registry (registry.go/loader.go),
// generalized from a hardcoded Go-constant block list to the name<->id
// JSON tables the generator's block_id!/template_id! macros assume
// (_examples/original_source/server/terrain_gen/forest/provider.rs).
package data

import (
	"encoding/json"
	"fmt"
	"os"
)

// BlockID is the wire/storage representation of a block type.
type BlockID uint16

// BlockTable is a bidirectional name<->id table loaded from the
// block-data JSON file named on the command line (spec.md §6).
type BlockTable struct {
	byName map[string]BlockID
	byID   map[BlockID]string
}

type blockSpec struct {
	ID   uint16 `json:"id"`
	Name string `json:"name"`
}

// LoadBlockTable reads the JSON array of {id, name} entries.
func LoadBlockTable(path string) (*BlockTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read block data: %w", err)
	}
	var specs []blockSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("parse block data %s: %w", path, err)
	}

	t := &BlockTable{
		byName: make(map[string]BlockID, len(specs)),
		byID:   make(map[BlockID]string, len(specs)),
	}
	for _, s := range specs {
		id := BlockID(s.ID)
		if _, dup := t.byID[id]; dup {
			return nil, fmt.Errorf("duplicate block id %d (%s)", s.ID, s.Name)
		}
		t.byName[s.Name] = id
		t.byID[id] = s.Name
	}
	return t, nil
}

// GetID resolves a block name to its id. Unknown names resolve to the
// reserved "missing" block rather than failing the whole generation pass —
// a single unrecognized name (e.g. a cave-key combination the data file
// forgot) must not take down chunk generation.
func (t *BlockTable) GetID(name string) BlockID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	return MissingBlockID
}

// Name resolves an id back to its registered name, if any.
func (t *BlockTable) Name(id BlockID) (string, bool) {
	name, ok := t.byID[id]
	return name, ok
}

// MissingBlockID is substituted whenever generation asks for a name the
// data file never defined.
const MissingBlockID BlockID = 0xFFFF
