package data

import "fmt"

// Tables bundles the three static lookup tables the core consults through
// its narrow read-only interface (spec.md §6). It is constructed once at
// startup and handed to the World, the terrain Provider, and the
// placement-check code by reference; nothing in internal/world or
// internal/terrain loads data files directly.
type Tables struct {
	Blocks    *BlockTable
	Templates *TemplateTable
	Items     *ItemTable
}

// Paths names the three data files on disk, mirroring how the teacher's
// cmd/server/main.go took a single "block data path" flag.
type Paths struct {
	Blocks    string
	Templates string
	Items     string
}

// Load reads all three tables, failing fast if any is malformed — a
// corrupt data file is a deployment error, not something the engine loop
// should try to run around.
func Load(p Paths) (*Tables, error) {
	blocks, err := LoadBlockTable(p.Blocks)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	templates, err := LoadTemplateTable(p.Templates)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	items, err := LoadItemTable(p.Items)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return &Tables{Blocks: blocks, Templates: templates, Items: items}, nil
}
