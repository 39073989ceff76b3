package data

import (
	"encoding/json"
	"fmt"
	"os"
)

// ItemID identifies an inventory item type.
type ItemID uint16

// ItemTable is the name<->id table for inventory slot contents.
type ItemTable struct {
	byName map[string]ItemID
	byID   map[ItemID]string
}

type itemSpec struct {
	ID   uint16 `json:"id"`
	Name string `json:"name"`
}

// LoadItemTable reads the JSON array of {id, name} entries.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item data: %w", err)
	}
	var specs []itemSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("parse item data %s: %w", path, err)
	}

	t := &ItemTable{
		byName: make(map[string]ItemID, len(specs)),
		byID:   make(map[ItemID]string, len(specs)),
	}
	for _, s := range specs {
		id := ItemID(s.ID)
		if _, dup := t.byID[id]; dup {
			return nil, fmt.Errorf("duplicate item id %d (%s)", s.ID, s.Name)
		}
		t.byName[s.Name] = id
		t.byID[id] = s.Name
	}
	return t, nil
}

// GetID resolves an item name to its id, or (0, false) if undefined.
func (t *ItemTable) GetID(name string) (ItemID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Name resolves an id back to its registered name, if any.
func (t *ItemTable) Name(id ItemID) (string, bool) {
	name, ok := t.byID[id]
	return name, ok
}
