package data

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/latticeworld/worldcore/internal/vec"
)

// TemplateID identifies a structure template (spec.md §3's StructureTemplate).
type TemplateID uint32

// TemplateDef is the static shape of a structure: its footprint size and
// the per-layer block ids that structure_check_placement and shape_at
// consult (ops.rs shape_at / Structure::bounds).
type TemplateDef struct {
	ID     TemplateID
	Name   string
	Size   vec.Vec3 // footprint in blocks
	Shape  []BlockID // len == Size.X*Size.Y*Size.Z, layout z-major then y then x
	Layer  uint8     // collision layer, see ops.rs check_structure_layer semantics
}

// TemplateTable resolves template names/ids to their static definitions.
type TemplateTable struct {
	byName map[string]TemplateID
	byID   map[TemplateID]*TemplateDef
}

type templateSpec struct {
	ID    uint32   `json:"id"`
	Name  string   `json:"name"`
	Size  [3]int   `json:"size"`
	Shape []uint16 `json:"shape"`
	Layer uint8    `json:"layer"`
}

// LoadTemplateTable reads the JSON array of template definitions.
func LoadTemplateTable(path string) (*TemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template data: %w", err)
	}
	var specs []templateSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("parse template data %s: %w", path, err)
	}

	t := &TemplateTable{
		byName: make(map[string]TemplateID, len(specs)),
		byID:   make(map[TemplateID]*TemplateDef, len(specs)),
	}
	for _, s := range specs {
		size := vec.Vec3{X: s.Size[0], Y: s.Size[1], Z: s.Size[2]}
		want := size.X * size.Y * size.Z
		if len(s.Shape) != want {
			return nil, fmt.Errorf("template %s: shape has %d entries, want %d for size %v", s.Name, len(s.Shape), want, size)
		}
		shape := make([]BlockID, len(s.Shape))
		for i, v := range s.Shape {
			shape[i] = BlockID(v)
		}
		id := TemplateID(s.ID)
		if _, dup := t.byID[id]; dup {
			return nil, fmt.Errorf("duplicate template id %d (%s)", s.ID, s.Name)
		}
		def := &TemplateDef{ID: id, Name: s.Name, Size: size, Shape: shape, Layer: s.Layer}
		t.byName[s.Name] = id
		t.byID[id] = def
	}
	return t, nil
}

// GetID resolves a template name to its id, or (0, false) if undefined —
// unlike block lookups a missing template is a caller bug (placement code
// picks templates from a closed set it authored), so it is reported rather
// than silently substituted.
func (t *TemplateTable) GetID(name string) (TemplateID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Def returns the full definition for a template id.
func (t *TemplateTable) Def(id TemplateID) (*TemplateDef, bool) {
	d, ok := t.byID[id]
	return d, ok
}

// ShapeAt returns the block id occupying local offset off within the
// template, or MissingBlockID if off is out of bounds. Grounded on
// ops.rs's shape_at used by structure_check_placement.
func (d *TemplateDef) ShapeAt(off vec.Vec3) BlockID {
	if off.X < 0 || off.Y < 0 || off.Z < 0 ||
		off.X >= d.Size.X || off.Y >= d.Size.Y || off.Z >= d.Size.Z {
		return MissingBlockID
	}
	idx := (off.Z*d.Size.Y+off.Y)*d.Size.X + off.X
	return d.Shape[idx]
}
