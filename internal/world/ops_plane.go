package world

import "fmt"

// PlaneCreate registers an additional plane beyond the two well-known
// ones seeded by NewWorld. The distilled spec only names LIMBO and
// FOREST, but nothing forbids a deployment from adding more — the op
// exists so a future biome or instance plane has a creation path, mirroring
// client_create/entity_create's shape.
func PlaneCreate(f *Fragment, name string, seed int64) (PlaneID, error) {
	w := f.WorldMut()
	pid, ok := w.Planes.Insert(Plane{Name: name, Seed: seed})
	if !ok {
		return 0, fmt.Errorf("plane_create: id space exhausted")
	}
	w.Planes.AssignStable(pid)
	return pid, nil
}

// PlaneStable resolves a plane's stable id.
func PlaneStable(w *World, pid PlaneID) (StablePlaneID, error) {
	sid, ok := w.Planes.StableOf(pid)
	if !ok {
		return 0, fmt.Errorf("plane_stable: unknown plane %d", pid)
	}
	return sid, nil
}
