package world

import (
	"fmt"

	"github.com/latticeworld/worldcore/internal/ids"
)

// ClientCreate adds a client session (spec.md §4.2 client_create).
func ClientCreate(f *Fragment, name string, chunkOffset [2]uint8) (ClientID, error) {
	w := f.WorldMut()
	cid, ok := w.Clients.Insert(*newClient(name, chunkOffset))
	if !ok {
		return 0, fmt.Errorf("client_create: id space exhausted")
	}
	w.Clients.AssignStable(cid)
	f.WithHooks(func(h *HookBus) { h.fireClientCreate(cid) })
	return cid, nil
}

// ClientCreateUnchecked is the save-loader variant of ClientCreate: forces
// the stable id known from disk instead of allocating a fresh one, and
// fires no hooks (spec.md §4.2 "an `*_unchecked` variant used by the save
// loader").
func ClientCreateUnchecked(f *Fragment, name string, chunkOffset [2]uint8, stableID ids.StableID) (ClientID, error) {
	w := f.WorldMut()
	cid, ok := w.Clients.Insert(*newClient(name, chunkOffset))
	if !ok {
		return 0, fmt.Errorf("client_create_unchecked: id space exhausted")
	}
	w.Clients.AssignStableValue(cid, stableID)
	return cid, nil
}

// ClientDestroy removes a client and cascades to its children in slot
// order: entities first, then inventories, then the client itself
// (spec.md §8 scenario 2).
func ClientDestroy(f *Fragment, cid ClientID) error {
	w := f.WorldMut()
	client, ok := w.Clients.Get(cid)
	if !ok {
		return fmt.Errorf("client_destroy: unknown client %d", cid)
	}

	entityIDs := sortedKeys(client.ChildEntities)
	for _, eid := range entityIDs {
		// Guard pattern: the child may already be gone if destruction was
		// re-entered recursively; skip silently (spec.md §3 Lifecycles).
		if _, ok := w.Entities.Get(eid); ok {
			_ = EntityDestroy(f, eid)
		}
	}

	invIDs := sortedKeys(client.ChildInventories)
	for _, iid := range invIDs {
		if _, ok := w.Inventories.Get(iid); ok {
			_ = InventoryDestroy(f, iid)
		}
	}

	w.Clients.Remove(cid)
	f.WithHooks(func(h *HookBus) { h.fireClientDestroy(cid) })
	return nil
}

// ClientSetPawn attaches an entity as the client's pawn, first performing
// entity_attach(eid, Client(cid)); on failure the client is untouched
// (spec.md §4.2 Client pawn).
func ClientSetPawn(f *Fragment, cid ClientID, eid EntityID) (*EntityID, error) {
	w := f.WorldMut()
	if _, ok := w.Clients.Get(cid); !ok {
		return nil, fmt.Errorf("client_set_pawn: unknown client %d", cid)
	}

	if _, err := EntityAttach(f, eid, EntityAttachment{Kind: EntityAttachClient, Client: cid}); err != nil {
		return nil, err
	}

	client, _ := w.Clients.GetMut(cid)
	old := client.Pawn
	eidCopy := eid
	client.Pawn = &eidCopy

	f.WithHooks(func(h *HookBus) { h.fireClientChangePawn(cid, old, &eidCopy) })
	return old, nil
}

// ClientClearPawn clears the client's pawn slot, returning the previous
// value if any.
func ClientClearPawn(f *Fragment, cid ClientID) (*EntityID, error) {
	w := f.WorldMut()
	client, ok := w.Clients.GetMut(cid)
	if !ok {
		return nil, fmt.Errorf("client_clear_pawn: unknown client %d", cid)
	}
	old := client.Pawn
	client.Pawn = nil
	f.WithHooks(func(h *HookBus) { h.fireClientChangePawn(cid, old, nil) })
	return old, nil
}

func sortedKeys[K ~uint32](m map[K]struct{}) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// Slot ids are allocated in ascending transient-id order; a simple
	// insertion sort keeps this dependency-free and is plenty fast for the
	// small child sets these tables carry.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
