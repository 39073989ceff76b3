package world

import (
	"fmt"

	"github.com/latticeworld/worldcore/internal/ids"
	"github.com/latticeworld/worldcore/internal/vec"
)

// EntityCreate creates a stationary entity at pos (spec.md §4.2
// entity_create).
func EntityCreate(f *Fragment, pos vec.Vec3, anim uint16, appearance uint32) (EntityID, error) {
	w := f.WorldMut()
	eid, ok := w.Entities.Insert(*newEntity(pos, anim, appearance))
	if !ok {
		return 0, fmt.Errorf("entity_create: id space exhausted")
	}
	w.Entities.AssignStable(eid)
	f.WithHooks(func(h *HookBus) { h.fireEntityCreate(eid) })
	return eid, nil
}

// EntityCreateUnchecked is the save-loader variant: installs the entity at
// rest with the stable id known from disk, firing no hooks (spec.md §4.2).
func EntityCreateUnchecked(f *Fragment, pos vec.Vec3, anim uint16, appearance uint32, stableID ids.StableID) (EntityID, error) {
	w := f.WorldMut()
	eid, ok := w.Entities.Insert(*newEntity(pos, anim, appearance))
	if !ok {
		return 0, fmt.Errorf("entity_create_unchecked: id space exhausted")
	}
	w.Entities.AssignStableValue(eid, stableID)
	return eid, nil
}

// EntityDestroy removes an entity top-down: it detaches the entity from
// whatever parent held it, removes it and fires entity_destroy, then
// cascades to its child inventories.
func EntityDestroy(f *Fragment, eid EntityID) error {
	w := f.WorldMut()
	entity, ok := w.Entities.Get(eid)
	if !ok {
		return fmt.Errorf("entity_destroy: unknown entity %d", eid)
	}

	detachEntityFromParent(w, eid, entity.Attachment)

	w.Entities.Remove(eid)
	f.WithHooks(func(h *HookBus) { h.fireEntityDestroy(eid) })

	for _, iid := range sortedKeys(entity.ChildInventories) {
		if _, ok := w.Inventories.Get(iid); ok {
			_ = InventoryDestroy(f, iid)
		}
	}
	return nil
}

// EntityAttach changes an entity's attachment, validating the new parent
// and updating both parents' child sets (spec.md §4.2 Attachment ops).
func EntityAttach(f *Fragment, eid EntityID, target EntityAttachment) (EntityAttachment, error) {
	w := f.WorldMut()
	entity, ok := w.Entities.GetMut(eid)
	if !ok {
		return EntityAttachment{}, fmt.Errorf("entity_attach: unknown entity %d", eid)
	}

	old := entity.Attachment
	if attachmentsEqual(old, target) {
		return old, nil
	}

	if target.Kind == EntityAttachChunk {
		return EntityAttachment{}, fmt.Errorf("EntityAttachment::Chunk is not yet supported")
	}

	switch target.Kind {
	case EntityAttachClient:
		client, ok := w.Clients.GetMut(target.Client)
		if !ok {
			return EntityAttachment{}, fmt.Errorf("entity_attach: unknown client %d", target.Client)
		}
		client.ChildEntities[eid] = struct{}{}
	case EntityAttachWorld:
		// no parent set to update
	}

	detachEntityFromParent(w, eid, old)

	entity, _ = w.Entities.GetMut(eid)
	entity.Attachment = target
	return old, nil
}

// detachEntityFromParent removes eid from its previous parent's child set.
// NB: keep this in sync with client_clear_pawn — if eid is the client's
// pawn, the pawn slot must be cleared here too, or the client is left
// pointing at a freed entity (spec.md §3 invariant 3, Pawn subset of children).
// EntityAttachChunk never appears here in practice since entity_attach
// rejects that target kind (spec.md §9 Open Questions), but the switch
// stays exhaustive over the tagged variant for clarity.
func detachEntityFromParent(w *World, eid EntityID, attachment EntityAttachment) {
	if attachment.Kind == EntityAttachClient {
		if client, ok := w.Clients.GetMut(attachment.Client); ok {
			delete(client.ChildEntities, eid)
			if client.Pawn != nil && *client.Pawn == eid {
				client.Pawn = nil
			}
		}
	}
}

func attachmentsEqual(a, b EntityAttachment) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case EntityAttachChunk:
		return a.Chunk == b.Chunk
	case EntityAttachClient:
		return a.Client == b.Client
	default:
		return true
	}
}

// EntitySetMotion installs a new piecewise-linear motion on an entity —
// the write side of §4.5's HandleInput/PhysicsUpdate.
func EntitySetMotion(f *Fragment, eid EntityID, m Motion) error {
	w := f.WorldMut()
	entity, ok := w.Entities.GetMut(eid)
	if !ok {
		return fmt.Errorf("entity_set_motion: unknown entity %d", eid)
	}
	entity.Motion = m
	return nil
}
