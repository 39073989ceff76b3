package world

import (
	"fmt"

	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/ids"
)

// InventoryCreate creates an empty, unattached inventory (spec.md §4.2).
func InventoryCreate(f *Fragment) (InventoryID, error) {
	w := f.WorldMut()
	iid, ok := w.Inventories.Insert(*newInventory())
	if !ok {
		return 0, fmt.Errorf("inventory_create: id space exhausted")
	}
	w.Inventories.AssignStable(iid)
	f.WithHooks(func(h *HookBus) { h.fireInventoryCreate(iid) })
	return iid, nil
}

// InventoryCreateUnchecked is the save-loader variant: installs an empty,
// unattached inventory under the stable id known from disk. The loader is
// responsible for calling InventoryAttach (or restoring Contents directly)
// afterward; no hooks fire (spec.md §4.2).
func InventoryCreateUnchecked(f *Fragment, stableID ids.StableID) (InventoryID, error) {
	w := f.WorldMut()
	iid, ok := w.Inventories.Insert(*newInventory())
	if !ok {
		return 0, fmt.Errorf("inventory_create_unchecked: id space exhausted")
	}
	w.Inventories.AssignStableValue(iid, stableID)
	return iid, nil
}

// InventoryDestroy removes an inventory and detaches it from its parent's
// child set.
func InventoryDestroy(f *Fragment, iid InventoryID) error {
	w := f.WorldMut()
	inv, ok := w.Inventories.Get(iid)
	if !ok {
		return fmt.Errorf("inventory_destroy: unknown inventory %d", iid)
	}

	switch inv.Attachment.Kind {
	case InventoryAttachClient:
		if c, ok := w.Clients.GetMut(inv.Attachment.Client); ok {
			delete(c.ChildInventories, iid)
		}
	case InventoryAttachEntity:
		if e, ok := w.Entities.GetMut(inv.Attachment.Entity); ok {
			delete(e.ChildInventories, iid)
		}
	case InventoryAttachStructure:
		if s, ok := w.Structures.GetMut(inv.Attachment.Structure); ok {
			delete(s.ChildInventories, iid)
		}
	}

	w.Inventories.Remove(iid)
	f.WithHooks(func(h *HookBus) { h.fireInventoryDestroy(iid) })
	return nil
}

// InventoryAttach changes an inventory's attachment, following the same
// validate/insert/remove/write sequence as entity_attach and
// structure_attach (spec.md §4.2 Attachment ops).
func InventoryAttach(f *Fragment, iid InventoryID, target InventoryAttachment) (InventoryAttachment, error) {
	w := f.WorldMut()
	inv, ok := w.Inventories.GetMut(iid)
	if !ok {
		return InventoryAttachment{}, fmt.Errorf("inventory_attach: unknown inventory %d", iid)
	}

	old := inv.Attachment
	if inventoryAttachmentsEqual(old, target) {
		return old, nil
	}

	switch target.Kind {
	case InventoryAttachClient:
		c, ok := w.Clients.GetMut(target.Client)
		if !ok {
			return InventoryAttachment{}, fmt.Errorf("inventory_attach: unknown client %d", target.Client)
		}
		c.ChildInventories[iid] = struct{}{}
	case InventoryAttachEntity:
		e, ok := w.Entities.GetMut(target.Entity)
		if !ok {
			return InventoryAttachment{}, fmt.Errorf("inventory_attach: unknown entity %d", target.Entity)
		}
		e.ChildInventories[iid] = struct{}{}
	case InventoryAttachStructure:
		s, ok := w.Structures.GetMut(target.Structure)
		if !ok {
			return InventoryAttachment{}, fmt.Errorf("inventory_attach: unknown structure %d", target.Structure)
		}
		s.ChildInventories[iid] = struct{}{}
	}

	switch old.Kind {
	case InventoryAttachClient:
		if c, ok := w.Clients.GetMut(old.Client); ok {
			delete(c.ChildInventories, iid)
		}
	case InventoryAttachEntity:
		if e, ok := w.Entities.GetMut(old.Entity); ok {
			delete(e.ChildInventories, iid)
		}
	case InventoryAttachStructure:
		if s, ok := w.Structures.GetMut(old.Structure); ok {
			delete(s.ChildInventories, iid)
		}
	}

	inv, _ = w.Inventories.GetMut(iid)
	inv.Attachment = target
	return old, nil
}

func inventoryAttachmentsEqual(a, b InventoryAttachment) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case InventoryAttachClient:
		return a.Client == b.Client
	case InventoryAttachEntity:
		return a.Entity == b.Entity
	case InventoryAttachStructure:
		return a.Structure == b.Structure
	default:
		return true
	}
}

// InventoryUpdate adjusts an item's saturating count, removing the entry
// entirely if it drops to zero (spec.md §4.2 Inventory update). Returns
// the new count.
func InventoryUpdate(f *Fragment, iid InventoryID, item data.ItemID, adjust int16) (uint8, error) {
	w := f.WorldMut()
	inv, ok := w.Inventories.GetMut(iid)
	if !ok {
		return 0, fmt.Errorf("inventory_update: unknown inventory %d", iid)
	}

	old := inv.Contents[item]
	newCount := saturateU8Add(old, adjust)

	_, existed := inv.Contents[item]
	if newCount == 0 {
		if existed {
			delete(inv.Contents, item)
		}
	} else {
		inv.Contents[item] = newCount
	}

	f.WithHooks(func(h *HookBus) { h.fireInventoryUpdate(iid, uint16(item), old, newCount) })
	return newCount, nil
}
