package model

import (
	"slices"
	"sync"
)

// ItemCount is one inventory entry.
type ItemCount struct {
	ItemID string
	Count  int32
}

// Inventory is a side's consumable stock, keyed by item definition ID.
// Entries keep insertion order; an entry is dropped when its count hits 0.
//
// Thread-safe: simulations may read inventories for reporting while a
// battle goroutine consumes from them.
type Inventory struct {
	mu      sync.RWMutex
	entries []ItemCount
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{}
}

// TryConsume removes qty of an item if the stock can supply it.
// Returns false and changes nothing otherwise.
func (inv *Inventory) TryConsume(itemID string, qty int32) bool {
	if itemID == "" || qty <= 0 {
		return false
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	i := inv.indexLocked(itemID)
	if i < 0 || inv.entries[i].Count < qty {
		return false
	}
	inv.entries[i].Count -= qty
	if inv.entries[i].Count == 0 {
		inv.entries = slices.Delete(inv.entries, i, i+1)
	}
	return true
}

// Add stocks qty of an item. Non-positive quantities are ignored.
func (inv *Inventory) Add(itemID string, qty int32) {
	if itemID == "" || qty <= 0 {
		return
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if i := inv.indexLocked(itemID); i >= 0 {
		inv.entries[i].Count += qty
		return
	}
	inv.entries = append(inv.entries, ItemCount{ItemID: itemID, Count: qty})
}

// Count returns the stock of an item.
func (inv *Inventory) Count(itemID string) int32 {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	if i := inv.indexLocked(itemID); i >= 0 {
		return inv.entries[i].Count
	}
	return 0
}

// Items returns a copy of all entries in insertion order.
func (inv *Inventory) Items() []ItemCount {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return slices.Clone(inv.entries)
}

// indexLocked must be called with mu held.
func (inv *Inventory) indexLocked(itemID string) int {
	return slices.IndexFunc(inv.entries, func(e ItemCount) bool { return e.ItemID == itemID })
}
