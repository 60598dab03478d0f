package ledger

import "github.com/roach88/rxtrace/internal/ir"

// Accessors return deep copies. Callers may modify the results freely
// without affecting the ledger. Lookup arguments are NFC-normalized like
// the stored records.

// Drugs returns all drugs in registration order.
func (l *Ledger) Drugs() []ir.Drug {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.st.drugs, ir.Drug.Clone)
}

// Drug returns the drug with the given id.
func (l *Ledger) Drug(id string) (ir.Drug, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.st.drug(ir.NormalizeText(id))
	return d.Clone(), ok
}

// FindDrug looks a drug up by its natural key.
func (l *Ledger) FindDrug(serial, batch string) (ir.Drug, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.st.drugByKey[naturalKey(serial, batch)]
	if !ok {
		return ir.Drug{}, false
	}
	return l.st.drugs[i].Clone(), true
}

// Shipments returns all shipments in creation order.
func (l *Ledger) Shipments() []ir.Shipment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.st.shipments, ir.Shipment.Clone)
}

// Shipment returns the shipment with the given id.
func (l *Ledger) Shipment(id string) (ir.Shipment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.st.shipment(ir.NormalizeText(id))
	return s.Clone(), ok
}

// ShipmentsForDrug returns the drug's shipments in creation order.
func (l *Ledger) ShipmentsForDrug(drugID string) []ir.Shipment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.st.shipsByDrug[ir.NormalizeText(drugID)]
	out := make([]ir.Shipment, len(idx))
	for i, j := range idx {
		out[i] = l.st.shipments[j].Clone()
	}
	return out
}

// LatestShipment returns the most recently created shipment for the drug.
func (l *Ledger) LatestShipment(drugID string) (ir.Shipment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.st.shipsByDrug[ir.NormalizeText(drugID)]
	if len(idx) == 0 {
		return ir.Shipment{}, false
	}
	return l.st.shipments[idx[len(idx)-1]].Clone(), true
}

// Inventory returns all inventory rows in creation order.
func (l *Ledger) Inventory() []ir.InventoryItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.st.inventory, ir.InventoryItem.Clone)
}

// InventoryItem returns the inventory row for a drug id.
func (l *Ledger) InventoryItem(drugID string) (ir.InventoryItem, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	it, ok := l.st.inventoryItem(ir.NormalizeText(drugID))
	return it.Clone(), ok
}

// FindInventoryItem looks an inventory row up by its natural key.
func (l *Ledger) FindInventoryItem(serial, batch string) (ir.InventoryItem, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.st.invByKey[naturalKey(serial, batch)]
	if !ok {
		return ir.InventoryItem{}, false
	}
	return l.st.inventory[i].Clone(), true
}

// naturalKey builds an index key from caller-supplied text.
func naturalKey(serial, batch string) ir.NaturalKey {
	return ir.NaturalKey{Serial: ir.NormalizeText(serial), Batch: ir.NormalizeText(batch)}
}

func cloneAll[T any](records []T, clone func(T) T) []T {
	out := make([]T, len(records))
	for i, r := range records {
		out[i] = clone(r)
	}
	return out
}
