package ledger

import (
	"fmt"

	"github.com/roach88/rxtrace/internal/ir"
)

// The reconciler keeps one inventory row per drug such that
//
//	quantity == sum(delivered) - sum(sold)
//
// Both functions operate on an unpublished state owned by the caller.

// reconcileDelivery merges a delivered quantity into the drug's inventory
// row, creating the row from the drug's identity on first delivery. The row
// takes over the drug's current path and status.
func reconcileDelivery(next *state, drug ir.Drug, qty int64) error {
	if qty <= 0 {
		return invalid(fmt.Errorf("delivered quantity must be positive, got %d", qty))
	}

	item, ok := next.inventoryItem(drug.ID)
	if ok {
		item.Quantity += qty
	} else {
		item = ir.InventoryItem{Quantity: qty}
	}
	item.Drug = drug.Clone()

	next.putInventory(item)
	return nil
}

// reconcileSale decrements the row by the sold quantity and appends the
// Sold to Customer entry. The quantity never goes below zero.
func reconcileSale(next *state, item ir.InventoryItem, sale ir.Sale) (ir.InventoryItem, error) {
	if sale.Quantity > item.Quantity {
		return ir.InventoryItem{}, &InsufficientInventoryError{
			DrugID:    item.ID,
			Requested: sale.Quantity,
			Available: item.Quantity,
		}
	}
	last, ok := item.Path.Last()
	if !ok {
		return ir.InventoryItem{}, &MalformedPathError{Kind: "inventory", ID: item.ID}
	}

	entry := ir.NewSaleEntry(sale.Date, last.Temperature, ir.Buyer{Name: sale.CustomerName, ID: sale.CustomerID})
	item.Path = item.Path.Append(entry)
	item.Quantity -= sale.Quantity
	item.Status = ir.StatusSold

	next.putInventory(item)
	return item, nil
}
