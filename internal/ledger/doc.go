// Package ledger owns the drug, shipment and inventory collections and
// implements the custody operations over them.
//
// The four mutations are AddDrug, AddShipment, UpdateShipmentStatus and
// RecordSale. Each one either succeeds completely, with every touched
// collection and an event committed to the Persister in one transaction, or
// fails and leaves the ledger unchanged.
//
// Custody paths are append-only: an operation never edits or removes an
// existing entry. A drug's status moves Registered, InTransit, AtRetailer,
// Sold as it passes through the operations in that order.
//
// Inventory is reconciled on delivery and sale so that each row's quantity
// equals the delivered total minus the sold total for its drug.
package ledger
