package ledger

import (
	"context"
	"fmt"

	"github.com/roach88/rxtrace/internal/ir"
)

// Event op names recorded in the store's event log.
const (
	OpAddDrug        = "add_drug"
	OpAddShipment    = "add_shipment"
	OpUpdateShipment = "update_shipment_status"
	OpRecordSale     = "record_sale"
)

// AddDrug registers a new drug.
//
// An empty ID is replaced with a generated one. Status and path supplied by
// the caller are ignored: every drug starts Registered with an empty path.
// A duplicate id or (serialNumber, batchNumber) fails with ErrDuplicate.
func (l *Ledger) AddDrug(ctx context.Context, d ir.Drug) (ir.Drug, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	d = d.Normalized()
	d.Status = ir.StatusRegistered
	d.Path = ir.Path{}
	if err := d.ValidateIdentity(); err != nil {
		return ir.Drug{}, fmt.Errorf("%s: %w", OpAddDrug, invalid(err))
	}
	if d.ID == "" {
		d.ID = l.ids.Generate()
	}

	if _, ok := l.st.drugByID[d.ID]; ok {
		return ir.Drug{}, fmt.Errorf("%s: %w: drug id %q", OpAddDrug, ErrDuplicate, d.ID)
	}
	if _, ok := l.st.drugByKey[d.Key()]; ok {
		return ir.Drug{}, fmt.Errorf("%s: %w: serial %q batch %q",
			OpAddDrug, ErrDuplicate, d.SerialNumber, d.BatchNumber)
	}

	next := l.st.clone()
	next.putDrug(d)

	err := l.commit(ctx, next, mutation{
		op:          OpAddDrug,
		drugID:      d.ID,
		payload:     d.Canonical(),
		collections: []string{ir.CollectionDrugs},
	})
	if err != nil {
		return ir.Drug{}, err
	}
	return d.Clone(), nil
}

// AddShipment dispatches a shipment of an existing drug.
//
// The shipment path starts from s.Path when the caller supplies one (it must
// extend the drug's current path) and from the drug's path otherwise. One
// Distribution entry is appended. The shipment is stored In Transit and the
// drug moves to InTransit carrying the extended path.
func (l *Ledger) AddShipment(ctx context.Context, s ir.Shipment) (ir.Shipment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s = s.Normalized()
	if err := s.ValidateRequest(); err != nil {
		return ir.Shipment{}, fmt.Errorf("%s: %w", OpAddShipment, invalid(err))
	}

	drug, ok := l.st.drug(s.DrugID)
	if !ok {
		return ir.Shipment{}, fmt.Errorf("%s: %w", OpAddShipment, &NotFoundError{Kind: "drug", ID: s.DrugID})
	}

	if s.ID == "" {
		s.ID = l.ids.Generate()
	}
	if _, ok := l.st.shipmentByID[s.ID]; ok {
		return ir.Shipment{}, fmt.Errorf("%s: %w: shipment id %q", OpAddShipment, ErrDuplicate, s.ID)
	}

	base := drug.Path
	if len(s.Path) > 0 {
		if !s.Path.HasPrefix(drug.Path) {
			return ir.Shipment{}, fmt.Errorf("%s: %w", OpAddShipment,
				invalid(fmt.Errorf("path does not extend the custody path of drug %q", drug.ID)))
		}
		base = s.Path
	}

	s.Path = base.Append(ir.NewDistributionEntry(s.Destination, s.ShipmentDate, s.Temperature))
	s.Status = ir.ShipmentInTransit

	drug.Path = s.Path.Clone()
	drug.Status = ir.StatusInTransit

	next := l.st.clone()
	next.putShipment(s)
	next.putDrug(drug)

	err := l.commit(ctx, next, mutation{
		op:          OpAddShipment,
		drugID:      drug.ID,
		shipmentID:  s.ID,
		payload:     s.Canonical(),
		collections: []string{ir.CollectionDrugs, ir.CollectionShipments},
	})
	if err != nil {
		return ir.Shipment{}, err
	}
	return s.Clone(), nil
}

// UpdateShipmentStatus marks a shipment delivered to its retailer.
//
// Only Delivered is accepted, and only for a shipment that is In Transit, so
// a delivery can never be counted into inventory twice. The Delivered to
// Retailer entry is dated from the ledger clock and appended to both the
// shipment and the drug path. The drug moves to AtRetailer and the delivered
// quantity is reconciled into inventory.
func (l *Ledger) UpdateShipmentStatus(ctx context.Context, shipmentID string, status ir.ShipmentStatus) (ir.Shipment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	shipmentID = ir.NormalizeText(shipmentID)
	s, ok := l.st.shipment(shipmentID)
	if !ok {
		return ir.Shipment{}, fmt.Errorf("%s: %w", OpUpdateShipment, &NotFoundError{Kind: "shipment", ID: shipmentID})
	}
	if status != ir.ShipmentDelivered {
		return ir.Shipment{}, fmt.Errorf("%s: %w: unsupported status %q", OpUpdateShipment, ErrInvalidTransition, status)
	}
	if s.Status != ir.ShipmentInTransit {
		return ir.Shipment{}, fmt.Errorf("%s: %w: shipment %q is %s",
			OpUpdateShipment, ErrInvalidTransition, s.ID, s.Status)
	}

	drug, ok := l.st.drug(s.DrugID)
	if !ok {
		return ir.Shipment{}, fmt.Errorf("%s: %w", OpUpdateShipment, &NotFoundError{Kind: "drug", ID: s.DrugID})
	}

	entry := ir.NewDeliveryEntry(s.Destination, l.clock.Today(), s.Temperature)
	s.Path = s.Path.Append(entry)
	s.Status = ir.ShipmentDelivered

	drug.Path = drug.Path.Append(entry)
	drug.Status = ir.StatusAtRetailer

	next := l.st.clone()
	next.putShipment(s)
	next.putDrug(drug)
	if err := reconcileDelivery(next, drug, s.Quantity); err != nil {
		return ir.Shipment{}, fmt.Errorf("%s: %w", OpUpdateShipment, err)
	}

	err := l.commit(ctx, next, mutation{
		op:         OpUpdateShipment,
		drugID:     drug.ID,
		shipmentID: s.ID,
		payload: map[string]any{
			"shipmentId": s.ID,
			"status":     string(status),
			"quantity":   s.Quantity,
			"date":       entry.Date,
		},
		collections: []string{ir.CollectionDrugs, ir.CollectionShipments, ir.CollectionInventory},
	})
	if err != nil {
		return ir.Shipment{}, err
	}
	return s.Clone(), nil
}

// RecordSale records a retail sale against a drug's inventory row.
//
// The drug must be AtRetailer or Sold and the sale must not exceed the
// on-hand quantity. A Sold to Customer entry,
// carrying the temperature of the row's last entry, is appended to both the
// inventory and the drug path. The quantity is decremented and the drug
// moves to Sold. Returns the updated inventory row.
func (l *Ledger) RecordSale(ctx context.Context, sale ir.Sale) (ir.InventoryItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sale = sale.Normalized()
	if err := sale.Validate(); err != nil {
		return ir.InventoryItem{}, fmt.Errorf("%s: %w", OpRecordSale, invalid(err))
	}

	drug, ok := l.st.drug(sale.DrugID)
	if !ok {
		return ir.InventoryItem{}, fmt.Errorf("%s: %w", OpRecordSale, &NotFoundError{Kind: "drug", ID: sale.DrugID})
	}
	item, ok := l.st.inventoryItem(sale.DrugID)
	if !ok {
		return ir.InventoryItem{}, fmt.Errorf("%s: %w", OpRecordSale, &NotFoundError{Kind: "inventory", ID: sale.DrugID})
	}
	// Stock left from an earlier delivery cannot be sold while the drug is
	// back on the road.
	if drug.Status != ir.StatusAtRetailer && drug.Status != ir.StatusSold {
		return ir.InventoryItem{}, fmt.Errorf("%s: %w: drug %q is %s",
			OpRecordSale, ErrInvalidTransition, drug.ID, drug.Status)
	}
	if sale.ID == "" {
		sale.ID = l.ids.Generate()
	}

	next := l.st.clone()
	item, err := reconcileSale(next, item, sale)
	if err != nil {
		return ir.InventoryItem{}, fmt.Errorf("%s: %w", OpRecordSale, err)
	}

	last, _ := item.Path.Last()
	drug.Path = drug.Path.Append(last)
	drug.Status = ir.StatusSold
	next.putDrug(drug)

	err = l.commit(ctx, next, mutation{
		op:          OpRecordSale,
		drugID:      drug.ID,
		payload:     sale.Canonical(),
		collections: []string{ir.CollectionDrugs, ir.CollectionInventory},
	})
	if err != nil {
		return ir.InventoryItem{}, err
	}
	return item.Clone(), nil
}
