// Package verify answers authenticity queries by serial and batch number.
//
// The resolver only reads ledger snapshots. A miss is a normal result, not an
// error; errors are reserved for records the ledger holds in an
// inconsistent shape.
package verify

import (
	"fmt"

	"github.com/roach88/rxtrace/internal/ir"
	"github.com/roach88/rxtrace/internal/ledger"
)

// NotFoundMessage is returned for a serial and batch with no matching record.
const NotFoundMessage = "Drug not found. Please check the serial number and batch number."

// Record sources.
const (
	SourceDrugs     = "drugs"
	SourceInventory = "inventory"
)

// Snapshots is the read side of the ledger used for verification.
// *ledger.Ledger implements it.
type Snapshots interface {
	FindDrug(serial, batch string) (ir.Drug, bool)
	FindInventoryItem(serial, batch string) (ir.InventoryItem, bool)
	LatestShipment(drugID string) (ir.Shipment, bool)
}

// Result is the outcome of a verification query.
type Result struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Drug    *Verified `json:"drug,omitempty"`
}

// Verified summarises a found drug's provenance.
type Verified struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	SerialNumber      string           `json:"serialNumber"`
	BatchNumber       string           `json:"batchNumber"`
	ManufacturingDate string           `json:"manufacturingDate"`
	ExpiryDate        string           `json:"expiryDate"`
	CurrentStatus     ir.DrugStatus    `json:"currentStatus"`
	LastKnownLocation string           `json:"lastKnownLocation"`
	Path              []PathStep       `json:"path"`
	ShipmentDetails   *ShipmentSummary `json:"shipmentDetails,omitempty"`
	Source            string           `json:"source"`

	// Quantity is the on-hand stock; set only for inventory hits.
	Quantity *int64 `json:"quantity,omitempty"`
}

// PathStep is a custody entry as shown to a consumer.
type PathStep struct {
	Stage       ir.Stage `json:"stage"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
	Temperature string   `json:"temperature"`
	Customer    string   `json:"customer,omitempty"`
}

// ShipmentSummary describes the most recent shipment of the drug.
type ShipmentSummary struct {
	ID               string            `json:"id"`
	Destination      string            `json:"destination"`
	Quantity         int64             `json:"quantity"`
	Temperature      string            `json:"temperature"`
	ShipmentDate     string            `json:"shipmentDate"`
	ExpectedDelivery string            `json:"expectedDelivery,omitempty"`
	Status           ir.ShipmentStatus `json:"status"`
}

// Resolver looks drugs up by natural key.
type Resolver struct {
	snaps Snapshots
}

// NewResolver creates a resolver over the given snapshots.
func NewResolver(snaps Snapshots) *Resolver {
	return &Resolver{snaps: snaps}
}

// VerifyDrug looks the drug up in the drug collection first and in
// inventory second.
//
// When several shipments exist, ShipmentDetails describes the most recently
// created one. A record whose status is past Registered but whose path is
// empty fails with *ledger.MalformedPathError.
func (r *Resolver) VerifyDrug(serial, batch string) (Result, error) {
	if d, ok := r.snaps.FindDrug(serial, batch); ok {
		v, err := r.summarise(d, SourceDrugs)
		if err != nil {
			return Result{}, err
		}
		return Result{Success: true, Drug: v}, nil
	}

	if it, ok := r.snaps.FindInventoryItem(serial, batch); ok {
		v, err := r.summarise(it.Drug, SourceInventory)
		if err != nil {
			return Result{}, err
		}
		qty := it.Quantity
		v.Quantity = &qty
		return Result{Success: true, Drug: v}, nil
	}

	return Result{Success: false, Message: NotFoundMessage}, nil
}

func (r *Resolver) summarise(d ir.Drug, source string) (*Verified, error) {
	v := &Verified{
		ID:                d.ID,
		Name:              d.Name,
		Description:       d.Description,
		SerialNumber:      d.SerialNumber,
		BatchNumber:       d.BatchNumber,
		ManufacturingDate: d.ManufacturingDate,
		ExpiryDate:        d.ExpiryDate,
		CurrentStatus:     d.Status,
		Path:              make([]PathStep, 0, len(d.Path)),
		Source:            source,
	}

	last, ok := d.Path.Last()
	switch {
	case ok:
		v.LastKnownLocation = last.Location
	case d.Status != ir.StatusRegistered:
		return nil, fmt.Errorf("verify %s/%s: %w", d.SerialNumber, d.BatchNumber,
			&ledger.MalformedPathError{Kind: source, ID: d.ID})
	}

	for _, e := range d.Path {
		step := PathStep{Stage: e.Stage, Location: e.Location, Date: e.Date, Temperature: e.Temperature}
		if e.Buyer != nil {
			step.Customer = e.Buyer.Name
		}
		v.Path = append(v.Path, step)
	}

	if s, ok := r.snaps.LatestShipment(d.ID); ok {
		v.ShipmentDetails = &ShipmentSummary{
			ID:               s.ID,
			Destination:      s.Destination,
			Quantity:         s.Quantity,
			Temperature:      s.Temperature,
			ShipmentDate:     s.ShipmentDate,
			ExpectedDelivery: s.ExpectedDelivery,
			Status:           s.Status,
		}
	}
	return v, nil
}
