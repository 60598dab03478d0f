package ir

// DrugStatus is the custody state of a drug.
type DrugStatus string

const (
	StatusRegistered DrugStatus = "Registered"
	StatusInTransit  DrugStatus = "InTransit"
	StatusAtRetailer DrugStatus = "AtRetailer"
	StatusSold       DrugStatus = "Sold"
)

// Valid reports whether s is one of the known drug statuses.
func (s DrugStatus) Valid() bool {
	switch s {
	case StatusRegistered, StatusInTransit, StatusAtRetailer, StatusSold:
		return true
	}
	return false
}

// ShipmentStatus is the delivery state of a shipment.
type ShipmentStatus string

const (
	ShipmentInTransit ShipmentStatus = "In Transit"
	ShipmentDelivered ShipmentStatus = "Delivered"
)

// Valid reports whether s is one of the known shipment statuses.
func (s ShipmentStatus) Valid() bool {
	return s == ShipmentInTransit || s == ShipmentDelivered
}

// Stage tags a PathEntry with the life-cycle step it records.
type Stage string

const (
	StageManufacturing Stage = "Manufacturing"
	StageDistribution  Stage = "Distribution"
	StageDelivered     Stage = "Delivered to Retailer"
	StageSold          Stage = "Sold to Customer"
)

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageManufacturing, StageDistribution, StageDelivered, StageSold:
		return true
	}
	return false
}

// Collection names at the persistence boundary.
const (
	CollectionDrugs     = "drugs"
	CollectionShipments = "shipments"
	CollectionInventory = "inventory"
)

// Collections lists every persisted collection in load order.
var Collections = []string{CollectionDrugs, CollectionShipments, CollectionInventory}

// Buyer identifies the customer on a Sold to Customer entry.
type Buyer struct {
	Name string
	ID   string
}

// PathEntry is one custody event in a provenance path.
//
// The Stage field is the variant tag. Buyer is set iff Stage is StageSold;
// Validate enforces this. Entries are values and are never modified after
// being appended to a path.
type PathEntry struct {
	Stage       Stage
	Location    string
	Date        string
	Temperature string
	Buyer       *Buyer
}

// Path is an ordered, append-only custody history.
type Path []PathEntry

// Last returns the most recent entry and false when the path is empty.
func (p Path) Last() (PathEntry, bool) {
	if len(p) == 0 {
		return PathEntry{}, false
	}
	return p[len(p)-1], true
}

// Append returns a new path with e added. The receiver is not modified, so
// snapshots that share the old backing array never observe the new entry.
func (p Path) Append(e PathEntry) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, e.clone())
}

// Clone returns a deep copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return Path{}
	}
	out := make(Path, len(p))
	for i, e := range p {
		out[i] = e.clone()
	}
	return out
}

// HasPrefix reports whether prefix is an exact leading subsequence of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if !p[i].Equal(prefix[i]) {
			return false
		}
	}
	return true
}

func (e PathEntry) clone() PathEntry {
	if e.Buyer != nil {
		b := *e.Buyer
		e.Buyer = &b
	}
	return e
}

// Equal compares two entries field by field.
func (e PathEntry) Equal(o PathEntry) bool {
	if e.Stage != o.Stage || e.Location != o.Location || e.Date != o.Date || e.Temperature != o.Temperature {
		return false
	}
	if (e.Buyer == nil) != (o.Buyer == nil) {
		return false
	}
	return e.Buyer == nil || *e.Buyer == *o.Buyer
}

// Drug is a registered product unit identified by serial and batch number.
type Drug struct {
	ID                string
	Name              string
	Description       string
	SerialNumber      string
	BatchNumber       string
	ManufacturingDate string
	ExpiryDate        string
	Status            DrugStatus
	Path              Path
}

// Key returns the natural key of the drug.
func (d Drug) Key() NaturalKey {
	return NaturalKey{Serial: d.SerialNumber, Batch: d.BatchNumber}
}

// Clone returns a deep copy of d.
func (d Drug) Clone() Drug {
	d.Path = d.Path.Clone()
	return d
}

// NaturalKey is the external (serialNumber, batchNumber) identity.
type NaturalKey struct {
	Serial string
	Batch  string
}

// Shipment moves a quantity of one drug from a distributor to a retailer.
type Shipment struct {
	ID               string
	DrugID           string
	Destination      string
	Quantity         int64
	Temperature      string
	ShipmentDate     string
	ExpectedDelivery string
	Status           ShipmentStatus
	Path             Path
}

// Clone returns a deep copy of s.
func (s Shipment) Clone() Shipment {
	s.Path = s.Path.Clone()
	return s
}

// InventoryItem is a retailer's stock row for one drug. ID is the drug id.
type InventoryItem struct {
	Drug
	Quantity int64
}

// Clone returns a deep copy of it.
func (it InventoryItem) Clone() InventoryItem {
	it.Drug = it.Drug.Clone()
	return it
}

// Sale is a retail sale. It is not persisted as its own collection; it is
// recorded as a Sold to Customer entry on the drug and inventory paths.
type Sale struct {
	ID           string
	DrugID       string
	Quantity     int64
	CustomerName string
	CustomerID   string
	Date         string
}
