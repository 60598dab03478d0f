package verify

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxtrace/internal/ir"
	"github.com/roach88/rxtrace/internal/ledger"
	"github.com/roach88/rxtrace/internal/store"
)

// fakeSnapshots serves fixed records for cases the ledger cannot produce.
type fakeSnapshots struct {
	drugs     []ir.Drug
	inventory []ir.InventoryItem
	shipments []ir.Shipment
}

func (f *fakeSnapshots) FindDrug(serial, batch string) (ir.Drug, bool) {
	for _, d := range f.drugs {
		if d.SerialNumber == serial && d.BatchNumber == batch {
			return d, true
		}
	}
	return ir.Drug{}, false
}

func (f *fakeSnapshots) FindInventoryItem(serial, batch string) (ir.InventoryItem, bool) {
	for _, it := range f.inventory {
		if it.SerialNumber == serial && it.BatchNumber == batch {
			return it, true
		}
	}
	return ir.InventoryItem{}, false
}

func (f *fakeSnapshots) LatestShipment(drugID string) (ir.Shipment, bool) {
	for i := len(f.shipments) - 1; i >= 0; i-- {
		if f.shipments[i].DrugID == drugID {
			return f.shipments[i], true
		}
	}
	return ir.Shipment{}, false
}

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "verify.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	l, err := ledger.Open(context.Background(), s,
		ledger.WithClock(ledger.NewFixedClock(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))),
		ledger.WithIDGenerator(ledger.NewSequenceGenerator("id")),
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return l
}

func addDrug(t *testing.T, l *ledger.Ledger, serial, batch string) ir.Drug {
	t.Helper()
	d, err := l.AddDrug(context.Background(), ir.Drug{
		Name:              "Ibuprofen 200mg",
		SerialNumber:      serial,
		BatchNumber:       batch,
		ManufacturingDate: "2023-11-01",
		ExpiryDate:        "2026-11-01",
	})
	require.NoError(t, err)
	return d
}

func ship(t *testing.T, l *ledger.Ledger, drugID, dest string, qty int64) ir.Shipment {
	t.Helper()
	s, err := l.AddShipment(context.Background(), ir.Shipment{
		DrugID:       drugID,
		Destination:  dest,
		Quantity:     qty,
		Temperature:  "5",
		ShipmentDate: "2024-01-01",
	})
	require.NoError(t, err)
	return s
}

func TestScenarios(t *testing.T) {
	l := newTestLedger(t)
	r := NewResolver(l)
	ctx := context.Background()

	// Scenario 1: registered drug verifies.
	d := addDrug(t, l, "SN1", "B1")
	res, err := r.VerifyDrug("SN1", "B1")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, ir.StatusRegistered, res.Drug.CurrentStatus)
	assert.Empty(t, res.Drug.LastKnownLocation)
	assert.Nil(t, res.Drug.ShipmentDetails)
	assert.Equal(t, SourceDrugs, res.Drug.Source)

	// Scenario 2: shipment puts the drug in transit.
	s := ship(t, l, d.ID, "DC-A", 100)
	res, err = r.VerifyDrug("SN1", "B1")
	require.NoError(t, err)
	assert.Equal(t, ir.StatusInTransit, res.Drug.CurrentStatus)
	assert.Equal(t, "Distribution Center - DC-A", res.Drug.LastKnownLocation)
	require.Len(t, res.Drug.Path, 1)
	assert.Equal(t, ir.StageDistribution, res.Drug.Path[0].Stage)
	require.NotNil(t, res.Drug.ShipmentDetails)
	assert.Equal(t, s.ID, res.Drug.ShipmentDetails.ID)
	assert.Equal(t, ir.ShipmentInTransit, res.Drug.ShipmentDetails.Status)

	// Scenario 3: delivery creates inventory.
	_, err = l.UpdateShipmentStatus(ctx, s.ID, ir.ShipmentDelivered)
	require.NoError(t, err)
	res, err = r.VerifyDrug("SN1", "B1")
	require.NoError(t, err)
	assert.Equal(t, ir.StatusAtRetailer, res.Drug.CurrentStatus)
	assert.Equal(t, "DC-A", res.Drug.LastKnownLocation)
	item, ok := l.InventoryItem(d.ID)
	require.True(t, ok)
	assert.Equal(t, int64(100), item.Quantity)

	// Scenario 4: sale.
	_, err = l.RecordSale(ctx, ir.Sale{
		DrugID: d.ID, Quantity: 30, CustomerName: "Alice", CustomerID: "C1", Date: "2024-02-01",
	})
	require.NoError(t, err)
	res, err = r.VerifyDrug("SN1", "B1")
	require.NoError(t, err)
	assert.Equal(t, ir.StatusSold, res.Drug.CurrentStatus)
	assert.Equal(t, "Retail Store", res.Drug.LastKnownLocation)
	last := res.Drug.Path[len(res.Drug.Path)-1]
	assert.Equal(t, ir.StageSold, last.Stage)
	assert.Equal(t, "Alice", last.Customer)

	// Scenario 5: unknown drug is a failed result, not an error.
	res, err = r.VerifyDrug("unknown", "unknown")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, NotFoundMessage, res.Message)
	assert.Nil(t, res.Drug)

	// Scenario 6: oversell is refused.
	_, err = l.RecordSale(ctx, ir.Sale{
		DrugID: d.ID, Quantity: 200, CustomerName: "Bob", CustomerID: "C2", Date: "2024-02-02",
	})
	assert.True(t, ledger.IsInsufficientInventory(err))
	item, _ = l.InventoryItem(d.ID)
	assert.Equal(t, int64(70), item.Quantity)
}

func TestVerifyDrug_MostRecentShipment(t *testing.T) {
	l := newTestLedger(t)
	r := NewResolver(l)

	d := addDrug(t, l, "SN1", "B1")
	ship(t, l, d.ID, "DC-A", 10)
	latest := ship(t, l, d.ID, "DC-B", 20)

	res, err := r.VerifyDrug("SN1", "B1")
	require.NoError(t, err)
	require.NotNil(t, res.Drug.ShipmentDetails)
	assert.Equal(t, latest.ID, res.Drug.ShipmentDetails.ID)
	assert.Equal(t, "DC-B", res.Drug.ShipmentDetails.Destination)
	assert.Equal(t, int64(20), res.Drug.ShipmentDetails.Quantity)
}

func TestVerifyDrug_Completeness(t *testing.T) {
	l := newTestLedger(t)
	r := NewResolver(l)

	addDrug(t, l, "SN1", "B1")
	addDrug(t, l, "SN2", "B1")

	tests := []struct {
		serial, batch string
		want          bool
	}{
		{"SN1", "B1", true},
		{"SN2", "B1", true},
		{"SN1", "B2", false},
		{"SN3", "B1", false},
		{"", "", false},
	}
	for _, tt := range tests {
		res, err := r.VerifyDrug(tt.serial, tt.batch)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Success, "%s/%s", tt.serial, tt.batch)
	}
}

func TestVerifyDrug_InventoryFallback(t *testing.T) {
	drug := ir.Drug{
		ID:           "d1",
		Name:         "Insulin",
		SerialNumber: "SN9",
		BatchNumber:  "B9",
		Status:       ir.StatusAtRetailer,
		Path:         ir.Path{ir.NewDeliveryEntry("Pharmacy 3", "2024-01-15", "4")},
	}
	r := NewResolver(&fakeSnapshots{
		inventory: []ir.InventoryItem{{Drug: drug, Quantity: 12}},
	})

	res, err := r.VerifyDrug("SN9", "B9")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, SourceInventory, res.Drug.Source)
	assert.Equal(t, "Pharmacy 3", res.Drug.LastKnownLocation)
	require.NotNil(t, res.Drug.Quantity)
	assert.Equal(t, int64(12), *res.Drug.Quantity)
}

func TestVerifyDrug_MalformedPath(t *testing.T) {
	r := NewResolver(&fakeSnapshots{
		drugs: []ir.Drug{{
			ID:           "d1",
			SerialNumber: "SN1",
			BatchNumber:  "B1",
			Status:       ir.StatusInTransit,
			Path:         ir.Path{},
		}},
	})

	_, err := r.VerifyDrug("SN1", "B1")
	require.Error(t, err)
	assert.True(t, ledger.IsMalformedPath(err))
}
