package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rxtrace/internal/ir"
	"github.com/roach88/rxtrace/internal/store"
)

var testDay = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// failingStore wraps a real store and fails commits on demand.
type failingStore struct {
	*store.Store
	fail bool
}

func (f *failingStore) Commit(ctx context.Context, b *store.Batch) error {
	if f.fail {
		return &store.PersistenceError{Op: "commit", Err: errors.New("disk full")}
	}
	return f.Store.Commit(ctx, b)
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testOptions() []Option {
	return []Option{
		WithClock(NewFixedClock(testDay)),
		WithIDGenerator(NewSequenceGenerator("id")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func openTestLedger(t *testing.T, p Persister) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), p, testOptions()...)
	require.NoError(t, err)
	return l
}

func newTestLedger(t *testing.T) (*Ledger, *store.Store) {
	t.Helper()
	s := openTestStore(t)
	return openTestLedger(t, s), s
}

func sampleDrug(serial, batch string) ir.Drug {
	return ir.Drug{
		Name:              "Paracetamol 500mg",
		Description:       "Analgesic tablets",
		SerialNumber:      serial,
		BatchNumber:       batch,
		ManufacturingDate: "2023-12-01",
		ExpiryDate:        "2025-12-01",
	}
}

func sampleShipment(drugID string, qty int64) ir.Shipment {
	return ir.Shipment{
		DrugID:           drugID,
		Destination:      "DC-A",
		Quantity:         qty,
		Temperature:      "5",
		ShipmentDate:     "2024-01-01",
		ExpectedDelivery: "2024-01-10",
	}
}

func sampleSale(drugID string, qty int64) ir.Sale {
	return ir.Sale{
		DrugID:       drugID,
		Quantity:     qty,
		CustomerName: "Alice",
		CustomerID:   "C1",
		Date:         "2024-02-01",
	}
}

// deliveredDrug registers a drug, ships qty and delivers it.
func deliveredDrug(t *testing.T, l *Ledger, serial string, qty int64) (ir.Drug, ir.Shipment) {
	t.Helper()
	ctx := context.Background()
	d, err := l.AddDrug(ctx, sampleDrug(serial, "B1"))
	require.NoError(t, err)
	s, err := l.AddShipment(ctx, sampleShipment(d.ID, qty))
	require.NoError(t, err)
	s, err = l.UpdateShipmentStatus(ctx, s.ID, ir.ShipmentDelivered)
	require.NoError(t, err)
	d, _ = l.Drug(d.ID)
	return d, s
}
