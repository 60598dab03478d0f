package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/rxtrace/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDrug creates a registered drug with one manufacturing entry.
func createTestDrug(id, serial, batch string) ir.Drug {
	return ir.Drug{
		ID:                id,
		Name:              "Amoxicillin 500mg",
		SerialNumber:      serial,
		BatchNumber:       batch,
		ManufacturingDate: "2026-01-10",
		ExpiryDate:        "2028-01-10",
		Status:            ir.StatusRegistered,
		Path:              ir.Path{ir.NewManufacturingEntry("Plant A", "2026-01-10", "4")},
	}
}

// createTestEvent creates an event with minimal required fields.
func createTestEvent(seq int64, id, op, subject string) Event {
	return Event{
		Seq:        seq,
		ID:         id,
		Op:         op,
		Subject:    subject,
		Payload:    `{}`,
		RecordedOn: "2026-03-01",
	}
}
