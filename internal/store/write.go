package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/rxtrace/internal/ir"
)

// Event is one committed ledger mutation.
type Event struct {
	Seq        int64  `json:"seq"`
	ID         string `json:"id"`
	Op         string `json:"op"`
	Subject    string `json:"subject"` // drug id the mutation is about
	Payload    string `json:"payload"` // canonical JSON of the operation input
	RecordedOn string `json:"recorded_on"`
}

// Batch collects everything one ledger operation writes.
// Collections not set on the batch are left untouched by Commit.
type Batch struct {
	blobs map[string][]byte
	event *Event
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{blobs: make(map[string][]byte)}
}

// PutDrugs stages the full drug collection.
func (b *Batch) PutDrugs(drugs []ir.Drug) error {
	data, err := ir.MarshalDrugs(drugs)
	if err != nil {
		return &PersistenceError{Op: "save", Collection: ir.CollectionDrugs, Err: err}
	}
	b.blobs[ir.CollectionDrugs] = data
	return nil
}

// PutShipments stages the full shipment collection.
func (b *Batch) PutShipments(shipments []ir.Shipment) error {
	data, err := ir.MarshalShipments(shipments)
	if err != nil {
		return &PersistenceError{Op: "save", Collection: ir.CollectionShipments, Err: err}
	}
	b.blobs[ir.CollectionShipments] = data
	return nil
}

// PutInventory stages the full inventory collection.
func (b *Batch) PutInventory(items []ir.InventoryItem) error {
	data, err := ir.MarshalInventory(items)
	if err != nil {
		return &PersistenceError{Op: "save", Collection: ir.CollectionInventory, Err: err}
	}
	b.blobs[ir.CollectionInventory] = data
	return nil
}

// Record attaches the event describing the operation.
func (b *Batch) Record(ev Event) {
	b.event = &ev
}

// Collections returns the staged collection names in sorted order.
func (b *Batch) Collections() []string {
	names := make([]string, 0, len(b.blobs))
	for name := range b.blobs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Save replaces one persisted collection with data.
// data must already be the canonical encoding of the collection.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	b := NewBatch()
	b.blobs[name] = data
	return s.Commit(ctx, b)
}

// Commit writes every staged collection and the event in a single
// transaction. Either all of it becomes durable or none of it does.
func (s *Store) Commit(ctx context.Context, b *Batch) error {
	for name := range b.blobs {
		if !slices.Contains(ir.Collections, name) {
			return &PersistenceError{Op: "commit", Collection: name, Err: ErrUnknownCollection}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "commit", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if b.event != nil {
		seq = b.event.Seq
	}

	for _, name := range b.Collections() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collections (name, data, seq)
			VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET data = excluded.data, seq = excluded.seq
		`, name, string(b.blobs[name]), seq)
		if err != nil {
			return &PersistenceError{Op: "save", Collection: name, Err: err}
		}
	}

	if ev := b.event; ev != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (seq, id, op, subject, payload, recorded_on)
			VALUES (?, ?, ?, ?, ?, ?)
		`, ev.Seq, ev.ID, ev.Op, ev.Subject, ev.Payload, ev.RecordedOn)
		if err != nil {
			return &PersistenceError{Op: "commit", Err: fmt.Errorf("write event: %w", err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "commit", Err: err}
	}
	return nil
}
