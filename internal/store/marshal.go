package store

import (
	"context"

	"github.com/roach88/rxtrace/internal/ir"
)

// LoadDrugs loads and decodes the drug collection.
func (s *Store) LoadDrugs(ctx context.Context) ([]ir.Drug, error) {
	return loadCollection(ctx, s, ir.CollectionDrugs, ir.UnmarshalDrugs)
}

// LoadShipments loads and decodes the shipment collection.
func (s *Store) LoadShipments(ctx context.Context) ([]ir.Shipment, error) {
	return loadCollection(ctx, s, ir.CollectionShipments, ir.UnmarshalShipments)
}

// LoadInventory loads and decodes the inventory collection.
func (s *Store) LoadInventory(ctx context.Context) ([]ir.InventoryItem, error) {
	return loadCollection(ctx, s, ir.CollectionInventory, ir.UnmarshalInventory)
}

// SaveDrugs replaces the persisted drug collection.
func (s *Store) SaveDrugs(ctx context.Context, drugs []ir.Drug) error {
	b := NewBatch()
	if err := b.PutDrugs(drugs); err != nil {
		return err
	}
	return s.Commit(ctx, b)
}

// SaveShipments replaces the persisted shipment collection.
func (s *Store) SaveShipments(ctx context.Context, shipments []ir.Shipment) error {
	b := NewBatch()
	if err := b.PutShipments(shipments); err != nil {
		return err
	}
	return s.Commit(ctx, b)
}

// SaveInventory replaces the persisted inventory collection.
func (s *Store) SaveInventory(ctx context.Context, items []ir.InventoryItem) error {
	b := NewBatch()
	if err := b.PutInventory(items); err != nil {
		return err
	}
	return s.Commit(ctx, b)
}

// loadCollection decodes a blob; corrupt data is a PersistenceError.
func loadCollection[T any](ctx context.Context, s *Store, name string, decode func([]byte) ([]T, error)) ([]T, error) {
	data, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	records, err := decode(data)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Collection: name, Err: err}
	}
	return records, nil
}
