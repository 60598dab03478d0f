package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/rxtrace/internal/ir"
	"github.com/roach88/rxtrace/internal/store"
)

// Persister is the durable side of the ledger. *store.Store implements it.
type Persister interface {
	LoadDrugs(ctx context.Context) ([]ir.Drug, error)
	LoadShipments(ctx context.Context) ([]ir.Shipment, error)
	LoadInventory(ctx context.Context) ([]ir.InventoryItem, error)
	LastSeq(ctx context.Context) (int64, error)
	Commit(ctx context.Context, b *store.Batch) error
}

// Default report thresholds.
const (
	DefaultLowStockThreshold = 10
	DefaultNearExpiryDays    = 30
)

// Ledger is the authoritative owner of the drug, shipment and inventory
// collections.
//
// Thread-safety model:
//   - Mutations take the write lock for their whole duration, including
//     the persistence commit, so operations never interleave
//   - Accessors take the read lock and return deep copies
//
// A mutation that fails for any reason, including persistence, leaves the
// ledger exactly as it was.
type Ledger struct {
	mu        sync.RWMutex
	st        *state
	persister Persister
	clock     *Clock
	ids       IDGenerator
	logger    *slog.Logger

	lowStock   int64
	nearExpiry int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used for event seq and entry dates.
func WithClock(c *Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// WithIDGenerator sets the generator for record and event ids.
//
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(l *Ledger) {
		l.ids = g
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithThresholds sets the inventory report thresholds.
func WithThresholds(lowStock int64, nearExpiryDays int) Option {
	return func(l *Ledger) {
		l.lowStock = lowStock
		l.nearExpiry = nearExpiryDays
	}
}

// Open loads all three collections from p and builds the indexes.
//
// The clock is advanced to the last persisted event seq so new events
// continue the log.
func Open(ctx context.Context, p Persister, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		persister:  p,
		clock:      NewClock(),
		ids:        UUIDv7Generator{},
		logger:     slog.Default(),
		lowStock:   DefaultLowStockThreshold,
		nearExpiry: DefaultNearExpiryDays,
	}
	for _, opt := range opts {
		opt(l)
	}

	drugs, err := p.LoadDrugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	shipments, err := p.LoadShipments(ctx)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	inventory, err := p.LoadInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	seq, err := p.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	l.clock.resumeAt(seq)

	l.st = newState(drugs, shipments, inventory)
	l.logger.Debug("ledger opened",
		"drugs", len(drugs),
		"shipments", len(shipments),
		"inventory", len(inventory),
		"seq", seq)
	return l, nil
}

// Clock returns the ledger's clock.
func (l *Ledger) Clock() *Clock {
	return l.clock
}

// mutation describes what one operation persists.
type mutation struct {
	op          string
	drugID      string
	shipmentID  string
	payload     map[string]any
	collections []string
}

// commit persists next and publishes it. Must be called with l.mu held.
func (l *Ledger) commit(ctx context.Context, next *state, m mutation) error {
	b := store.NewBatch()
	for _, name := range m.collections {
		var err error
		switch name {
		case ir.CollectionDrugs:
			err = b.PutDrugs(next.drugs)
		case ir.CollectionShipments:
			err = b.PutShipments(next.shipments)
		case ir.CollectionInventory:
			err = b.PutInventory(next.inventory)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", m.op, err)
		}
	}

	payload, err := ir.MarshalCanonical(m.payload)
	if err != nil {
		return fmt.Errorf("%s: encode event: %w", m.op, err)
	}
	seq := l.clock.Next()
	b.Record(store.Event{
		Seq:        seq,
		ID:         l.ids.Generate(),
		Op:         m.op,
		Subject:    m.drugID,
		Payload:    string(payload),
		RecordedOn: l.clock.Today(),
	})

	if err := l.persister.Commit(ctx, b); err != nil {
		l.logger.Warn("commit failed", "op", m.op, "drug_id", m.drugID, "error", err)
		return fmt.Errorf("%s: %w", m.op, err)
	}

	l.st = next
	l.logger.Debug("committed",
		"op", m.op,
		"drug_id", m.drugID,
		"shipment_id", m.shipmentID,
		"seq", seq)
	return nil
}
