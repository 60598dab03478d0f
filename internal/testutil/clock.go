package testutil

import (
	"sync"
	"time"
)

// Day is the calendar date pinned by deterministic ledger clocks in tests
// and scenario runs.
var Day = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// DeterministicClock numbers trace events for golden comparison.
//
// Unlike the ledger's Clock, DeterministicClock can be reset, so the same
// scenario run twice yields identical seq values.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a new deterministic clock starting at 0.
//
// The first call to Next() returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next increments and returns the next sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset resets the clock to 0.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
