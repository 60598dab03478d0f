package ledger

import (
	"sync/atomic"
	"time"

	"github.com/roach88/rxtrace/internal/ir"
)

// Clock stamps committed mutations.
//
// It carries two notions of time: a logical seq that orders events in the
// log, and a calendar source for the dates written into custody entries
// (delivery date, event recorded_on). Tests pin the calendar with
// NewFixedClock so paths are reproducible.
//
// Seq is strictly increasing. A failed commit consumes its seq, so the log
// may contain gaps but never duplicates.
type Clock struct {
	seq atomic.Int64
	now func() time.Time
}

// NewClock creates a clock at seq 0 backed by the wall clock.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewFixedClock creates a clock at seq 0 whose calendar always reads day.
func NewFixedClock(day time.Time) *Clock {
	return &Clock{now: func() time.Time { return day }}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// resumeAt moves the clock forward to seq. It never moves backward.
func (c *Clock) resumeAt(seq int64) {
	for {
		cur := c.seq.Load()
		if seq <= cur || c.seq.CompareAndSwap(cur, seq) {
			return
		}
	}
}

// Now returns the calendar time.
func (c *Clock) Now() time.Time {
	return c.now()
}

// Today returns the calendar date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return ir.FormatDate(c.now())
}
