package modeldb

import "sync/atomic"

// Clock is a monotonic logical clock for commit ordering.
//
// Every committed transaction is stamped with a strictly increasing seq
// number. Ordering is always by seq, never wall time, so notification
// order and undo history are deterministic.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the single-writer transaction design means only one goroutine
// normally calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
