package testutil

import (
	"sync"
	"time"
)

// ManualClock provides a thread-safe fixed wall clock for tests.
//
// Components that stamp timestamps accept a `now func() time.Time`;
// passing ManualClock.Now makes those timestamps deterministic, which
// keeps ledger expiry tests and golden report comparisons stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at the given instant.
func NewManualClock(at time.Time) *ManualClock {
	return &ManualClock{now: at}
}

// Now returns the clock's current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
//
// Negative durations move it backward; tests use that to fabricate
// stale ledger records.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set repositions the clock at an absolute instant.
func (c *ManualClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}
