package testutil

import (
	"sync"

	"github.com/gwright/bitemporal/temporal"
)

// ManualClock is a thread-safe, hand-advanced clock for tests.
//
// Scenario tests pin small integer instants so interval assertions read
// like the fixtures: commit at 10, revise at 20, and so on.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now temporal.Instant
}

// NewManualClock creates a clock pinned at start.
func NewManualClock(start temporal.Instant) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the pinned instant.
func (c *ManualClock) Now() temporal.Instant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d temporal.Instant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Set pins the clock to at.
func (c *ManualClock) Set(at temporal.Instant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}
