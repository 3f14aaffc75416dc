// Package testutil provides deterministic stand-ins for time and upstream
// data sources used across the package tests.
package testutil

import (
	"sync"
	"time"
)

// ManualClock is a thread-safe wall clock that only moves when told to.
// Inject its Now method wherever a time source is accepted to cross TTL or
// scheduling boundaries without sleeping.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative durations are rejected by
// panic: tests that rewind time are testing something else.
func (c *ManualClock) Advance(d time.Duration) {
	if d < 0 {
		panic("testutil: ManualClock cannot rewind")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
