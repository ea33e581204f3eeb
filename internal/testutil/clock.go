// Package testutil contains helpers shared by package tests.
package testutil

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// SteppingClock is a fake clock whose waits complete immediately: every After or
// Sleep records the requested duration and advances the clock by it. Code under
// test observes the same elapsed time it would with a real clock without the
// test actually blocking.
type SteppingClock struct {
	*clockwork.FakeClock

	mu    sync.Mutex
	waits []time.Duration
}

// NewSteppingClock returns a SteppingClock starting at the fake clock's epoch.
func NewSteppingClock() *SteppingClock {
	return &SteppingClock{FakeClock: clockwork.NewFakeClock()}
}

func (c *SteppingClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.mu.Unlock()

	c.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

func (c *SteppingClock) Sleep(d time.Duration) {
	<-c.After(d)
}

// Waits returns a copy of every wait requested so far, in order.
func (c *SteppingClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

// Total is the sum of all requested waits.
func (c *SteppingClock) Total() time.Duration {
	var total time.Duration
	for _, d := range c.Waits() {
		total += d
	}
	return total
}
