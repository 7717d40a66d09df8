package testutil

import (
	"sync"
	"time"
)

// ManualClock is a simulated clock that only moves when told to.
//
// It satisfies cmdlog.SimClock. Unlike a host clock it can be set backwards
// and reset, so one clock can drive several replays of the same trace.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu     sync.Mutex
	now    float64
	paused bool
}

// NewManualClock creates a clock at simulated time start.
func NewManualClock(start float64) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the simulated time in seconds.
func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Paused reports whether the simulation is paused.
func (c *ManualClock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Set moves the clock to t.
func (c *ManualClock) Set(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by dt and returns the new time.
func (c *ManualClock) Advance(dt float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += dt
	return c.now
}

// SetPaused sets the paused flag.
func (c *ManualClock) SetPaused(p bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = p
}

// Reset returns the clock to time zero, unpaused.
func (c *ManualClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = 0
	c.paused = false
}

// Epoch is the start time of every ManualWallClock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ManualWallClock is a wall clock for tests. It satisfies cmdlog.WallClock.
type ManualWallClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualWallClock creates a wall clock at Epoch.
func NewManualWallClock() *ManualWallClock {
	return &ManualWallClock{now: Epoch}
}

// Now returns the current wall time.
func (c *ManualWallClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the wall clock forward by d.
func (c *ManualWallClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Elapsed returns the wall time passed since Epoch.
func (c *ManualWallClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(Epoch)
}
