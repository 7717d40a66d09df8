package engine

import (
	"math"
	"sync/atomic"
	"time"
)

// SimClock is the headless simulated clock, in seconds.
//
// Time only moves forward: Advance ignores negative and non-finite steps,
// and does not move time while the clock is paused. Ticks counts every
// Advance call, paused or not.
//
// Thread-safety: SimClock is safe for concurrent use (atomic operations).
// The engine's single-writer design means only the tick goroutine advances
// it; other goroutines may read it.
type SimClock struct {
	bits   atomic.Uint64
	paused atomic.Bool
	ticks  atomic.Int64
}

// NewSimClock creates a clock at time 0.
func NewSimClock() *SimClock {
	return &SimClock{}
}

// NewSimClockAt creates a clock at a specific time.
func NewSimClockAt(start float64) *SimClock {
	c := &SimClock{}
	if !math.IsNaN(start) && !math.IsInf(start, 0) {
		c.bits.Store(math.Float64bits(start))
	}
	return c
}

// Now returns the current simulated time.
func (c *SimClock) Now() float64 {
	return math.Float64frombits(c.bits.Load())
}

// Paused reports whether the simulation is paused.
func (c *SimClock) Paused() bool {
	return c.paused.Load()
}

// SetPaused pauses or resumes the simulation.
func (c *SimClock) SetPaused(p bool) {
	c.paused.Store(p)
}

// Advance moves time forward by dt and returns the new time.
func (c *SimClock) Advance(dt float64) float64 {
	c.ticks.Add(1)
	now := c.Now()
	if c.Paused() || dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return now
	}
	now += dt
	c.bits.Store(math.Float64bits(now))
	return now
}

// AdvanceTo moves time forward to t and returns the new time. Like Advance
// it counts a tick, and it never moves time backwards or while paused.
func (c *SimClock) AdvanceTo(t float64) float64 {
	c.ticks.Add(1)
	now := c.Now()
	if c.Paused() || !(t > now) || math.IsInf(t, 0) {
		return now
	}
	c.bits.Store(math.Float64bits(t))
	return t
}

// Ticks returns how many times Advance or AdvanceTo has been called.
func (c *SimClock) Ticks() int64 {
	return c.ticks.Load()
}

// TickWallClock is a wall clock that only moves when the engine ticks. It
// lets headless replays honour paused-command delays without sleeping.
type TickWallClock struct {
	start   time.Time
	perTick time.Duration
	elapsed atomic.Int64
}

// NewTickWallClock creates a wall clock advancing perTick on every tick.
func NewTickWallClock(start time.Time, perTick time.Duration) *TickWallClock {
	return &TickWallClock{start: start, perTick: perTick}
}

// Now returns the start time plus the ticked duration.
func (c *TickWallClock) Now() time.Time {
	return c.start.Add(time.Duration(c.elapsed.Load()))
}

// Tick advances the clock by one tick.
func (c *TickWallClock) Tick() {
	c.elapsed.Add(int64(c.perTick))
}
