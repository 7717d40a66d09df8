package engine

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimClock_NewSimClock(t *testing.T) {
	c := NewSimClock()
	assert.Equal(t, 0.0, c.Now(), "new clock should start at 0")
	assert.False(t, c.Paused())
	assert.Equal(t, int64(0), c.Ticks())
}

func TestSimClock_NewSimClockAt(t *testing.T) {
	assert.Equal(t, 42.5, NewSimClockAt(42.5).Now())
	assert.Equal(t, 0.0, NewSimClockAt(math.NaN()).Now(), "non-finite start ignored")
}

func TestSimClock_Advance(t *testing.T) {
	c := NewSimClock()

	assert.Equal(t, 0.5, c.Advance(0.5))
	assert.Equal(t, 1.5, c.Advance(1))
	assert.Equal(t, int64(2), c.Ticks())
}

func TestSimClock_IgnoresBackwardSteps(t *testing.T) {
	c := NewSimClockAt(10)

	for _, dt := range []float64{-1, 0, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Equal(t, 10.0, c.Advance(dt), "dt=%v", dt)
	}
	assert.Equal(t, int64(5), c.Ticks(), "every call counts as a tick")
}

func TestSimClock_AdvanceTo(t *testing.T) {
	c := NewSimClockAt(0.1)

	assert.Equal(t, 0.3, c.AdvanceTo(0.3), "lands exactly on the target")
	assert.Equal(t, 0.3, c.AdvanceTo(0.2), "never moves backwards")
	assert.Equal(t, 0.3, c.AdvanceTo(math.NaN()))
	assert.Equal(t, 0.3, c.AdvanceTo(math.Inf(1)))

	c.SetPaused(true)
	assert.Equal(t, 0.3, c.AdvanceTo(5))
	assert.Equal(t, int64(5), c.Ticks())
}

func TestSimClock_PausedFreezesTime(t *testing.T) {
	c := NewSimClock()
	c.Advance(1)
	c.SetPaused(true)

	assert.Equal(t, 1.0, c.Advance(1))
	assert.True(t, c.Paused())

	c.SetPaused(false)
	assert.Equal(t, 2.0, c.Advance(1))
	assert.Equal(t, int64(3), c.Ticks())
}

func TestSimClock_ConcurrentReads(t *testing.T) {
	c := NewSimClock()
	const readers = 8

	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := 0.0
			for j := 0; j < 1000; j++ {
				now := c.Now()
				assert.GreaterOrEqual(t, now, last, "time never goes back")
				last = now
			}
		}()
	}
	for j := 0; j < 1000; j++ {
		c.Advance(0.01)
	}
	wg.Wait()
}

func TestTickWallClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTickWallClock(start, 250*time.Millisecond)

	assert.Equal(t, start, c.Now())
	c.Tick()
	c.Tick()
	assert.Equal(t, start.Add(500*time.Millisecond), c.Now())
}
