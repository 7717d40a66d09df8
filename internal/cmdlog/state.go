package cmdlog

import (
	"fmt"
	"time"
)

// PauseState tracks the pause the host takes just before a replay runs out.
type PauseState int

const (
	// PauseBefore: replay content is still well ahead.
	PauseBefore PauseState = iota
	// PauseDue: the end of the replay is near; the host should pause.
	PauseDue
	// PauseDuring: the host has paused.
	PauseDuring
	// PauseDone: the pause is over or replay was cancelled.
	PauseDone
)

func (s PauseState) String() string {
	switch s {
	case PauseBefore:
		return "before"
	case PauseDue:
		return "due"
	case PauseDuring:
		return "during"
	case PauseDone:
		return "done"
	}
	return fmt.Sprintf("pause-state(%d)", int(s))
}

// SimClock is the host's simulated clock as seen by the log.
type SimClock interface {
	// Now returns the simulated time in seconds. Never decreases.
	Now() float64
	// Paused reports whether the simulation is currently paused.
	Paused() bool
}

// WallClock reads real time. Paused commands are gated on it.
type WallClock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemWallClock returns a WallClock backed by time.Now.
func SystemWallClock() WallClock { return systemClock{} }
