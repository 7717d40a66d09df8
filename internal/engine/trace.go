package engine

import (
	"fmt"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/command"
)

// TraceEntry records one applied command.
type TraceEntry struct {
	Tick    int64
	Time    float64 // simulated time the command was applied at
	Command command.Command
	Unbound bool
}

// String renders the entry as "tick 12 at 00:00:01.2: 00:00:01.0 horn on".
func (t TraceEntry) String() string {
	s := fmt.Sprintf("tick %d at %s: %s", t.Tick, command.FormatTime(t.Time), t.Command.Describe())
	if t.Unbound {
		s += " (unbound)"
	}
	return s
}

// Transition records one pause-state change.
type Transition struct {
	Tick int64
	Time float64
	From cmdlog.PauseState
	To   cmdlog.PauseState
}

func (t Transition) String() string {
	return fmt.Sprintf("tick %d at %s: pause %s -> %s", t.Tick, command.FormatTime(t.Time), t.From, t.To)
}
