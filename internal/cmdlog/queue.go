package cmdlog

import (
	"sort"

	"github.com/openrails/openrails-sub024/internal/command"
)

// Queue holds the commands still to be replayed, in ascending time order.
//
// Queue is not safe for concurrent use; like the Log it belongs to the tick
// goroutine.
type Queue struct {
	items []command.Command
}

// NewQueue returns a queue over a copy of cmds, stable-sorted by time.
func NewQueue(cmds []command.Command) *Queue {
	items := make([]command.Command, len(cmds))
	copy(items, cmds)
	SortByTime(items)
	return &Queue{items: items}
}

// Peek returns the head command without removing it.
func (q *Queue) Peek() (command.Command, bool) {
	if q == nil || len(q.items) == 0 {
		return command.Command{}, false
	}
	return q.items[0], true
}

// Pop removes and returns the head command.
func (q *Queue) Pop() (command.Command, bool) {
	if q == nil || len(q.items) == 0 {
		return command.Command{}, false
	}
	c := q.items[0]
	// Clear the slot so the backing array does not pin label strings.
	q.items[0] = command.Command{}
	q.items = q.items[1:]
	return c, true
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Empty reports whether no commands are pending.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}

// Clear discards every pending command.
func (q *Queue) Clear() {
	if q == nil {
		return
	}
	q.items = nil
}

// Remaining returns a copy of the pending commands.
func (q *Queue) Remaining() []command.Command {
	if q == nil {
		return nil
	}
	out := make([]command.Command, len(q.items))
	copy(out, q.items)
	return out
}

// Last returns the latest pending command.
func (q *Queue) Last() (command.Command, bool) {
	if q == nil || len(q.items) == 0 {
		return command.Command{}, false
	}
	return q.items[len(q.items)-1], true
}

// SortByTime stable-sorts cmds by time in place. Commands with equal times
// keep their relative order.
func SortByTime(cmds []command.Command) {
	sort.SliceStable(cmds, func(i, j int) bool {
		return cmds[i].Time() < cmds[j].Time()
	})
}
