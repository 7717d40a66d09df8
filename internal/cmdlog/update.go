package cmdlog

import (
	"time"

	"github.com/openrails/openrails-sub024/internal/command"
)

// UpdateResult reports what one Update call did.
type UpdateResult struct {
	// Applied is set when the head command was applied and dequeued.
	Applied bool
	// Command is the applied command.
	Command command.Command
	// Unbound is set when the applied command had no receiver.
	Unbound bool

	// Waiting is set while a paused command waits for its wall-clock deadline.
	Waiting bool
	// Deferred is set when a camera command was held back by suspension.
	Deferred bool

	// BecameDue is set on the call that moved the pause state to Due.
	BecameDue bool
	// Completed is set on the one call that reported replay completion.
	Completed bool
}

// Update advances replay to simulated time now, consuming from q. q must be
// sorted by time, as NewQueue does. Update never blocks; with an empty
// queue and no threshold newly crossed it changes nothing.
func (l *Log) Update(now float64, q *Queue) UpdateResult {
	var res UpdateResult

	if l.pauseState == PauseBefore && now > l.replayEndsAt-l.cfg.PreEndMargin {
		l.SetPauseState(PauseDue)
		res.BecameDue = true
	}

	if head, ok := q.Peek(); ok {
		margin := 0.0
		if l.clock != nil && l.clock.Paused() {
			margin = l.cfg.PauseMargin
		}
		if now < head.Time()-margin {
			return res
		}

		switch {
		case head.Shape() == command.ShapePaused:
			wall := l.wall.Now()
			if !l.resumePending {
				l.resumeAt = wall.Add(seconds(head.Duration()))
				l.resumePending = true
			}
			if wall.Before(l.resumeAt) {
				res.Waiting = true
				return res
			}
			l.resumePending = false
			l.applyHead(now, q, &res)

		case head.Shape() == command.ShapeCamera && l.cameraSuspended:
			res.Deferred = true

		default:
			l.applyHead(now, q, &res)
		}
		return res
	}

	if l.hasActivity && now > l.lastActivity+l.cfg.CompletionDelay {
		l.hasActivity = false
		res.Completed = true
		l.logger.Info("replay complete", "at", command.FormatTime(now), "entries", len(l.entries))
		if l.onComplete != nil {
			l.onComplete()
		}
	}
	return res
}

func (l *Log) applyHead(now float64, q *Queue, res *UpdateResult) {
	c, _ := q.Pop()
	if !c.Apply(l.resolver) {
		res.Unbound = true
		l.logger.Debug("no receiver for replayed command", "kind", c.Kind().String(), "command", c.Describe())
	}
	l.entries = append(l.entries, c)
	l.lastActivity = now
	l.hasActivity = true

	res.Applied = true
	res.Command = c
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
