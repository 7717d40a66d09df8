package cmdlog

import (
	"log/slog"
	"math"
	"time"

	"github.com/openrails/openrails-sub024/internal/command"
)

// Log is the command log of one session.
//
// Entries are kept in recording order. A continuous command can be recorded
// after commands that happened later than the moment it started, so entries
// are only time-ordered after Save or Sorted.
type Log struct {
	clock    SimClock
	wall     WallClock
	resolver command.Resolver
	cfg      Config
	logger   *slog.Logger

	entries []command.Command

	replayEndsAt    float64
	pauseState      PauseState
	cameraSuspended bool

	resumeAt      time.Time
	resumePending bool

	lastActivity float64
	hasActivity  bool

	onComplete func()
}

// Option configures a Log.
type Option func(*Log)

// WithConfig sets the replay thresholds.
func WithConfig(cfg Config) Option {
	return func(l *Log) {
		l.cfg = cfg
	}
}

// WithWallClock replaces the real-time clock used to gate paused commands.
func WithWallClock(w WallClock) Option {
	return func(l *Log) {
		l.wall = w
	}
}

// WithResolver sets where replayed commands find their receivers.
func WithResolver(r command.Resolver) Option {
	return func(l *Log) {
		l.resolver = r
	}
}

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// WithCompletion registers fn to run once when replay completes.
func WithCompletion(fn func()) Option {
	return func(l *Log) {
		l.onComplete = fn
	}
}

// New creates an empty log reading simulated time from clock.
func New(clock SimClock, opts ...Option) *Log {
	l := &Log{
		clock:        clock,
		wall:         SystemWallClock(),
		cfg:          DefaultConfig(),
		logger:       slog.Default(),
		entries:      make([]command.Command, 0, 256),
		replayEndsAt: math.Inf(1),
		pauseState:   PauseBefore,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends c to the log, stamping it with the current simulated time
// unless it already carries one.
func (l *Log) Record(c command.Command) command.Command {
	if !c.Stamped() {
		var now float64
		if l.clock != nil {
			now = l.clock.Now()
		}
		c = c.Stamp(now)
	}
	l.entries = append(l.entries, c)
	l.logger.Debug("command recorded", "command", c.Describe())
	return c
}

// Entries returns a copy of the entries in recording order.
func (l *Log) Entries() []command.Command {
	out := make([]command.Command, len(l.entries))
	copy(out, l.entries)
	return out
}

// Sorted returns a copy of the entries stable-sorted by time.
func (l *Log) Sorted() []command.Command {
	out := l.Entries()
	SortByTime(out)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Config returns the replay thresholds.
func (l *Log) Config() Config {
	return l.cfg
}

// SetResolver replaces the receiver lookup used by Update.
func (l *Log) SetResolver(r command.Resolver) {
	l.resolver = r
}

// ReplayEndsAt returns the simulated time of the last command to replay.
func (l *Log) ReplayEndsAt() float64 {
	return l.replayEndsAt
}

// SetReplayEndsAt sets the simulated time the replay ends at.
func (l *Log) SetReplayEndsAt(t float64) {
	l.replayEndsAt = t
}

// PauseState returns the current pause state.
func (l *Log) PauseState() PauseState {
	return l.pauseState
}

// SetPauseState lets the host advance the pause state, typically Due to
// During when it pauses and During to Done when it resumes.
func (l *Log) SetPauseState(s PauseState) {
	if s != l.pauseState {
		l.logger.Debug("pause state changed", "from", l.pauseState, "to", s)
	}
	l.pauseState = s
}

// CameraSuspended reports whether camera commands are held back.
func (l *Log) CameraSuspended() bool {
	return l.cameraSuspended
}

// SuspendCamera holds camera commands at the head of the queue while on is
// true, letting an operator move the camera freely mid-replay.
func (l *Log) SuspendCamera(on bool) {
	l.cameraSuspended = on
}

// Cancel abandons an in-progress replay: the queue is discarded and the
// pause state becomes Done. Effects already applied are kept.
func (l *Log) Cancel(q *Queue) {
	q.Clear()
	l.resumePending = false
	l.hasActivity = false
	l.SetPauseState(PauseDone)
}

// Reset discards all entries and replay bookkeeping, as when starting a new
// recording.
func (l *Log) Reset() {
	l.entries = l.entries[:0]
	l.replayEndsAt = math.Inf(1)
	l.pauseState = PauseBefore
	l.cameraSuspended = false
	l.resumePending = false
	l.hasActivity = false
}
