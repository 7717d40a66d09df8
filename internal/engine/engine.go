package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/command"
)

// DefaultMaxTicks bounds Run so a replay that can never complete, such as
// one whose last command is a camera change held back forever, still
// returns.
const DefaultMaxTicks = 1_000_000

// DefaultPauseHold is how many ticks the auto-pause holds the clock.
const DefaultPauseHold = 1

// Engine is the single-writer replay driver.
//
// Thread-safety model:
//   - Post(), Done(): safe from any goroutine (Done after Start)
//   - Start(), Step(), Run(), Cancel() and the accessors: tick goroutine only
type Engine struct {
	clock    *SimClock
	wall     cmdlog.WallClock
	tickWall *TickWallClock
	log      *cmdlog.Log
	queue    *cmdlog.Queue
	controls *controlQueue
	resolver command.Resolver
	cfg      cmdlog.Config
	logger   *slog.Logger
	meter    metric.Meter
	metrics  *metrics

	autoPause      bool
	pauseHold      int
	heldTicks      int
	pausedByEngine bool
	hostPaused     bool
	suspendCamera  bool

	maxTicks  int64
	startTick int64

	trace       []TraceEntry
	transitions []Transition

	done          chan struct{}
	completed     bool
	cancelled     bool
	cancelPending int

	onApply      func(TraceEntry)
	onTransition func(Transition)
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the replay thresholds.
func WithConfig(cfg cmdlog.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithResolver sets where replayed commands find their receivers.
func WithResolver(r command.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithClock drives the replay from an existing clock.
func WithClock(c *SimClock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithWallClock gates paused commands on w.
func WithWallClock(w cmdlog.WallClock) Option {
	return func(e *Engine) {
		e.wall = w
		e.tickWall = nil
	}
}

// WithWallPerTick replaces real time with a wall clock that advances d on
// every tick, so paused commands release after a fixed number of ticks.
func WithWallPerTick(d time.Duration) Option {
	return func(e *Engine) {
		tw := NewTickWallClock(time.Unix(0, 0).UTC(), d)
		e.wall = tw
		e.tickWall = tw
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithAutoPause enables or disables pausing the clock when the pause
// becomes due. Enabled by default.
func WithAutoPause(on bool) Option {
	return func(e *Engine) {
		e.autoPause = on
	}
}

// WithSuspendCamera starts every replay with camera commands held back.
func WithSuspendCamera(on bool) Option {
	return func(e *Engine) {
		e.suspendCamera = on
	}
}

// WithPauseHold sets how many ticks the auto-pause lasts.
func WithPauseHold(ticks int) Option {
	return func(e *Engine) {
		e.pauseHold = ticks
	}
}

// WithMaxTicks sets the tick budget for Run. Zero means unlimited.
func WithMaxTicks(n int64) Option {
	return func(e *Engine) {
		e.maxTicks = n
	}
}

// WithMeter records metrics on m instead of the global meter.
func WithMeter(m metric.Meter) Option {
	return func(e *Engine) {
		e.meter = m
	}
}

// WithOnApply registers fn to see every applied command as it happens.
func WithOnApply(fn func(TraceEntry)) Option {
	return func(e *Engine) {
		e.onApply = fn
	}
}

// WithOnTransition registers fn to see every pause-state change.
func WithOnTransition(fn func(Transition)) Option {
	return func(e *Engine) {
		e.onTransition = fn
	}
}

// New creates an idle engine. Call Start before stepping it.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		controls:  newControlQueue(),
		cfg:       cmdlog.DefaultConfig(),
		logger:    slog.Default(),
		autoPause: true,
		pauseHold: DefaultPauseHold,
		maxTicks:  DefaultMaxTicks,
		queue:     cmdlog.NewQueue(nil),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if e.clock == nil {
		e.clock = NewSimClock()
	}
	if e.wall == nil {
		e.wall = cmdlog.SystemWallClock()
	}
	if e.meter == nil {
		e.meter = meter()
	}

	m, err := newMetrics(e.meter)
	if err != nil {
		return nil, err
	}
	e.metrics = m

	e.log = cmdlog.New(e.clock,
		cmdlog.WithConfig(e.cfg),
		cmdlog.WithWallClock(e.wall),
		cmdlog.WithResolver(e.resolver),
		cmdlog.WithLogger(e.logger),
		cmdlog.WithCompletion(e.complete),
	)
	return e, nil
}

// Start queues cmds for replay, sorted by time, and resets the log and the
// pause state. The replay ends at the time of the latest command. An empty
// list completes immediately.
func (e *Engine) Start(cmds []command.Command) error {
	for i, c := range cmds {
		if err := c.Validate(); err != nil {
			return &RuntimeError{
				Code:    ErrCodeInvalidCommand,
				Message: fmt.Sprintf("command %d: %v", i, err),
			}
		}
	}

	e.log.Reset()
	e.log.SuspendCamera(e.suspendCamera)
	e.queue = cmdlog.NewQueue(cmds)
	e.trace = nil
	e.transitions = nil
	e.heldTicks = 0
	e.pausedByEngine = false
	e.startTick = e.clock.Ticks()
	e.completed = false
	e.cancelled = false
	e.cancelPending = 0
	e.done = make(chan struct{})
	e.controls.Reopen()
	e.metrics.pending.Store(int64(e.queue.Len()))
	if err := e.metrics.observe(); err != nil {
		e.logger.Warn("replay metrics unavailable", "error", err)
	}

	last, ok := e.queue.Last()
	if !ok {
		e.logger.Info("replay has no commands")
		e.complete()
		return nil
	}
	e.log.SetReplayEndsAt(last.Time())

	e.logger.Info("replay starting",
		"commands", e.queue.Len(),
		"ends_at", command.FormatTime(last.Time()),
	)
	return nil
}

// Step advances the clock by dt and runs one update. It returns what the
// update did; after completion or cancellation it does nothing.
func (e *Engine) Step(dt float64) cmdlog.UpdateResult {
	e.applyControls()
	if e.finished() {
		return cmdlog.UpdateResult{}
	}

	now := e.clock.Advance(dt)
	if e.tickWall != nil {
		e.tickWall.Tick()
	}
	tick := e.Tick()

	res := e.log.Update(now, e.queue)
	e.metrics.pending.Store(int64(e.queue.Len()))

	if res.Applied {
		entry := TraceEntry{Tick: tick, Time: now, Command: res.Command, Unbound: res.Unbound}
		e.trace = append(e.trace, entry)
		e.metrics.recordApplied(res.Command, res.Unbound)
		if e.onApply != nil {
			e.onApply(entry)
		}
	}
	if res.Deferred {
		e.metrics.recordDeferred()
	}

	switch {
	case res.BecameDue:
		e.noteTransition(tick, now, cmdlog.PauseBefore, cmdlog.PauseDue)
		if e.autoPause {
			e.clock.SetPaused(true)
			e.pausedByEngine = true
			e.heldTicks = 0
			e.setPauseState(tick, now, cmdlog.PauseDuring)
		}
	case e.pausedByEngine && e.log.PauseState() == cmdlog.PauseDuring:
		e.heldTicks++
		if e.heldTicks >= e.pauseHold {
			e.releaseEnginePause()
			e.setPauseState(tick, now, cmdlog.PauseDone)
		}
	}
	return res
}

// Run steps the engine every interval until the replay completes, is
// cancelled, runs out of ticks, or ctx is done. An interval of zero steps
// as fast as possible. The tick budget applies to each call. Run returns
// nil on completion.
func (e *Engine) Run(ctx context.Context, dt float64, interval time.Duration) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("tick must be a positive number of seconds: %v", dt)
	}

	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	var ran int64
	for {
		select {
		case <-ctx.Done():
			e.Cancel()
			return ctx.Err()
		case <-e.done:
			return e.result()
		default:
		}

		if e.maxTicks > 0 && ran >= e.maxTicks {
			e.logger.Warn("replay tick limit reached", "ticks", ran, "pending", e.queue.Len())
			return NewTickLimitError(ran, e.queue.Len())
		}

		e.Step(dt)
		ran++

		if tick != nil {
			if stop, err := e.waitTick(ctx, tick); stop {
				return err
			}
		}
	}
}

// waitTick blocks until the next tick, applying controls that arrive in
// the meantime.
func (e *Engine) waitTick(ctx context.Context, tick <-chan time.Time) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			e.Cancel()
			return true, ctx.Err()
		case <-tick:
			return false, nil
		case <-e.controls.Wait():
			e.applyControls()
			if e.finished() {
				return true, e.result()
			}
		}
	}
}

// Cancel abandons the replay: pending commands are discarded and the pause
// state becomes Done. Effects already applied are kept.
func (e *Engine) Cancel() {
	if e.finished() {
		return
	}
	tick := e.Tick()
	now := e.clock.Now()
	before := e.log.PauseState()

	e.cancelPending = e.queue.Len()
	e.log.Cancel(e.queue)
	e.metrics.pending.Store(0)
	if e.pausedByEngine {
		e.releaseEnginePause()
	}
	if before != cmdlog.PauseDone {
		e.noteTransition(tick, now, before, cmdlog.PauseDone)
	}

	e.cancelled = true
	e.controls.Close()
	e.stopMetrics()
	close(e.done)
	e.logger.Info("replay cancelled", "tick", tick, "pending", e.cancelPending)
}

// Post submits a control for the tick goroutine. It returns false once the
// replay has finished.
func (e *Engine) Post(c Control) bool {
	return e.controls.Enqueue(c)
}

// SuspendCamera holds camera commands back while on is true.
func (e *Engine) SuspendCamera(on bool) {
	e.suspendCamera = on
	e.log.SuspendCamera(on)
}

// Done is closed when the replay completes or is cancelled.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Completed reports whether the replay ran to completion.
func (e *Engine) Completed() bool {
	return e.completed
}

// Cancelled reports whether the replay was cancelled.
func (e *Engine) Cancelled() bool {
	return e.cancelled
}

// Tick returns the number of ticks since Start.
func (e *Engine) Tick() int64 {
	return e.clock.Ticks() - e.startTick
}

// Pending returns how many commands are still queued.
func (e *Engine) Pending() int {
	return e.queue.Len()
}

// PauseState returns the log's pause state.
func (e *Engine) PauseState() cmdlog.PauseState {
	return e.log.PauseState()
}

// Clock returns the simulated clock.
func (e *Engine) Clock() *SimClock {
	return e.clock
}

// Log returns the command log the replay rebuilds.
func (e *Engine) Log() *cmdlog.Log {
	return e.log
}

// Trace returns a copy of the applied commands in order.
func (e *Engine) Trace() []TraceEntry {
	out := make([]TraceEntry, len(e.trace))
	copy(out, e.trace)
	return out
}

// TraceLines returns the trace rendered one entry per line.
func (e *Engine) TraceLines() []string {
	out := make([]string, len(e.trace))
	for i, entry := range e.trace {
		out[i] = entry.String()
	}
	return out
}

// Transitions returns a copy of the pause-state changes in order.
func (e *Engine) Transitions() []Transition {
	out := make([]Transition, len(e.transitions))
	copy(out, e.transitions)
	return out
}

func (e *Engine) applyControls() {
	for _, c := range e.controls.Drain() {
		e.logger.Debug("replay control", "control", c.Type.String())
		switch c.Type {
		case ControlCancel:
			e.Cancel()
		case ControlSuspendCamera:
			e.SuspendCamera(true)
		case ControlResumeCamera:
			e.SuspendCamera(false)
		case ControlPause:
			e.hostPaused = true
			e.clock.SetPaused(true)
		case ControlResume:
			e.hostPaused = false
			if !e.pausedByEngine {
				e.clock.SetPaused(false)
			}
		}
	}
}

// complete runs once, from Log.Update or Start, when the replay finishes.
func (e *Engine) complete() {
	if e.finished() {
		return
	}
	e.completed = true
	e.controls.Close()
	e.stopMetrics()
	close(e.done)
	e.logger.Info("replay finished", "tick", e.Tick(), "applied", len(e.trace))
}

// releaseEnginePause ends the auto-pause hold. A pause the host asked for
// stays in force.
func (e *Engine) releaseEnginePause() {
	e.pausedByEngine = false
	if !e.hostPaused {
		e.clock.SetPaused(false)
	}
}

func (e *Engine) stopMetrics() {
	if err := e.metrics.unregister(); err != nil {
		e.logger.Warn("replay metrics cleanup failed", "error", err)
	}
}

func (e *Engine) finished() bool {
	return e.completed || e.cancelled
}

func (e *Engine) result() error {
	if e.cancelled {
		return NewCancelledError(e.Tick(), e.cancelPending)
	}
	return nil
}

func (e *Engine) setPauseState(tick int64, now float64, s cmdlog.PauseState) {
	before := e.log.PauseState()
	if before == s {
		return
	}
	e.log.SetPauseState(s)
	e.noteTransition(tick, now, before, s)
}

func (e *Engine) noteTransition(tick int64, now float64, from, to cmdlog.PauseState) {
	tr := Transition{Tick: tick, Time: now, From: from, To: to}
	e.transitions = append(e.transitions, tr)
	if e.onTransition != nil {
		e.onTransition(tr)
	}
}
