package harness

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/command"
	"github.com/openrails/openrails-sub024/internal/engine"
	"github.com/openrails/openrails-sub024/internal/receiver"
)

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger logs the engine's work to logger. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// Run replays the scenario on the headless engine, tick by tick, and
// evaluates its assertions. Each run starts from a fresh clock, receiver
// registry and wall clock, so the same scenario always yields the same
// result. An error means the scenario could not be run; failed assertions
// are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	rc := runConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&rc)
	}

	cmds, err := BuildCommands(scenario.Commands)
	if err != nil {
		return nil, err
	}

	reg := receiver.New()
	journal := receiver.NewJournal(nil)
	kinds, err := bindKinds(scenario.Bind)
	if err != nil {
		return nil, err
	}
	if len(kinds) > 0 {
		journal.Bind(reg, kinds...)
	}

	wallPerTick := scenario.Ticks.WallPerTick
	if wallPerTick == 0 {
		wallPerTick = scenario.Ticks.DT
	}
	autoPause := true
	if scenario.AutoPause != nil {
		autoPause = *scenario.AutoPause
	}

	eng, err := engine.New(
		engine.WithConfig(scenario.Config.Apply(cmdlog.DefaultConfig())),
		engine.WithResolver(reg),
		engine.WithWallPerTick(time.Duration(wallPerTick*float64(time.Second))),
		engine.WithAutoPause(autoPause),
		engine.WithLogger(rc.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if err := eng.Start(cmds); err != nil {
		return nil, fmt.Errorf("failed to start replay: %w", err)
	}

	count := scenario.Ticks.Count
	limit := scenario.Ticks.Limit
	if limit == 0 {
		limit = DefaultTickLimit
	}
	for tick := 1; ; tick++ {
		if count > 0 && tick > count {
			break
		}
		if count == 0 && (eng.Completed() || tick > limit) {
			break
		}
		driveHost(eng, scenario.Ticks, tick)
		eng.Step(scenario.Ticks.DT)
	}

	result := NewResult()
	result.applied = eng.Trace()
	result.pauses = eng.Transitions()
	result.Trace = append(result.Trace, eng.TraceLines()...)
	for _, tr := range result.pauses {
		result.Transitions = append(result.Transitions, tr.String())
	}
	result.Calls = append(result.Calls, journal.Lines()...)
	result.Completed = eng.Completed()
	if result.Completed {
		result.CompletedAt = eng.Tick()
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	rc.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"applied", len(result.Trace),
		"pass", result.Pass,
	)
	return result, nil
}

// driveHost applies the host actions scheduled for tick: pausing the clock
// and suspending the camera at the start and end of each range.
func driveHost(eng *engine.Engine, ticks Ticks, tick int) {
	for _, r := range ticks.Paused {
		switch tick {
		case r.From:
			eng.Post(engine.Control{Type: engine.ControlPause})
		case r.To + 1:
			eng.Post(engine.Control{Type: engine.ControlResume})
		}
	}
	for _, r := range ticks.SuspendCamera {
		switch tick {
		case r.From:
			eng.Post(engine.Control{Type: engine.ControlSuspendCamera})
		case r.To + 1:
			eng.Post(engine.Control{Type: engine.ControlResumeCamera})
		}
	}
}

func bindKinds(names []string) ([]command.Kind, error) {
	if names == nil {
		return command.Kinds(), nil
	}
	kinds := make([]command.Kind, 0, len(names))
	for _, name := range names {
		k, err := command.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
