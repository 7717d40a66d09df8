package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/openrails/openrails-sub024/internal/command"
	"github.com/openrails/openrails-sub024/internal/receiver"
)

// ClockTrace is the tick sequence a replay runs under. Replaying the same
// commands under the same ClockTrace must produce the same effects.
type ClockTrace struct {
	// DT is the simulated seconds per tick.
	DT float64
	// WallPerTick is the wall time per tick. Zero means DT seconds.
	WallPerTick time.Duration
	// MaxTicks bounds the replay. Zero means DefaultMaxTicks.
	MaxTicks int64
}

func (ct ClockTrace) wallPerTick() time.Duration {
	if ct.WallPerTick > 0 {
		return ct.WallPerTick
	}
	return time.Duration(ct.DT * float64(time.Second))
}

func (ct ClockTrace) maxTicks() int64 {
	if ct.MaxTicks > 0 {
		return ct.MaxTicks
	}
	return DefaultMaxTicks
}

// Replay runs cmds to completion on a fresh engine with every kind bound to
// a recording journal, and returns the engine and the journal.
func Replay(ctx context.Context, cmds []command.Command, ct ClockTrace, opts ...Option) (*Engine, *receiver.Journal, error) {
	reg := receiver.New()
	journal := receiver.NewJournal(nil)
	journal.Bind(reg)

	all := make([]Option, 0, len(opts)+4)
	all = append(all, opts...)
	all = append(all,
		WithClock(NewSimClock()),
		WithResolver(reg),
		WithWallPerTick(ct.wallPerTick()),
		WithMaxTicks(ct.maxTicks()),
	)

	e, err := New(all...)
	if err != nil {
		return nil, nil, err
	}
	if err := e.Start(cmds); err != nil {
		return nil, nil, err
	}
	if err := e.Run(ctx, ct.DT, 0); err != nil {
		return e, journal, err
	}
	return e, journal, nil
}

// VerifyDeterminism replays cmds twice under ct and compares the applied
// trace and the receiver calls. It returns a RuntimeError with code
// NONDETERMINISTIC describing the first divergence.
func VerifyDeterminism(ctx context.Context, cmds []command.Command, ct ClockTrace, opts ...Option) error {
	first, err := replayLines(ctx, cmds, ct, opts)
	if err != nil {
		return fmt.Errorf("first replay: %w", err)
	}
	second, err := replayLines(ctx, cmds, ct, opts)
	if err != nil {
		return fmt.Errorf("second replay: %w", err)
	}

	n := min(len(first), len(second))
	for i := 0; i < n; i++ {
		if first[i] != second[i] {
			return NewNondeterministicError(i, first[i], second[i])
		}
	}
	if len(first) != len(second) {
		return NewNondeterministicError(n, lineAt(first, n), lineAt(second, n))
	}
	return nil
}

func replayLines(ctx context.Context, cmds []command.Command, ct ClockTrace, opts []Option) ([]string, error) {
	e, journal, err := Replay(ctx, cmds, ct, opts...)
	if err != nil {
		return nil, err
	}
	return append(e.TraceLines(), journal.Lines()...), nil
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return "<end>"
}
