package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/command"
	"github.com/openrails/openrails-sub024/internal/engine"
	"github.com/openrails/openrails-sub024/internal/receiver"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Verify        bool
	Save          string
	SuspendCamera bool
	Realtime      bool
	DT            float64
	MaxTicks      int64
}

// ReplayResult describes a finished replay.
type ReplayResult struct {
	File        string   `json:"file"`
	Commands    int      `json:"commands"`
	Applied     []string `json:"applied"`
	Transitions []string `json:"transitions"`
	Calls       []string `json:"calls"`
	Ticks       int64    `json:"ticks"`
	Pending     int      `json:"pending"`
	Completed   bool     `json:"completed"`
	Fingerprint string   `json:"fingerprint"`
	Verified    bool     `json:"verified,omitempty"`
	SavedTo     string   `json:"saved_to,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Replay a command log on the headless engine",
		Long: `Replay a command log against recording receivers and print every applied
command and pause-state change.

The simulated clock advances --dt seconds per tick. By default ticks run as
fast as possible and paused commands wait a fixed number of ticks; with
--realtime each tick takes --dt seconds of real time.

With --verify the log is first replayed twice and the two runs are
compared. --suspend-camera holds camera changes back for the whole replay,
so the replay stops at the first one.

Exit codes:
  0 - Replay completed (and was deterministic, with --verify)
  1 - Replay failed (non-deterministic, tick limit reached, interrupted)
  2 - Command error (missing or corrupt file, bad flags)

Examples:
  cmdlog replay session.orcl
  cmdlog replay session.orcl --verify
  cmdlog replay session.orcl --dt 0.1 --realtime
  cmdlog replay session.orcl --save rebuilt.orcl --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "replay twice and compare before replaying")
	cmd.Flags().StringVar(&opts.Save, "save", "", "save the rebuilt log to this file")
	cmd.Flags().BoolVar(&opts.SuspendCamera, "suspend-camera", false, "hold camera changes back")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "pace ticks in real time")
	cmd.Flags().Float64Var(&opts.DT, "dt", 0, "simulated seconds per tick (default from config)")
	cmd.Flags().Int64Var(&opts.MaxTicks, "max-ticks", 0, "tick budget (default from config)")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	if err := opts.Setup(cmd); err != nil {
		return err
	}

	dt := opts.DT
	if dt == 0 {
		dt = opts.Settings.Replay.Tick
	}
	if !(dt > 0) {
		return fail(cmd, opts.RootOptions, ExitCommandError, CodeInvalidInput,
			fmt.Sprintf("--dt must be positive, got %v", dt), nil)
	}
	maxTicks := opts.MaxTicks
	if maxTicks == 0 {
		maxTicks = opts.Settings.Replay.MaxTicks
	}

	cmds, err := cmdlog.ReadFile(path)
	if err != nil {
		return failWith(cmd, opts.RootOptions, "failed to read log", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	base := []engine.Option{
		engine.WithConfig(opts.Settings.ReplayConfig()),
		engine.WithAutoPause(opts.Settings.Replay.AutoPause),
		engine.WithSuspendCamera(opts.SuspendCamera),
		engine.WithLogger(opts.Logger),
		engine.WithMaxTicks(maxTicks),
	}

	result := ReplayResult{File: path, Commands: len(cmds)}
	if opts.Verify {
		ct := engine.ClockTrace{DT: dt, MaxTicks: maxTicks}
		if err := engine.VerifyDeterminism(ctx, cmds, ct, base...); err != nil {
			return failWith(cmd, opts.RootOptions, "determinism check failed", err)
		}
		result.Verified = true
	}

	text := opts.Format != "json"
	w := cmd.OutOrStdout()
	if text {
		fmt.Fprintf(w, "Replaying %s (%d commands)\n", path, len(cmds))
	}

	reg := receiver.New()
	journal := receiver.NewJournal(func(c receiver.Call) {
		if text && opts.Verbose {
			fmt.Fprintf(w, "      -> %s\n", c)
		}
	})
	journal.Bind(reg)

	runOpts := append(base,
		engine.WithResolver(reg),
		engine.WithOnApply(func(entry engine.TraceEntry) {
			if text {
				fmt.Fprintf(w, "  %s\n", entry)
			}
		}),
		engine.WithOnTransition(func(tr engine.Transition) {
			if text {
				fmt.Fprintf(w, "  %s\n", tr)
			}
		}),
	)

	var interval time.Duration
	tickDuration := time.Duration(dt * float64(time.Second))
	if opts.Realtime {
		interval = tickDuration
	} else {
		runOpts = append(runOpts, engine.WithWallPerTick(tickDuration))
	}

	eng, err := engine.New(runOpts...)
	if err != nil {
		return failWith(cmd, opts.RootOptions, "failed to create engine", err)
	}
	if err := eng.Start(cmds); err != nil {
		return failWith(cmd, opts.RootOptions, "failed to start replay", err)
	}
	runErr := eng.Run(ctx, dt, interval)

	result.Applied = eng.TraceLines()
	for _, tr := range eng.Transitions() {
		result.Transitions = append(result.Transitions, tr.String())
	}
	result.Calls = journal.Lines()
	result.Ticks = eng.Tick()
	result.Pending = eng.Pending()
	result.Completed = eng.Completed()
	result.Fingerprint = eng.Fingerprint()

	if opts.Save != "" {
		if err := eng.Log().Save(opts.Save); err != nil {
			return failWith(cmd, opts.RootOptions, "failed to save rebuilt log", err)
		}
		result.SavedTo = opts.Save
	}

	if runErr != nil {
		return failWith(cmd, opts.RootOptions, "replay did not complete", runErr)
	}

	if !text {
		return opts.formatter(cmd).Success(result)
	}

	fmt.Fprintf(w, "Replayed %d of %d commands in %d ticks (%s simulated)\n",
		len(result.Applied), result.Commands, result.Ticks, command.FormatTime(eng.Clock().Now()))
	fmt.Fprintf(w, "Trace fingerprint: %s\n", result.Fingerprint)
	if result.Verified {
		fmt.Fprintln(w, "✓ Replay is deterministic")
	}
	if result.SavedTo != "" {
		fmt.Fprintf(w, "Saved rebuilt log to %s\n", result.SavedTo)
	}
	return nil
}
