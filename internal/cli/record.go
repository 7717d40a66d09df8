package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/command"
	"github.com/openrails/openrails-sub024/internal/harness"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Output string
}

// RecordResult describes a written log.
type RecordResult struct {
	File     string  `json:"file"`
	Commands int     `json:"commands"`
	EndsAt   float64 `json:"ends_at"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <script.yaml>",
		Short: "Record a command log from a YAML script",
		Long: `Build a command log by playing a YAML command script through a live
recording session: the simulated clock moves to each command's "at" time
and the command is recorded there, then the log is saved.

Exit codes:
  0 - Log written
  2 - Command error (invalid script, unwritable output)

Examples:
  cmdlog record session.yaml -o session.orcl
  cmdlog record session.yaml -o session.orcl --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output log file (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runRecord(opts *RecordOptions, scriptPath string, cmd *cobra.Command) error {
	if err := opts.Setup(cmd); err != nil {
		return err
	}

	script, err := harness.LoadScript(scriptPath)
	if err != nil {
		return fail(cmd, opts.RootOptions, ExitCommandError, CodeInvalidInput, "failed to load script", err)
	}

	log, err := harness.Record(script.Commands, cmdlog.WithLogger(opts.Logger))
	if err != nil {
		return fail(cmd, opts.RootOptions, ExitCommandError, CodeInvalidInput, "failed to record script", err)
	}
	if err := log.Save(opts.Output); err != nil {
		return failWith(cmd, opts.RootOptions, "failed to save log", err)
	}

	sorted := log.Entries()
	result := RecordResult{File: opts.Output, Commands: len(sorted)}
	if len(sorted) > 0 {
		result.EndsAt = sorted[len(sorted)-1].Time()
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d commands to %s (ends at %s)\n",
		result.Commands, result.File, command.FormatTime(result.EndsAt))
	return nil
}
