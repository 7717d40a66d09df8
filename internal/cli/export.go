package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	DB     string
	Output string
}

// ExportResult describes an exported session.
type ExportResult struct {
	ID       string `json:"id"`
	File     string `json:"file"`
	Commands int    `json:"commands"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Write an archived session back to a log file",
		Long: `Load a session from the session database and write it as a command log.

Exit codes:
  0 - Log written
  2 - Command error (unknown session, corrupt row, write failure)

Examples:
  cmdlog export 0192f3a4-... -o session.orcl
  cmdlog export 0192f3a4-... --db archive.db -o session.orcl`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "session database (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "log file to write (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(opts *ExportOptions, id string, cmd *cobra.Command) error {
	if err := opts.Setup(cmd); err != nil {
		return err
	}

	s, err := openStore(cmd, opts.RootOptions, opts.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	_, cmds, err := s.LoadSession(cmd.Context(), id)
	if err != nil {
		return failWith(cmd, opts.RootOptions, "failed to load session", err)
	}
	if err := cmdlog.WriteFile(opts.Output, cmds); err != nil {
		return failWith(cmd, opts.RootOptions, "failed to write log", err)
	}
	opts.Logger.Info("session exported", "id", id, "file", opts.Output)

	result := ExportResult{ID: id, File: opts.Output, Commands: len(cmds)}
	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d commands from session %s to %s\n", len(cmds), id, opts.Output)
	return nil
}
