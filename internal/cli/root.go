package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/openrails/openrails-sub024/internal/config"
	"github.com/openrails/openrails-sub024/internal/logging"
)

// RootOptions holds global flags and the state they produce.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	LogFile    string

	// Settings and Logger are filled in by Setup.
	Settings config.Settings
	Logger   *slog.Logger

	logCloser io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the cmdlog command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cmdlog",
		Short: "Record and replay simulator command logs",
		Long: `cmdlog records the commands a driver issues during a simulator session
and replays them deterministically against the headless replay engine.

Logs are stored in a compact binary format and can be archived in a
SQLite session database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.Setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.Close()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "append JSON logs to this file")

	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Setup validates the global flags, loads the configuration and builds the
// logger. It runs once; later calls do nothing.
func (o *RootOptions) Setup(cmd *cobra.Command) error {
	if o.Logger != nil {
		return nil
	}
	if o.Format == "" {
		o.Format = "text"
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	settings, err := config.Load(o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Settings = settings

	logOpts := logging.Options{Level: settings.LogLevel, Verbose: o.Verbose}
	if o.Verbose {
		logOpts.Console = cmd.ErrOrStderr()
	}

	logFile := o.LogFile
	if logFile == "" {
		logFile = settings.LogFile
	}
	if logFile != "" {
		f, err := logging.OpenFile(logFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		o.logCloser = f
		logOpts.File = f
	}

	o.Logger = logging.New(logOpts)
	o.Logger.Debug("configuration loaded", "config", o.ConfigFile, "format", o.Format)
	return nil
}

// Close releases the log file, if any.
func (o *RootOptions) Close() error {
	if o.logCloser == nil {
		return nil
	}
	err := o.logCloser.Close()
	o.logCloser = nil
	return err
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
