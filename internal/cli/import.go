package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	DB   string
	Name string
}

// ImportResult describes an archived session.
type ImportResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	File     string `json:"file"`
	Commands int    `json:"commands"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Archive a log file in the session database",
		Long: `Decode a command log and store it as a new session.

The session name defaults to the file name without its extension. The
database defaults to store.path from the configuration.

Exit codes:
  0 - Session stored
  2 - Command error (missing or corrupt file, database error)

Examples:
  cmdlog import session.orcl
  cmdlog import session.orcl --db archive.db --name "morning run"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "session database (default from config)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "session name")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	if err := opts.Setup(cmd); err != nil {
		return err
	}

	cmds, err := cmdlog.ReadFile(path)
	if err != nil {
		return failWith(cmd, opts.RootOptions, "failed to read log", err)
	}

	name := opts.Name
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	s, err := openStore(cmd, opts.RootOptions, opts.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.SaveSession(cmd.Context(), name, cmds)
	if err != nil {
		return fail(cmd, opts.RootOptions, ExitCommandError, CodeStore, "failed to save session", err)
	}
	opts.Logger.Info("session imported", "id", id, "name", name, "commands", len(cmds))

	result := ImportResult{ID: id, Name: name, File: path, Commands: len(cmds)}
	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d commands as session %s (%s)\n", len(cmds), id, name)
	return nil
}

// openStore opens the session database named by flag, or the configured
// one when flag is empty.
func openStore(cmd *cobra.Command, opts *RootOptions, flag string) (*store.Store, error) {
	path := flag
	if path == "" {
		path = opts.Settings.Store.Path
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fail(cmd, opts, ExitCommandError, CodeStore, "failed to open session database", err)
	}
	return s, nil
}
