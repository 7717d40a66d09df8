package cli

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/openrails/openrails-sub024/internal/command"
	"github.com/openrails/openrails-sub024/internal/store"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	DB     string
	Delete string
	Kinds  bool
}

// SessionRecord is the JSON form of an archived session.
type SessionRecord struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	CreatedAt    time.Time      `json:"created_at"`
	Commands     int            `json:"commands"`
	ReplayEndsAt float64        `json:"replay_ends_at"`
	Kinds        map[string]int `json:"kinds,omitempty"`
}

// SessionsResult lists archived sessions.
type SessionsResult struct {
	Sessions []SessionRecord `json:"sessions"`
	Deleted  string          `json:"deleted,omitempty"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List or delete archived sessions",
		Long: `List the sessions in the session database, oldest first.

With --delete the named session and its commands are removed first.
With --kinds each session also reports how many commands of each kind it
holds.

Exit codes:
  0 - Success
  2 - Command error (unknown session, database error)

Examples:
  cmdlog sessions
  cmdlog sessions --db archive.db --format json
  cmdlog sessions --kinds
  cmdlog sessions --delete 0192f3a4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "session database (default from config)")
	cmd.Flags().StringVar(&opts.Delete, "delete", "", "delete the session with this id")
	cmd.Flags().BoolVar(&opts.Kinds, "kinds", false, "count commands per kind")

	return cmd
}

func runSessions(opts *SessionsOptions, cmd *cobra.Command) error {
	if err := opts.Setup(cmd); err != nil {
		return err
	}

	s, err := openStore(cmd, opts.RootOptions, opts.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	result := SessionsResult{Sessions: []SessionRecord{}}

	if opts.Delete != "" {
		if err := s.DeleteSession(ctx, opts.Delete); err != nil {
			return failWith(cmd, opts.RootOptions, "failed to delete session", err)
		}
		opts.Logger.Info("session deleted", "id", opts.Delete)
		result.Deleted = opts.Delete
	}

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return fail(cmd, opts.RootOptions, ExitCommandError, CodeStore, "failed to list sessions", err)
	}
	for _, sess := range sessions {
		r := sessionRecord(sess)
		if opts.Kinds {
			counts, err := s.KindCounts(ctx, sess.ID)
			if err != nil {
				return fail(cmd, opts.RootOptions, ExitCommandError, CodeStore, "failed to count kinds", err)
			}
			r.Kinds = make(map[string]int, len(counts))
			for k, n := range counts {
				r.Kinds[k.String()] = n
			}
		}
		result.Sessions = append(result.Sessions, r)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	if result.Deleted != "" {
		fmt.Fprintf(w, "Deleted session %s\n", result.Deleted)
	}
	if len(result.Sessions) == 0 {
		fmt.Fprintln(w, "No sessions.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED\tCOMMANDS\tENDS AT")
	for _, r := range result.Sessions {
		endsAt := "-"
		if r.Commands > 0 {
			endsAt = command.FormatTime(r.ReplayEndsAt)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Name, r.CreatedAt.Format(time.RFC3339), r.Commands, endsAt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if opts.Kinds {
		for _, r := range result.Sessions {
			fmt.Fprintf(w, "%s:", r.ID)
			for _, k := range slices.Sorted(maps.Keys(r.Kinds)) {
				fmt.Fprintf(w, " %s=%d", k, r.Kinds[k])
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

func sessionRecord(s store.Session) SessionRecord {
	return SessionRecord{
		ID:           s.ID,
		Name:         s.Name,
		CreatedAt:    s.CreatedAt,
		Commands:     s.CommandCount,
		ReplayEndsAt: s.ReplayEndsAt,
	}
}
