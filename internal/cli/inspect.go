package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/command"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
}

// CommandRecord is the JSON form of one logged command.
type CommandRecord struct {
	Index       int      `json:"index"`
	Kind        string   `json:"kind"`
	Shape       string   `json:"shape"`
	Time        float64  `json:"time"`
	Description string   `json:"description"`
	ToState     *bool    `json:"to_state,omitempty"`
	Control     *int     `json:"control_index,omitempty"`
	Increase    *bool    `json:"increase,omitempty"`
	Target      *float64 `json:"target,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
	Label       string   `json:"label,omitempty"`
}

// InspectResult lists the commands of a log file.
type InspectResult struct {
	File     string          `json:"file"`
	Commands []CommandRecord `json:"commands"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the commands in a log file",
		Long: `Decode a command log and print one line per command.

Exit codes:
  0 - Log decoded
  2 - Command error (missing or corrupt file)

Examples:
  cmdlog inspect session.orcl
  cmdlog inspect session.orcl --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	if err := opts.Setup(cmd); err != nil {
		return err
	}

	cmds, err := cmdlog.ReadFile(path)
	if err != nil {
		return failWith(cmd, opts.RootOptions, "failed to read log", err)
	}

	if opts.Format == "json" {
		result := InspectResult{File: path, Commands: make([]CommandRecord, len(cmds))}
		for i, c := range cmds {
			result.Commands[i] = toRecord(i, c)
		}
		return opts.formatter(cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	for i, c := range cmds {
		fmt.Fprintf(w, "%4d  %s\n", i, c.Describe())
	}
	fmt.Fprintf(w, "%d commands\n", len(cmds))
	return nil
}

func toRecord(i int, c command.Command) CommandRecord {
	r := CommandRecord{
		Index:       i,
		Kind:        c.Kind().String(),
		Shape:       c.Shape().String(),
		Time:        c.Time(),
		Description: c.Describe(),
	}
	p := c.Payload()
	switch c.Shape() {
	case command.ShapeBoolean:
		r.ToState = &p.ToState
	case command.ShapeIndexed:
		r.ToState = &p.ToState
		r.Control = &p.Index
	case command.ShapeContinuous:
		r.Increase = &p.Increase
		r.Target = p.Target
	case command.ShapePaused:
		r.Duration = &p.Duration
	case command.ShapeCamera, command.ShapeSave:
		r.Label = p.Label
	}
	return r
}
