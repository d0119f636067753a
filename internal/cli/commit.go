package cli

import (
	"github.com/spf13/cobra"

	"github.com/gwright/bitemporal"
	"github.com/gwright/bitemporal/temporal"
)

// CommitOptions holds flags for the commit command.
type CommitOptions struct {
	*RootOptions
	Attrs     string
	ValidFrom string
	ValidTo   string
	At        string
}

// NewCommitCommand creates the commit command.
func NewCommitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "commit <entity-type>",
		Short: "Commit a new version over a valid-time interval",
		Long: `Commit a new version over a valid-time interval.

The attributes JSON must supply every scope key of the entity type, plus
any value keys. The commit fails with SCOPE_OVERLAP when the interval
intersects an active version of the same scope.

Example:
  bitemp commit --db ./versions.db employee \
    --attrs '{"company_id":1,"employee_id":7,"title":"engineer"}' \
    --from 2024-01-01T00:00:00Z --to inf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Attrs, "attrs", "{}", "record attributes as JSON")
	cmd.Flags().StringVar(&opts.ValidFrom, "from", "-inf", "begin of the valid-time interval")
	cmd.Flags().StringVar(&opts.ValidTo, "to", "inf", "end of the valid-time interval")
	cmd.Flags().StringVar(&opts.At, "at", "", "commit instant (defaults to now)")

	return cmd
}

func runCommit(opts *CommitOptions, typeName string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	attrs, err := decodeAttrs(opts.Attrs)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --attrs", err)
	}
	from, err := temporal.ParseInstant(opts.ValidFrom)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --from", err)
	}
	to, err := temporal.ParseInstant(opts.ValidTo)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --to", err)
	}
	commitTime, err := parseOptionalInstant(opts.At)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --at", err)
	}

	eng, st, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeStore(st)

	et, err := st.LookupEntityType(cmd.Context(), typeName)
	if err != nil {
		return WrapExitError(ExitCommandError, "unknown entity type", err)
	}

	rec := bitemporal.NewRecord(et, attrs, temporal.NewInterval(from, to))
	written, err := eng.Commit(cmd.Context(), rec, commitTime...)
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "commit rejected", err)
	}

	return out.Records(written)
}

// parseOptionalInstant turns an optional flag value into the variadic
// commit-time argument the engine takes.
func parseOptionalInstant(s string) ([]temporal.Instant, error) {
	if s == "" {
		return nil, nil
	}
	at, err := temporal.ParseInstant(s)
	if err != nil {
		return nil, err
	}
	return []temporal.Instant{at}, nil
}
