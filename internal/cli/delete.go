package cli

import (
	"github.com/spf13/cobra"

	"github.com/gwright/bitemporal/temporal"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Scope string
	At    string
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <entity-type> [valid-range]",
		Short: "Logically delete a scope over a valid-time range",
		Long: `Logically delete a scope over a valid-time range.

Every active version intersecting the range is finalized; fragments of
those versions outside the range are re-committed with their old
attributes, so a delete narrower than a version splits it. With no range
the whole timeline is deleted. Nothing is physically removed: the
finalized rows stay visible to transaction-time travel.

The optional valid-range is an instant ("5") or an interval ("2..8").

Example:
  bitemp delete --db ./versions.db employee \
    --scope '{"company_id":1,"employee_id":7}' \
    2024-06-01T00:00:00Z..inf`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scope, "scope", "", "scope key attributes as JSON (required)")
	cmd.Flags().StringVar(&opts.At, "at", "", "commit instant (defaults to now)")
	_ = cmd.MarkFlagRequired("scope")

	return cmd
}

func runDelete(opts *DeleteOptions, typeName string, rangeArgs []string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	scope, err := decodeAttrs(opts.Scope)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --scope", err)
	}
	args, err := parseTemporalArgs(rangeArgs)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid valid-range", err)
	}
	if opts.At != "" {
		at, err := temporal.ParseInstant(opts.At)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --at", err)
		}
		if len(args) == 0 {
			args = append(args, temporal.AllTime())
		}
		args = append(args, at)
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

	// Deletion targets a scope, addressed through any of its active
	// versions.
	rec, err := eng.Current(cmd.Context(), et, scope, anchorInstant(args))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to query scope", err)
	}
	if rec == nil {
		zone := temporal.NewZone(temporal.AllTime(), temporal.Point(temporal.Forever))
		recs, err := eng.InZone(cmd.Context(), et, scope, zone)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to query scope", err)
		}
		if len(recs) == 0 {
			return out.Records(nil)
		}
		rec = recs[0]
	}

	finalized, err := eng.Delete(cmd.Context(), rec, args...)
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "delete rejected", err)
	}

	return out.Records(finalized)
}

// anchorInstant picks an instant inside the requested range, preferring
// its begin so the anchor lookup sees the versions being deleted.
func anchorInstant(args []any) temporal.Instant {
	if len(args) > 0 {
		switch v := args[0].(type) {
		case temporal.Interval:
			return v.Begin()
		case temporal.Instant:
			return v
		}
	}
	return temporal.Now()
}
