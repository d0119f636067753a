package cli

import (
	"github.com/spf13/cobra"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Scope string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <entity-type> [valid] [transaction]",
		Short: "Read the version history of a scope",
		Long: `Read the version history of a scope through a bitemporal slice.

The optional positional arguments name the valid-time and transaction-
time slices; each is an instant ("5", "2024-06-01T00:00:00Z", "inf") or
a range ("2..8"). With no arguments the slice is all of valid time,
active versions only. A single argument names the valid slice; the
second names the transaction slice, enabling time travel through past
database states. Slices starting with "-" (such as "-inf..inf") must
follow a "--" terminator so they are not read as flags.

Examples:
  bitemp history --db ./versions.db employee --scope '{"company_id":1,"employee_id":7}'
  bitemp history --db ./versions.db employee --scope '{"company_id":1,"employee_id":7}' -- -inf..inf 15`,
		Args:          cobra.RangeArgs(1, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scope, "scope", "", "scope key attributes as JSON (required)")
	_ = cmd.MarkFlagRequired("scope")

	return cmd
}

func runHistory(opts *HistoryOptions, typeName string, sliceArgs []string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	scope, err := decodeAttrs(opts.Scope)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --scope", err)
	}
	args, err := parseTemporalArgs(sliceArgs)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid slice argument", err)
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

	recs, err := eng.Versions(cmd.Context(), et, scope, args...)
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "history query rejected", err)
	}

	return out.Records(recs)
}
