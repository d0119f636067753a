package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gwright/bitemporal"
)

// GridOptions holds flags for the grid command.
type GridOptions struct {
	*RootOptions
	Scope string
}

// NewGridCommand creates the grid command.
func NewGridCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GridOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "grid <entity-type>",
		Short: "Render a scope's full bitemporal history as a grid",
		Long: `Render a scope's full bitemporal history as a text grid.

Rows are transaction-time slices, columns are valid-time slices, and
each cell names the version record covering that region by a letter
token assigned in commit order. Useful for eyeballing splits, revisions
and finalized rows at once.

Example:
  bitemp grid --db ./versions.db employee --scope '{"company_id":1,"employee_id":7}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrid(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scope, "scope", "", "scope key attributes as JSON (required)")
	_ = cmd.MarkFlagRequired("scope")

	return cmd
}

func runGrid(opts *GridOptions, typeName string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	scope, err := decodeAttrs(opts.Scope)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --scope", err)
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

	recs, err := eng.AllVersions(cmd.Context(), et, scope)
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "history query rejected", err)
	}

	grid := bitemporal.RenderGrid(recs)
	if opts.Format == "json" {
		return out.Success(map[string]any{"grid": grid, "versions": len(recs)})
	}
	fmt.Fprint(cmd.OutOrStdout(), grid)
	return nil
}
