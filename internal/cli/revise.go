package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gwright/bitemporal"
	"github.com/gwright/bitemporal/temporal"
)

// ReviseOptions holds flags for the revise command.
type ReviseOptions struct {
	*RootOptions
	Scope   string
	ID      string
	Valid   string
	Changes string
	At      string
}

// NewReviseCommand creates the revise command.
func NewReviseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReviseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "revise <entity-type>",
		Short: "Revise the currently active version of a scope",
		Long: `Revise the currently active version of a scope.

The source version is selected with --id, or with --valid naming an
instant it covers. Changes may override value attributes and, under the
reserved keys vt_begin/vt_end, the revision's valid-time bounds. The
revision is clipped to each previously-valid segment it overlaps;
leftover fragments keep the old attributes.

Example:
  bitemp revise --db ./versions.db employee \
    --scope '{"company_id":1,"employee_id":7}' \
    --valid 2024-06-01T00:00:00Z \
    --changes '{"title":"principal engineer"}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevise(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scope, "scope", "", "scope key attributes as JSON (required)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "ID of the version to revise")
	cmd.Flags().StringVar(&opts.Valid, "valid", "", "instant the version to revise covers")
	cmd.Flags().StringVar(&opts.Changes, "changes", "{}", "attribute changes as JSON")
	cmd.Flags().StringVar(&opts.At, "at", "", "commit instant (defaults to now)")
	_ = cmd.MarkFlagRequired("scope")

	return cmd
}

func runRevise(opts *ReviseOptions, typeName string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	scope, err := decodeAttrs(opts.Scope)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --scope", err)
	}
	changes, err := decodeChanges(opts.Changes)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --changes", err)
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

	rec, err := selectRecord(opts, eng, et, scope, cmd)
	if err != nil {
		return err
	}

	written, err := eng.Revise(cmd.Context(), rec, changes, commitTime...)
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "revision rejected", err)
	}
	if len(written) == 0 {
		out.VerboseLog("revision is identical to the current version; nothing written")
	}

	return out.Records(written)
}

// selectRecord resolves the source version from --id or --valid.
func selectRecord(opts *ReviseOptions, eng *bitemporal.Engine, et *bitemporal.EntityType, scope bitemporal.Attrs, cmd *cobra.Command) (*bitemporal.Record, error) {
	switch {
	case opts.ID != "":
		zone := temporal.NewZone(temporal.AllTime(), temporal.Point(temporal.Forever))
		recs, err := eng.InZone(cmd.Context(), et, scope, zone)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to query scope", err)
		}
		for _, rec := range recs {
			if rec.ID == opts.ID {
				return rec, nil
			}
		}
		return nil, NewExitError(ExitFailure, fmt.Sprintf("no active version %s in scope", opts.ID))
	case opts.Valid != "":
		at, err := temporal.ParseInstant(opts.Valid)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --valid", err)
		}
		rec, err := eng.Current(cmd.Context(), et, scope, at)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to query scope", err)
		}
		if rec == nil {
			return nil, NewExitError(ExitFailure, fmt.Sprintf("no active version covers %s", at))
		}
		return rec, nil
	default:
		return nil, NewExitError(ExitCommandError, "one of --id or --valid is required")
	}
}

// decodeChanges parses the --changes JSON, converting the reserved
// vt_begin/vt_end keys into instants.
func decodeChanges(raw string) (bitemporal.Attrs, error) {
	changes, err := decodeAttrs(raw)
	if err != nil {
		return nil, err
	}
	for _, k := range []string{bitemporal.ColVTBegin, bitemporal.ColVTEnd} {
		v, ok := changes[k]
		if !ok {
			continue
		}
		switch v := v.(type) {
		case int64:
			changes[k] = temporal.Instant(v)
		case string:
			at, err := temporal.ParseInstant(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			changes[k] = at
		default:
			return nil, fmt.Errorf("%s value %T is not an instant", k, v)
		}
	}
	return changes, nil
}
