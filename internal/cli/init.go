package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init <schema-file>",
		Short: "Register entity types from a YAML schema file",
		Long: `Register entity types from a YAML schema file.

Creates the database if it does not exist, then registers every entity
type the file declares, creating one version table per type. Registering
an already-known type with an identical schema is a no-op.

Example:
  bitemp init --db ./versions.db ./schemas.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, args[0], cmd)
		},
	}

	return cmd
}

func runInit(opts *InitOptions, schemaPath string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	types, err := LoadSchemas(schemaPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load schemas", err)
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeStore(st)

	names := make([]string, 0, len(types))
	for _, et := range types {
		if err := st.RegisterEntityType(cmd.Context(), et); err != nil {
			_ = out.Error(err)
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to register entity type %q", et.Name), err)
		}
		out.VerboseLog("registered entity type %s (scope=%v values=%v)", et.Name, et.ScopeKeys, et.ValueKeys)
		names = append(names, et.Name)
	}

	if opts.Format == "json" {
		return out.Success(map[string]any{"registered": names})
	}
	return out.Success(fmt.Sprintf("Registered %d entity type(s): %v", len(names), names))
}
