package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tirpux/WatermelonDB/internal/schema"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a migration manifest without applying it",
		Long: `Check a YAML migration manifest against the manifest schema and verify
the chain is contiguous. No database is touched.`,
		Example:       `  wmdb validate ./migrations.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := schema.LoadManifest(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "invalid manifest", err)
			}

			from, to := steps.Range()
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Emit(
				map[string]any{"steps": len(steps), "from": from, "to": to},
				fmt.Sprintf("manifest ok: %d steps, versions %d -> %d", len(steps), from, to),
			)
		},
	}
}
