package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the database's persisted schema version",
		Example: `  wmdb version --db ./app.db
  wmdb version --db ./app.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDriver(rootOpts)
			if err != nil {
				return err
			}

			version, err := d.SchemaVersion(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "read schema version", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Emit(
				map[string]any{"version": version},
				fmt.Sprintf("schema version: %d", version),
			)
		},
	}
}
