package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tirpux/WatermelonDB/internal/schema"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Manifest string
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply a migration manifest to the database",
		Long: `Validate a YAML migration manifest and apply its chain. The first step's
source version must equal the database's persisted version; each step
commits atomically together with its version stamp.`,
		Example:       `  wmdb migrate --db ./app.db --manifest ./migrations.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "path to migration manifest (required)")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}

func runMigrate(opts *MigrateOptions, cmd *cobra.Command) error {
	steps, err := schema.LoadManifest(opts.Manifest)
	if err != nil {
		return WrapExitError(ExitFailure, "load manifest", err)
	}
	if len(steps) == 0 {
		return NewExitError(ExitFailure, "manifest contains no migrations")
	}

	d, err := openDriver(opts.RootOptions)
	if err != nil {
		return err
	}

	if err := d.ApplyMigrations(cmd.Context(), steps); err != nil {
		return WrapExitError(ExitFailure, "apply migrations", err)
	}

	from, to := steps.Range()
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Emit(
		map[string]any{"from": from, "to": to, "steps": len(steps)},
		fmt.Sprintf("migrated from version %d to %d (%d steps)", from, to, len(steps)),
	)
}
