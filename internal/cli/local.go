package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLocalCommand creates the local command group.
func NewLocalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Read and write the local key-value storage",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "get <key>",
		Short:         "Print a local storage value",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDriver(rootOpts)
			if err != nil {
				return err
			}

			value, err := d.GetLocal(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "get local", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if value == nil {
				return out.Emit(map[string]any{"key": args[0], "value": nil},
					fmt.Sprintf("%s: (not set)", args[0]))
			}
			return out.Emit(map[string]any{"key": args[0], "value": *value},
				fmt.Sprintf("%s: %s", args[0], *value))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "set <key> <value>",
		Short:         "Write a local storage value",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDriver(rootOpts)
			if err != nil {
				return err
			}

			if err := d.SetLocal(cmd.Context(), args[0], args[1]); err != nil {
				return WrapExitError(ExitCommandError, "set local", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Emit(map[string]any{"key": args[0], "value": args[1]},
				fmt.Sprintf("%s: %s", args[0], args[1]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "del <key>",
		Short:         "Delete a local storage entry",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDriver(rootOpts)
			if err != nil {
				return err
			}

			if err := d.RemoveLocal(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitCommandError, "remove local", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Emit(map[string]any{"key": args[0]},
				fmt.Sprintf("%s: deleted", args[0]))
		},
	})

	return cmd
}
