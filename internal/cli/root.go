// Package cli implements the wmdb maintenance commands: inspecting the
// persisted schema version, setting up a fresh schema, validating and
// applying migration manifests, and reading or writing local storage.
//
// The driver packages never import this package.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tirpux/WatermelonDB/internal/conn"
	"github.com/Tirpux/WatermelonDB/internal/driver"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the wmdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "wmdb",
		Short: "Maintenance tool for driver-managed SQLite databases",
		Long: `wmdb inspects and maintains databases managed by the persistence driver:
schema versions, migration manifests, and the local key-value storage.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "logical database name or path")

	cmd.AddCommand(NewVersionCommand(opts))
	cmd.AddCommand(NewSetupCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewLocalCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openDriver builds a driver for the --db flag with logging wired to the
// verbose flag.
func openDriver(opts *RootOptions) (*driver.Driver, error) {
	if opts.Database == "" {
		return nil, NewExitError(ExitCommandError, "--db is required")
	}

	logger := zerolog.Nop()
	if opts.Verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
	}

	d, err := driver.New(driver.Options{
		Name:     opts.Database,
		Registry: conn.NewRegistry(logger),
		Logger:   &logger,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	return d, nil
}
