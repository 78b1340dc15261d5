package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tirpux/WatermelonDB/internal/driver"
	"github.com/Tirpux/WatermelonDB/internal/sqlarg"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	SQL         string
	Args        string
	CreateTable string
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run one write statement with bound arguments",
		Long: `Run a single write statement in its own transaction. Arguments are
supplied as a JSON array and bound positionally; booleans bind as 0/1.

With --create-table, a fresh record id is minted, bound as the first
placeholder ahead of the supplied arguments, and printed on success.`,
		Example: `  wmdb exec --db ./app.db --sql "UPDATE tasks SET done = ? WHERE id = ?" --args '[true, "t1"]'
  wmdb exec --db ./app.db --create-table tasks --sql "INSERT INTO tasks (id, name) VALUES (?, ?)" --args '["milk"]'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SQL, "sql", "", "statement to run (required)")
	cmd.Flags().StringVar(&opts.Args, "args", "[]", "JSON array of arguments to bind")
	cmd.Flags().StringVar(&opts.CreateTable, "create-table", "", "mint a fresh record id for this table and bind it first")
	_ = cmd.MarkFlagRequired("sql")

	return cmd
}

func runExec(opts *ExecOptions, cmd *cobra.Command) error {
	bound, err := sqlarg.Decode([]byte(opts.Args))
	if err != nil {
		return WrapExitError(ExitCommandError, "parse arguments", err)
	}

	d, err := openDriver(opts.RootOptions)
	if err != nil {
		return err
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	ctx := cmd.Context()

	if opts.CreateTable != "" {
		id := d.NewRecordID()
		op := driver.CreateOp{
			Table: opts.CreateTable,
			ID:    id,
			SQL:   opts.SQL,
			Args:  append([]sqlarg.Value{sqlarg.Text(id)}, bound...),
		}
		if err := d.Batch(ctx, []driver.Operation{op}); err != nil {
			return WrapExitError(ExitFailure, "execute statement", err)
		}
		return out.Emit(
			map[string]any{"table": opts.CreateTable, "id": id},
			fmt.Sprintf("created %s/%s", opts.CreateTable, id),
		)
	}

	op := driver.ExecuteOp{SQL: opts.SQL, Args: bound}
	if err := d.Batch(ctx, []driver.Operation{op}); err != nil {
		return WrapExitError(ExitFailure, "execute statement", err)
	}
	return out.Emit(
		map[string]any{"arguments": len(bound)},
		"statement executed",
	)
}
