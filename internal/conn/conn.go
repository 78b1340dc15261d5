// Package conn adapts the embedded SQLite engine to the narrow contract the
// driver consumes: statement execution, raw queries, counts, a scoped
// transaction primitive, the persisted user version, and a destroy-everything
// operation.
//
// Each Conn owns exactly one open connection. SQLite supports a single
// writer at a time, so the pool is capped at one connection and an explicit
// mutex keeps at most one transaction in flight per handle.
package conn

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Row is a single result row, keyed by column name.
type Row map[string]any

// Conn wraps one open connection to a SQLite database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes (file databases)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
type Conn struct {
	db   *sql.DB
	path string
	log  zerolog.Logger

	// txMu admits one transaction at a time; a long-running transaction
	// blocks all other transactions on the same handle until it completes.
	txMu sync.Mutex
}

// Open creates or opens a SQLite database at the given resolved path.
// Safe to call multiple times for distinct paths; use a Registry to share
// one handle per logical name.
func Open(path string, logger zerolog.Logger) (*Conn, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Single writer to avoid SQLITE_BUSY errors; the one connection also
	// keeps in-memory databases alive for the handle's lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	logger.Debug().Str("path", path).Msg("database opened")

	return &Conn{db: db, path: path, log: logger}, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// Path returns the resolved storage location this handle was opened with.
func (c *Conn) Path() string {
	return c.path
}

// Close closes the underlying connection. A Registry-owned Conn is normally
// never closed explicitly; Close exists for tests and teardown paths.
func (c *Conn) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Execute runs a single statement with bound arguments.
// Fails on constraint violations and syntax errors.
func (c *Conn) Execute(ctx context.Context, query string, args []any) error {
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

// ExecuteStatements runs a script of one or more statements without
// arguments. Used for schema and migration SQL.
func (c *Conn) ExecuteStatements(ctx context.Context, script string) error {
	if _, err := c.db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("execute statements: %w", err)
	}
	return nil
}

// QueryRaw runs a read query and returns every row as a column-name keyed
// map, preserving the engine's row ordering.
func (c *Conn) QueryRaw(ctx context.Context, query string, args []any) ([]Row, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// Count runs a query expected to produce a single integer column.
func (c *Conn) Count(ctx context.Context, query string, args []any) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// UserVersion reads the persisted schema version.
func (c *Conn) UserVersion(ctx context.Context) (int, error) {
	var version int
	if err := c.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// Tx is a scoped transaction over a Conn. Effects commit iff the
// InTransaction body completes without failure.
type Tx struct {
	tx *sql.Tx
}

// Execute runs a single statement with bound arguments inside the transaction.
func (t *Tx) Execute(ctx context.Context, query string, args []any) error {
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

// ExecuteStatements runs a multi-statement script inside the transaction.
func (t *Tx) ExecuteStatements(ctx context.Context, script string) error {
	if _, err := t.tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("execute statements: %w", err)
	}
	return nil
}

// QueryRaw runs a read query inside the transaction.
func (t *Tx) QueryRaw(ctx context.Context, query string, args []any) ([]Row, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// SetUserVersion persists the schema version inside the transaction, so a
// version write lands atomically with the DDL it stamps.
// PRAGMA does not accept bound parameters; the value is formatted directly.
func (t *Tx) SetUserVersion(ctx context.Context, version int) error {
	if _, err := t.tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// InTransaction runs body inside exactly one transaction. The body's effects
// commit iff it returns nil; otherwise all effects roll back. InTransaction
// returns nil only after an observed successful COMMIT - callers gate
// post-commit state (such as cache mutation) on that signal.
func (c *Conn) InTransaction(ctx context.Context, body func(tx *Tx) error) error {
	c.txMu.Lock()
	defer c.txMu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := body(&Tx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.log.Error().Err(rbErr).Str("path", c.path).Msg("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UnsafeDestroyEverything drops every view and table and resets the
// persisted version to zero. Destructive and irreversible; callers are
// responsible for gating its use.
func (c *Conn) UnsafeDestroyEverything(ctx context.Context) error {
	c.txMu.Lock()
	defer c.txMu.Unlock()

	// Triggers and indexes are removed together with their tables.
	rows, err := c.db.QueryContext(ctx, `
		SELECT type, name FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
	`)
	if err != nil {
		return fmt.Errorf("list schema objects: %w", err)
	}

	var tables, views []string
	for rows.Next() {
		var typ, name string
		if err := rows.Scan(&typ, &name); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema object: %w", err)
		}
		if typ == "view" {
			views = append(views, name)
		} else {
			tables = append(tables, name)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate schema objects: %w", err)
	}
	rows.Close()

	// Foreign keys are suspended so drop order doesn't matter.
	if _, err := c.db.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("suspend foreign_keys: %w", err)
	}
	for _, view := range views {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DROP VIEW IF EXISTS %q", view)); err != nil {
			return fmt.Errorf("drop view %s: %w", view, err)
		}
	}
	for _, table := range tables {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}
	if _, err := c.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("restore foreign_keys: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, "PRAGMA user_version = 0"); err != nil {
		return fmt.Errorf("reset user_version: %w", err)
	}

	c.log.Info().Str("path", c.path).Int("tables", len(tables)).Msg("database contents destroyed")
	return nil
}

// collectRows drains a result set into column-name keyed maps.
func collectRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = vals[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	if out == nil {
		out = []Row{}
	}
	return out, nil
}
