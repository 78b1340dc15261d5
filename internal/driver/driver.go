// Package driver is the transactional persistence core. It sits between an
// application's record model and the embedded SQLite engine: it tracks which
// records the in-memory layer already knows about, gates every database on
// schema version compatibility, and applies heterogeneous write batches as a
// single all-or-nothing unit.
package driver

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Tirpux/WatermelonDB/internal/cache"
	"github.com/Tirpux/WatermelonDB/internal/conn"
	"github.com/Tirpux/WatermelonDB/internal/dbpath"
	"github.com/Tirpux/WatermelonDB/internal/record"
	"github.com/Tirpux/WatermelonDB/internal/schema"
)

// Options configures a Driver.
type Options struct {
	// Name is the logical database name; resolved once at initialization.
	Name string
	// Registry supplies shared handles. Optional: when nil the driver uses
	// a private registry, giving up handle sharing with other drivers.
	Registry *conn.Registry
	// IDs mints identifiers for new records. Optional: defaults to
	// time-sortable UUIDv7 ids. Tests inject record.FixedGenerator for
	// deterministic ids.
	IDs record.IDGenerator
	// Logger for structured diagnostics. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Driver wraps one shared database handle and the record cache layered
// over it. A Driver is not a connection pool: SQLite admits one writer,
// and the handle serializes transactions.
type Driver struct {
	conn  *conn.Conn
	cache *cache.Records
	ids   record.IDGenerator
	log   zerolog.Logger
	name  string
}

// New resolves the logical name and acquires the shared handle for it.
// Two drivers created with the same name and registry share one handle.
func New(opts Options) (*Driver, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	path, err := dbpath.Resolve(opts.Name)
	if err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = conn.NewRegistry(logger)
	}

	c, err := registry.Acquire(path)
	if err != nil {
		return nil, err
	}

	ids := opts.IDs
	if ids == nil {
		ids = record.UUIDv7Generator{}
	}

	return &Driver{
		conn:  c,
		cache: cache.NewRecords(),
		ids:   ids,
		log:   logger.With().Str("db", opts.Name).Logger(),
		name:  opts.Name,
	}, nil
}

// NewRecordID mints a fresh identifier for a record about to be created.
// Callers bind it into the CreateOp they hand to Batch.
func (d *Driver) NewRecordID() string {
	return d.ids.Generate()
}

// SchemaVersion reads the persisted schema version.
func (d *Driver) SchemaVersion(ctx context.Context) (int, error) {
	return d.conn.UserVersion(ctx)
}

// Status is the schema gate's verdict for an expected version.
type Status int

const (
	// StatusCompatible means the persisted version equals the expected one.
	StatusCompatible Status = iota
	// StatusNeedsSchema means the database is fresh, unknown, or newer than
	// expected; only a full reset with a fresh schema recovers it.
	StatusNeedsSchema
	// StatusNeedsMigration means the database is behind the expected
	// version and migrations from its current version apply.
	StatusNeedsMigration
)

// Status reads the persisted version and classifies it against the
// expected one. The returned int is the persisted version.
func (d *Driver) Status(ctx context.Context, expectedVersion int) (Status, int, error) {
	version, err := d.conn.UserVersion(ctx)
	if err != nil {
		return StatusNeedsSchema, 0, err
	}

	switch {
	case version == expectedVersion:
		return StatusCompatible, version, nil
	case version > 0 && version < expectedVersion:
		return StatusNeedsMigration, version, nil
	default:
		return StatusNeedsSchema, version, nil
	}
}

// Compatible verifies the persisted version equals the expected one.
// A behind-but-initialized database yields *MigrationNeededError carrying
// the current version; anything else (fresh, or newer than expected)
// yields *SchemaNeededError. A mismatch is never silently ignored.
func (d *Driver) Compatible(ctx context.Context, expectedVersion int) error {
	status, version, err := d.Status(ctx, expectedVersion)
	if err != nil {
		return err
	}

	switch status {
	case StatusCompatible:
		return nil
	case StatusNeedsMigration:
		return &MigrationNeededError{CurrentVersion: version}
	default:
		return &SchemaNeededError{Version: version}
	}
}

// SetUpSchema executes the bundle's rendered script (caller DDL plus the
// local_storage definitions) and stamps the bundle version, atomically:
// either both the DDL and the version write land, or neither does.
func (d *Driver) SetUpSchema(ctx context.Context, bundle schema.Bundle) error {
	err := d.conn.InTransaction(ctx, func(tx *conn.Tx) error {
		if err := tx.ExecuteStatements(ctx, bundle.Render()); err != nil {
			return err
		}
		return tx.SetUserVersion(ctx, bundle.Version)
	})
	if err != nil {
		return err
	}

	d.log.Info().Int("version", bundle.Version).Msg("schema set up")
	return nil
}

// ApplyMigration applies a single migration. The persisted version must
// equal the migration's source version; otherwise the database is left
// untouched and *IncompatibleMigrationError is returned - a caller-side
// chain defect, not a retryable condition.
func (d *Driver) ApplyMigration(ctx context.Context, m schema.Migration) error {
	current, err := d.conn.UserVersion(ctx)
	if err != nil {
		return err
	}
	if current != m.From {
		return &IncompatibleMigrationError{Current: current, From: m.From}
	}

	err = d.conn.InTransaction(ctx, func(tx *conn.Tx) error {
		if err := tx.ExecuteStatements(ctx, m.SQL); err != nil {
			return err
		}
		return tx.SetUserVersion(ctx, m.To)
	})
	if err != nil {
		return err
	}

	d.log.Info().Int("from", m.From).Int("to", m.To).Msg("migration applied")
	return nil
}

// ApplyMigrations validates a chain and applies it in order. Each step
// commits on its own; a failing step stops the chain at the version the
// previous step produced.
func (d *Driver) ApplyMigrations(ctx context.Context, steps schema.Steps) error {
	if err := steps.Validate(); err != nil {
		return err
	}
	for _, m := range steps {
		if err := d.ApplyMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// UnsafeResetDatabase destroys all storage contents, clears the record
// cache entirely, and sets up the given bundle from scratch. Destructive
// and irreversible; the caller is responsible for gating its use.
func (d *Driver) UnsafeResetDatabase(ctx context.Context, bundle schema.Bundle) error {
	if err := d.conn.UnsafeDestroyEverything(ctx); err != nil {
		return err
	}
	d.cache.Clear()

	return d.SetUpSchema(ctx, bundle)
}
