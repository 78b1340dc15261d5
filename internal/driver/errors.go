package driver

import (
	"errors"
	"fmt"
)

// SchemaNeededError reports that the persisted schema version is zero,
// unknown, or newer than expected. Recoverable only by a full destructive
// reset with a fresh schema.
type SchemaNeededError struct {
	// Version is the persisted version that was found.
	Version int
}

func (e *SchemaNeededError) Error() string {
	return fmt.Sprintf("schema needed: database reports version %d", e.Version)
}

// MigrationNeededError reports that the persisted version is older than
// expected and non-zero. Recoverable by applying migrations from
// CurrentVersion to the expected version; the driver never retries on its
// own.
type MigrationNeededError struct {
	CurrentVersion int
}

func (e *MigrationNeededError) Error() string {
	return fmt.Sprintf("migration needed: database is at version %d", e.CurrentVersion)
}

// IncompatibleMigrationError reports that a supplied migration's source
// version does not match the persisted version. Fatal: the caller built an
// incompatible migration chain. Storage and version are left untouched.
type IncompatibleMigrationError struct {
	Current int
	From    int
}

func (e *IncompatibleMigrationError) Error() string {
	return fmt.Sprintf("incompatible migration: database is at version %d, migration starts at %d",
		e.Current, e.From)
}

// UnknownOperationError reports an unrecognized operation in a batch.
// Fatal: the whole batch transaction aborts.
type UnknownOperationError struct {
	Op string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown batch operation: %s", e.Op)
}

// IsSchemaNeeded reports whether err (or anything it wraps) asks for a
// fresh schema.
func IsSchemaNeeded(err error) bool {
	var se *SchemaNeededError
	return errors.As(err, &se)
}

// MigrationNeededVersion extracts the current database version from a
// migration-needed error. The second return is false when err is not one.
func MigrationNeededVersion(err error) (int, bool) {
	var me *MigrationNeededError
	if errors.As(err, &me) {
		return me.CurrentVersion, true
	}
	return 0, false
}

// IsIncompatibleMigration reports whether err is a migration chain defect.
func IsIncompatibleMigration(err error) bool {
	var ie *IncompatibleMigrationError
	return errors.As(err, &ie)
}
