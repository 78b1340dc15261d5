// Package schema describes what the driver persists about schema state:
// the setup bundle executed on a fresh database, migration descriptors
// between schema versions, and the YAML manifest format they load from.
package schema

import "strings"

// localStorageDDL defines the driver's own key-value table, always appended
// to caller-supplied schema SQL during fresh setup.
const localStorageDDL = `CREATE TABLE IF NOT EXISTS local_storage (key TEXT PRIMARY KEY NOT NULL, value TEXT NOT NULL);
CREATE INDEX IF NOT EXISTS local_storage_key_index ON local_storage (key);`

// Bundle is the caller-supplied schema for a fresh database, stamped with
// the version the database reports after setup.
type Bundle struct {
	SQL     string
	Version int
}

// Render returns the effective setup script: the caller's DDL concatenated
// with the driver's local_storage definitions.
func (b Bundle) Render() string {
	sql := strings.TrimRight(b.SQL, "\n")
	if sql == "" {
		return localStorageDDL
	}
	return sql + "\n" + localStorageDDL
}
