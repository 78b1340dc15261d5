// Package cache tracks which record identifiers the in-memory layer has
// already materialized, per table.
//
// The cache is an optimization layer only: an identifier is present only if
// the corresponding row was observed to exist in storage, and its absence
// never changes query correctness - only whether a full row or a bare
// identifier is returned. Entries are added after confirmed existence and
// removed on confirmed deletion or a full reset.
package cache

import "sync"

// Records is a two-level table -> identifier-set structure. Per-table sets
// are created on first use and never removed once created; Clear empties
// everything at once on a full reset.
//
// Mutation is expected to come from the single goroutine that owns the
// corresponding transaction commit, but all methods are safe for concurrent
// use.
type Records struct {
	mu     sync.Mutex
	tables map[string]map[string]bool // map[table]map[record id]bool
}

// NewRecords creates an empty record cache.
func NewRecords() *Records {
	return &Records{
		tables: make(map[string]map[string]bool),
	}
}

// IsCached reports whether the identifier is known for the table.
func (r *Records) IsCached(table, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tables[table] == nil {
		return false
	}
	return r.tables[table][id]
}

// MarkAsCached records the identifier for the table. Idempotent.
func (r *Records) MarkAsCached(table, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tables[table] == nil {
		r.tables[table] = make(map[string]bool)
	}
	r.tables[table][id] = true
}

// RemoveFromCache forgets the identifier for the table. Idempotent; a no-op
// when the table or identifier is absent.
func (r *Records) RemoveFromCache(table, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tables[table] == nil {
		return
	}
	delete(r.tables[table], id)
}

// Clear drops every table's entries. Used on full reset.
func (r *Records) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tables = make(map[string]map[string]bool)
}

// TableSize returns the number of identifiers cached for a table.
// Used for testing and introspection.
func (r *Records) TableSize(table string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.tables[table])
}
