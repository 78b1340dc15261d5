package driver

import (
	"context"
	"fmt"

	"github.com/Tirpux/WatermelonDB/internal/conn"
	"github.com/Tirpux/WatermelonDB/internal/sqlarg"
)

// Record is a read result. Fields is nil when the record was already
// cached - the caller is expected to hold the materialized record and only
// its identifier is returned.
type Record struct {
	ID     string
	Fields conn.Row
}

// Cached reports whether this is a bare-identifier result.
func (r Record) Cached() bool {
	return r.Fields == nil
}

// Find looks up a single record by id. A cached id returns a bare record
// without touching storage. A miss queries the engine: no row yields
// (nil, nil); a found row is marked cached and returned in full.
func (d *Driver) Find(ctx context.Context, table, id string) (*Record, error) {
	if d.cache.IsCached(table, id) {
		return &Record{ID: id}, nil
	}

	rows, err := d.conn.QueryRaw(ctx,
		fmt.Sprintf("SELECT * FROM %q WHERE id == ? LIMIT 1", table), []any{id})
	if err != nil {
		return nil, fmt.Errorf("find %s.%s: %w", table, id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	d.cache.MarkAsCached(table, id)
	return &Record{ID: id, Fields: rows[0]}, nil
}

// CachedQuery executes a read query over one table. Rows whose identifier
// is already cached come back bare; the rest are marked cached and returned
// in full. The engine's row ordering is preserved.
func (d *Driver) CachedQuery(ctx context.Context, table, query string, args []sqlarg.Value) ([]Record, error) {
	rows, err := d.conn.QueryRaw(ctx, query, sqlarg.Bind(args))
	if err != nil {
		return nil, fmt.Errorf("cached query on %s: %w", table, err)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		id, err := rowID(row)
		if err != nil {
			return nil, fmt.Errorf("cached query on %s: row %d: %w", table, i, err)
		}
		if d.cache.IsCached(table, id) {
			records = append(records, Record{ID: id})
			continue
		}
		d.cache.MarkAsCached(table, id)
		records = append(records, Record{ID: id, Fields: row})
	}
	return records, nil
}

// QueryIDs executes a read query and returns only record identifiers.
// No caching side effect.
func (d *Driver) QueryIDs(ctx context.Context, query string, args []sqlarg.Value) ([]string, error) {
	rows, err := d.conn.QueryRaw(ctx, query, sqlarg.Bind(args))
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for i, row := range rows {
		id, err := rowID(row)
		if err != nil {
			return nil, fmt.Errorf("query ids: row %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Count delegates a counting query to the engine. Boolean arguments are
// normalized to 0/1 before binding.
func (d *Driver) Count(ctx context.Context, query string, args []sqlarg.Value) (int, error) {
	return d.conn.Count(ctx, query, sqlarg.Bind(args))
}

// DeletedRecords returns the ids of rows soft-deleted from a table,
// pending permanent purge via DestroyDeletedRecords.
func (d *Driver) DeletedRecords(ctx context.Context, table string) ([]string, error) {
	return d.QueryIDs(ctx,
		fmt.Sprintf("SELECT id FROM %q WHERE _status == 'deleted'", table), nil)
}

// GetLocal reads a local storage value. Returns nil when the key is absent.
func (d *Driver) GetLocal(ctx context.Context, key string) (*string, error) {
	rows, err := d.conn.QueryRaw(ctx,
		"SELECT value FROM local_storage WHERE key == ?", []any{key})
	if err != nil {
		return nil, fmt.Errorf("get local %q: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	value, ok := rows[0]["value"].(string)
	if !ok {
		return nil, fmt.Errorf("get local %q: value is %T, not text", key, rows[0]["value"])
	}
	return &value, nil
}

// SetLocal writes a local storage value, replacing any previous one.
func (d *Driver) SetLocal(ctx context.Context, key, value string) error {
	err := d.conn.Execute(ctx,
		"INSERT OR REPLACE INTO local_storage (key, value) VALUES (?, ?)",
		[]any{key, value})
	if err != nil {
		return fmt.Errorf("set local %q: %w", key, err)
	}
	return nil
}

// RemoveLocal deletes a local storage entry. A no-op for absent keys.
func (d *Driver) RemoveLocal(ctx context.Context, key string) error {
	if err := d.conn.Execute(ctx,
		"DELETE FROM local_storage WHERE key == ?", []any{key}); err != nil {
		return fmt.Errorf("remove local %q: %w", key, err)
	}
	return nil
}

// rowID extracts the record identifier column from a raw row.
func rowID(row conn.Row) (string, error) {
	id, ok := row["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("missing id column")
	}
	return id, nil
}
