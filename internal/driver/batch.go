package driver

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tirpux/WatermelonDB/internal/conn"
	"github.com/Tirpux/WatermelonDB/internal/sqlarg"
)

// Operation is a sealed interface over the write operations a batch may
// carry. Only ExecuteOp, CreateOp, MarkDeletedOp, and DestroyPermanentlyOp
// implement it.
type Operation interface {
	batchOperation()
}

// ExecuteOp runs arbitrary SQL with bound arguments. No cache effect.
type ExecuteOp struct {
	SQL  string
	Args []sqlarg.Value
}

func (ExecuteOp) batchOperation() {}

// CreateOp runs an insert statement and, after the batch commits, records
// (Table, ID) in the cache.
type CreateOp struct {
	Table string
	ID    string
	SQL   string
	Args  []sqlarg.Value
}

func (CreateOp) batchOperation() {}

// MarkDeletedOp soft-deletes a row by setting its status column and, after
// the batch commits, removes (Table, ID) from the cache.
type MarkDeletedOp struct {
	Table string
	ID    string
}

func (MarkDeletedOp) batchOperation() {}

// DestroyPermanentlyOp hard-deletes a row and, after the batch commits,
// removes (Table, ID) from the cache.
type DestroyPermanentlyOp struct {
	Table string
	ID    string
}

func (DestroyPermanentlyOp) batchOperation() {}

// tableID queues a post-commit cache mutation.
type tableID struct {
	table string
	id    string
}

// Batch applies an ordered sequence of operations inside exactly one
// transaction. If any operation fails the entire batch rolls back and the
// cache is left untouched.
//
// Cache mutation is strictly gated on the commit signal and applies in two
// passes: all insertions, then all removals. Within one batch a removal for
// an id therefore always wins over an insertion for the same id, regardless
// of the order the operations were supplied in.
func (d *Driver) Batch(ctx context.Context, ops []Operation) error {
	var toCache, toRemove []tableID

	err := d.conn.InTransaction(ctx, func(tx *conn.Tx) error {
		for i, op := range ops {
			switch o := op.(type) {
			case ExecuteOp:
				if err := tx.Execute(ctx, o.SQL, sqlarg.Bind(o.Args)); err != nil {
					return fmt.Errorf("batch operation %d (execute): %w", i, err)
				}

			case CreateOp:
				if err := tx.Execute(ctx, o.SQL, sqlarg.Bind(o.Args)); err != nil {
					return fmt.Errorf("batch operation %d (create %s.%s): %w", i, o.Table, o.ID, err)
				}
				toCache = append(toCache, tableID{o.Table, o.ID})

			case MarkDeletedOp:
				query := fmt.Sprintf("UPDATE %q SET _status = 'deleted' WHERE id == ?", o.Table)
				if err := tx.Execute(ctx, query, []any{o.ID}); err != nil {
					return fmt.Errorf("batch operation %d (mark deleted %s.%s): %w", i, o.Table, o.ID, err)
				}
				toRemove = append(toRemove, tableID{o.Table, o.ID})

			case DestroyPermanentlyOp:
				query := fmt.Sprintf("DELETE FROM %q WHERE id == ?", o.Table)
				if err := tx.Execute(ctx, query, []any{o.ID}); err != nil {
					return fmt.Errorf("batch operation %d (destroy %s.%s): %w", i, o.Table, o.ID, err)
				}
				toRemove = append(toRemove, tableID{o.Table, o.ID})

			default:
				return &UnknownOperationError{Op: fmt.Sprintf("%T", op)}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, e := range toCache {
		d.cache.MarkAsCached(e.table, e.id)
	}
	for _, e := range toRemove {
		d.cache.RemoveFromCache(e.table, e.id)
	}

	d.log.Debug().
		Int("operations", len(ops)).
		Int("cached", len(toCache)).
		Int("removed", len(toRemove)).
		Msg("batch committed")
	return nil
}

// DestroyDeletedRecords permanently purges previously soft-deleted rows in
// bulk, outside the batch protocol. Best-effort: ids with no matching row
// are skipped without error. Purged ids are removed from the cache.
func (d *Driver) DestroyDeletedRecords(ctx context.Context, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf("DELETE FROM %q WHERE id IN (%s)", table, placeholders)
	if err := d.conn.Execute(ctx, query, args); err != nil {
		return fmt.Errorf("destroy deleted records in %s: %w", table, err)
	}

	for _, id := range ids {
		d.cache.RemoveFromCache(table, id)
	}
	return nil
}
