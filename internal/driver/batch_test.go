package driver

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tirpux/WatermelonDB/internal/sqlarg"
)

func textArgs(vals ...string) []sqlarg.Value {
	args := make([]sqlarg.Value, len(vals))
	for i, v := range vals {
		args[i] = sqlarg.Text(v)
	}
	return args
}

func createTaskOp(id, name string) CreateOp {
	return CreateOp{
		Table: "tasks",
		ID:    id,
		SQL:   "INSERT INTO tasks (id, name) VALUES (?, ?)",
		Args:  textArgs(id, name),
	}
}

func TestBatch_CreateCachesAfterCommit(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)

	require.NoError(t, d.Batch(ctx, []Operation{createTaskOp("t1", "write tests")}))

	assert.True(t, d.cache.IsCached("tasks", "t1"))

	// A committed create reads back as a bare identifier.
	rec, err := d.Find(ctx, "tasks", "t1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Cached())
	assert.Equal(t, "t1", rec.ID)
}

func TestBatch_ExecuteHasNoCacheEffect(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)

	require.NoError(t, d.Batch(ctx, []Operation{
		ExecuteOp{
			SQL:  "INSERT INTO tasks (id, name, done) VALUES (?, ?, ?)",
			Args: []sqlarg.Value{sqlarg.Text("t1"), sqlarg.Text("n"), sqlarg.Bool(true)},
		},
	}))

	assert.False(t, d.cache.IsCached("tasks", "t1"))

	// Boolean argument must have been bound as 1.
	n, err := d.Count(ctx, "SELECT count(*) FROM tasks WHERE done = 1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBatch_MarkDeletedSoftDeletesAndUncaches(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)
	require.NoError(t, d.Batch(ctx, []Operation{createTaskOp("t1", "a")}))

	require.NoError(t, d.Batch(ctx, []Operation{
		MarkDeletedOp{Table: "tasks", ID: "t1"},
	}))

	assert.False(t, d.cache.IsCached("tasks", "t1"))

	// The row survives with deleted status, pending permanent purge.
	n, err := d.Count(ctx, "SELECT count(*) FROM tasks WHERE id = 't1' AND _status = 'deleted'", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBatch_DestroyPermanentlyDeletesAndUncaches(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)
	require.NoError(t, d.Batch(ctx, []Operation{createTaskOp("t1", "a")}))

	require.NoError(t, d.Batch(ctx, []Operation{
		DestroyPermanentlyOp{Table: "tasks", ID: "t1"},
	}))

	assert.False(t, d.cache.IsCached("tasks", "t1"))

	n, err := d.Count(ctx, "SELECT count(*) FROM tasks", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBatch_FailureRollsBackStorageAndCache(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)
	require.NoError(t, d.Batch(ctx, []Operation{createTaskOp("t1", "a")}))

	// The second create violates the primary key and aborts the batch.
	err := d.Batch(ctx, []Operation{
		createTaskOp("t2", "b"),
		createTaskOp("t1", "duplicate"),
	})
	require.Error(t, err)

	assert.False(t, d.cache.IsCached("tasks", "t2"), "no cache mutation from a failed batch")

	n, err := d.Count(ctx, "SELECT count(*) FROM tasks", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "no row from the failed batch persists")
}

func TestBatch_RemovalWinsOverCreateWithinOneBatch(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)

	require.NoError(t, d.Batch(ctx, []Operation{
		createTaskOp("t1", "a"),
		DestroyPermanentlyOp{Table: "tasks", ID: "t1"},
	}))

	assert.False(t, d.cache.IsCached("tasks", "t1"))

	n, err := d.Count(ctx, "SELECT count(*) FROM tasks", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBatch_RemovalWinsRegardlessOfOperationOrder(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)

	// Supplied out of logical order: the delete targets nothing in storage,
	// but the post-commit cache passes still let the removal win.
	require.NoError(t, d.Batch(ctx, []Operation{
		DestroyPermanentlyOp{Table: "tasks", ID: "t1"},
		createTaskOp("t1", "a"),
	}))

	assert.False(t, d.cache.IsCached("tasks", "t1"))
}

type bogusOp struct{}

func (bogusOp) batchOperation() {}

func TestBatch_UnknownOperationAbortsBatch(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)

	err := d.Batch(ctx, []Operation{
		createTaskOp("t1", "a"),
		bogusOp{},
	})
	require.Error(t, err)

	var ue *UnknownOperationError
	require.ErrorAs(t, err, &ue)

	assert.False(t, d.cache.IsCached("tasks", "t1"))
	n, err := d.Count(ctx, "SELECT count(*) FROM tasks", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "the whole batch must roll back")
}

func TestBatch_EmptyBatchCommits(t *testing.T) {
	d := newTestDriver(t)
	setUpTestSchema(t, d, 1)

	assert.NoError(t, d.Batch(context.Background(), nil))
}

func TestDestroyDeletedRecords_PurgesSoftDeletedRows(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)

	require.NoError(t, d.Batch(ctx, []Operation{
		createTaskOp("t1", "a"),
		createTaskOp("t2", "b"),
		createTaskOp("t3", "c"),
		MarkDeletedOp{Table: "tasks", ID: "t1"},
		MarkDeletedOp{Table: "tasks", ID: "t2"},
	}))

	deleted, err := d.DeletedRecords(ctx, "tasks")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, deleted)

	require.NoError(t, d.DestroyDeletedRecords(ctx, "tasks", deleted))

	n, err := d.Count(ctx, "SELECT count(*) FROM tasks", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the live row remains")
	assert.False(t, d.cache.IsCached("tasks", "t1"))
	assert.False(t, d.cache.IsCached("tasks", "t2"))
}

func TestDestroyDeletedRecords_BestEffortOnPartialMatch(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)

	// None of these ids exist; the purge is silent best-effort.
	assert.NoError(t, d.DestroyDeletedRecords(ctx, "tasks", []string{"ghost-1", "ghost-2"}))
	assert.NoError(t, d.DestroyDeletedRecords(ctx, "tasks", nil))
}

func TestBatch_LargeOrderedBatch(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	setUpTestSchema(t, d, 1)

	var ops []Operation
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("t%02d", i)
		ops = append(ops, createTaskOp(id, "task"))
	}
	// Soft-delete every other record in the same batch.
	for i := 0; i < 50; i += 2 {
		ops = append(ops, MarkDeletedOp{Table: "tasks", ID: fmt.Sprintf("t%02d", i)})
	}

	require.NoError(t, d.Batch(ctx, ops))

	assert.False(t, d.cache.IsCached("tasks", "t00"))
	assert.True(t, d.cache.IsCached("tasks", "t01"))

	n, err := d.Count(ctx, "SELECT count(*) FROM tasks WHERE _status = 'deleted'", nil)
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}
