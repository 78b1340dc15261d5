package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords_EmptyCacheKnowsNothing(t *testing.T) {
	r := NewRecords()
	assert.False(t, r.IsCached("tasks", "t1"))
	assert.Equal(t, 0, r.TableSize("tasks"))
}

func TestRecords_MarkAsCached(t *testing.T) {
	r := NewRecords()

	r.MarkAsCached("tasks", "t1")

	assert.True(t, r.IsCached("tasks", "t1"))
	assert.False(t, r.IsCached("tasks", "t2"), "other ids stay unknown")
	assert.False(t, r.IsCached("comments", "t1"), "other tables stay unknown")
}

func TestRecords_MarkAsCachedIdempotent(t *testing.T) {
	r := NewRecords()

	r.MarkAsCached("tasks", "t1")
	r.MarkAsCached("tasks", "t1")

	assert.True(t, r.IsCached("tasks", "t1"))
	assert.Equal(t, 1, r.TableSize("tasks"))
}

func TestRecords_RemoveFromCache(t *testing.T) {
	r := NewRecords()
	r.MarkAsCached("tasks", "t1")

	r.RemoveFromCache("tasks", "t1")

	assert.False(t, r.IsCached("tasks", "t1"))
}

func TestRecords_RemoveFromCacheAbsentIsNoop(t *testing.T) {
	r := NewRecords()

	// Neither the table nor the id exist; both removals must be no-ops.
	r.RemoveFromCache("tasks", "t1")
	r.MarkAsCached("tasks", "t1")
	r.RemoveFromCache("tasks", "t2")

	assert.True(t, r.IsCached("tasks", "t1"))
}

func TestRecords_Clear(t *testing.T) {
	r := NewRecords()
	r.MarkAsCached("tasks", "t1")
	r.MarkAsCached("comments", "c1")

	r.Clear()

	assert.False(t, r.IsCached("tasks", "t1"))
	assert.False(t, r.IsCached("comments", "c1"))
}

func TestRecords_ConcurrentAccess(t *testing.T) {
	r := NewRecords()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.MarkAsCached("tasks", "t1")
				r.IsCached("tasks", "t1")
				r.RemoveFromCache("tasks", "t1")
			}
		}()
	}
	wg.Wait()

	require.False(t, r.IsCached("tasks", "t1"))
}
