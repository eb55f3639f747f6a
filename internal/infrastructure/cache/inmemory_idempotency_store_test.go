package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first mark wins", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "capture-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "capture-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired key can be marked again", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "capture-2", 10*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "capture-2")
		require.NoError(t, err)
		assert.False(t, processed)

		isNew, err := store.MarkProcessed(ctx, "capture-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("released key can be marked again", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "capture-3", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "capture-3"))

		processed, err := store.IsProcessed(ctx, "capture-3")
		require.NoError(t, err)
		assert.False(t, processed)

		isNew, err := store.MarkProcessed(ctx, "capture-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := NewInMemoryIdempotencyStoreWithInterval(5 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short", time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)

	assert.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)

	processed, err := store.IsProcessed(ctx, "long")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	const workers = 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, err := store.MarkProcessed(context.Background(), "capture-shared", time.Hour)
			if err == nil && isNew {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestNewIdempotencyStore_FallsBackToMemory(t *testing.T) {
	store := NewIdempotencyStore(nil, nil)
	defer store.Close()

	_, ok := store.(*InMemoryIdempotencyStore)
	assert.True(t, ok)
}
