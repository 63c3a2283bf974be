// ABOUTME: Tests for the bounded in-memory session registry
// ABOUTME: Verifies lookup, replacement, TTL expiry, eviction, and concurrency

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry_GetMissing(t *testing.T) {
	r := NewMemoryRegistry(time.Hour, 100)
	defer r.Close()

	_, err := r.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRegistry_PutThenGet(t *testing.T) {
	r := NewMemoryRegistry(time.Hour, 100)
	defer r.Close()
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "u1", "conv-1"))
	got, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", got)
}

func TestMemoryRegistry_PutReplaces(t *testing.T) {
	r := NewMemoryRegistry(time.Hour, 100)
	defer r.Close()
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "u1", "conv-1"))
	require.NoError(t, r.Put(ctx, "u1", "conv-2"))
	got, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "conv-2", got)
}

func TestMemoryRegistry_TTLExpiry(t *testing.T) {
	r := NewMemoryRegistry(10*time.Millisecond, 100)
	defer r.Close()
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "u1", "conv-1"))
	time.Sleep(20 * time.Millisecond)
	_, err := r.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRegistry_EvictsOldestAtCapacity(t *testing.T) {
	r := NewMemoryRegistry(time.Hour, 2)
	defer r.Close()
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "u1", "conv-1"))
	require.NoError(t, r.Put(ctx, "u2", "conv-2"))
	require.NoError(t, r.Put(ctx, "u3", "conv-3"))

	_, err := r.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := r.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "conv-2", got)
}

func TestMemoryRegistry_UpdateRefreshesRecency(t *testing.T) {
	r := NewMemoryRegistry(time.Hour, 2)
	defer r.Close()
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "u1", "conv-1"))
	require.NoError(t, r.Put(ctx, "u2", "conv-2"))
	// Touch u1 so u2 becomes the eviction candidate.
	require.NoError(t, r.Put(ctx, "u1", "conv-1b"))
	require.NoError(t, r.Put(ctx, "u3", "conv-3"))

	got, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1b", got)

	_, err = r.Get(ctx, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRegistry_ConcurrentAccess(t *testing.T) {
	r := NewMemoryRegistry(time.Hour, 1000)
	defer r.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", n%10)
			_ = r.Put(ctx, user, fmt.Sprintf("conv-%d", n))
			if _, err := r.Get(ctx, user); err != nil && !errors.Is(err, ErrNotFound) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoryRegistry_CloseTwice(t *testing.T) {
	r := NewMemoryRegistry(time.Hour, 10)
	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close())
}
