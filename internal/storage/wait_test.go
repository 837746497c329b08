package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUntilUnlocked_NotLocked(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, WaitUntilUnlocked(context.Background(), store, time.Millisecond))
}

func TestWaitUntilUnlocked_ReleasedLater(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Lock(ctx))

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = store.Unlock(ctx)
	}()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	assert.NoError(t, WaitUntilUnlocked(ctx, store, 5*time.Millisecond))
}

func TestWaitUntilUnlocked_Timeout(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Lock(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := WaitUntilUnlocked(ctx, store, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
