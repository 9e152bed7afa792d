//go:build unit

package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("second caller is rejected until unlock", func(t *testing.T) {
		l := NewLocalLocker()

		token, ok, err := l.TryLock(ctx, "order-1", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = l.TryLock(ctx, "order-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, l.Unlock(ctx, "order-1", token))

		_, ok, err = l.TryLock(ctx, "order-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired lock can be taken over", func(t *testing.T) {
		l := NewLocalLocker()
		current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return current }

		stale, ok, _ := l.TryLock(ctx, "order-2", time.Second)
		require.True(t, ok)

		current = current.Add(2 * time.Second)
		_, ok, _ = l.TryLock(ctx, "order-2", time.Second)
		require.True(t, ok)

		assert.ErrorIs(t, l.Unlock(ctx, "order-2", stale), ErrLockNotOwned)
	})

	t.Run("exactly one concurrent winner", func(t *testing.T) {
		l := NewLocalLocker()
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok, _ := l.TryLock(ctx, "order-3", time.Minute); ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}
