package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/ragchat/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_ExclusiveUntilUnlock(t *testing.T) {
	l := memory.NewLocker()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, l.Held("k"))

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, "k", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Other keys are independent.
	other, err := l.Lock(ctx, "other", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	assert.False(t, l.Held("k"))

	again, err := l.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestLocker_WaitsForRelease(t *testing.T) {
	l := memory.NewLocker()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = unlock(ctx)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	second, err := l.Lock(waitCtx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, second(ctx))
}

func TestLocker_ExpiredLease(t *testing.T) {
	l := memory.NewLocker()
	ctx := context.Background()

	stale, err := l.Lock(ctx, "k", 20*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	fresh, err := l.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)

	// The stale holder must not release the new lease.
	require.NoError(t, stale(ctx))
	assert.True(t, l.Held("k"))
	require.NoError(t, fresh(ctx))
}
