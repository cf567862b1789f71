package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cavelabs/cave/dlock"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	l := NewLocker(client, "cave:")
	l.retry = 5 * time.Millisecond
	return l, mr
}

func TestLockIsExclusive(t *testing.T) {
	l, mr := newLocker(t)

	unlock, err := l.Lock(context.Background(), "vault")
	require.NoError(t, err)
	assert.True(t, mr.Exists("cave:lock:vault"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "vault")
	assert.True(t, dlock.ErrLockAcquire.Is(err), "%+v", err)

	require.NoError(t, unlock())
	assert.False(t, mr.Exists("cave:lock:vault"))

	unlock, err = l.Lock(context.Background(), "vault")
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestExpiredLockCanBeTaken(t *testing.T) {
	l, mr := newLocker(t)
	l = l.WithTTL(time.Second)

	stale, err := l.Lock(context.Background(), "tunnel")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	unlock, err := l.Lock(context.Background(), "tunnel")
	require.NoError(t, err)

	// Releasing the expired lease must not drop the current holder.
	require.NoError(t, stale())
	assert.True(t, mr.Exists("cave:lock:tunnel"))
	require.NoError(t, unlock())
	assert.False(t, mr.Exists("cave:lock:tunnel"))
}

func TestLockAllWithRedis(t *testing.T) {
	l, mr := newLocker(t)
	unlock, err := dlock.LockAll(context.Background(), l, []string{"b", "a"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("cave:lock:a"))
	assert.True(t, mr.Exists("cave:lock:b"))
	require.NoError(t, unlock())
	assert.Len(t, mr.Keys(), 0)
}
