/*
Package redis provides a dlock.Locker backed by Redis, so that many
processes can serialize operations on the same ledger. A lock is a key set
with NX and an expiry; only the holder of the random token may delete it.
*/
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/cavelabs/cave/dlock"
	"github.com/cavelabs/cave/errors"
	backend "github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL bounds how long a lock outlives a crashed holder.
	DefaultTTL = 10 * time.Second

	// DefaultRetry is the polling interval while a lock is taken.
	DefaultRetry = 50 * time.Millisecond
)

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Locker implements dlock.Locker using Redis.
type Locker struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

var _ dlock.Locker = (*Locker)(nil)

// NewLocker creates a locker storing its keys under the given prefix.
func NewLocker(client backend.UniversalClient, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		ttl:    DefaultTTL,
		retry:  DefaultRetry,
	}
}

// WithTTL returns a copy of the locker using the given lease duration.
func (l Locker) WithTTL(ttl time.Duration) *Locker {
	l.ttl = ttl
	return &l
}

func (l *Locker) Lock(ctx context.Context, key string) (dlock.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Wrap(dlock.ErrLockAcquire, err.Error())
		}
		if ok {
			return l.unlocker(lockKey, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(dlock.ErrLockAcquire, ctx.Err().Error())
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlocker(lockKey, token string) dlock.UnlockFunc {
	return func() error {
		// The lock must be released even if the caller context is gone.
		ctx, cancel := context.WithTimeout(context.Background(), l.ttl)
		defer cancel()
		if err := unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err(); err != nil {
			return errors.Wrapf(errors.ErrHuman, "release %s: %s", lockKey, err)
		}
		return nil
	}
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(errors.ErrHuman, err.Error())
	}
	return hex.EncodeToString(b), nil
}
