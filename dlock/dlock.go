/*
Package dlock defines the lock service used to serialize operations on the
same vault or tunnel. Implementations live in the subpackages: mem for a
single process and redis for ledgers shared between processes.
*/
package dlock

import (
	"context"
	"sort"

	"github.com/cavelabs/cave/errors"
)

// ErrLockAcquire is returned when a lock could not be acquired before the
// context was done.
var ErrLockAcquire = errors.Register(300, "cannot acquire lock")

// UnlockFunc releases a lock. It is safe to call it more than once.
type UnlockFunc func() error

// Locker grants exclusive access to a named key. Lock blocks until the key
// is free or the context is done.
type Locker interface {
	Lock(ctx context.Context, key string) (UnlockFunc, error)
}

// LockAll acquires the locks of all given keys. Keys are deduplicated and
// acquired in ascending order, so that two callers never wait on each
// other. On failure every lock taken so far is released.
func LockAll(ctx context.Context, l Locker, keys []string) (UnlockFunc, error) {
	unique := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, k)
	}
	sort.Strings(unique)

	unlocks := make([]UnlockFunc, 0, len(unique))
	unlockAll := func() error {
		var first error
		for i := len(unlocks) - 1; i >= 0; i-- {
			if err := unlocks[i](); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	for _, k := range unique {
		unlock, err := l.Lock(ctx, k)
		if err != nil {
			_ = unlockAll()
			return nil, errors.Wrapf(err, "key %q", k)
		}
		unlocks = append(unlocks, unlock)
	}
	return unlockAll, nil
}
