/*
Package mem provides an in-process dlock.Locker. Locks are not shared with
other processes.
*/
package mem

import (
	"context"
	"sync"

	"github.com/cavelabs/cave/dlock"
	"github.com/cavelabs/cave/errors"
	"github.com/micro-go/lock"
)

// Locker is a keyed mutex. A key is tracked only while it is held or
// awaited.
type Locker struct {
	mutex sync.RWMutex
	slots map[string]*slot
}

var _ dlock.Locker = (*Locker)(nil)

type slot struct {
	held chan struct{}
	refs int
}

// NewLocker returns a locker with no keys held.
func NewLocker() *Locker {
	return &Locker{slots: make(map[string]*slot)}
}

func (l *Locker) Lock(ctx context.Context, key string) (dlock.UnlockFunc, error) {
	s := l.acquire(key)
	select {
	case s.held <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return nil, errors.Wrap(dlock.ErrLockAcquire, ctx.Err().Error())
	}

	var once sync.Once
	return func() error {
		once.Do(func() {
			<-s.held
			l.release(key)
		})
		return nil
	}, nil
}

// Held returns true if the key is currently locked.
func (l *Locker) Held(key string) bool {
	defer lock.Read(&l.mutex).Unlock()
	s, ok := l.slots[key]
	return ok && len(s.held) > 0
}

func (l *Locker) acquire(key string) *slot {
	defer lock.Write(&l.mutex).Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{held: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *Locker) release(key string) {
	defer lock.Write(&l.mutex).Unlock()
	s := l.slots[key]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
