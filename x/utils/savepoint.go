package utils

import "github.com/cavelabs/cave"

// Savepoint will isolate all data inside of the call and commit or roll
// back based on the returned error. A message that fails leaves no trace
// in the store.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ cave.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator, but you must call
// OnCheck/OnDeliver so it will be triggered.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that will trigger on check.
func (s Savepoint) OnCheck() Savepoint {
	return Savepoint{onCheck: true, onDeliver: s.onDeliver}
}

// OnDeliver returns a savepoint that will trigger on deliver.
func (s Savepoint) OnDeliver() Savepoint {
	return Savepoint{onCheck: s.onCheck, onDeliver: true}
}

func (s Savepoint) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx, next cave.Checker) (*cave.CheckResult, error) {
	cdb, ok := db.(cave.CacheableKVStore)
	if !s.onCheck || !ok {
		return next.Check(ctx, db, tx)
	}

	cache := cdb.CacheWrap()
	res, err := next.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	cache.Write()
	return res, nil
}

func (s Savepoint) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx, next cave.Deliverer) (*cave.DeliverResult, error) {
	cdb, ok := db.(cave.CacheableKVStore)
	if !s.onDeliver || !ok {
		return next.Deliver(ctx, db, tx)
	}

	cache := cdb.CacheWrap()
	res, err := next.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	cache.Write()
	return res, nil
}
