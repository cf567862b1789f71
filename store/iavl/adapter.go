/*
Package iavl provides a persistent, versioned CommitKVStore backed by an
iavl merkle tree.

Writes performed through a cache wrap are applied to the working tree
when the cache wrap is written. Commit persists the working tree as a new
version.
*/
package iavl

import (
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

const cacheSize = 10000

// CommitStore manages an iavl committed state.
type CommitStore struct {
	tree *iavl.MutableTree
	db   dbm.DB
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with goleveldb disk backing in the
// given directory. Call LoadLatestVersion before use. Only one process can
// hold the directory, opening it a second time fails with ErrState.
func NewCommitStore(dir, name string) (s CommitStore, err error) {
	// dbm.NewDB panics when the database cannot be opened.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrState, "cannot open %s database in %s: %v", name, dir, r)
		}
	}()
	db := dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
	return CommitStore{tree: iavl.NewMutableTree(db, cacheSize), db: db}, nil
}

// MockCommitStore creates a new store backed by memory only.
func MockCommitStore() CommitStore {
	db := dbm.NewMemDB()
	return CommitStore{tree: iavl.NewMutableTree(db, cacheSize), db: db}
}

// Get returns the value at the last committed state.
// Returns nil iff key doesn't exist. Panics on nil key.
func (s CommitStore) Get(key []byte) []byte {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val
}

// Commit persists the working tree as the next version and returns its
// info. Panics if the tree cannot be saved.
func (s CommitStore) Commit() store.CommitID {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		panic(err)
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}
}

// LoadLatestVersion loads the latest persisted version.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(err, "cannot load iavl tree")
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s CommitStore) LatestVersion() store.CommitID {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}
}

// CacheWrap returns a btree cache over the working tree. Writing it
// applies the changes to the working tree, to be persisted by Commit.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	w := working{tree: s.tree}
	return store.NewBTreeCacheWrap(w, store.NewNonAtomicBatch(w), nil)
}

// Close releases the database handle.
func (s CommitStore) Close() {
	s.db.Close()
}

// working exposes the uncommitted iavl tree as a KVStore.
type working struct {
	tree *iavl.MutableTree
}

var _ store.KVStore = working{}

func (w working) Get(key []byte) []byte {
	_, val := w.tree.Get(key)
	return val
}

func (w working) Has(key []byte) bool {
	return w.tree.Has(key)
}

func (w working) Set(key, value []byte) {
	w.tree.Set(key, value)
}

func (w working) Delete(key []byte) {
	w.tree.Remove(key)
}

func (w working) Iterator(start, end []byte) store.Iterator {
	return w.iterate(start, end, true)
}

func (w working) ReverseIterator(start, end []byte) store.Iterator {
	return w.iterate(start, end, false)
}

// iterate loads the whole range into memory. The tree does not provide a
// lazy cursor that survives writes.
func (w working) iterate(start, end []byte, ascending bool) store.Iterator {
	var res []store.Model
	w.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(res)
}
