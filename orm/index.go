package orm

import (
	"bytes"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/errors"
)

const indexPrefix = "_i."

// index stores all references of a value under a single key. Unique
// indexes store the primary key directly, others store a MultiRef.
type index struct {
	name    string
	id      []byte
	unique  bool
	indexer Indexer
}

func newIndex(name string, indexer Indexer, unique bool) index {
	return index{
		name:    name,
		id:      append([]byte(indexPrefix), []byte(name+":")...),
		unique:  unique,
		indexer: indexer,
	}
}

// indexKey copies into a new array so that consecutive calls never share
// the same backing array.
func (i index) indexKey(value []byte) []byte {
	out := make([]byte, len(i.id)+len(value))
	copy(out, i.id)
	copy(out[len(i.id):], value)
	return out
}

// Update keeps the index in sync with a model change of the given primary
// key. prev is nil on insert, next is nil on delete.
func (i index) Update(db cave.KVStore, pk []byte, prev, next Model) error {
	if prev == nil && next == nil {
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil model")
	}

	var prevVal, nextVal []byte
	var err error
	if prev != nil {
		if prevVal, err = i.indexer(prev); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if next != nil {
		if nextVal, err = i.indexer(next); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if prev != nil && next != nil && bytes.Equal(prevVal, nextVal) {
		return nil
	}
	if prevVal != nil {
		if err := i.remove(db, prevVal, pk); err != nil {
			return err
		}
	}
	if nextVal != nil {
		if err := i.insert(db, nextVal, pk); err != nil {
			return err
		}
	}
	return nil
}

func (i index) insert(db cave.KVStore, value, pk []byte) error {
	key := i.indexKey(value)
	if i.unique {
		if db.Has(key) {
			return errors.Wrapf(errors.ErrDuplicate, "index %s: %X", i.name, value)
		}
		db.Set(key, pk)
		return nil
	}

	var refs MultiRef
	if raw := db.Get(key); raw != nil {
		if err := refs.Unmarshal(raw); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if err := refs.Add(pk); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	raw, _ := refs.Marshal()
	db.Set(key, raw)
	return nil
}

func (i index) remove(db cave.KVStore, value, pk []byte) error {
	key := i.indexKey(value)
	raw := db.Get(key)
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "index %s: %X", i.name, value)
	}
	if i.unique {
		if !bytes.Equal(raw, pk) {
			return errors.Wrapf(errors.ErrState, "index %s: %X points to another key", i.name, value)
		}
		db.Delete(key)
		return nil
	}

	var refs MultiRef
	if err := refs.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	if err := refs.Remove(pk); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	if len(refs.Refs) == 0 {
		db.Delete(key)
		return nil
	}
	raw, _ = refs.Marshal()
	db.Set(key, raw)
	return nil
}

// Keys returns all primary keys stored under the given value.
func (i index) Keys(db cave.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw := db.Get(i.indexKey(value))
	if raw == nil {
		return nil, nil
	}
	if i.unique {
		return [][]byte{raw}, nil
	}
	var refs MultiRef
	if err := refs.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "index %s", i.name)
	}
	return refs.Refs, nil
}
