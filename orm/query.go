package orm

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/errors"
)

type bucketQuery struct {
	mb *modelBucket
}

// Query returns the model stored under the key, or all models under the
// key prefix.
func (q bucketQuery) Query(db cave.ReadOnlyKVStore, mod string, data []byte) ([]cave.Model, error) {
	switch mod {
	case cave.KeyQueryMod:
		key := q.mb.dbKey(data)
		value := db.Get(key)
		if value == nil {
			return nil, nil
		}
		return []cave.Model{cave.Pair(key, value)}, nil
	case cave.PrefixQueryMod:
		return queryPrefix(db, q.mb.dbKey(data)), nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mode %q", mod)
	}
}

type indexQuery struct {
	mb  *modelBucket
	idx index
}

// Query returns all models referenced by the index value.
func (q indexQuery) Query(db cave.ReadOnlyKVStore, mod string, data []byte) ([]cave.Model, error) {
	if mod != cave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mode %q", mod)
	}
	keys, err := q.idx.Keys(db, data)
	if err != nil {
		return nil, err
	}
	res := make([]cave.Model, 0, len(keys))
	for _, k := range keys {
		key := q.mb.dbKey(k)
		if value := db.Get(key); value != nil {
			res = append(res, cave.Pair(key, value))
		}
	}
	return res, nil
}

func queryPrefix(db cave.ReadOnlyKVStore, prefix []byte) []cave.Model {
	itr := db.Iterator(prefixRange(prefix))
	defer itr.Close()

	var res []cave.Model
	for ; itr.Valid(); itr.Next() {
		res = append(res, cave.Pair(itr.Key(), itr.Value()))
	}
	return res
}

// prefixRange turns a prefix into a (start, end) range. The end is nil if
// the prefix is made of 0xFF bytes only.
func prefixRange(prefix []byte) ([]byte, []byte) {
	start := append([]byte(nil), prefix...)
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return start, end[:i+1]
		}
	}
	return start, nil
}
