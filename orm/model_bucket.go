package orm

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucket stores models of a single type under a name prefix.
type ModelBucket interface {
	// One loads the model stored under the primary key into dest.
	// ErrNotFound is returned if it does not exist and ErrType if dest
	// cannot hold the bucket model.
	One(db cave.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns true if a model is stored under the primary key.
	Has(db cave.ReadOnlyKVStore, key []byte) bool

	// Put validates and saves the model, updating all indexes.
	Put(db cave.KVStore, key []byte, m Model) error

	// Delete removes the model with given primary key. It returns
	// ErrNotFound if it does not exist.
	Delete(db cave.KVStore, key []byte) error

	// ByIndex loads all models referenced by the given index value into
	// dest, which must be a pointer to a slice of the bucket model. The
	// primary keys are returned in the same order.
	ByIndex(db cave.ReadOnlyKVStore, indexName string, value []byte, dest interface{}) ([][]byte, error)

	// Register exposes the bucket and its indexes to queries.
	Register(name string, r cave.QueryRouter)
}

// ModelBucketOption configures a model bucket.
type ModelBucketOption func(*modelBucket)

// WithIndex adds a secondary index to the bucket. Panics if an index with
// the same name is registered twice.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("index %s registered twice", name))
		}
		mb.indexes[name] = newIndex(mb.name+"_"+name, indexer, unique)
	}
}

// NewModelBucket returns a bucket storing models of the same type as
// the given prototype. Panics if the name is not a valid bucket name.
func NewModelBucket(name string, proto Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket: %s", name))
	}
	mb := &modelBucket{
		name:    name,
		prefix:  append([]byte(name), ':'),
		model:   reflect.TypeOf(proto),
		indexes: make(map[string]index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]index
}

var _ ModelBucket = (*modelBucket)(nil)

// dbKey is the full key stored in the db, including prefix.
func (mb *modelBucket) dbKey(key []byte) []byte {
	out := make([]byte, len(mb.prefix)+len(key))
	copy(out, mb.prefix)
	copy(out[len(mb.prefix):], key)
	return out
}

func (mb *modelBucket) newModel() Model {
	return reflect.New(mb.model.Elem()).Interface().(Model)
}

func (mb *modelBucket) One(db cave.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrType, "%s cannot be represented as %T", mb.model, dest)
	}
	raw := db.Get(mb.dbKey(key))
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %s", mb.name)
	}
	return nil
}

func (mb *modelBucket) Has(db cave.ReadOnlyKVStore, key []byte) bool {
	return db.Has(mb.dbKey(key))
}

func (mb *modelBucket) load(db cave.ReadOnlyKVStore, key []byte) (Model, error) {
	raw := db.Get(mb.dbKey(key))
	if raw == nil {
		return nil, nil
	}
	m := mb.newModel()
	if err := m.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "cannot unmarshal %s", mb.name)
	}
	return m, nil
}

func (mb *modelBucket) Put(db cave.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Field("Key", errors.ErrEmpty, "missing key")
	}
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrType, "cannot store %T in %s", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal")
	}
	if err := mb.updateIndexes(db, key, m); err != nil {
		return err
	}
	db.Set(mb.dbKey(key), raw)
	return nil
}

func (mb *modelBucket) Delete(db cave.KVStore, key []byte) error {
	if !mb.Has(db, key) {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := mb.updateIndexes(db, key, nil); err != nil {
		return err
	}
	db.Delete(mb.dbKey(key))
	return nil
}

func (mb *modelBucket) updateIndexes(db cave.KVStore, key []byte, next Model) error {
	if len(mb.indexes) == 0 {
		return nil
	}
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if prev == nil && next == nil {
		return nil
	}
	for _, idx := range mb.indexes {
		if err := idx.Update(db, key, prev, next); err != nil {
			return err
		}
	}
	return nil
}

func (mb *modelBucket) ByIndex(db cave.ReadOnlyKVStore, indexName string, value []byte, dest interface{}) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "unknown index %q", indexName)
	}

	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrapf(errors.ErrType, "destination must be a pointer to a slice, got %T", dest)
	}
	slice := ptr.Elem()
	elem := slice.Type().Elem()
	pointers := elem == mb.model
	if !pointers && reflect.PtrTo(elem) != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "%s cannot be represented as %s", mb.model, elem)
	}

	keys, err := idx.Keys(db, value)
	if err != nil {
		return nil, err
	}
	slice = reflect.MakeSlice(slice.Type(), 0, len(keys))
	for _, key := range keys {
		m, err := mb.load(db, key)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.Wrapf(errors.ErrState, "index %s references missing %X", indexName, key)
		}
		v := reflect.ValueOf(m)
		if !pointers {
			v = v.Elem()
		}
		slice = reflect.Append(slice, v)
	}
	ptr.Elem().Set(slice)
	return keys, nil
}

func (mb *modelBucket) Register(name string, r cave.QueryRouter) {
	if name == "" {
		name = mb.name
	}
	root := "/" + name
	r.Register(root, bucketQuery{mb: mb})
	for iname, idx := range mb.indexes {
		r.Register(root+"/"+iname, indexQuery{mb: mb, idx: idx})
	}
}
