package store

import "bytes"

// SliceIterator wraps an Iterator over a slice of models.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

// Valid returns true iff it can be read.
func (s *SliceIterator) Valid() bool {
	return s.idx < len(s.data)
}

// Next moves the iterator forward. Panics if not valid.
func (s *SliceIterator) Next() {
	s.assertValid()
	s.idx++
}

func (s *SliceIterator) assertValid() {
	if s.idx >= len(s.data) {
		panic("passed end of slice")
	}
}

// Key returns the key of the cursor.
func (s *SliceIterator) Key() []byte {
	s.assertValid()
	return s.data[s.idx].Key
}

// Value returns the value of the cursor.
func (s *SliceIterator) Value() []byte {
	s.assertValid()
	return s.data[s.idx].Value
}

// Close releases the Iterator.
func (s *SliceIterator) Close() {
	s.data = nil
}

// EmptyKVStore never holds any data. It is the base layer of MemStore.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

// Get always returns nil.
func (EmptyKVStore) Get(key []byte) []byte { return nil }

// Has always returns false.
func (EmptyKVStore) Has(key []byte) bool { return false }

// Set is a noop.
func (EmptyKVStore) Set(key, value []byte) {}

// Delete is a noop.
func (EmptyKVStore) Delete(key []byte) {}

// Iterator is always empty.
func (EmptyKVStore) Iterator(start, end []byte) Iterator { return NewSliceIterator(nil) }

// ReverseIterator is always empty.
func (EmptyKVStore) ReverseIterator(start, end []byte) Iterator { return NewSliceIterator(nil) }

// mergeIterator combines a snapshot of cached items with the iterator of
// the backing store. Cached items shadow the parent entries of the same
// key and deleted items hide them.
type mergeIterator struct {
	items     []keyer
	parent    Iterator
	ascending bool
}

func newMergeIterator(items []keyer, parent Iterator, ascending bool) *mergeIterator {
	it := &mergeIterator{items: items, parent: parent, ascending: ascending}
	it.skipDeleted()
	return it
}

type source int

const (
	none source = iota
	us
	parent
	both
)

// first selects which iterator holds the next key in the iteration order.
func (i *mergeIterator) first() source {
	ours := len(i.items) > 0
	theirs := i.parent.Valid()
	switch {
	case !ours && !theirs:
		return none
	case !theirs:
		return us
	case !ours:
		return parent
	}
	cmp := bytes.Compare(i.items[0].Key(), i.parent.Key())
	if !i.ascending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return us
	case cmp > 0:
		return parent
	default:
		return both
	}
}

func (i *mergeIterator) skipDeleted() {
	for {
		src := i.first()
		if src != us && src != both {
			return
		}
		if _, ok := i.items[0].(deletedItem); !ok {
			return
		}
		i.items = i.items[1:]
		if src == both {
			i.parent.Next()
		}
	}
}

func (i *mergeIterator) Valid() bool {
	return i.first() != none
}

func (i *mergeIterator) Next() {
	switch i.first() {
	case us:
		i.items = i.items[1:]
	case both:
		i.items = i.items[1:]
		i.parent.Next()
	case parent:
		i.parent.Next()
	default:
		panic("advanced past the end")
	}
	i.skipDeleted()
}

func (i *mergeIterator) Key() []byte {
	switch i.first() {
	case us, both:
		return i.items[0].Key()
	case parent:
		return i.parent.Key()
	default:
		panic("advanced past the end")
	}
}

func (i *mergeIterator) Value() []byte {
	switch i.first() {
	case us, both:
		return i.items[0].(setItem).value
	case parent:
		return i.parent.Value()
	default:
		panic("advanced past the end")
	}
}

func (i *mergeIterator) Close() {
	i.parent.Close()
	i.items = nil
}
