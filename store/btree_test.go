package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(it Iterator) []string {
	defer it.Close()
	var keys []string
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key())+"="+string(it.Value()))
	}
	return keys
}

func TestCacheWrapGetSet(t *testing.T) {
	base := MemStore()
	base.Set([]byte("a"), []byte("1"))

	cache := base.CacheWrap()
	cache.Set([]byte("b"), []byte("2"))
	cache.Delete([]byte("a"))

	assert.Nil(t, cache.Get([]byte("a")))
	assert.False(t, cache.Has([]byte("a")))
	assert.Equal(t, []byte("2"), cache.Get([]byte("b")))

	// Base is not modified until Write.
	assert.Equal(t, []byte("1"), base.Get([]byte("a")))
	assert.False(t, base.Has([]byte("b")))

	cache.Write()
	assert.False(t, base.Has([]byte("a")))
	assert.Equal(t, []byte("2"), base.Get([]byte("b")))
}

func TestCacheWrapDiscard(t *testing.T) {
	base := MemStore()
	base.Set([]byte("a"), []byte("1"))

	cache := base.CacheWrap()
	cache.Set([]byte("a"), []byte("changed"))
	cache.Set([]byte("z"), []byte("new"))
	cache.Discard()
	cache.Write()

	assert.Equal(t, []byte("1"), base.Get([]byte("a")))
	assert.False(t, base.Has([]byte("z")))
}

func TestNestedCacheWrap(t *testing.T) {
	base := MemStore()
	outer := base.CacheWrap()
	outer.Set([]byte("k"), []byte("outer"))

	inner := outer.CacheWrap()
	inner.Set([]byte("k"), []byte("inner"))
	assert.Equal(t, []byte("outer"), outer.Get([]byte("k")))

	inner.Write()
	assert.Equal(t, []byte("inner"), outer.Get([]byte("k")))
	assert.False(t, base.Has([]byte("k")))

	outer.Write()
	assert.Equal(t, []byte("inner"), base.Get([]byte("k")))
}

func TestIteratorMergesLayers(t *testing.T) {
	base := MemStore()
	for _, k := range []string{"a", "c", "e", "g"} {
		base.Set([]byte(k), []byte("base"))
	}
	cache := base.CacheWrap()
	cache.Set([]byte("b"), []byte("cache"))
	cache.Set([]byte("c"), []byte("cache"))
	cache.Delete([]byte("e"))
	cache.Delete([]byte("x"))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []string
	}{
		"full ascending": {
			want: []string{"a=base", "b=cache", "c=cache", "g=base"},
		},
		"bounded ascending": {
			start: []byte("b"),
			end:   []byte("g"),
			want:  []string{"b=cache", "c=cache"},
		},
		"full descending": {
			reverse: true,
			want:    []string{"g=base", "c=cache", "b=cache", "a=base"},
		},
		"bounded descending": {
			start:   []byte("b"),
			end:     []byte("g"),
			reverse: true,
			want:    []string{"c=cache", "b=cache"},
		},
		"open end descending": {
			start:   []byte("c"),
			reverse: true,
			want:    []string{"g=base", "c=cache"},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var it Iterator
			if tc.reverse {
				it = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it = cache.Iterator(tc.start, tc.end)
			}
			assert.Equal(t, tc.want, collect(it))
		})
	}
}

func TestSliceIteratorPanicsPastEnd(t *testing.T) {
	it := NewSliceIterator([]Model{{Key: []byte("a"), Value: []byte("1")}})
	require.True(t, it.Valid())
	it.Next()
	assert.False(t, it.Valid())
	assert.Panics(t, func() { it.Next() })
}
