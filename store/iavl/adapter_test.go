package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/cavelabs/cave/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitStoreVersions(t *testing.T) {
	s := MockCommitStore()
	require.NoError(t, s.LoadLatestVersion())
	assert.Equal(t, int64(0), s.LatestVersion().Version)

	cache := s.CacheWrap()
	cache.Set([]byte("vault"), []byte("open"))
	cache.Set([]byte("other"), []byte("x"))

	// Nothing is visible before the cache wrap is written and committed.
	assert.Nil(t, s.Get([]byte("vault")))
	cache.Write()
	assert.Nil(t, s.Get([]byte("vault")))

	id := s.Commit()
	assert.Equal(t, int64(1), id.Version)
	assert.NotEmpty(t, id.Hash)
	assert.Equal(t, []byte("open"), s.Get([]byte("vault")))

	cache = s.CacheWrap()
	cache.Delete([]byte("vault"))
	cache.Write()
	id2 := s.Commit()
	assert.Equal(t, int64(2), id2.Version)
	assert.NotEqual(t, id.Hash, id2.Hash)
	assert.Nil(t, s.Get([]byte("vault")))
	assert.Equal(t, []byte("x"), s.Get([]byte("other")))
}

func TestCommitStoreIteration(t *testing.T) {
	s := MockCommitStore()
	require.NoError(t, s.LoadLatestVersion())

	cache := s.CacheWrap()
	for _, k := range []string{"a", "b", "c"} {
		cache.Set([]byte(k), []byte(k))
	}
	cache.Write()
	s.Commit()

	cache = s.CacheWrap()
	cache.Delete([]byte("b"))
	it := cache.ReverseIterator(nil, nil)
	var keys []string
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Close()
	assert.Equal(t, []string{"c", "a"}, keys)
}

func TestCommitStorePersistence(t *testing.T) {
	dir, err := ioutil.TempDir("", "cave-iavl")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s, err := NewCommitStore(dir, "state")
	require.NoError(t, err)
	require.NoError(t, s.LoadLatestVersion())
	cache := s.CacheWrap()
	cache.Set([]byte("tunnel"), []byte("paid"))
	cache.Write()
	want := s.Commit()
	s.Close()

	reopened, err := NewCommitStore(dir, "state")
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.LoadLatestVersion())
	assert.Equal(t, want.Version, reopened.LatestVersion().Version)
	assert.Equal(t, want.Hash, reopened.LatestVersion().Hash)
	assert.Equal(t, []byte("paid"), reopened.Get([]byte("tunnel")))
}

func TestCommitStoreHeldByAnotherHandle(t *testing.T) {
	dir, err := ioutil.TempDir("", "cave-iavl")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s, err := NewCommitStore(dir, "state")
	require.NoError(t, err)

	_, err = NewCommitStore(dir, "state")
	assert.True(t, errors.ErrState.Is(err), "%+v", err)

	s.Close()
	reopened, err := NewCommitStore(dir, "state")
	require.NoError(t, err)
	reopened.Close()
}
