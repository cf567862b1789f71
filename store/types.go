package store

import "github.com/cavelabs/cave"

// Aliases of the storage interfaces, for shorter names in this package.
type (
	ReadOnlyKVStore  = cave.ReadOnlyKVStore
	SetDeleter       = cave.SetDeleter
	KVStore          = cave.KVStore
	Iterator         = cave.Iterator
	CacheableKVStore = cave.CacheableKVStore
	KVCacheWrap      = cave.KVCacheWrap
	CommitKVStore    = cave.CommitKVStore
	CommitID         = cave.CommitID
	Model            = cave.Model
)

// Batch accumulates writes to be applied together.
type Batch interface {
	SetDeleter
	Write()
}
