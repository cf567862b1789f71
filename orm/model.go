package orm

import (
	"github.com/cavelabs/cave"
)

// Model is implemented by any entity that can be stored using a
// ModelBucket.
type Model interface {
	cave.Persistent
	Validate() error
}

// Indexer calculates the secondary index key for a given model. Returning
// a nil key excludes the model from the index.
type Indexer func(Model) ([]byte, error)

// MultiRef is the set of primary keys stored under a single non-unique
// index value.
type MultiRef struct {
	Refs [][]byte
}
