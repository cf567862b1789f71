package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/errors"
)

// chainIDKey is where the chain id is stored. The "_" prefix keeps it out
// of every bucket.
const chainIDKey = "_c:chain_id"

// Genesis is the initial state of a ledger.
type Genesis struct {
	ChainID  string       `json:"chain_id"`
	AppState cave.Options `json:"app_state"`
}

// LoadGenesis reads a genesis file in JSON format.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "parse genesis: %s", err)
	}
	if !cave.IsValidChainID(gen.ChainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %q", gen.ChainID)
	}
	return &gen, nil
}

// loadChainID returns the chain id stored if any.
func loadChainID(db cave.ReadOnlyKVStore) string {
	return string(db.Get([]byte(chainIDKey)))
}

// saveChainID stores a chain id in the kv store. Returns error if already
// set, or invalid name.
func saveChainID(db cave.KVStore, chainID string) error {
	if !cave.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %q", chainID)
	}
	k := []byte(chainIDKey)
	if db.Has(k) {
		return errors.Wrap(errors.ErrState, "chain id already set")
	}
	db.Set(k, []byte(chainID))
	return nil
}
