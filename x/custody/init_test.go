package custody

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/cavetest"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesis(t *testing.T) {
	owner := cavetest.NewAddress()
	id := AccountID(owner, "main")
	wallet := cavetest.NewAddress()

	genesis := fmt.Sprintf(`{
		"custody": [
			{"id": "%s", "owner": "%s", "coins": ["10 CAV", {"ticker": "ETH", "amount": 3}]},
			{"id": "%s", "coins": ["4 CAV"]}
		]
	}`, id, owner, wallet)

	var opts cave.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(opts, db))

	c := NewController()
	balance, err := c.Balance(db, id)
	require.NoError(t, err)
	assert.Equal(t, "10 CAV; 3 ETH", balance.String())

	got, err := c.Owner(db, wallet)
	require.NoError(t, err)
	assert.Equal(t, wallet, got)

	// Loading the same genesis twice must fail.
	err = Initializer{}.FromGenesis(opts, db)
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
}

func TestGenesisInvalid(t *testing.T) {
	var opts cave.Options
	require.NoError(t, json.Unmarshal([]byte(`{"custody": [{"id": "zz"}]}`), &opts))
	err := Initializer{}.FromGenesis(opts, store.MemStore())
	assert.Error(t, err)
}
