package custody

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
)

const optKey = "custody"

// GenesisAccount is used to parse the json from genesis file. A missing
// owner makes the account a wallet.
type GenesisAccount struct {
	ID    cave.Address `json:"id"`
	Owner cave.Address `json:"owner"`
	Coins coin.Coins   `json:"coins"`
}

// Initializer fulfils the cave.Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ cave.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis and save it to
// the database.
func (Initializer) FromGenesis(opts cave.Options, db cave.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	c := NewController()
	for i, acct := range accts {
		if acct.Owner == nil {
			acct.Owner = acct.ID
		}
		if err := c.Open(db, acct.ID, acct.Owner); err != nil {
			return errors.Wrapf(err, "genesis account %d", i)
		}
		for _, amount := range acct.Coins {
			if err := c.Issue(db, acct.ID, *amount); err != nil {
				return errors.Wrapf(err, "genesis account %d", i)
			}
		}
	}
	return nil
}
