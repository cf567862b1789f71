package custody

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/orm"
)

// Account holds coins on behalf of its owner.
type Account struct {
	Owner cave.Address
	Coins coin.Coins
}

var _ orm.Model = (*Account)(nil)

func (a *Account) Validate() error {
	if err := a.Owner.Validate(); err != nil {
		return errors.Field("Owner", err, "invalid owner")
	}
	if err := a.Coins.Validate(); err != nil {
		return errors.Field("Coins", err, "invalid balance")
	}
	return nil
}

func (a *Account) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, a.Owner)
	if len(a.Coins) > 0 {
		if err := e.Message(2, a.Coins); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (a *Account) Unmarshal(raw []byte) error {
	*a = Account{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			a.Owner = d.Bytes()
		case 2:
			d.Message(&a.Coins)
		default:
			d.Skip()
		}
	}
	return d.Err()
}

func ownerIndexer(m orm.Model) ([]byte, error) {
	a, ok := m.(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return a.Owner, nil
}

// Bucket stores accounts keyed by their id, indexed by owner.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing accounts.
func NewBucket() Bucket {
	b := orm.NewModelBucket("custody", &Account{},
		orm.WithIndex("owner", ownerIndexer, false))
	return Bucket{ModelBucket: b}
}

// ByOwner returns all accounts registered to the owner, together with
// their ids.
func (b Bucket) ByOwner(db cave.ReadOnlyKVStore, owner cave.Address) ([]cave.Address, []Account, error) {
	var accounts []Account
	keys, err := b.ByIndex(db, "owner", owner, &accounts)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]cave.Address, len(keys))
	for i, k := range keys {
		ids[i] = k
	}
	return ids, accounts, nil
}
