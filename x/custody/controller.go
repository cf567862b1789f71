package custody

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x"
)

// Controller is the custody interface consumed by other extensions.
type Controller interface {
	// Open registers an empty account owned by owner. It fails with
	// ErrDuplicate if the account exists.
	Open(db cave.KVStore, id, owner cave.Address) error

	// Owner returns the registered owner of the account.
	Owner(db cave.ReadOnlyKVStore, id cave.Address) (cave.Address, error)

	// Balance returns all coins held by the account.
	Balance(db cave.ReadOnlyKVStore, id cave.Address) (coin.Coins, error)

	// Transfer moves amount from src to dst. The owner of src must be
	// authenticated by auth.
	Transfer(ctx cave.Context, auth x.Authenticator, db cave.KVStore, src, dst cave.Address, amount coin.Coin) error

	// TransferAll moves the whole balance of src to dst and returns what
	// was moved.
	TransferAll(ctx cave.Context, auth x.Authenticator, db cave.KVStore, src, dst cave.Address) (coin.Coins, error)

	// Close removes an empty account. The owner must be authenticated by
	// auth.
	Close(ctx cave.Context, auth x.Authenticator, db cave.KVStore, id cave.Address) error
}

// BaseController is the Controller backed by a Bucket.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller over the default bucket.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

func (c BaseController) Open(db cave.KVStore, id, owner cave.Address) error {
	if err := id.Validate(); err != nil {
		return errors.Wrap(err, "account id")
	}
	if c.bucket.Has(db, id) {
		return errors.Wrapf(errors.ErrDuplicate, "account %s", id)
	}
	return c.bucket.Put(db, id, &Account{Owner: owner})
}

func (c BaseController) load(db cave.ReadOnlyKVStore, id cave.Address) (*Account, error) {
	var acc Account
	if err := c.bucket.One(db, id, &acc); err != nil {
		return nil, errors.Wrapf(err, "account %s", id)
	}
	return &acc, nil
}

// getOrCreate returns the account or a new wallet for the id.
func (c BaseController) getOrCreate(db cave.ReadOnlyKVStore, id cave.Address) (*Account, error) {
	acc, err := c.load(db, id)
	switch {
	case err == nil:
		return acc, nil
	case errors.ErrNotFound.Is(err):
		return &Account{Owner: id}, nil
	default:
		return nil, err
	}
}

func (c BaseController) Owner(db cave.ReadOnlyKVStore, id cave.Address) (cave.Address, error) {
	acc, err := c.load(db, id)
	if err != nil {
		return nil, err
	}
	return acc.Owner, nil
}

func (c BaseController) Balance(db cave.ReadOnlyKVStore, id cave.Address) (coin.Coins, error) {
	acc, err := c.load(db, id)
	if err != nil {
		return nil, err
	}
	return acc.Coins, nil
}

func (c BaseController) Transfer(ctx cave.Context, auth x.Authenticator, db cave.KVStore, src, dst cave.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive transfer %s", amount)
	}
	return c.move(ctx, auth, db, src, dst, func(*Account) (coin.Coins, error) {
		return coin.CombineCoins(amount)
	})
}

func (c BaseController) TransferAll(ctx cave.Context, auth x.Authenticator, db cave.KVStore, src, dst cave.Address) (coin.Coins, error) {
	var moved coin.Coins
	err := c.move(ctx, auth, db, src, dst, func(acc *Account) (coin.Coins, error) {
		moved = acc.Coins.Clone()
		return moved, nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// move loads and authorizes the source and moves the coins selected by
// the given function.
func (c BaseController) move(
	ctx cave.Context,
	auth x.Authenticator,
	db cave.KVStore,
	src, dst cave.Address,
	selectCoins func(*Account) (coin.Coins, error),
) error {
	sender, err := c.load(db, src)
	if err != nil {
		return err
	}
	if !auth.HasAddress(ctx, sender.Owner) {
		return errors.Wrapf(errors.ErrUnauthorized, "account %s owner signature missing", src)
	}
	amounts, err := selectCoins(sender)
	if err != nil {
		return err
	}
	if src.Equals(dst) {
		for _, a := range amounts {
			if !sender.Coins.Contains(*a) {
				return errors.Wrapf(errors.ErrInsufficientAmount, "account %s holds less than %s", src, a)
			}
		}
		return nil
	}
	recipient, err := c.getOrCreate(db, dst)
	if err != nil {
		return err
	}
	for _, a := range amounts {
		if sender.Coins, err = sender.Coins.Subtract(*a); err != nil {
			return errors.Wrapf(err, "account %s", src)
		}
		if recipient.Coins, err = recipient.Coins.Add(*a); err != nil {
			return errors.Wrapf(err, "account %s", dst)
		}
	}
	if err := c.bucket.Put(db, src, sender); err != nil {
		return err
	}
	return c.bucket.Put(db, dst, recipient)
}

func (c BaseController) Close(ctx cave.Context, auth x.Authenticator, db cave.KVStore, id cave.Address) error {
	acc, err := c.load(db, id)
	if err != nil {
		return err
	}
	if !auth.HasAddress(ctx, acc.Owner) {
		return errors.Wrapf(errors.ErrUnauthorized, "account %s owner signature missing", id)
	}
	if !acc.Coins.IsEmpty() {
		return errors.Wrapf(errors.ErrState, "account %s holds %s", id, acc.Coins)
	}
	return c.bucket.Delete(db, id)
}

// Issue creates new coins in the account, opening a wallet if it does not
// exist. It is not part of the Controller as only genesis and tests mint.
func (c BaseController) Issue(db cave.KVStore, id cave.Address, amount coin.Coin) error {
	acc, err := c.getOrCreate(db, id)
	if err != nil {
		return err
	}
	if acc.Coins, err = acc.Coins.Add(amount); err != nil {
		return err
	}
	return c.bucket.Put(db, id, acc)
}
