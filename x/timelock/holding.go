package timelock

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/derive"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x"
	"github.com/cavelabs/cave/x/custody"
)

// InfoKind is the derivation kind of every metadata identity.
const InfoKind = "info"

// Holding is a custody account whose only authority is a derived metadata
// identity. Both identities are derived from public inputs: the account
// from a seed chosen by the program, the metadata identity from the
// account address.
type Holding struct {
	Program      string
	Account      cave.Address
	AccountNonce uint8
	Info         cave.Address
	InfoNonce    uint8
}

// DeriveHolding computes the holding of the program for the given seed.
func DeriveHolding(program, kind string, seed []byte) (*Holding, error) {
	acc, accNonce, err := derive.Find(program, kind, seed)
	if err != nil {
		return nil, errors.Wrap(err, "account identity")
	}
	info, infoNonce, err := derive.Find(program, InfoKind, acc.Address())
	if err != nil {
		return nil, errors.Wrap(err, "metadata identity")
	}
	return &Holding{
		Program:      program,
		Account:      acc.Address(),
		AccountNonce: accNonce,
		Info:         info.Address(),
		InfoNonce:    infoNonce,
	}, nil
}

// Capability rebuilds the authority of the metadata identity.
func (h Holding) Capability() (derive.Capability, error) {
	c, err := derive.NewCapability(h.Program, InfoKind, h.Account, h.InfoNonce)
	if err != nil {
		return derive.Capability{}, err
	}
	if !c.Address().Equals(h.Info) {
		return derive.Capability{}, errors.Wrapf(errors.ErrState, "nonce %d does not derive %s", h.InfoNonce, h.Info)
	}
	return c, nil
}

// Open registers the holding account in custody and charges the storage
// deposit from source to the metadata identity. The owner of source must be
// authenticated by auth. A metadata account held by anyone but the metadata
// identity itself is refused, as Release could never close it.
func (h Holding) Open(ctx cave.Context, auth x.Authenticator, bank custody.Controller, db cave.KVStore, source cave.Address, deposit coin.Coin) error {
	switch owner, err := bank.Owner(db, h.Info); {
	case errors.ErrNotFound.Is(err):
	case err != nil:
		return err
	case !owner.Equals(h.Info):
		return errors.Wrapf(errors.ErrUnauthorized, "metadata account %s is owned by %s", h.Info, owner)
	}
	if err := bank.Open(db, h.Account, h.Info); err != nil {
		return errors.Wrap(err, "open holding account")
	}
	if deposit.IsPositive() {
		if err := bank.Transfer(ctx, auth, db, source, h.Info, deposit); err != nil {
			return errors.Wrap(err, "storage deposit")
		}
	}
	return nil
}

// Release moves the whole balance to dst and closes the holding. The
// storage deposit, if any was charged, is returned to refund.
func (h Holding) Release(ctx cave.Context, bank custody.Controller, db cave.KVStore, dst, refund cave.Address) (coin.Coins, error) {
	capability, err := h.Capability()
	if err != nil {
		return nil, err
	}
	moved, err := bank.TransferAll(ctx, capability, db, h.Account, dst)
	if err != nil {
		return nil, errors.Wrap(err, "release holding")
	}
	if err := bank.Close(ctx, capability, db, h.Account); err != nil {
		return nil, errors.Wrap(err, "close holding account")
	}

	switch _, err := bank.Balance(db, h.Info); {
	case errors.ErrNotFound.Is(err):
		// No storage deposit was charged.
	case err != nil:
		return nil, err
	default:
		if _, err := bank.TransferAll(ctx, capability, db, h.Info, refund); err != nil {
			return nil, errors.Wrap(err, "refund storage deposit")
		}
		if err := bank.Close(ctx, capability, db, h.Info); err != nil {
			return nil, errors.Wrap(err, "close metadata account")
		}
	}
	return moved, nil
}
