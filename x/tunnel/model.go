package tunnel

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/orm"
	"github.com/cavelabs/cave/x/timelock"
)

// Tunnel is the metadata of a paid tunnel. It is stored under the address
// of the metadata identity.
type Tunnel struct {
	Payer       cave.Address
	PaymentTime cave.UnixTime
	ServiceTime uint32
	// Amount is the price paid, computed once at payment.
	Amount coin.Coin

	Account      cave.Address
	AccountNonce uint8
	InfoNonce    uint8

	StorageDeposit coin.Coin
}

var _ orm.Model = (*Tunnel)(nil)

// Holding returns the pair of identities this tunnel is made of.
func (t *Tunnel) Holding(key []byte) timelock.Holding {
	return timelock.Holding{
		Program:      programName,
		Account:      t.Account,
		AccountNonce: t.AccountNonce,
		Info:         key,
		InfoNonce:    t.InfoNonce,
	}
}

func (t *Tunnel) Validate() error {
	if err := t.Payer.Validate(); err != nil {
		return errors.Field("Payer", err, "invalid payer")
	}
	if err := t.PaymentTime.Validate(); err != nil {
		return errors.Field("PaymentTime", err, "")
	}
	if err := t.Amount.Validate(); err != nil {
		return errors.Field("Amount", err, "")
	}
	if err := t.Account.Validate(); err != nil {
		return errors.Field("Account", err, "invalid account")
	}
	if !t.StorageDeposit.IsZero() {
		if err := t.StorageDeposit.Validate(); err != nil {
			return errors.Field("StorageDeposit", err, "")
		}
	}
	return nil
}

func (t *Tunnel) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, t.Payer)
	e.Int64(2, int64(t.PaymentTime))
	e.Uint64(3, uint64(t.ServiceTime))
	if err := e.Message(4, &t.Amount); err != nil {
		return nil, err
	}
	e.Bytes(5, t.Account)
	e.Uint64(6, uint64(t.AccountNonce))
	e.Uint64(7, uint64(t.InfoNonce))
	if !t.StorageDeposit.IsZero() {
		if err := e.Message(8, &t.StorageDeposit); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (t *Tunnel) Unmarshal(raw []byte) error {
	*t = Tunnel{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			t.Payer = d.Bytes()
		case 2:
			t.PaymentTime = cave.UnixTime(d.Int64())
		case 3:
			t.ServiceTime = d.Uint32()
		case 4:
			d.Message(&t.Amount)
		case 5:
			t.Account = d.Bytes()
		case 6:
			t.AccountNonce = nonce(d)
		case 7:
			t.InfoNonce = nonce(d)
		case 8:
			d.Message(&t.StorageDeposit)
		default:
			d.Skip()
		}
	}
	return d.Err()
}

func nonce(d *codec.Decoder) uint8 {
	n := d.Uint64()
	if n > 255 {
		d.Fail(errors.Wrapf(errors.ErrOverflow, "nonce %d", n))
	}
	return uint8(n)
}

func payerIndexer(m orm.Model) ([]byte, error) {
	t, ok := m.(*Tunnel)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return t.Payer, nil
}

// NewBucket returns a bucket for tunnel metadata, indexed by payer.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("tunnel", &Tunnel{},
		orm.WithIndex("payer", payerIndexer, true),
	)
}
