package vault

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/orm"
	"github.com/cavelabs/cave/x/timelock"
)

// Vault is the metadata of a single vault. It is stored under the address
// of the metadata identity.
type Vault struct {
	Depositor         cave.Address
	TimelockDuration  uint32
	UnlockRequestTime cave.UnixTime
	Unlocking         bool

	// Source is the account the deposit was taken from and where a
	// withdrawal returns it.
	Source cave.Address
	// Account is the custody account holding the funds.
	Account      cave.Address
	AccountNonce uint8
	InfoNonce    uint8

	StorageDeposit coin.Coin

	backup cave.Address
}

var _ orm.Model = (*Vault)(nil)

// NewVault returns the metadata of a vault that was not unlocked yet. A nil
// backup means no recovery is possible.
func NewVault(depositor, backup cave.Address, duration uint32) *Vault {
	return &Vault{
		Depositor:         depositor,
		TimelockDuration:  duration,
		UnlockRequestTime: cave.NeverTime,
		backup:            backup,
	}
}

// Backup returns the recovery identity, if any was set.
func (v *Vault) Backup() (cave.Address, bool) {
	return v.backup, len(v.backup) != 0
}

// Holding returns the pair of identities this vault is made of.
func (v *Vault) Holding(key []byte) timelock.Holding {
	return timelock.Holding{
		Program:      programName,
		Account:      v.Account,
		AccountNonce: v.AccountNonce,
		Info:         key,
		InfoNonce:    v.InfoNonce,
	}
}

func (v *Vault) Validate() error {
	if err := v.Depositor.Validate(); err != nil {
		return errors.Field("Depositor", err, "invalid depositor")
	}
	if b, ok := v.Backup(); ok {
		if err := b.Validate(); err != nil {
			return errors.Field("Backup", err, "invalid backup")
		}
	}
	if err := timelock.ValidateDuration(v.TimelockDuration); err != nil {
		return errors.Field("TimelockDuration", err, "")
	}
	if v.Unlocking == (v.UnlockRequestTime == cave.NeverTime) {
		return errors.Field("UnlockRequestTime", errors.ErrState, "must be set only when unlocking")
	}
	if err := v.Source.Validate(); err != nil {
		return errors.Field("Source", err, "invalid source")
	}
	if err := v.Account.Validate(); err != nil {
		return errors.Field("Account", err, "invalid account")
	}
	if !v.StorageDeposit.IsZero() {
		if err := v.StorageDeposit.Validate(); err != nil {
			return errors.Field("StorageDeposit", err, "")
		}
	}
	return nil
}

func (v *Vault) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, v.Depositor)
	e.Bytes(2, v.backup)
	e.Uint64(3, uint64(v.TimelockDuration))
	e.Int64(4, int64(v.UnlockRequestTime))
	e.Bool(5, v.Unlocking)
	e.Bytes(6, v.Source)
	e.Bytes(7, v.Account)
	e.Uint64(8, uint64(v.AccountNonce))
	e.Uint64(9, uint64(v.InfoNonce))
	if !v.StorageDeposit.IsZero() {
		if err := e.Message(10, &v.StorageDeposit); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (v *Vault) Unmarshal(raw []byte) error {
	*v = Vault{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			v.Depositor = d.Bytes()
		case 2:
			v.backup = d.Bytes()
		case 3:
			v.TimelockDuration = d.Uint32()
		case 4:
			v.UnlockRequestTime = cave.UnixTime(d.Int64())
		case 5:
			v.Unlocking = d.Bool()
		case 6:
			v.Source = d.Bytes()
		case 7:
			v.Account = d.Bytes()
		case 8:
			v.AccountNonce = nonce(d)
		case 9:
			v.InfoNonce = nonce(d)
		case 10:
			d.Message(&v.StorageDeposit)
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

func depositorIndexer(m orm.Model) ([]byte, error) {
	v, ok := m.(*Vault)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return v.Depositor, nil
}

func accountIndexer(m orm.Model) ([]byte, error) {
	v, ok := m.(*Vault)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return v.Account, nil
}

// NewBucket returns a bucket for vault metadata, indexed by depositor and
// by the held custody account.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("vault", &Vault{},
		orm.WithIndex("depositor", depositorIndexer, false),
		orm.WithIndex("vault", accountIndexer, true),
	)
}
