package sigs

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/crypto"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/orm"
)

// UserData tracks the sequence of a public key.
type UserData struct {
	Pubkey   *crypto.PublicKey
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

// Validate requires a public key and a non negative sequence.
func (u *UserData) Validate() error {
	if u.Pubkey == nil {
		return errors.Field("Pubkey", errors.ErrEmpty, "required")
	}
	if u.Sequence < 0 {
		return errors.Field("Sequence", ErrInvalidSequence, "negative")
	}
	return nil
}

// CheckAndIncrementSequence fails if the sequence is not the expected
// one, and increments it otherwise.
func (u *UserData) CheckAndIncrementSequence(check int64) error {
	if u.Sequence != check {
		return errors.Wrapf(ErrInvalidSequence, "mismatch: got %d, want %d", check, u.Sequence)
	}
	u.Sequence++
	return nil
}

func (u *UserData) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	if u.Pubkey != nil {
		if err := e.Message(1, u.Pubkey); err != nil {
			return nil, err
		}
	}
	e.Int64(2, u.Sequence)
	return e.Result(), nil
}

func (u *UserData) Unmarshal(raw []byte) error {
	*u = UserData{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			u.Pubkey = &crypto.PublicKey{}
			d.Message(u.Pubkey)
		case 2:
			u.Sequence = d.Int64()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// Bucket stores user data keyed by the address of the public key.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing user data.
func NewBucket() Bucket {
	return Bucket{ModelBucket: orm.NewModelBucket("sigs", &UserData{})}
}

// GetOrCreate returns the user data of the key, or a fresh one with
// sequence zero.
func (b Bucket) GetOrCreate(db cave.ReadOnlyKVStore, pub *crypto.PublicKey) (*UserData, error) {
	var u UserData
	switch err := b.One(db, pub.Address(), &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pub}, nil
	default:
		return nil, err
	}
}

// RegisterQuery exposes user data under "/auth".
func RegisterQuery(qr cave.QueryRouter) {
	NewBucket().Register("auth", qr)
}
