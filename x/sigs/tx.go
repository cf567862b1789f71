package sigs

import (
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/crypto"
	"github.com/cavelabs/cave/errors"
)

// SignedTx represents a transaction that contains signatures, which can
// be verified by the Decorator.
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the
	// message.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signatures of everyone who signed.
	GetSignatures() []*StdSignature
}

// StdSignature is a signature together with the key and sequence it was
// created for.
type StdSignature struct {
	Sequence  int64
	Pubkey    *crypto.PublicKey
	Signature *crypto.Signature
}

// Validate ensures the signature meets basic standards.
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if s.Signature == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

func (s *StdSignature) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Int64(1, s.Sequence)
	if s.Pubkey != nil {
		if err := e.Message(2, s.Pubkey); err != nil {
			return nil, err
		}
	}
	if s.Signature != nil {
		if err := e.Message(3, s.Signature); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (s *StdSignature) Unmarshal(raw []byte) error {
	*s = StdSignature{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			s.Sequence = d.Int64()
		case 2:
			s.Pubkey = &crypto.PublicKey{}
			d.Message(s.Pubkey)
		case 3:
			s.Signature = &crypto.Signature{}
			d.Message(s.Signature)
		default:
			d.Skip()
		}
	}
	return d.Err()
}
