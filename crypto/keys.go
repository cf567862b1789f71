/*
Package crypto wraps ed25519 keys and signatures and maps public keys to
the Conditions that authorize transactions.
*/
package crypto

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/errors"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is used for the Conditions we get from signatures.
const ExtensionName = "sigs"

// PublicKey is an ed25519 public key.
type PublicKey struct {
	Ed25519 []byte
}

// Verify returns true if the signature was created with this message and
// the matching private key.
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if sig == nil || len(p.Ed25519) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, sig.Ed25519)
}

// Condition encodes the public key into a condition.
func (p *PublicKey) Condition() cave.Condition {
	return cave.NewCondition(ExtensionName, "ed25519", p.Ed25519)
}

// Address returns the address of the key condition.
func (p *PublicKey) Address() cave.Address {
	return p.Condition().Address()
}

// Validate checks the key length.
func (p *PublicKey) Validate() error {
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "public key length %d", len(p.Ed25519))
	}
	return nil
}

// Marshal serializes the key.
func (p *PublicKey) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, p.Ed25519)
	return e.Result(), nil
}

// Unmarshal replaces the content with the serialized key.
func (p *PublicKey) Unmarshal(raw []byte) error {
	return unmarshalBytes(raw, &p.Ed25519)
}

// PrivateKey is an ed25519 private key.
type PrivateKey struct {
	Ed25519 []byte
}

// GenPrivKeyEd25519 returns a random new private key.
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed deterministically generates a private key from
// a 32 byte seed. Use it for deterministic keys in tests.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}

// Sign returns a matching signature for this private key.
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "private key length %d", len(p.Ed25519))
	}
	return &Signature{Ed25519: ed25519.Sign(ed25519.PrivateKey(p.Ed25519), message)}, nil
}

// PublicKey returns the corresponding public key.
func (p *PrivateKey) PublicKey() *PublicKey {
	pub := ed25519.PrivateKey(p.Ed25519).Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// Marshal serializes the key.
func (p *PrivateKey) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, p.Ed25519)
	return e.Result(), nil
}

// Unmarshal replaces the content with the serialized key.
func (p *PrivateKey) Unmarshal(raw []byte) error {
	return unmarshalBytes(raw, &p.Ed25519)
}

// Signature is an ed25519 signature.
type Signature struct {
	Ed25519 []byte
}

// Marshal serializes the signature.
func (s *Signature) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, s.Ed25519)
	return e.Result(), nil
}

// Unmarshal replaces the content with the serialized signature.
func (s *Signature) Unmarshal(raw []byte) error {
	return unmarshalBytes(raw, &s.Ed25519)
}

func unmarshalBytes(raw []byte, dest *[]byte) error {
	*dest = nil
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			*dest = d.Bytes()
		default:
			d.Skip()
		}
	}
	return d.Err()
}
