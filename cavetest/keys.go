package cavetest

import (
	"sync/atomic"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/crypto"
)

// NewKey returns a fresh ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the signature condition of a fresh key.
func NewCondition() cave.Condition {
	return NewKey().PublicKey().Condition()
}

var sequence uint64

// SequenceCondition returns a condition unique within the test run, not
// backed by any key.
func SequenceCondition() cave.Condition {
	n := atomic.AddUint64(&sequence, 1)
	return cave.NewCondition("test", "seq", []byte{
		byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32),
		byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n),
	})
}

// NewAddress returns a unique address.
func NewAddress() cave.Address {
	return SequenceCondition().Address()
}
