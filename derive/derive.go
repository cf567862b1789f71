/*
Package derive computes keyless identities.

A derived identity is a Condition whose data is a blake2b digest of the
owning program name, a kind, a seed and a one byte nonce. The digest is
required to not be a valid ed25519 point, so no private key can ever sign
for it. The only way to act as a derived identity is to recompute it from
its seed and nonce, which is what Capability does.

Find searches the nonce downward from 255 and returns the first one that
produces an off-curve digest, so the canonical nonce is always the highest
valid one.
*/
package derive

import (
	"filippo.io/edwards25519"
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/errors"
	"golang.org/x/crypto/blake2b"
)

// ExtensionName is used for the Conditions of derived identities.
const ExtensionName = "derive"

// marker is appended to every digest input so that derived identities can
// never collide with the hash of another kind of data.
const marker = "cave/derived-identity"

var (
	// ErrSeeds is returned when the seeds and nonce describe a point on
	// the curve, which cannot be used as a derived identity.
	ErrSeeds = errors.Register(200, "invalid derivation seeds")

	// ErrNoNonce is returned when no nonce yields a valid identity.
	ErrNoNonce = errors.Register(201, "no valid derivation nonce")
)

// Find returns the derived identity for the given seed together with the
// canonical nonce.
func Find(program, kind string, seed []byte) (cave.Condition, uint8, error) {
	for n := 255; n >= 0; n-- {
		cond, err := Create(program, kind, seed, uint8(n))
		if err == nil {
			return cond, uint8(n), nil
		}
		if !ErrSeeds.Is(err) {
			return nil, 0, err
		}
	}
	return nil, 0, errors.Wrapf(ErrNoNonce, "%s/%s", program, kind)
}

// Create returns the identity for the given seed and nonce, or ErrSeeds if
// the digest is a valid curve point.
func Create(program, kind string, seed []byte, nonce uint8) (cave.Condition, error) {
	if program == "" {
		return nil, errors.Field("Program", errors.ErrEmpty, "required")
	}
	if len(seed) == 0 {
		return nil, errors.Field("Seed", errors.ErrEmpty, "required")
	}
	if err := cave.NewCondition(ExtensionName, kind, []byte{0}).Validate(); err != nil {
		return nil, errors.Field("Kind", err, "invalid kind %q", kind)
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, errors.Wrap(err, "blake2b")
	}
	writeChunk(h, []byte(program))
	writeChunk(h, []byte(kind))
	writeChunk(h, seed)
	h.Write([]byte{nonce})
	h.Write([]byte(marker))
	digest := h.Sum(nil)

	if onCurve(digest) {
		return nil, errors.Wrapf(ErrSeeds, "%s/%s nonce %d", program, kind, nonce)
	}
	return cave.NewCondition(ExtensionName, kind, digest), nil
}

// writeChunk length-prefixes the data so that chunk boundaries cannot be
// shifted between program, kind and seed.
func writeChunk(h interface{ Write([]byte) (int, error) }, data []byte) {
	h.Write([]byte{byte(len(data) >> 8), byte(len(data))})
	h.Write(data)
}

// onCurve returns true if the bytes are the canonical encoding of an
// ed25519 point.
func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// IsDerived returns true if the condition was produced by this package.
func IsDerived(c cave.Condition) bool {
	ext, _, data, err := c.Parse()
	return err == nil && ext == ExtensionName && len(data) == blake2b.Size256 && !onCurve(data)
}
