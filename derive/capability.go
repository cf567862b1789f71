package derive

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/x"
)

// Capability authorizes actions on behalf of a derived identity. It is
// built from the same inputs as the identity and grants exactly that
// identity and nothing else. It is never stored.
type Capability struct {
	cond cave.Condition
}

var _ x.Authenticator = Capability{}

// NewCapability recomputes the derived identity and returns the authority
// to act as it.
func NewCapability(program, kind string, seed []byte, nonce uint8) (Capability, error) {
	cond, err := Create(program, kind, seed, nonce)
	if err != nil {
		return Capability{}, err
	}
	return Capability{cond: cond}, nil
}

// Condition returns the granted identity.
func (c Capability) Condition() cave.Condition {
	return c.cond
}

// Address returns the address of the granted identity.
func (c Capability) Address() cave.Address {
	return c.cond.Address()
}

// GetConditions returns the granted identity.
func (c Capability) GetConditions(cave.Context) []cave.Condition {
	if c.cond == nil {
		return nil
	}
	return []cave.Condition{c.cond}
}

// HasAddress returns true only for the granted identity.
func (c Capability) HasAddress(_ cave.Context, addr cave.Address) bool {
	return c.cond != nil && c.cond.Address().Equals(addr)
}
