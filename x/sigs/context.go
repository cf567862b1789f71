package sigs

import (
	"context"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/x"
)

type contextKey int

const (
	contextKeySigners contextKey = iota
)

// withSigners is private, as only this package can add a signer.
func withSigners(ctx cave.Context, signers []cave.Condition) cave.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate reveals the conditions of all valid signatures.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current Context. May be empty.
func (Authenticate) GetConditions(ctx cave.Context) []cave.Condition {
	val, _ := ctx.Value(contextKeySigners).([]cave.Condition)
	return val
}

// HasAddress returns true if the given address signed the current
// Context.
func (a Authenticate) HasAddress(ctx cave.Context, addr cave.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
