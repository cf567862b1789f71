package cavetest

import (
	"context"

	"github.com/cavelabs/cave"
)

// Auth authenticates a fixed set of conditions regardless of the context.
// Signer is a shortcut for the common case of a single signer.
type Auth struct {
	Signer  cave.Condition
	Signers []cave.Condition
}

func (a *Auth) GetConditions(cave.Context) []cave.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	return append(append([]cave.Condition{}, a.Signers...), a.Signer)
}

func (a *Auth) HasAddress(ctx cave.Context, addr cave.Address) bool {
	return containsAddress(a.GetConditions(ctx), addr)
}

type ctxAuthKey string

// CtxAuth authenticates the conditions stored in the context by
// SetConditions. Use distinct keys to run independent authenticators in
// one context.
type CtxAuth struct {
	Key string
}

// SetConditions returns a context in which exactly the given conditions
// are authenticated.
func (a *CtxAuth) SetConditions(ctx cave.Context, conds ...cave.Condition) cave.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conds)
}

func (a *CtxAuth) GetConditions(ctx cave.Context) []cave.Condition {
	conds, _ := ctx.Value(ctxAuthKey(a.Key)).([]cave.Condition)
	return conds
}

func (a *CtxAuth) HasAddress(ctx cave.Context, addr cave.Address) bool {
	return containsAddress(a.GetConditions(ctx), addr)
}

func containsAddress(conds []cave.Condition, addr cave.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
