package app

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/x"
	"github.com/cavelabs/cave/x/custody"
	"github.com/cavelabs/cave/x/sigs"
	"github.com/cavelabs/cave/x/tunnel"
	"github.com/cavelabs/cave/x/utils"
	"github.com/cavelabs/cave/x/vault"
)

// Authenticator returns the typical authentication, just using public key
// signatures.
func Authenticator() x.Authenticator {
	return sigs.Authenticate{}
}

// Chain returns a chain of decorators, to handle authentication, logging
// and recovery.
func Chain() Decorators {
	return ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		// on check, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		utils.NewSavepoint().OnDeliver(),
	)
}

// Routes registers the handlers of every extension.
func Routes(r cave.Registry, auth x.Authenticator) {
	bank := custody.NewController()
	custody.RegisterRoutes(r, auth, bank)
	vault.RegisterRoutes(r, auth, bank)
	tunnel.RegisterRoutes(r, auth, bank)
}

// Stack wires up a standard router with a standard decorator chain.
func Stack() cave.Handler {
	r := NewRouter()
	Routes(r, Authenticator())
	return Chain().WithHandler(r)
}

// QueryRouter returns a default query router, allowing access to
// "/accounts", "/vaults", "/tunnels" and "/auth".
func QueryRouter() cave.QueryRouter {
	r := cave.NewQueryRouter()
	r.RegisterAll(
		custody.RegisterQuery,
		vault.RegisterQuery,
		tunnel.RegisterQuery,
		sigs.RegisterQuery,
	)
	return r
}

// Initializers loads the genesis state of every extension.
func Initializers() cave.Initializer {
	return cave.ChainInitializers(
		custody.Initializer{},
		vault.Initializer{},
		tunnel.Initializer{},
	)
}
