/*
Package x contains the pieces shared by all extensions, most importantly
the Authenticator that lets handlers ask who authorized a transaction.
*/
package x

import (
	"github.com/cavelabs/cave"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled.
	GetConditions(cave.Context) []cave.Condition

	// HasAddress checks if any condition matches this address.
	HasAddress(cave.Context, cave.Address) bool
}
