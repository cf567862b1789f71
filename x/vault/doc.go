/*
Package vault implements time-locked custodial vaults.

A depositor moves funds from a source account into a vault. The funds can be
withdrawn back to the source only after the depositor requested an unlock
and the chosen timelock has passed. An optional backup identity provides a
recovery path: once an unlock was requested, the depositor can redirect the
whole vault to an account owned by the backup without waiting.

Every vault is a pair of derived identities. The vault account is derived
from the source account, and the metadata identity is derived from the
vault account. The metadata identity is the only custody authority of the
vault account, so funds move only through the transitions of this package.

	Create -> RequestUnlock -> Withdraw
	                        -> Abort
*/
package vault
