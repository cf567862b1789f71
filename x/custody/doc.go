/*
Package custody implements the asset custody service used by the vault and
tunnel extensions.

Funds are held in accounts. Every account has a registered owner and only
an authority presenting the owner identity can move funds out of it or close
it. The owner may be a signer or a derived identity, in which case the
authority is a capability rebuilt by the program that derived it.

An account whose id equals its owner address is a wallet. Transfers to a
missing account create a wallet for the destination.
*/
package custody
