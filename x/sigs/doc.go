/*
Package sigs provides the authentication middleware. It verifies the
signatures on the transaction, maintains per-key sequences for replay
protection, and exposes the signers to handlers as Conditions.
*/
package sigs
