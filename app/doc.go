/*
Package app wires the extensions into a runnable ledger.

A transaction is decoded into a Tx envelope, routed by the Router to the
handler of its message and executed through a chain of decorators. The
Ledger owns the committed store: it serializes operations touching the
same vault or tunnel, runs every transaction in a cache wrap and commits
only successful deliveries.
*/
package app
