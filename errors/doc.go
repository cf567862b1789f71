/*
Package errors implements coded root errors for cave.

Every failure returned by a handler wraps one of the root errors registered
with Register. The code travels to the client, the description and the wrap
chain stay readable for the operator.

Create new instances at the point of failure using Wrap, Wrapf or Field so
that a stack trace is attached once, at the innermost frame:

	return errors.Wrapf(errors.ErrNotFound, "vault %s", addr)

Test for a kind with the Is method of the root error:

	if errors.ErrNotFound.Is(err) { ... }

Formatting with %+v prints the stack trace of the creation point.
*/
package errors
