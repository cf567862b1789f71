package sigs

import "github.com/cavelabs/cave/errors"

// ErrInvalidSequence is returned when a signature sequence does not match
// the expected one.
var ErrInvalidSequence = errors.Register(120, "invalid sequence number")
