package utils

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/errors"
)

// Recovery is a decorator to recover from panics in transactions, so we
// can log them as errors.
type Recovery struct{}

var _ cave.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator.
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors.
func (Recovery) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx, next cave.Checker) (_ *cave.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, db, tx)
}

// Deliver turns panics into normal errors.
func (Recovery) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx, next cave.Deliverer) (_ *cave.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, db, tx)
}
