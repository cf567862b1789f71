package utils

import (
	"time"

	"github.com/cavelabs/cave"
)

// Logging is a decorator to log messages as they pass through.
type Logging struct{}

var _ cave.Decorator = Logging{}

// NewLogging creates a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> info, success -> debug
func (Logging) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx, next cave.Checker) (*cave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (Logging) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx, next cave.Deliverer) (*cave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, false)
	return res, err
}

func logDuration(ctx cave.Context, tx cave.Tx, start time.Time, msg string, err error, lowPrio bool) {
	logger := cave.GetLogger(ctx).With(
		"path", cave.GetPath(tx),
		"duration", time.Since(start)/time.Microsecond)

	// An entry is emitted even for an empty message as the fields
	// describe the transaction.
	switch {
	case err != nil:
		logger.With("err", err).Error(msg)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
