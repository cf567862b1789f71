package cavetest

import "github.com/cavelabs/cave"

// Decorator is a mock implementation of the cave.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding
// method. If error attributes are not set then wrapped handler method is
// called and its result returned. Each method call is counted.
type Decorator struct {
	checkCall int
	CheckErr  error

	deliverCall int
	DeliverErr  error
}

var _ cave.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx, next cave.Checker) (*cave.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx, next cave.Deliverer) (*cave.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate returns a handler that calls the decorator wrapping h.
func Decorate(h cave.Handler, d cave.Decorator) cave.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn cave.Handler
	dc cave.Decorator
}

var _ cave.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
