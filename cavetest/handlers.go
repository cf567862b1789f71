package cavetest

import "github.com/cavelabs/cave"

// Handler is a mock implementation of the cave.Handler interface. Every
// call is counted.
type Handler struct {
	checkCall   int
	CheckResult cave.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult cave.DeliverResult
	DeliverErr    error

	// Write if set is stored under Key on every call, before the result
	// is returned.
	Key   []byte
	Write []byte
}

var _ cave.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	h.checkCall++
	if h.Write != nil {
		db.Set(h.Key, h.Write)
	}
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	h.deliverCall++
	if h.Write != nil {
		db.Set(h.Key, h.Write)
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// PanicHandler panics with Value on every call.
type PanicHandler struct {
	Value interface{}
}

var _ cave.Handler = PanicHandler{}

func (p PanicHandler) Check(cave.Context, cave.KVStore, cave.Tx) (*cave.CheckResult, error) {
	panic(p.Value)
}

func (p PanicHandler) Deliver(cave.Context, cave.KVStore, cave.Tx) (*cave.DeliverResult, error) {
	panic(p.Value)
}
