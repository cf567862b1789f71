package custody

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r cave.Registry, auth x.Authenticator, control Controller) {
	r.Handle(pathSendMsg, NewSendHandler(auth, control))
	r.Handle(pathOpenMsg, NewOpenHandler(auth, control))
}

// RegisterQuery will register this bucket as "/accounts".
func RegisterQuery(qr cave.QueryRouter) {
	NewBucket().Register("accounts", qr)
}

// SendHandler will handle sending coins.
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ cave.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg.
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check verifies the source owner signed and returns the cost of
// executing it. Funds are not checked.
func (h SendHandler) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	var msg SendMsg
	if err := cave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	owner, err := h.control.Owner(db, msg.Source)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &cave.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the tokens from source to destination if all
// preconditions are met.
func (h SendHandler) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	var msg SendMsg
	if err := cave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.control.Transfer(ctx, h.auth, db, msg.Source, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	return &cave.DeliverResult{}, nil
}

// OpenHandler registers new accounts.
type OpenHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ cave.Handler = OpenHandler{}

// NewOpenHandler creates a handler for OpenMsg.
func NewOpenHandler(auth x.Authenticator, control Controller) OpenHandler {
	return OpenHandler{
		auth:    auth,
		control: control,
	}
}

func (h OpenHandler) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &cave.CheckResult{GasAllocated: openTxCost}, nil
}

func (h OpenHandler) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	id := msg.Account()
	if err := h.control.Open(db, id, msg.Owner); err != nil {
		return nil, err
	}
	return &cave.DeliverResult{Data: id}, nil
}

func (h OpenHandler) validate(ctx cave.Context, tx cave.Tx) (*OpenMsg, error) {
	var msg OpenMsg
	if err := cave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	return &msg, nil
}
