package tunnel

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/orm"
	"github.com/cavelabs/cave/x"
	"github.com/cavelabs/cave/x/custody"
	"github.com/cavelabs/cave/x/timelock"
)

const (
	programName = "tunnel"
	tunnelKind  = "tunnel"

	// CostPerSecond is the price of one second of service, in base units
	// of the paid currency.
	CostPerSecond uint64 = 1000000

	// PayoutDelay is the number of seconds a payment stays locked.
	PayoutDelay uint32 = 5

	payCost    int64 = 300
	payoutCost int64 = 0
)

// DeriveHolding returns the tunnel account and metadata identities of the
// payer.
func DeriveHolding(payer cave.Address) (*timelock.Holding, error) {
	return timelock.DeriveHolding(programName, tunnelKind, payer)
}

// Price returns the amount paid for the given service time.
func Price(serviceTime uint32, ticker string) (coin.Coin, error) {
	return coin.NewCoin(CostPerSecond, ticker).Multiply(uint64(serviceTime))
}

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r cave.Registry, auth x.Authenticator, bank custody.Controller) {
	bucket := NewBucket()
	r.Handle(pathPayMsg, PayHandler{auth: auth, bucket: bucket, bank: bank})
	r.Handle(pathPayoutMsg, PayoutHandler{auth: auth, bucket: bucket, bank: bank})
}

// RegisterQuery will register this bucket as "/tunnels".
func RegisterQuery(qr cave.QueryRouter) {
	NewBucket().Register("tunnels", qr)
}

// PayHandler funds new tunnels.
type PayHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   custody.Controller
}

var _ cave.Handler = PayHandler{}

func (h PayHandler) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &cave.CheckResult{GasAllocated: payCost}, nil
}

// Deliver registers the tunnel and moves the price of the service from
// the source account into it.
func (h PayHandler) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	msg, holding, price, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := cave.CurrentTime(ctx)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, errors.Wrap(err, "configuration")
	}

	t := &Tunnel{
		Payer:          msg.Payer,
		PaymentTime:    now,
		ServiceTime:    msg.ServiceTime,
		Amount:         price,
		Account:        holding.Account,
		AccountNonce:   holding.AccountNonce,
		InfoNonce:      holding.InfoNonce,
		StorageDeposit: conf.StorageDeposit,
	}
	if err := holding.Open(ctx, h.auth, h.bank, db, msg.Source, conf.StorageDeposit); err != nil {
		return nil, err
	}
	if err := h.bucket.Put(db, holding.Info, t); err != nil {
		return nil, errors.Wrap(err, "cannot store tunnel")
	}
	if price.IsPositive() {
		if err := h.bank.Transfer(ctx, h.auth, db, msg.Source, holding.Account, price); err != nil {
			return nil, errors.Wrap(err, "payment")
		}
	}

	cave.GetLogger(ctx).Info("tunnel paid",
		"tunnel", holding.Account,
		"payer", msg.Payer,
		"amount", price,
		"service_time", msg.ServiceTime)
	return &cave.DeliverResult{Data: holding.Account}, nil
}

func (h PayHandler) validate(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*PayMsg, *timelock.Holding, coin.Coin, error) {
	var msg PayMsg
	if err := cave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, coin.Coin{}, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, nil, coin.Coin{}, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	owner, err := h.bank.Owner(db, msg.Source)
	if err != nil {
		return nil, nil, coin.Coin{}, errors.Wrap(err, "source account")
	}
	if !owner.Equals(msg.Payer) {
		return nil, nil, coin.Coin{}, errors.Wrap(errors.ErrUnauthorized, "source account is not owned by the payer")
	}
	holding, err := DeriveHolding(msg.Payer)
	if err != nil {
		return nil, nil, coin.Coin{}, err
	}
	if h.bucket.Has(db, holding.Info) {
		return nil, nil, coin.Coin{}, errors.Wrapf(errors.ErrDuplicate, "tunnel %s", holding.Account)
	}
	price, err := Price(msg.ServiceTime, msg.Ticker)
	if err != nil {
		return nil, nil, coin.Coin{}, errors.Wrap(err, "price")
	}
	return &msg, holding, price, nil
}

// PayoutHandler releases paid tunnels to the payee.
type PayoutHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   custody.Controller
}

var _ cave.Handler = PayoutHandler{}

func (h PayoutHandler) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &cave.CheckResult{GasAllocated: payoutCost}, nil
}

// Deliver moves the whole tunnel balance to the payee account and closes
// the tunnel. The storage deposit goes to the authorizer.
func (h PayoutHandler) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	msg, key, t, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	moved, err := t.Holding(key).Release(ctx, h.bank, db, msg.PayeeAccount, msg.Authorizer)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Delete(db, key); err != nil {
		return nil, errors.Wrap(err, "cannot delete tunnel")
	}

	cave.GetLogger(ctx).Info("tunnel paid out",
		"tunnel", t.Account,
		"payee", msg.Payee,
		"account", msg.PayeeAccount,
		"amount", moved,
		"authorizer", msg.Authorizer,
		"authorizer_verified", false)
	return &cave.DeliverResult{Data: t.Account}, nil
}

func (h PayoutHandler) validate(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*PayoutMsg, []byte, *Tunnel, error) {
	var msg PayoutMsg
	if err := cave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	holding, err := DeriveHolding(msg.Payer)
	if err != nil {
		return nil, nil, nil, err
	}
	var t Tunnel
	if err := h.bucket.One(db, holding.Info, &t); err != nil {
		return nil, nil, nil, errors.Wrap(err, "cannot load tunnel")
	}

	// The authorizer stands in for a threshold signature of the service
	// operators. Only its signature is required.
	// TODO: verify the authorizer against the operator set once threshold
	// signatures are supported by x/sigs.
	if !h.auth.HasAddress(ctx, msg.Authorizer) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "authorizer signature missing")
	}

	now, err := cave.CurrentTime(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := timelock.CheckPassed(now, t.PaymentTime, PayoutDelay); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "tunnel %s", t.Account)
	}

	owner, err := h.bank.Owner(db, msg.PayeeAccount)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "payee account")
	}
	if !owner.Equals(msg.Payee) {
		return nil, nil, nil, errors.Wrapf(errors.ErrUnauthorized, "account %s is not owned by the payee", msg.PayeeAccount)
	}
	return &msg, holding.Info, &t, nil
}
