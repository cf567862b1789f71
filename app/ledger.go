package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/dlock"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x/sigs"
	"github.com/micro-go/lock"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Clock provides the time at which operations are executed.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the time of the host.
var SystemClock Clock = ClockFunc(time.Now)

// Lockable is implemented by messages that operate on vault or tunnel
// accounts. The Ledger holds the lock of every returned address while the
// message is executed.
type Lockable interface {
	Locks() ([]cave.Address, error)
}

// Ledger executes transactions against a committed store. Every delivered
// transaction is its own block: it is either fully committed or leaves no
// trace.
type Ledger struct {
	// mutex guards the committed store. Checks share it, deliveries
	// take it exclusively as custody balances are shared between vaults.
	mutex sync.RWMutex
	store cave.CommitKVStore

	chainID string
	locker  dlock.Locker
	handler cave.Handler
	queries cave.QueryRouter
	clock   Clock
	logger  log.Logger
	metrics *Metrics
}

// NewLedger loads the latest committed state of db. Operations on the same
// vault or tunnel are serialized through locker.
func NewLedger(db cave.CommitKVStore, locker dlock.Locker) (*Ledger, error) {
	if err := db.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load store")
	}
	view := db.CacheWrap()
	chainID := loadChainID(view)
	view.Discard()

	return &Ledger{
		store:   db,
		chainID: chainID,
		locker:  locker,
		handler: Stack(),
		queries: QueryRouter(),
		clock:   SystemClock,
		logger:  log.NewNopLogger(),
	}, nil
}

// WithLogger sets the logger passed to every operation.
func (l *Ledger) WithLogger(logger log.Logger) *Ledger {
	l.logger = logger
	return l
}

// WithClock sets the source of the block time.
func (l *Ledger) WithClock(c Clock) *Ledger {
	l.clock = c
	return l
}

// WithMetrics enables collection of execution statistics.
func (l *Ledger) WithMetrics(m *Metrics) *Ledger {
	l.metrics = m
	return l
}

// ChainID returns the chain id set at genesis, or an empty string.
func (l *Ledger) ChainID() string {
	defer lock.Read(&l.mutex).Unlock()
	return l.chainID
}

// Height returns the number of committed blocks.
func (l *Ledger) Height() int64 {
	defer lock.Read(&l.mutex).Unlock()
	return l.store.LatestVersion().Version
}

// InitChain stores the chain id and loads the genesis state of every
// extension. It can be called only once.
func (l *Ledger) InitChain(chainID string, opts cave.Options) error {
	defer lock.Write(&l.mutex).Unlock()

	if l.chainID != "" {
		return errors.Wrapf(errors.ErrState, "ledger already initialized for %q", l.chainID)
	}
	db := l.store.CacheWrap()
	if err := saveChainID(db, chainID); err != nil {
		db.Discard()
		return err
	}
	if err := Initializers().FromGenesis(opts, db); err != nil {
		db.Discard()
		return errors.Wrap(err, "genesis")
	}
	db.Write()
	id := l.store.Commit()
	l.chainID = chainID
	l.logger.Info("chain initialized", "chain_id", chainID, "height", id.Version)
	return nil
}

// Check runs the transaction without modifying the state.
func (l *Ledger) Check(ctx context.Context, tx cave.Tx) (*cave.CheckResult, error) {
	defer lock.Read(&l.mutex).Unlock()
	if l.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "ledger not initialized")
	}

	start := time.Now()
	db := l.store.CacheWrap()
	defer db.Discard()
	res, err := l.handler.Check(l.blockContext(ctx, "check", tx), db, tx)
	l.metrics.observe("check", cave.GetPath(tx), start, err)
	return res, err
}

// Deliver executes the transaction and commits its effects. On failure
// the state is left unchanged.
func (l *Ledger) Deliver(ctx context.Context, tx cave.Tx) (*cave.DeliverResult, error) {
	unlock, err := l.lockTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			l.logger.Error("cannot release lock", "err", err)
		}
	}()

	defer lock.Write(&l.mutex).Unlock()
	if l.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "ledger not initialized")
	}

	start := time.Now()
	db := l.store.CacheWrap()
	res, err := l.handler.Deliver(l.blockContext(ctx, "deliver", tx), db, tx)
	l.metrics.observe("deliver", cave.GetPath(tx), start, err)
	if err != nil {
		db.Discard()
		return nil, err
	}
	db.Write()
	id := l.store.Commit()
	l.logger.Debug("committed", "height", id.Version, "hash", id.Hash)
	return res, nil
}

// Submit decodes and delivers a serialized transaction.
func (l *Ledger) Submit(ctx context.Context, raw []byte) (*cave.DeliverResult, error) {
	tx, err := TxDecoder(raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode transaction")
	}
	return l.Deliver(ctx, tx)
}

/*
Query reads the committed state. Path may be "/<bucket>" or
"/<bucket>/<index>", followed by "?prefix" to make a prefix query.
*/
func (l *Ledger) Query(path string, data []byte) ([]cave.Model, error) {
	path, mod := splitPath(path)
	qh := l.queries.Handler(path)
	if qh == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "query path %q", path)
	}

	defer lock.Read(&l.mutex).Unlock()
	db := l.store.CacheWrap()
	defer db.Discard()
	return qh.Query(db, mod, data)
}

// NextSequence returns the sequence the next signature of signer must use.
func (l *Ledger) NextSequence(signer cave.Address) (int64, error) {
	defer lock.Read(&l.mutex).Unlock()
	db := l.store.CacheWrap()
	defer db.Discard()
	return sigs.NextNonce(db, signer)
}

// lockTx acquires the locks of all accounts the message operates on.
func (l *Ledger) lockTx(ctx context.Context, tx cave.Tx) (dlock.UnlockFunc, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	lockable, ok := msg.(Lockable)
	if !ok {
		return func() error { return nil }, nil
	}
	addrs, err := lockable.Locks()
	if err != nil {
		return nil, errors.Wrap(err, "locks")
	}
	keys := make([]string, len(addrs))
	for i, a := range addrs {
		keys[i] = a.String()
	}
	return dlock.LockAll(ctx, l.locker, keys)
}

// blockContext returns the context of a single operation. Each delivery
// is executed as the next block, at the time of the clock.
func (l *Ledger) blockContext(ctx context.Context, call string, tx cave.Tx) cave.Context {
	header := abci.Header{
		ChainID: l.chainID,
		Height:  l.store.LatestVersion().Version + 1,
		Time:    l.clock.Now(),
	}
	ctx = cave.WithHeader(ctx, header)
	ctx = cave.WithChainID(ctx, l.chainID)
	ctx = cave.WithLogger(ctx, l.logger)
	return cave.WithLogInfo(ctx, "call", call, "path", cave.GetPath(tx))
}

// splitPath splits out the real path along with the query modifier
// (everything after the ?).
func splitPath(path string) (string, string) {
	var mod string
	chunks := strings.SplitN(path, "?", 2)
	if len(chunks) == 2 {
		path = chunks[0]
		mod = chunks[1]
	}
	return path, mod
}
