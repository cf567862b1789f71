package vault

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
	programName = "vault"
	vaultKind   = "vault"

	createVaultCost  int64 = 300
	unlockVaultCost  int64 = 50
	releaseVaultCost int64 = 0
)

// DeriveHolding returns the vault account and metadata identities of the
// vault funded from source.
func DeriveHolding(source cave.Address) (*timelock.Holding, error) {
	return timelock.DeriveHolding(programName, vaultKind, source)
}

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r cave.Registry, auth x.Authenticator, bank custody.Controller) {
	bucket := NewBucket()
	r.Handle(pathCreateMsg, CreateHandler{auth: auth, bucket: bucket, bank: bank})
	r.Handle(pathRequestUnlockMsg, RequestUnlockHandler{auth: auth, bucket: bucket})
	r.Handle(pathWithdrawMsg, WithdrawHandler{auth: auth, bucket: bucket, bank: bank})
	r.Handle(pathAbortMsg, AbortHandler{auth: auth, bucket: bucket, bank: bank})
}

// RegisterQuery will register this bucket as "/vaults".
func RegisterQuery(qr cave.QueryRouter) {
	NewBucket().Register("vaults", qr)
}

// CreateHandler opens new vaults.
type CreateHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   custody.Controller
}

var _ cave.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &cave.CheckResult{GasAllocated: createVaultCost}, nil
}

// Deliver registers the vault account, stores the metadata and moves the
// deposit from the source account into the vault.
func (h CreateHandler) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	msg, holding, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, errors.Wrap(err, "configuration")
	}

	v := NewVault(msg.Depositor, msg.Backup, msg.TimelockDuration)
	v.Source = msg.Source
	v.Account = holding.Account
	v.AccountNonce = holding.AccountNonce
	v.InfoNonce = holding.InfoNonce
	v.StorageDeposit = conf.StorageDeposit

	if err := holding.Open(ctx, h.auth, h.bank, db, msg.Source, conf.StorageDeposit); err != nil {
		return nil, err
	}
	if err := h.bucket.Put(db, holding.Info, v); err != nil {
		return nil, errors.Wrap(err, "cannot store vault")
	}
	if err := h.bank.Transfer(ctx, h.auth, db, msg.Source, holding.Account, *msg.Amount); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}

	cave.GetLogger(ctx).Info("vault created",
		"vault", holding.Account,
		"depositor", msg.Depositor,
		"amount", msg.Amount,
		"duration", msg.TimelockDuration)
	return &cave.DeliverResult{Data: holding.Account}, nil
}

func (h CreateHandler) validate(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*CreateMsg, *timelock.Holding, error) {
	var msg CreateMsg
	if err := cave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Depositor) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "depositor signature missing")
	}
	owner, err := h.bank.Owner(db, msg.Source)
	if err != nil {
		return nil, nil, errors.Wrap(err, "source account")
	}
	if !owner.Equals(msg.Depositor) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "source account is not owned by the depositor")
	}
	holding, err := DeriveHolding(msg.Source)
	if err != nil {
		return nil, nil, err
	}
	if h.bucket.Has(db, holding.Info) {
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "vault %s", holding.Account)
	}
	return &msg, holding, nil
}

// RequestUnlockHandler starts the timelock of a vault.
type RequestUnlockHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ cave.Handler = RequestUnlockHandler{}

func (h RequestUnlockHandler) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &cave.CheckResult{GasAllocated: unlockVaultCost}, nil
}

func (h RequestUnlockHandler) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	key, v, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := cave.CurrentTime(ctx)
	if err != nil {
		return nil, err
	}
	v.UnlockRequestTime = now
	v.Unlocking = true
	if err := h.bucket.Put(db, key, v); err != nil {
		return nil, errors.Wrap(err, "cannot store vault")
	}

	cave.GetLogger(ctx).Info("vault unlock requested",
		"vault", v.Account,
		"at", now,
		"duration", v.TimelockDuration)
	return &cave.DeliverResult{Data: v.Account}, nil
}

func (h RequestUnlockHandler) validate(ctx cave.Context, db cave.KVStore, tx cave.Tx) ([]byte, *Vault, error) {
	var msg RequestUnlockMsg
	if err := cave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	key, v, err := loadVault(db, h.bucket, msg.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := checkDepositor(ctx, h.auth, v, msg.Depositor); err != nil {
		return nil, nil, err
	}
	if v.Unlocking {
		return nil, nil, errors.Wrapf(timelock.ErrUnlockAlreadyActive, "since %s", v.UnlockRequestTime)
	}
	return key, v, nil
}

// WithdrawHandler returns the funds of an unlocked vault to its source
// and closes it.
type WithdrawHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   custody.Controller
}

var _ cave.Handler = WithdrawHandler{}

func (h WithdrawHandler) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &cave.CheckResult{GasAllocated: releaseVaultCost}, nil
}

func (h WithdrawHandler) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	key, v, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	moved, err := closeVault(ctx, h.bucket, h.bank, db, key, v, v.Source)
	if err != nil {
		return nil, err
	}

	cave.GetLogger(ctx).Info("vault withdrawn",
		"vault", v.Account,
		"source", v.Source,
		"amount", moved)
	return &cave.DeliverResult{Data: v.Account}, nil
}

func (h WithdrawHandler) validate(ctx cave.Context, db cave.KVStore, tx cave.Tx) ([]byte, *Vault, error) {
	var msg WithdrawMsg
	if err := cave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	key, v, err := loadVault(db, h.bucket, msg.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := checkDepositor(ctx, h.auth, v, msg.Depositor); err != nil {
		return nil, nil, err
	}
	if !v.Unlocking {
		return nil, nil, errors.Wrapf(timelock.ErrDidNotRequestUnlock, "vault %s", v.Account)
	}
	now, err := cave.CurrentTime(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := timelock.CheckPassed(now, v.UnlockRequestTime, v.TimelockDuration); err != nil {
		return nil, nil, errors.Wrapf(err, "vault %s", v.Account)
	}
	return key, v, nil
}

// AbortHandler sends the funds of an unlocking vault to the backup and
// closes it. The timelock does not apply.
type AbortHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   custody.Controller
}

var _ cave.Handler = AbortHandler{}

func (h AbortHandler) Check(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &cave.CheckResult{GasAllocated: releaseVaultCost}, nil
}

func (h AbortHandler) Deliver(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	msg, key, v, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	moved, err := closeVault(ctx, h.bucket, h.bank, db, key, v, msg.BackupAccount)
	if err != nil {
		return nil, err
	}

	cave.GetLogger(ctx).Info("vault aborted to backup",
		"vault", v.Account,
		"backup", msg.Backup,
		"account", msg.BackupAccount,
		"amount", moved)
	return &cave.DeliverResult{Data: v.Account}, nil
}

func (h AbortHandler) validate(ctx cave.Context, db cave.KVStore, tx cave.Tx) (*AbortMsg, []byte, *Vault, error) {
	var msg AbortMsg
	if err := cave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	key, v, err := loadVault(db, h.bucket, msg.Source)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := checkDepositor(ctx, h.auth, v, msg.Depositor); err != nil {
		return nil, nil, nil, err
	}
	backup, ok := v.Backup()
	if !ok || !backup.Equals(msg.Backup) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "backup does not match")
	}
	owner, err := h.bank.Owner(db, msg.BackupAccount)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "backup account")
	}
	if !owner.Equals(backup) {
		return nil, nil, nil, errors.Wrapf(timelock.ErrIncorrectBackupTokenAccount, "account %s is owned by %s", msg.BackupAccount, owner)
	}
	if !v.Unlocking {
		return nil, nil, nil, errors.Wrapf(timelock.ErrDidNotRequestUnlock, "vault %s", v.Account)
	}
	return &msg, key, v, nil
}

// loadVault returns the metadata of the vault funded from source together
// with its key.
func loadVault(db cave.ReadOnlyKVStore, bucket orm.ModelBucket, source cave.Address) ([]byte, *Vault, error) {
	holding, err := DeriveHolding(source)
	if err != nil {
		return nil, nil, err
	}
	var v Vault
	if err := bucket.One(db, holding.Info, &v); err != nil {
		return nil, nil, errors.Wrap(err, "cannot load vault")
	}
	return holding.Info, &v, nil
}

func checkDepositor(ctx cave.Context, auth x.Authenticator, v *Vault, depositor cave.Address) error {
	if !v.Depositor.Equals(depositor) {
		return errors.Wrap(errors.ErrUnauthorized, "not the depositor")
	}
	if !auth.HasAddress(ctx, depositor) {
		return errors.Wrap(errors.ErrUnauthorized, "depositor signature missing")
	}
	return nil
}

// closeVault moves the whole balance to dst, closes the vault account and
// deletes the metadata. The storage deposit goes back to the depositor.
func closeVault(
	ctx cave.Context,
	bucket orm.ModelBucket,
	bank custody.Controller,
	db cave.KVStore,
	key []byte,
	v *Vault,
	dst cave.Address,
) (coin.Coins, error) {
	moved, err := v.Holding(key).Release(ctx, bank, db, dst, v.Depositor)
	if err != nil {
		return nil, err
	}
	if err := bucket.Delete(db, key); err != nil {
		return nil, errors.Wrap(err, "cannot delete vault")
	}
	return moved, nil
}
