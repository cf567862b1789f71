package sigs

import (
	"context"
	"testing"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/crypto"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecorator(t *testing.T) {
	kv := store.MemStore()
	checkKv := kv.CacheWrap()
	signers := new(sigCheckHandler)
	d := NewDecorator()
	chainID := "deco-rate"
	ctx := cave.WithChainID(context.Background(), chainID)

	priv := crypto.GenPrivKeyEd25519()
	perms := []cave.Condition{priv.PublicKey().Condition()}

	tx := &signedTx{payload: []byte("art")}
	sig, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)

	deliver := func(dec cave.Decorator, my cave.Tx) error {
		_, err := dec.Deliver(ctx, kv, my, signers)
		return err
	}
	check := func(dec cave.Decorator, my cave.Tx) error {
		_, err := dec.Check(ctx, checkKv, my, signers)
		return err
	}

	for i, fn := range []func(cave.Decorator, cave.Tx) error{check, deliver} {
		tx.signatures = nil
		err := fn(d, tx)
		assert.True(t, errors.ErrUnauthorized.Is(err), "%d: %+v", i, err)

		tx.signatures = []*StdSignature{sig}
		err = fn(d, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, perms, signers.signers)

		// replay
		err = fn(d, tx)
		assert.True(t, ErrInvalidSequence.Is(err), "%d: %+v", i, err)

		ad := d.AllowMissingSigs()
		tx.signatures = nil
		err = fn(ad, tx)
		assert.NoError(t, err, "%d", i)
		assert.Empty(t, signers.signers)

		tx.signatures = []*StdSignature{sig1}
		err = fn(ad, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, perms, signers.signers)
	}
}

func TestDecoratorGas(t *testing.T) {
	kv := store.MemStore()
	chainID := "gas-chain"
	ctx := cave.WithChainID(context.Background(), chainID)

	a, b := crypto.GenPrivKeyEd25519(), crypto.GenPrivKeyEd25519()
	tx := &signedTx{payload: []byte("gas")}
	sigA, err := SignTx(a, tx, chainID, 0)
	require.NoError(t, err)
	sigB, err := SignTx(b, tx, chainID, 0)
	require.NoError(t, err)
	tx.signatures = []*StdSignature{sigA, sigB}

	res, err := NewDecorator().Check(ctx, kv, tx, new(sigCheckHandler))
	require.NoError(t, err)
	assert.Equal(t, int64(2*signatureVerifyCost), res.GasAllocated)
}

func TestDecoratorRejectsUnsignedTxType(t *testing.T) {
	ctx := cave.WithChainID(context.Background(), "some-chain")
	_, err := NewDecorator().Deliver(ctx, store.MemStore(), unsignedTx{}, new(sigCheckHandler))
	assert.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

	_, err = NewDecorator().AllowMissingSigs().Deliver(ctx, store.MemStore(), unsignedTx{}, new(sigCheckHandler))
	assert.NoError(t, err)
}

// sigCheckHandler stores the seen signers on each call.
type sigCheckHandler struct {
	signers []cave.Condition
}

var _ cave.Handler = (*sigCheckHandler)(nil)

func (s *sigCheckHandler) Check(ctx cave.Context, store cave.KVStore, tx cave.Tx) (*cave.CheckResult, error) {
	s.signers = Authenticate{}.GetConditions(ctx)
	return &cave.CheckResult{}, nil
}

func (s *sigCheckHandler) Deliver(ctx cave.Context, store cave.KVStore, tx cave.Tx) (*cave.DeliverResult, error) {
	s.signers = Authenticate{}.GetConditions(ctx)
	return &cave.DeliverResult{}, nil
}

// signedTx signs a fixed payload.
type signedTx struct {
	payload    []byte
	signatures []*StdSignature
}

var _ SignedTx = (*signedTx)(nil)

func (tx *signedTx) GetMsg() (cave.Msg, error) { return nil, errors.ErrMsg }
func (tx *signedTx) Marshal() ([]byte, error) { return tx.payload, nil }
func (tx *signedTx) Unmarshal([]byte) error { return errors.ErrHuman }
func (tx *signedTx) GetSignBytes() ([]byte, error) { return tx.payload, nil }
func (tx *signedTx) GetSignatures() []*StdSignature { return tx.signatures }

type unsignedTx struct{}

func (unsignedTx) GetMsg() (cave.Msg, error) { return nil, errors.ErrMsg }
func (unsignedTx) Marshal() ([]byte, error) { return nil, nil }
func (unsignedTx) Unmarshal([]byte) error { return nil }
