package timelock

import (
	"context"
	"testing"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/cavetest"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/store"
	"github.com/cavelabs/cave/x/custody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveHolding(t *testing.T) {
	seed := cavetest.NewAddress()
	a, err := DeriveHolding("test", "box", seed)
	require.NoError(t, err)
	b, err := DeriveHolding("test", "box", seed)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := DeriveHolding("other", "box", seed)
	require.NoError(t, err)
	assert.NotEqual(t, a.Account, other.Account)
	assert.NotEqual(t, a.Info, other.Info)

	c, err := a.Capability()
	require.NoError(t, err)
	assert.Equal(t, a.Info, c.Address())

	broken := *a
	broken.InfoNonce++
	_, err = broken.Capability()
	assert.Error(t, err)
}

func TestHoldingLifecycle(t *testing.T) {
	cases := map[string]struct {
		Deposit    coin.Coin
		WantRefund uint64
	}{
		"without storage deposit": {
			Deposit: coin.NewCoin(0, "CAV"),
		},
		"with storage deposit": {
			Deposit:    coin.NewCoin(2, "CAV"),
			WantRefund: 2,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			db := store.MemStore()
			bank := custody.NewController()

			user := cavetest.SequenceCondition()
			src := custody.AccountID(user.Address(), "main")
			require.NoError(t, bank.Open(db, src, user.Address()))
			require.NoError(t, bank.Issue(db, src, coin.NewCoin(100, "CAV")))

			h, err := DeriveHolding("test", "box", src)
			require.NoError(t, err)

			auth := &cavetest.Auth{Signer: user}
			require.NoError(t, h.Open(ctx, auth, bank, db, src, tc.Deposit))
			require.NoError(t, bank.Transfer(ctx, auth, db, src, h.Account, coin.NewCoin(10, "CAV")))

			err = h.Open(ctx, auth, bank, db, src, tc.Deposit)
			assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

			// Nobody but the metadata identity can move the funds.
			err = bank.Transfer(ctx, auth, db, h.Account, src, coin.NewCoin(1, "CAV"))
			assert.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

			refund := user.Address()
			moved, err := h.Release(ctx, bank, db, src, refund)
			require.NoError(t, err)
			assert.Equal(t, "10 CAV", moved.String())

			_, err = bank.Balance(db, h.Account)
			assert.True(t, errors.ErrNotFound.Is(err), "%+v", err)
			_, err = bank.Balance(db, h.Info)
			assert.True(t, errors.ErrNotFound.Is(err), "%+v", err)

			balance, err := bank.Balance(db, src)
			require.NoError(t, err)
			assert.Equal(t, 100-tc.WantRefund, balance.Balance("CAV").Amount)

			if tc.WantRefund > 0 {
				wallet, err := bank.Balance(db, refund)
				require.NoError(t, err)
				assert.Equal(t, tc.WantRefund, wallet.Balance("CAV").Amount)
			}
		})
	}
}

func TestHoldingOpenMetadataOwner(t *testing.T) {
	user := cavetest.SequenceCondition()
	mallory := cavetest.NewAddress()
	src := custody.AccountID(user.Address(), "main")
	h, err := DeriveHolding("test", "box", src)
	require.NoError(t, err)

	cases := map[string]struct {
		Prepare func(t testing.TB, bank custody.Controller, db cave.KVStore)
		WantErr *errors.Error
	}{
		"metadata account does not exist": {
			Prepare: func(testing.TB, custody.Controller, cave.KVStore) {},
		},
		"metadata account funded by a transfer": {
			Prepare: func(t testing.TB, bank custody.Controller, db cave.KVStore) {
				auth := &cavetest.Auth{Signer: user}
				require.NoError(t, bank.Transfer(context.Background(), auth, db, src, h.Info, coin.NewCoin(1, "CAV")))
			},
		},
		"metadata account owned by someone else": {
			Prepare: func(t testing.TB, bank custody.Controller, db cave.KVStore) {
				require.NoError(t, bank.Open(db, h.Info, mallory))
			},
			WantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			db := store.MemStore()
			bank := custody.NewController()
			require.NoError(t, bank.Open(db, src, user.Address()))
			require.NoError(t, bank.Issue(db, src, coin.NewCoin(100, "CAV")))
			tc.Prepare(t, bank, db)

			err := h.Open(ctx, &cavetest.Auth{Signer: user}, bank, db, src, coin.NewCoin(2, "CAV"))
			if !tc.WantErr.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.WantErr, err)
			}
			if tc.WantErr == nil {
				return
			}
			_, err = bank.Owner(db, h.Account)
			assert.True(t, errors.ErrNotFound.Is(err), "%+v", err)
			balance, err := bank.Balance(db, src)
			require.NoError(t, err)
			assert.Equal(t, uint64(100), balance.Balance("CAV").Amount)
		})
	}
}
