package tunnel

import (
	"testing"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/cavetest"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTunnelValidate(t *testing.T) {
	valid := func(mod func(*Tunnel)) *Tunnel {
		tun := &Tunnel{
			Payer:       cavetest.NewAddress(),
			PaymentTime: t0,
			ServiceTime: 3,
			Amount:      coin.NewCoin(3*CostPerSecond, "CAV"),
			Account:     cavetest.NewAddress(),
		}
		if mod != nil {
			mod(tun)
		}
		return tun
	}

	cases := map[string]struct {
		Tunnel  *Tunnel
		WantErr *errors.Error
	}{
		"valid": {
			Tunnel: valid(nil),
		},
		"with storage deposit": {
			Tunnel: valid(func(tun *Tunnel) { tun.StorageDeposit = coin.NewCoin(2, "CAV") }),
		},
		"missing payer": {
			Tunnel:  valid(func(tun *Tunnel) { tun.Payer = nil }),
			WantErr: errors.ErrInput,
		},
		"missing account": {
			Tunnel:  valid(func(tun *Tunnel) { tun.Account = nil }),
			WantErr: errors.ErrInput,
		},
		"invalid amount": {
			Tunnel:  valid(func(tun *Tunnel) { tun.Amount = coin.NewCoin(1, "cav") }),
			WantErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Tunnel.Validate()
			if tc.WantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.WantErr.Is(err), "%+v", err)
			}
		})
	}
}

func TestOneTunnelPerPayer(t *testing.T) {
	db := store.MemStore()
	b := NewBucket()
	payer := cavetest.NewAddress()

	first, err := DeriveHolding(payer)
	require.NoError(t, err)
	tun := &Tunnel{
		Payer:        payer,
		PaymentTime:  t0,
		ServiceTime:  1,
		Amount:       coin.NewCoin(CostPerSecond, "CAV"),
		Account:      first.Account,
		AccountNonce: first.AccountNonce,
		InfoNonce:    first.InfoNonce,
	}
	require.NoError(t, b.Put(db, first.Info, tun))

	var found []Tunnel
	keys, err := b.ByIndex(db, "payer", payer, &found)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, cave.Address(first.Info), cave.Address(keys[0]))
	assert.Equal(t, tun.Amount, found[0].Amount)

	h := found[0].Holding(keys[0])
	_, err = h.Capability()
	assert.NoError(t, err)

	err = b.Put(db, cavetest.NewAddress(), tun)
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
}
