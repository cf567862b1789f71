package vault

import (
	"testing"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/cavetest"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x/timelock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultValidate(t *testing.T) {
	valid := func(mod func(*Vault)) *Vault {
		v := NewVault(cavetest.NewAddress(), nil, 60)
		v.Source = cavetest.NewAddress()
		v.Account = cavetest.NewAddress()
		if mod != nil {
			mod(v)
		}
		return v
	}

	cases := map[string]struct {
		Vault   *Vault
		WantErr *errors.Error
	}{
		"valid": {
			Vault: valid(nil),
		},
		"with backup": {
			Vault: valid(func(v *Vault) { v.backup = cavetest.NewAddress() }),
		},
		"unlocking": {
			Vault: valid(func(v *Vault) {
				v.Unlocking = true
				v.UnlockRequestTime = 0
			}),
		},
		"unlocking without time": {
			Vault:   valid(func(v *Vault) { v.Unlocking = true }),
			WantErr: errors.ErrState,
		},
		"time without unlocking": {
			Vault:   valid(func(v *Vault) { v.UnlockRequestTime = 5 }),
			WantErr: errors.ErrState,
		},
		"duration too long": {
			Vault:   valid(func(v *Vault) { v.TimelockDuration = timelock.MaxLockDuration + 1 }),
			WantErr: timelock.ErrDurationExceedsMaximum,
		},
		"invalid backup": {
			Vault:   valid(func(v *Vault) { v.backup = cave.Address("short") }),
			WantErr: errors.ErrInput,
		},
		"invalid storage deposit": {
			Vault:   valid(func(v *Vault) { v.StorageDeposit = coin.NewCoin(1, "x") }),
			WantErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Vault.Validate()
			if tc.WantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.WantErr.Is(err), "%+v", err)
			}
		})
	}
}

func TestVaultSerializationKeepsSentinelAndBackup(t *testing.T) {
	v := NewVault(cavetest.NewAddress(), nil, 7)
	v.Source = cavetest.NewAddress()
	v.Account = cavetest.NewAddress()
	v.AccountNonce = 255
	v.InfoNonce = 3

	raw, err := v.Marshal()
	require.NoError(t, err)
	var got Vault
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, cave.NeverTime, got.UnlockRequestTime)
	_, ok := got.Backup()
	assert.False(t, ok)
	assert.Equal(t, *v, got)

	backup := cavetest.NewAddress()
	v = NewVault(v.Depositor, backup, 7)
	raw, err = v.Marshal()
	require.NoError(t, err)
	require.NoError(t, got.Unmarshal(raw))
	b, ok := got.Backup()
	assert.True(t, ok)
	assert.Equal(t, backup, b)
}
