package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x/custody"
	"github.com/cavelabs/cave/x/timelock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const t0 = 1600000000

func run(t testing.TB, home string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--home", home}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func at(sec int64) string {
	return fmt.Sprintf("--now=%d", t0+sec)
}

func keygen(t testing.TB, home, name string) cave.Address {
	t.Helper()
	out, err := run(t, home, "keygen", name)
	require.NoError(t, err)
	addr, err := cave.ParseAddress(strings.TrimSpace(out))
	require.NoError(t, err)
	return addr
}

// initHome creates a ledger where the main account of each given address
// holds 100000000 CAV.
func initHome(t testing.TB, home string, funded ...cave.Address) {
	t.Helper()
	var accounts []map[string]interface{}
	for _, addr := range funded {
		accounts = append(accounts, map[string]interface{}{
			"id":    custody.AccountID(addr, "main"),
			"owner": addr,
			"coins": []string{"100000000 CAV"},
		})
	}
	gen, err := json.Marshal(map[string]interface{}{
		"chain_id":  "cave-test",
		"app_state": map[string]interface{}{"custody": accounts},
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, ioutil.WriteFile(path, gen, 0600))

	_, err = run(t, home, "init", path)
	require.NoError(t, err)
}

func balance(t testing.TB, home string, id cave.Address) custody.Account {
	t.Helper()
	out, err := run(t, home, "balance", id.String())
	require.NoError(t, err)
	var acc custody.Account
	require.NoError(t, json.Unmarshal([]byte(out), &acc))
	return acc
}

func TestVaultLifecycle(t *testing.T) {
	home := t.TempDir()
	alice := keygen(t, home, "alice")
	initHome(t, home, alice)
	account := custody.AccountID(alice, "main")

	out, err := run(t, home, at(0), "create", "--key", "alice", "--amount", "400 CAV", "--duration", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "vault: ")
	assert.Equal(t, "99999600 CAV", balance(t, home, account).Coins.String())

	out, err = run(t, home, "vault", "--source", account.String())
	require.NoError(t, err)
	var v struct {
		Depositor cave.Address
		Unlocking bool
	}
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, alice, v.Depositor)
	assert.False(t, v.Unlocking)

	_, err = run(t, home, at(5), "withdraw", "--key", "alice")
	assert.True(t, timelock.ErrDidNotRequestUnlock.Is(err), "%+v", err)

	_, err = run(t, home, at(10), "unlock", "--key", "alice")
	require.NoError(t, err)
	_, err = run(t, home, at(11), "unlock", "--key", "alice")
	assert.True(t, timelock.ErrUnlockAlreadyActive.Is(err), "%+v", err)

	_, err = run(t, home, at(70), "withdraw", "--key", "alice")
	assert.True(t, timelock.ErrLockIsActive.Is(err), "%+v", err)
	_, err = run(t, home, at(71), "withdraw", "--key", "alice")
	require.NoError(t, err)

	assert.Equal(t, "100000000 CAV", balance(t, home, account).Coins.String())
	_, err = run(t, home, "vault", "--source", account.String())
	assert.True(t, errors.ErrNotFound.Is(err), "%+v", err)
}

func TestVaultAbort(t *testing.T) {
	home := t.TempDir()
	alice := keygen(t, home, "alice")
	bob := keygen(t, home, "bob")
	initHome(t, home, alice, bob)
	bobAccount := custody.AccountID(bob, "main")

	_, err := run(t, home, at(0), "create", "--key", "alice", "--amount", "400 CAV", "--duration", "60", "--backup", bob.String())
	require.NoError(t, err)
	_, err = run(t, home, at(1), "unlock", "--key", "alice")
	require.NoError(t, err)
	_, err = run(t, home, at(2), "abort", "--key", "alice", "--backup", bob.String(), "--backup-account", bobAccount.String())
	require.NoError(t, err)

	assert.Equal(t, "100000400 CAV", balance(t, home, bobAccount).Coins.String())
}

func TestTunnelPayout(t *testing.T) {
	home := t.TempDir()
	alice := keygen(t, home, "alice")
	bob := keygen(t, home, "bob")
	keygen(t, home, "operator")
	initHome(t, home, alice, bob)
	bobAccount := custody.AccountID(bob, "main")

	out, err := run(t, home, at(0), "pay", "--key", "alice", "--service-time", "1")
	require.NoError(t, err)
	assert.Equal(t, "paid 1000000 CAV\n", out)

	out, err = run(t, home, "tunnel", "--payer", alice.String())
	require.NoError(t, err)
	assert.Contains(t, out, `"ServiceTime": 1`)

	payout := []string{"payout", "--key", "operator", "--payer", alice.String(), "--payee", bob.String(), "--payee-account", bobAccount.String()}
	_, err = run(t, home, append([]string{at(5)}, payout...)...)
	assert.True(t, timelock.ErrLockIsActive.Is(err), "%+v", err)
	_, err = run(t, home, append([]string{at(6)}, payout...)...)
	require.NoError(t, err)

	assert.Equal(t, "99000000 CAV", balance(t, home, custody.AccountID(alice, "main")).Coins.String())
	assert.Equal(t, "101000000 CAV", balance(t, home, bobAccount).Coins.String())
}

func TestSendAndOpen(t *testing.T) {
	home := t.TempDir()
	alice := keygen(t, home, "alice")
	bob := keygen(t, home, "bob")
	initHome(t, home, alice)

	out, err := run(t, home, "open", "--key", "bob", "--label", "savings")
	require.NoError(t, err)
	savings := custody.AccountID(bob, "savings")
	assert.Equal(t, savings.String()+"\n", out)

	_, err = run(t, home, "send", "--key", "alice", "--to", savings.String(), "--amount", "25 CAV")
	require.NoError(t, err)
	acc := balance(t, home, savings)
	assert.Equal(t, bob, acc.Owner)
	assert.Equal(t, "25 CAV", acc.Coins.String())
}

func TestCommandErrors(t *testing.T) {
	home := t.TempDir()
	keygen(t, home, "alice")

	cases := map[string]struct {
		args    []string
		wantErr *errors.Error
	}{
		"not initialized": {
			args:    []string{"unlock", "--key", "alice"},
			wantErr: errors.ErrNotFound,
		},
		"key exists": {
			args:    []string{"keygen", "alice"},
			wantErr: errors.ErrDuplicate,
		},
		"missing key name": {
			args:    []string{"address", ""},
			wantErr: errors.ErrEmpty,
		},
		"missing payer": {
			args:    []string{"tunnel"},
			wantErr: errors.ErrEmpty,
		},
		"bad amount": {
			args:    []string{"create", "--key", "alice", "--amount", "many"},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := run(t, home, tc.args...)
			assert.True(t, tc.wantErr.Is(err), "%+v", err)
		})
	}
}

func TestInitTwice(t *testing.T) {
	home := t.TempDir()
	alice := keygen(t, home, "alice")
	initHome(t, home, alice)

	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"chain_id": "cave-test", "app_state": {}}`), 0600))
	_, err := run(t, home, "init", path)
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
}

func TestLedgerHeldByAnotherSession(t *testing.T) {
	home := t.TempDir()
	alice := keygen(t, home, "alice")
	initHome(t, home, alice)

	held, err := (&env{home: home}).open()
	require.NoError(t, err)

	_, err = run(t, home, "balance", custody.AccountID(alice, "main").String())
	assert.True(t, errors.ErrState.Is(err), "%+v", err)

	held.Close()
	acc := balance(t, home, custody.AccountID(alice, "main"))
	assert.Equal(t, alice, acc.Owner)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]struct {
		conf    *Config
		wantErr *errors.Error
	}{
		"default": {
			conf: DefaultConfig("cave-test"),
		},
		"bad chain id": {
			conf:    DefaultConfig("x"),
			wantErr: errors.ErrInput,
		},
		"redis without address": {
			conf: &Config{
				ChainID: "cave-test",
				Lock:    LockConfig{Backend: "redis"},
			},
			wantErr: errors.ErrEmpty,
		},
		"unknown backend": {
			conf: &Config{
				ChainID: "cave-test",
				Lock:    LockConfig{Backend: "etcd"},
			},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.conf.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, tc.wantErr.Is(err), "%+v", err)
		})
	}
}
