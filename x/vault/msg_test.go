package vault

import (
	"testing"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/cavetest"
	"github.com/cavelabs/cave/cavetest/assert"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x/timelock"
)

func TestMsgValidate(t *testing.T) {
	alice := cavetest.NewAddress()
	source := cavetest.NewAddress()

	cases := map[string]struct {
		Msg       cave.Msg
		WantField string
		WantErr   *errors.Error
	}{
		"valid create": {
			Msg: &CreateMsg{Depositor: alice, Source: source, Amount: coin.NewCoinp(1, "CAV"), TimelockDuration: 10},
		},
		"create with backup": {
			Msg: &CreateMsg{Depositor: alice, Source: source, Amount: coin.NewCoinp(1, "CAV"), Backup: cavetest.NewAddress()},
		},
		"create with a long lock": {
			Msg:       &CreateMsg{Depositor: alice, Source: source, Amount: coin.NewCoinp(1, "CAV"), TimelockDuration: 604801},
			WantField: "TimelockDuration",
			WantErr:   timelock.ErrDurationExceedsMaximum,
		},
		"create without amount": {
			Msg:       &CreateMsg{Depositor: alice, Source: source},
			WantField: "Amount",
			WantErr:   errors.ErrAmount,
		},
		"create with invalid currency": {
			Msg:       &CreateMsg{Depositor: alice, Source: source, Amount: coin.NewCoinp(1, "cav")},
			WantField: "Amount",
			WantErr:   errors.ErrCurrency,
		},
		"create with invalid backup": {
			Msg:       &CreateMsg{Depositor: alice, Source: source, Amount: coin.NewCoinp(1, "CAV"), Backup: cave.Address{1}},
			WantField: "Backup",
			WantErr:   errors.ErrInput,
		},
		"unlock without depositor": {
			Msg:       &RequestUnlockMsg{Source: source},
			WantField: "Depositor",
			WantErr:   errors.ErrInput,
		},
		"withdraw without source": {
			Msg:       &WithdrawMsg{Depositor: alice},
			WantField: "Source",
			WantErr:   errors.ErrInput,
		},
		"abort without backup account": {
			Msg:       &AbortMsg{Depositor: alice, Source: source, Backup: cavetest.NewAddress()},
			WantField: "BackupAccount",
			WantErr:   errors.ErrInput,
		},
		"valid abort": {
			Msg: &AbortMsg{Depositor: alice, Source: source, Backup: cavetest.NewAddress(), BackupAccount: cavetest.NewAddress()},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Msg.Validate()
			if tc.WantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %+v", err)
				}
				return
			}
			assert.FieldError(t, err, tc.WantField, tc.WantErr)
		})
	}
}

func TestMsgLocks(t *testing.T) {
	source := cavetest.NewAddress()
	h, err := DeriveHolding(source)
	assert.IsErr(t, nil, err)

	for _, m := range []interface {
		Locks() ([]cave.Address, error)
	}{
		&CreateMsg{Source: source},
		&RequestUnlockMsg{Source: source},
		&WithdrawMsg{Source: source},
		&AbortMsg{Source: source},
	} {
		locks, err := m.Locks()
		assert.IsErr(t, nil, err)
		if len(locks) != 1 || !locks[0].Equals(h.Account) {
			t.Fatalf("%T locks %v", m, locks)
		}
	}
}
