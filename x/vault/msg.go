package vault

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x/timelock"
)

const (
	pathCreateMsg        = "vault/create"
	pathRequestUnlockMsg = "vault/unlock"
	pathWithdrawMsg      = "vault/withdraw"
	pathAbortMsg         = "vault/abort"
)

var (
	_ cave.Msg = (*CreateMsg)(nil)
	_ cave.Msg = (*RequestUnlockMsg)(nil)
	_ cave.Msg = (*WithdrawMsg)(nil)
	_ cave.Msg = (*AbortMsg)(nil)
)

// CreateMsg opens a vault funded from the source account.
type CreateMsg struct {
	Depositor        cave.Address
	Source           cave.Address
	Amount           *coin.Coin
	Backup           cave.Address
	TimelockDuration uint32
}

func (CreateMsg) Path() string {
	return pathCreateMsg
}

func (m *CreateMsg) Validate() error {
	if err := timelock.ValidateDuration(m.TimelockDuration); err != nil {
		return errors.Field("TimelockDuration", err, "")
	}
	if err := m.Depositor.Validate(); err != nil {
		return errors.Field("Depositor", err, "invalid depositor")
	}
	if err := m.Source.Validate(); err != nil {
		return errors.Field("Source", err, "invalid source")
	}
	if coin.IsEmpty(m.Amount) || !m.Amount.IsPositive() {
		return errors.Field("Amount", errors.ErrAmount, "must be positive")
	}
	if err := m.Amount.Validate(); err != nil {
		return errors.Field("Amount", err, "invalid amount")
	}
	if m.Backup != nil {
		if err := m.Backup.Validate(); err != nil {
			return errors.Field("Backup", err, "invalid backup")
		}
	}
	return nil
}

// Locks returns the vault the message operates on.
func (m *CreateMsg) Locks() ([]cave.Address, error) {
	return lockVault(m.Source)
}

func (m *CreateMsg) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, m.Depositor)
	e.Bytes(2, m.Source)
	if m.Amount != nil {
		if err := e.Message(3, m.Amount); err != nil {
			return nil, err
		}
	}
	e.Bytes(4, m.Backup)
	e.Uint64(5, uint64(m.TimelockDuration))
	return e.Result(), nil
}

func (m *CreateMsg) Unmarshal(raw []byte) error {
	*m = CreateMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Depositor = d.Bytes()
		case 2:
			m.Source = d.Bytes()
		case 3:
			m.Amount = &coin.Coin{}
			d.Message(m.Amount)
		case 4:
			m.Backup = d.Bytes()
		case 5:
			m.TimelockDuration = d.Uint32()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// RequestUnlockMsg starts the timelock of the vault funded from source.
type RequestUnlockMsg struct {
	Depositor cave.Address
	Source    cave.Address
}

func (RequestUnlockMsg) Path() string {
	return pathRequestUnlockMsg
}

func (m *RequestUnlockMsg) Validate() error {
	return validateParties(m.Depositor, m.Source)
}

// Locks returns the vault the message operates on.
func (m *RequestUnlockMsg) Locks() ([]cave.Address, error) {
	return lockVault(m.Source)
}

func (m *RequestUnlockMsg) Marshal() ([]byte, error) {
	return marshalParties(m.Depositor, m.Source), nil
}

func (m *RequestUnlockMsg) Unmarshal(raw []byte) error {
	*m = RequestUnlockMsg{}
	return unmarshalParties(raw, &m.Depositor, &m.Source)
}

// WithdrawMsg returns the funds of an unlocked vault to its source.
type WithdrawMsg struct {
	Depositor cave.Address
	Source    cave.Address
}

func (WithdrawMsg) Path() string {
	return pathWithdrawMsg
}

func (m *WithdrawMsg) Validate() error {
	return validateParties(m.Depositor, m.Source)
}

// Locks returns the vault the message operates on.
func (m *WithdrawMsg) Locks() ([]cave.Address, error) {
	return lockVault(m.Source)
}

func (m *WithdrawMsg) Marshal() ([]byte, error) {
	return marshalParties(m.Depositor, m.Source), nil
}

func (m *WithdrawMsg) Unmarshal(raw []byte) error {
	*m = WithdrawMsg{}
	return unmarshalParties(raw, &m.Depositor, &m.Source)
}

// AbortMsg sends the funds of an unlocking vault to an account of the
// backup identity.
type AbortMsg struct {
	Depositor     cave.Address
	Source        cave.Address
	Backup        cave.Address
	BackupAccount cave.Address
}

func (AbortMsg) Path() string {
	return pathAbortMsg
}

func (m *AbortMsg) Validate() error {
	if err := validateParties(m.Depositor, m.Source); err != nil {
		return err
	}
	if err := m.Backup.Validate(); err != nil {
		return errors.Field("Backup", err, "invalid backup")
	}
	if err := m.BackupAccount.Validate(); err != nil {
		return errors.Field("BackupAccount", err, "invalid backup account")
	}
	return nil
}

// Locks returns the vault the message operates on.
func (m *AbortMsg) Locks() ([]cave.Address, error) {
	return lockVault(m.Source)
}

func (m *AbortMsg) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, m.Depositor)
	e.Bytes(2, m.Source)
	e.Bytes(3, m.Backup)
	e.Bytes(4, m.BackupAccount)
	return e.Result(), nil
}

func (m *AbortMsg) Unmarshal(raw []byte) error {
	*m = AbortMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Depositor = d.Bytes()
		case 2:
			m.Source = d.Bytes()
		case 3:
			m.Backup = d.Bytes()
		case 4:
			m.BackupAccount = d.Bytes()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

func validateParties(depositor, source cave.Address) error {
	if err := depositor.Validate(); err != nil {
		return errors.Field("Depositor", err, "invalid depositor")
	}
	if err := source.Validate(); err != nil {
		return errors.Field("Source", err, "invalid source")
	}
	return nil
}

func marshalParties(depositor, source cave.Address) []byte {
	e := codec.NewEncoder()
	e.Bytes(1, depositor)
	e.Bytes(2, source)
	return e.Result()
}

func unmarshalParties(raw []byte, depositor, source *cave.Address) error {
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			*depositor = d.Bytes()
		case 2:
			*source = d.Bytes()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

func lockVault(source cave.Address) ([]cave.Address, error) {
	h, err := DeriveHolding(source)
	if err != nil {
		return nil, err
	}
	return []cave.Address{h.Account}, nil
}
