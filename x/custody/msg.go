package custody

import (
	"regexp"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
)

const (
	pathSendMsg = "custody/send"
	pathOpenMsg = "custody/open"

	sendTxCost int64 = 100
	openTxCost int64 = 50
)

var isLabel = regexp.MustCompile(`^[a-z0-9_.-]{1,32}$`).MatchString

// SendMsg moves coins between two accounts.
type SendMsg struct {
	Source      cave.Address
	Destination cave.Address
	Amount      *coin.Coin
}

var _ cave.Msg = (*SendMsg)(nil)

func (SendMsg) Path() string {
	return pathSendMsg
}

func (m *SendMsg) Validate() error {
	if coin.IsEmpty(m.Amount) || !m.Amount.IsPositive() {
		return errors.Field("Amount", errors.ErrAmount, "must be positive")
	}
	if err := m.Amount.Validate(); err != nil {
		return errors.Field("Amount", err, "invalid amount")
	}
	if err := m.Source.Validate(); err != nil {
		return errors.Field("Source", err, "invalid source")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Field("Destination", err, "invalid destination")
	}
	return nil
}

func (m *SendMsg) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, m.Source)
	e.Bytes(2, m.Destination)
	if m.Amount != nil {
		if err := e.Message(3, m.Amount); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	*m = SendMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Source = d.Bytes()
		case 2:
			m.Destination = d.Bytes()
		case 3:
			m.Amount = &coin.Coin{}
			d.Message(m.Amount)
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// OpenMsg registers a new empty account owned by the signer. The id of the
// account is AccountID(Owner, Label), so no other id can be claimed.
type OpenMsg struct {
	Owner cave.Address
	Label string
}

var _ cave.Msg = (*OpenMsg)(nil)

func (OpenMsg) Path() string {
	return pathOpenMsg
}

func (m *OpenMsg) Validate() error {
	if err := m.Owner.Validate(); err != nil {
		return errors.Field("Owner", err, "invalid owner")
	}
	if !isLabel(m.Label) {
		return errors.Field("Label", errors.ErrInput, "invalid label %q", m.Label)
	}
	return nil
}

// Account returns the id of the account the message opens.
func (m *OpenMsg) Account() cave.Address {
	return AccountID(m.Owner, m.Label)
}

func (m *OpenMsg) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, m.Owner)
	e.String(2, m.Label)
	return e.Result(), nil
}

func (m *OpenMsg) Unmarshal(raw []byte) error {
	*m = OpenMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Owner = d.Bytes()
		case 2:
			m.Label = d.Text()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// AccountID returns the id of the account named label and owned by owner.
// It lets a user hold many accounts without managing extra keys.
func AccountID(owner cave.Address, label string) cave.Address {
	data := append(append([]byte{}, owner...), label...)
	return cave.NewCondition("custody", "account", data).Address()
}
