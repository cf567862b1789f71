package tunnel

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/errors"
)

const (
	pathPayMsg    = "tunnel/pay"
	pathPayoutMsg = "tunnel/payout"
)

var (
	_ cave.Msg = (*PayMsg)(nil)
	_ cave.Msg = (*PayoutMsg)(nil)
)

// PayMsg funds the tunnel of the payer with the price of the requested
// service time, taken from the source account in the given currency.
type PayMsg struct {
	Payer       cave.Address
	Source      cave.Address
	ServiceTime uint32
	Ticker      string
}

func (PayMsg) Path() string {
	return pathPayMsg
}

func (m *PayMsg) Validate() error {
	if err := m.Payer.Validate(); err != nil {
		return errors.Field("Payer", err, "invalid payer")
	}
	if err := m.Source.Validate(); err != nil {
		return errors.Field("Source", err, "invalid source")
	}
	if !coin.IsCC(m.Ticker) {
		return errors.Field("Ticker", errors.ErrCurrency, "invalid currency %q", m.Ticker)
	}
	return nil
}

// Locks returns the tunnel the message operates on.
func (m *PayMsg) Locks() ([]cave.Address, error) {
	return lockTunnel(m.Payer)
}

func (m *PayMsg) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, m.Payer)
	e.Bytes(2, m.Source)
	e.Uint64(3, uint64(m.ServiceTime))
	e.String(4, m.Ticker)
	return e.Result(), nil
}

func (m *PayMsg) Unmarshal(raw []byte) error {
	*m = PayMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Payer = d.Bytes()
		case 2:
			m.Source = d.Bytes()
		case 3:
			m.ServiceTime = d.Uint32()
		case 4:
			m.Ticker = d.Text()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// PayoutMsg releases the tunnel of the payer to an account of the payee.
type PayoutMsg struct {
	Authorizer   cave.Address
	Payer        cave.Address
	Payee        cave.Address
	PayeeAccount cave.Address
}

func (PayoutMsg) Path() string {
	return pathPayoutMsg
}

func (m *PayoutMsg) Validate() error {
	if err := m.Authorizer.Validate(); err != nil {
		return errors.Field("Authorizer", err, "invalid authorizer")
	}
	if err := m.Payer.Validate(); err != nil {
		return errors.Field("Payer", err, "invalid payer")
	}
	if err := m.Payee.Validate(); err != nil {
		return errors.Field("Payee", err, "invalid payee")
	}
	if err := m.PayeeAccount.Validate(); err != nil {
		return errors.Field("PayeeAccount", err, "invalid payee account")
	}
	return nil
}

// Locks returns the tunnel the message operates on.
func (m *PayoutMsg) Locks() ([]cave.Address, error) {
	return lockTunnel(m.Payer)
}

func (m *PayoutMsg) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	e.Bytes(1, m.Authorizer)
	e.Bytes(2, m.Payer)
	e.Bytes(3, m.Payee)
	e.Bytes(4, m.PayeeAccount)
	return e.Result(), nil
}

func (m *PayoutMsg) Unmarshal(raw []byte) error {
	*m = PayoutMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Authorizer = d.Bytes()
		case 2:
			m.Payer = d.Bytes()
		case 3:
			m.Payee = d.Bytes()
		case 4:
			m.PayeeAccount = d.Bytes()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

func lockTunnel(payer cave.Address) ([]cave.Address, error) {
	h, err := DeriveHolding(payer)
	if err != nil {
		return nil, err
	}
	return []cave.Address{h.Account}, nil
}
