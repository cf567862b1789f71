package app

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/crypto"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x/custody"
	"github.com/cavelabs/cave/x/sigs"
	"github.com/cavelabs/cave/x/tunnel"
	"github.com/cavelabs/cave/x/vault"
)

// msgTypes returns an empty message for every path the ledger routes.
var msgTypes = map[string]func() cave.Msg{
	(&custody.SendMsg{}).Path():        func() cave.Msg { return &custody.SendMsg{} },
	(&custody.OpenMsg{}).Path():        func() cave.Msg { return &custody.OpenMsg{} },
	(&vault.CreateMsg{}).Path():        func() cave.Msg { return &vault.CreateMsg{} },
	(&vault.RequestUnlockMsg{}).Path(): func() cave.Msg { return &vault.RequestUnlockMsg{} },
	(&vault.WithdrawMsg{}).Path():      func() cave.Msg { return &vault.WithdrawMsg{} },
	(&vault.AbortMsg{}).Path():         func() cave.Msg { return &vault.AbortMsg{} },
	(&tunnel.PayMsg{}).Path():          func() cave.Msg { return &tunnel.PayMsg{} },
	(&tunnel.PayoutMsg{}).Path():       func() cave.Msg { return &tunnel.PayoutMsg{} },
}

// Tx is the envelope of a single message together with the signatures
// authorizing it.
type Tx struct {
	Signatures []*sigs.StdSignature
	msg        cave.Msg
}

var (
	_ cave.Tx       = (*Tx)(nil)
	_ sigs.SignedTx = (*Tx)(nil)
)

// NewTx returns an unsigned transaction carrying msg.
func NewTx(msg cave.Msg) *Tx {
	return &Tx{msg: msg}
}

// TxDecoder creates a Tx and unmarshals bytes into it.
func TxDecoder(bz []byte) (cave.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Tx) GetMsg() (cave.Msg, error) {
	if tx.msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return tx.msg, nil
}

func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the serialized transaction without signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{msg: tx.msg}
	return unsigned.Marshal()
}

// Sign appends a signature of key for the given chain and sequence.
func (tx *Tx) Sign(key *crypto.PrivateKey, chainID string, seq int64) error {
	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return errors.Wrap(err, "sign")
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	for _, s := range tx.Signatures {
		if err := e.Message(1, s); err != nil {
			return nil, err
		}
	}
	if tx.msg != nil {
		raw, err := tx.msg.Marshal()
		if err != nil {
			return nil, errors.Wrap(err, "message")
		}
		e.String(2, tx.msg.Path())
		e.Bytes(3, raw)
	}
	return e.Result(), nil
}

func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	var (
		path string
		body []byte
	)
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			var s sigs.StdSignature
			d.Message(&s)
			tx.Signatures = append(tx.Signatures, &s)
		case 2:
			path = d.Text()
		case 3:
			body = d.Bytes()
		default:
			d.Skip()
		}
	}
	if err := d.Err(); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if path == "" {
		return nil
	}
	newMsg, ok := msgTypes[path]
	if !ok {
		return errors.Wrapf(errors.ErrMsg, "unknown message path %q", path)
	}
	msg := newMsg()
	if err := msg.Unmarshal(body); err != nil {
		return errors.Wrapf(err, "message %q", path)
	}
	tx.msg = msg
	return nil
}
