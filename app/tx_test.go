package app

import (
	"testing"

	"github.com/cavelabs/cave/cavetest"
	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/crypto"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x/sigs"
	"github.com/cavelabs/cave/x/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxSignAndDecode(t *testing.T) {
	key := crypto.GenPrivKeyEd25519()
	msg := &vault.WithdrawMsg{Depositor: cavetest.NewAddress(), Source: cavetest.NewAddress()}

	tx := NewTx(msg)
	unsigned, err := tx.GetSignBytes()
	require.NoError(t, err)
	require.NoError(t, tx.Sign(key, testChainID, 3))
	require.Len(t, tx.GetSignatures(), 1)

	signed, err := tx.GetSignBytes()
	require.NoError(t, err)
	assert.Equal(t, unsigned, signed, "signatures are not part of the sign bytes")

	raw, err := tx.Marshal()
	require.NoError(t, err)
	decoded, err := TxDecoder(raw)
	require.NoError(t, err)

	got, err := decoded.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	stx := decoded.(sigs.SignedTx)
	require.Len(t, stx.GetSignatures(), 1)
	assert.Equal(t, int64(3), stx.GetSignatures()[0].Sequence)

	// Signatures verify against the decoded transaction.
	bz, err := stx.GetSignBytes()
	require.NoError(t, err)
	toSign, err := sigs.BuildSignBytes(bz, testChainID, 3)
	require.NoError(t, err)
	sig := stx.GetSignatures()[0]
	assert.True(t, sig.Pubkey.Verify(toSign, sig.Signature))
}

func TestTxDecodeErrors(t *testing.T) {
	e := codec.NewEncoder()
	e.String(2, "vault/destroy")
	_, err := TxDecoder(e.Result())
	assert.True(t, errors.ErrMsg.Is(err), "%+v", err)

	empty, err := TxDecoder(nil)
	require.NoError(t, err)
	_, err = empty.GetMsg()
	assert.True(t, errors.ErrMsg.Is(err), "%+v", err)

	_, err = TxDecoder([]byte{0xFF})
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)
}
