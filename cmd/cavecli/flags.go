package main

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/coin"
	"github.com/cavelabs/cave/crypto"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x/custody"
	"github.com/spf13/cobra"
)

// signer is the pair of flags selecting the signing key and the account
// of its owner that a command operates on.
type signer struct {
	key   string
	label string
}

func (s *signer) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.key, "key", "", "Name of the signing key")
	cmd.Flags().StringVar(&s.label, "label", "main", "Label of the signer account")
}

// load returns the key together with its address and account.
func (s *signer) load(e *env) (*crypto.PrivateKey, cave.Address, cave.Address, error) {
	key, err := e.loadKey(s.key)
	if err != nil {
		return nil, nil, nil, err
	}
	addr := key.PublicKey().Address()
	return key, addr, custody.AccountID(addr, s.label), nil
}

func parseAddress(flag, value string) (cave.Address, error) {
	if value == "" {
		return nil, errors.Wrapf(errors.ErrEmpty, "--%s is required", flag)
	}
	addr, err := cave.ParseAddress(value)
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", flag)
	}
	return addr, nil
}

// parseOptionalAddress returns nil for an empty value.
func parseOptionalAddress(flag, value string) (cave.Address, error) {
	if value == "" {
		return nil, nil
	}
	return parseAddress(flag, value)
}

func parseAmount(value string) (*coin.Coin, error) {
	c, err := coin.ParseHumanFormat(value)
	if err != nil {
		return nil, errors.Wrap(err, "--amount")
	}
	return &c, nil
}
