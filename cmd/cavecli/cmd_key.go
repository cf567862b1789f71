package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cavelabs/cave/crypto"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/x/custody"
	"github.com/spf13/cobra"
)

func newKeygenCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen <name>",
		Short: "Generate a new ed25519 key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(filepath.Join(e.home, keysDir), 0700); err != nil {
				return errors.Wrap(errors.ErrHuman, err.Error())
			}
			key := crypto.GenPrivKeyEd25519()
			if err := crypto.SaveKey(e.keyPath(args[0]), key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key.PublicKey().Address())
			return nil
		},
	}
}

func newAddressCmd(e *env) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "address <name>",
		Short: "Print the address of a key and of its account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := e.loadKey(args[0])
			if err != nil {
				return err
			}
			addr := key.PublicKey().Address()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address: %s\n", addr)
			fmt.Fprintf(out, "base58:  %s\n", addr.Base58())
			fmt.Fprintf(out, "account: %s (%s)\n", custody.AccountID(addr, label), label)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "main", "Label of the account")
	return cmd
}
