package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/errors"
	"github.com/cavelabs/cave/orm"
	"github.com/cavelabs/cave/x/custody"
	"github.com/cavelabs/cave/x/tunnel"
	"github.com/cavelabs/cave/x/vault"
	"github.com/spf13/cobra"
)

func newVaultCmd(e *env) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Show the vault funded from an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseAddress("source", source)
			if err != nil {
				return err
			}
			h, err := vault.DeriveHolding(src)
			if err != nil {
				return err
			}
			return e.show(cmd.OutOrStdout(), "/vaults", h.Info, &vault.Vault{})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Account the vault was funded from")
	return cmd
}

func newTunnelCmd(e *env) *cobra.Command {
	var payer string
	cmd := &cobra.Command{
		Use:   "tunnel",
		Short: "Show the tunnel paid by an identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			py, err := parseAddress("payer", payer)
			if err != nil {
				return err
			}
			return e.show(cmd.OutOrStdout(), "/tunnels/payer", py, &tunnel.Tunnel{})
		},
	}
	cmd.Flags().StringVar(&payer, "payer", "", "Identity that paid the tunnel")
	return cmd
}

func newBalanceCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "Show an account and its coins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAddress("account", args[0])
			if err != nil {
				return err
			}
			return e.show(cmd.OutOrStdout(), "/accounts", id, &custody.Account{})
		},
	}
}

// show prints as JSON the first model found by the query.
func (e *env) show(out io.Writer, path string, key []byte, dest orm.Model) error {
	s, err := e.open()
	if err != nil {
		return err
	}
	defer s.Close()

	models, err := s.ledger.Query(path, key)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return errors.Wrapf(errors.ErrNotFound, "%s %s", path, cave.Address(key))
	}
	if err := dest.Unmarshal(models[0].Value); err != nil {
		return errors.Wrap(err, "cannot decode")
	}
	pretty, err := json.MarshalIndent(dest, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	fmt.Fprintln(out, string(pretty))
	return nil
}
