package main

import (
	"fmt"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/x/custody"
	"github.com/spf13/cobra"
)

func newOpenCmd(e *env) *cobra.Command {
	var sig signer
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open an empty account owned by the signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, addr, _, err := sig.load(e)
			if err != nil {
				return err
			}
			s, err := e.open()
			if err != nil {
				return err
			}
			defer s.Close()
			res, err := s.submit(cmd.Context(), key, &custody.OpenMsg{Owner: addr, Label: sig.label})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cave.Address(res.Data))
			return nil
		},
	}
	sig.register(cmd)
	return cmd
}

func newSendCmd(e *env) *cobra.Command {
	var (
		sig    signer
		to     string
		amount string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Move coins from an account of the signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dst, err := parseAddress("to", to)
			if err != nil {
				return err
			}
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			key, _, account, err := sig.load(e)
			if err != nil {
				return err
			}
			s, err := e.open()
			if err != nil {
				return err
			}
			defer s.Close()
			_, err = s.submit(cmd.Context(), key, &custody.SendMsg{
				Source:      account,
				Destination: dst,
				Amount:      amt,
			})
			return err
		},
	}
	sig.register(cmd)
	cmd.Flags().StringVar(&to, "to", "", "Destination account")
	cmd.Flags().StringVar(&amount, "amount", "", `Amount to send, for example "10 CAV"`)
	return cmd
}
