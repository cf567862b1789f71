package main

import (
	"fmt"

	"github.com/cavelabs/cave/x/tunnel"
	"github.com/spf13/cobra"
)

func newPayCmd(e *env) *cobra.Command {
	var (
		sig         signer
		serviceTime uint32
		ticker      string
	)
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Prepay tunnel service time from the signer account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := tunnel.Price(serviceTime, ticker)
			if err != nil {
				return err
			}
			key, addr, account, err := sig.load(e)
			if err != nil {
				return err
			}
			s, err := e.open()
			if err != nil {
				return err
			}
			defer s.Close()
			_, err = s.submit(cmd.Context(), key, &tunnel.PayMsg{
				Payer:       addr,
				Source:      account,
				ServiceTime: serviceTime,
				Ticker:      ticker,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "paid %s\n", price)
			return nil
		},
	}
	sig.register(cmd)
	cmd.Flags().Uint32Var(&serviceTime, "service-time", 0, "Seconds of service to pay for")
	cmd.Flags().StringVar(&ticker, "ticker", "CAV", "Currency of the payment")
	return cmd
}

func newPayoutCmd(e *env) *cobra.Command {
	var (
		key          string
		payer        string
		payee        string
		payeeAccount string
	)
	cmd := &cobra.Command{
		Use:   "payout",
		Short: "Release a paid tunnel to the payee, signed by the authorizer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			py, err := parseAddress("payer", payer)
			if err != nil {
				return err
			}
			pe, err := parseAddress("payee", payee)
			if err != nil {
				return err
			}
			peAccount, err := parseAddress("payee-account", payeeAccount)
			if err != nil {
				return err
			}
			authorizer, err := e.loadKey(key)
			if err != nil {
				return err
			}
			s, err := e.open()
			if err != nil {
				return err
			}
			defer s.Close()
			_, err = s.submit(cmd.Context(), authorizer, &tunnel.PayoutMsg{
				Authorizer:   authorizer.PublicKey().Address(),
				Payer:        py,
				Payee:        pe,
				PayeeAccount: peAccount,
			})
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Name of the authorizer key")
	cmd.Flags().StringVar(&payer, "payer", "", "Identity that paid the tunnel")
	cmd.Flags().StringVar(&payee, "payee", "", "Identity receiving the payment")
	cmd.Flags().StringVar(&payeeAccount, "payee-account", "", "Account of the payee receiving the payment")
	return cmd
}
