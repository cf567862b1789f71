package main

import (
	"fmt"

	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/x/vault"
	"github.com/spf13/cobra"
)

func newCreateCmd(e *env) *cobra.Command {
	var (
		sig      signer
		amount   string
		backup   string
		duration uint32
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Lock coins of the signer account in a new vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			bk, err := parseOptionalAddress("backup", backup)
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
			res, err := s.submit(cmd.Context(), key, &vault.CreateMsg{
				Depositor:        addr,
				Source:           account,
				Amount:           amt,
				Backup:           bk,
				TimelockDuration: duration,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vault: %s\n", cave.Address(res.Data))
			return nil
		},
	}
	sig.register(cmd)
	cmd.Flags().StringVar(&amount, "amount", "", `Amount to lock, for example "10 CAV"`)
	cmd.Flags().StringVar(&backup, "backup", "", "Identity allowed to receive the funds on abort")
	cmd.Flags().Uint32Var(&duration, "duration", 0, "Seconds between an unlock request and the withdrawal")
	return cmd
}

func newUnlockCmd(e *env) *cobra.Command {
	var sig signer
	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Start the unlock countdown of the signer vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, addr, account, err := sig.load(e)
			if err != nil {
				return err
			}
			s, err := e.open()
			if err != nil {
				return err
			}
			defer s.Close()
			_, err = s.submit(cmd.Context(), key, &vault.RequestUnlockMsg{Depositor: addr, Source: account})
			return err
		},
	}
	sig.register(cmd)
	return cmd
}

func newWithdrawCmd(e *env) *cobra.Command {
	var sig signer
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Return the funds of an unlocked vault to the signer account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, addr, account, err := sig.load(e)
			if err != nil {
				return err
			}
			s, err := e.open()
			if err != nil {
				return err
			}
			defer s.Close()
			_, err = s.submit(cmd.Context(), key, &vault.WithdrawMsg{Depositor: addr, Source: account})
			return err
		},
	}
	sig.register(cmd)
	return cmd
}

func newAbortCmd(e *env) *cobra.Command {
	var (
		sig           signer
		backup        string
		backupAccount string
	)
	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Send the funds of an unlocking vault to the backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bk, err := parseAddress("backup", backup)
			if err != nil {
				return err
			}
			bkAccount, err := parseAddress("backup-account", backupAccount)
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
			_, err = s.submit(cmd.Context(), key, &vault.AbortMsg{
				Depositor:     addr,
				Source:        account,
				Backup:        bk,
				BackupAccount: bkAccount,
			})
			return err
		},
	}
	sig.register(cmd)
	cmd.Flags().StringVar(&backup, "backup", "", "Backup identity set at creation")
	cmd.Flags().StringVar(&backupAccount, "backup-account", "", "Account of the backup receiving the funds")
	return cmd
}
