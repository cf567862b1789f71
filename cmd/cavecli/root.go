package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// env holds the values of the persistent flags, shared by all commands.
type env struct {
	home string
	now  int64
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "cavecli",
		Short:         "Time-locked vaults and prepaid tunnels over a local ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&e.home, "home", defaultHome(), "Directory holding the configuration, keys and ledger data")
	root.PersistentFlags().Int64Var(&e.now, "now", 0, "Execute at the given unix time instead of the system time")

	root.AddCommand(
		newInitCmd(e),
		newKeygenCmd(e),
		newAddressCmd(e),
		newOpenCmd(e),
		newSendCmd(e),
		newCreateCmd(e),
		newUnlockCmd(e),
		newWithdrawCmd(e),
		newAbortCmd(e),
		newPayCmd(e),
		newPayoutCmd(e),
		newVaultCmd(e),
		newTunnelCmd(e),
		newBalanceCmd(e),
	)
	return root
}

func defaultHome() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".cavecli")
	}
	return ".cavecli"
}
