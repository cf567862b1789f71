package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cavelabs/cave/app"
	"github.com/cavelabs/cave/errors"
	"github.com/spf13/cobra"
)

func newInitCmd(e *env) *cobra.Command {
	var lock LockConfig
	cmd := &cobra.Command{
		Use:   "init <genesis.json>",
		Short: "Create a ledger from a genesis file",
		Long: `Create a ledger in the home directory from a genesis file and write
the configuration used by all other commands. The genesis file holds the
chain id and the initial state of every extension, for example:

	{
	  "chain_id": "cave-local",
	  "app_state": {
	    "custody": [{"id": "<account>", "owner": "<address>", "coins": ["10 CAV"]}],
	    "vault": {"storage_deposit": "1 CAV"}
	  }
	}
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(filepath.Join(e.home, configFile)); err == nil {
				return errors.Wrapf(errors.ErrDuplicate, "%s already initialized", e.home)
			}
			gen, err := app.LoadGenesis(args[0])
			if err != nil {
				return err
			}
			conf := DefaultConfig(gen.ChainID)
			conf.Lock.Backend = lock.Backend
			conf.Lock.RedisAddr = lock.RedisAddr
			if err := conf.Validate(); err != nil {
				return err
			}

			s, err := e.openLedger(conf)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.ledger.InitChain(gen.ChainID, gen.AppState); err != nil {
				return errors.Wrap(err, "genesis")
			}
			if err := e.saveConfig(conf); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s in %s\n", gen.ChainID, e.home)
			return nil
		},
	}
	cmd.Flags().StringVar(&lock.Backend, "lock-backend", "mem", "Lock service: mem or redis")
	cmd.Flags().StringVar(&lock.RedisAddr, "redis-addr", "", "Redis address used by the redis lock backend")
	return cmd
}
