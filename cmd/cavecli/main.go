/*
Command cavecli runs the vault and tunnel engines over a ledger stored in a
local directory.

	$ cavecli keygen alice
	$ cavecli init genesis.json
	$ cavecli create --key alice --amount "10 CAV" --duration 3600
	$ cavecli unlock --key alice
	$ cavecli withdraw --key alice
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
