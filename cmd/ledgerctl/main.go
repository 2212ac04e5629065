/**
 * @description
 * ledgerctl is a command-line companion for the ledger service. It operates
 * directly on the configured store, which makes it usable for bootstrapping
 * accounts, one-off corrections and CSV exports without going through the
 * HTTP API.
 *
 * @dependencies
 * - github.com/google/subcommands: Command registration and dispatch.
 */

package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(subcommands.HelpCommand(), "")
	commander.Register(subcommands.CommandsCommand(), "")

	commander.Register(&createAccountCmd{}, "accounts")
	commander.Register(&listAccountsCmd{}, "accounts")
	commander.Register(&deleteAccountCmd{}, "accounts")

	commander.Register(&depositCmd{}, "transactions")
	commander.Register(&withdrawCmd{}, "transactions")
	commander.Register(&transferCmd{}, "transactions")
	commander.Register(&historyCmd{}, "transactions")

	commander.Register(&exportCmd{}, "reports")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
