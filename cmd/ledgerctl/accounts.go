package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/coreledger/ledger-service/internal/domain"
)

type createAccountCmd struct {
	name    string
	balance string
}

func (*createAccountCmd) Name() string     { return "create-account" }
func (*createAccountCmd) Synopsis() string { return "create a new account" }
func (*createAccountCmd) Usage() string {
	return `ledgerctl create-account -name <name> [-balance <amount>]

  Creates a new account. A positive opening balance is recorded as an initial
  deposit in the journal.
`
}

func (c *createAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account name (required, unique)")
	f.StringVar(&c.balance, "balance", "0", "Opening balance, decimal string")
}

func (c *createAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name flag is required.")
		return subcommands.ExitUsageError
	}
	balance, err := domain.ParseMoney(c.balance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing balance %q: %v\n", c.balance, err)
		return subcommands.ExitUsageError
	}

	service, cleanup, err := openService(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	account, err := service.CreateAccount(ctx, c.name, balance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating account: %v\n", err)
		return subcommands.ExitFailure
	}
	printAccount(account)
	return subcommands.ExitSuccess
}

type listAccountsCmd struct{}

func (*listAccountsCmd) Name() string     { return "accounts" }
func (*listAccountsCmd) Synopsis() string { return "list all accounts with balances" }
func (*listAccountsCmd) Usage() string {
	return `ledgerctl accounts

  Lists all accounts ordered by name, with the system-wide total.
`
}

func (*listAccountsCmd) SetFlags(*flag.FlagSet) {}

func (c *listAccountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, cleanup, err := openService(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	accounts, err := service.ListAccounts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing accounts: %v\n", err)
		return subcommands.ExitFailure
	}
	for i := range accounts {
		printAccount(&accounts[i])
	}

	total, err := service.TotalSystemBalance(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing total: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("total: %s across %d accounts\n", total, len(accounts))
	return subcommands.ExitSuccess
}

type deleteAccountCmd struct {
	account string
}

func (*deleteAccountCmd) Name() string     { return "delete-account" }
func (*deleteAccountCmd) Synopsis() string { return "delete a zero-balance account" }
func (*deleteAccountCmd) Usage() string {
	return `ledgerctl delete-account -account <id|name>

  Deletes an account. Accounts holding a non-zero balance are refused; move the
  money out first.
`
}

func (c *deleteAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account id or name (required)")
}

func (c *deleteAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "Error: -account flag is required.")
		return subcommands.ExitUsageError
	}

	service, cleanup, err := openService(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	account, err := resolveAccount(ctx, service, c.account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving account %q: %v\n", c.account, err)
		return subcommands.ExitFailure
	}
	if err := service.DeleteAccount(ctx, account.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting account: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("deleted account %s (%s)\n", account.Name, account.ID)
	return subcommands.ExitSuccess
}
