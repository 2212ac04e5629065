package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/coreledger/ledger-service/internal/app"
	"github.com/coreledger/ledger-service/internal/domain"
)

type depositCmd struct {
	account     string
	amount      string
	description string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "deposit money into an account" }
func (*depositCmd) Usage() string {
	return `ledgerctl deposit -account <id|name> -amount <amount> [-desc <text>]

  Credits the account and records a deposit in the journal.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account id or name (required)")
	f.StringVar(&c.amount, "amount", "", "Amount, decimal string (required)")
	f.StringVar(&c.description, "desc", "", "Journal description (optional)")
}

func (c *depositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runAmountOp(ctx, c.account, c.amount,
		func(ctx context.Context, service *app.Service, id uuid.UUID, amount domain.Money) (domain.Money, error) {
			return service.Deposit(ctx, id, amount, c.description)
		})
}

type withdrawCmd struct {
	account     string
	amount      string
	description string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "withdraw money from an account" }
func (*withdrawCmd) Usage() string {
	return `ledgerctl withdraw -account <id|name> -amount <amount> [-desc <text>]

  Debits the account and records a withdrawal in the journal. Fails when the
  account holds less than the requested amount.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account id or name (required)")
	f.StringVar(&c.amount, "amount", "", "Amount, decimal string (required)")
	f.StringVar(&c.description, "desc", "", "Journal description (optional)")
}

func (c *withdrawCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runAmountOp(ctx, c.account, c.amount,
		func(ctx context.Context, service *app.Service, id uuid.UUID, amount domain.Money) (domain.Money, error) {
			return service.Withdraw(ctx, id, amount, c.description)
		})
}

type transferCmd struct {
	from        string
	to          string
	amount      string
	description string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two accounts" }
func (*transferCmd) Usage() string {
	return `ledgerctl transfer -from <id|name> -to <id|name> -amount <amount> [-desc <text>]

  Atomically debits the source and credits the destination, recording a single
  transfer in the journal.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Source account id or name (required)")
	f.StringVar(&c.to, "to", "", "Destination account id or name (required)")
	f.StringVar(&c.amount, "amount", "", "Amount, decimal string (required)")
	f.StringVar(&c.description, "desc", "", "Journal description (optional)")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" || c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -from, -to and -amount flags are required.")
		return subcommands.ExitUsageError
	}
	amount, err := domain.ParseMoney(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}

	service, cleanup, err := openService(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	from, err := resolveAccount(ctx, service, c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving account %q: %v\n", c.from, err)
		return subcommands.ExitFailure
	}
	to, err := resolveAccount(ctx, service, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving account %q: %v\n", c.to, err)
		return subcommands.ExitFailure
	}

	fromBalance, toBalance, err := service.Transfer(ctx, from.ID, to.ID, amount, c.description)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error transferring: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s: %s\n%s: %s\n", from.Name, fromBalance, to.Name, toBalance)
	return subcommands.ExitSuccess
}

type historyCmd struct {
	account string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show an account's transaction history" }
func (*historyCmd) Usage() string {
	return `ledgerctl history -account <id|name>

  Lists every transaction touching the account, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account id or name (required)")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	transactions, err := service.GetAccountTransactions(ctx, account.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		return subcommands.ExitFailure
	}
	for i := range transactions {
		printTransaction(&transactions[i])
	}
	fmt.Printf("%d transactions, balance %s\n", len(transactions), account.Balance)
	return subcommands.ExitSuccess
}

func runAmountOp(ctx context.Context, accountRef, amountStr string, op func(context.Context, *app.Service, uuid.UUID, domain.Money) (domain.Money, error)) subcommands.ExitStatus {
	if accountRef == "" || amountStr == "" {
		fmt.Fprintln(os.Stderr, "Error: -account and -amount flags are required.")
		return subcommands.ExitUsageError
	}
	amount, err := domain.ParseMoney(amountStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", amountStr, err)
		return subcommands.ExitUsageError
	}

	service, cleanup, err := openService(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	account, err := resolveAccount(ctx, service, accountRef)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving account %q: %v\n", accountRef, err)
		return subcommands.ExitFailure
	}

	balance, err := op(ctx, service, account.ID, amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s: %s\n", account.Name, balance)
	return subcommands.ExitSuccess
}
