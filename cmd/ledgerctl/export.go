package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/coreledger/ledger-service/internal/export"
)

type exportCmd struct {
	dir string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the ledger as CSV files" }
func (*exportCmd) Usage() string {
	return `ledgerctl export [-dir <path>]

  Writes accounts.csv, transactions.csv and summary.csv into the given
  directory.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", ".", "Output directory")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, cleanup, err := openService(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	if err := export.NewExporter(service).ExportAll(ctx, c.dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("exported %s, %s and %s to %s\n", export.AccountsFile, export.TransactionsFile, export.SummaryFile, c.dir)
	return subcommands.ExitSuccess
}
