/**
 * @description
 * This package writes ledger state out as CSV files: the account register,
 * the full transaction journal, and a one-line summary. It reads through the
 * application service so exports see the same ordering and decimal rendering
 * as the API.
 *
 * @dependencies
 * - encoding/csv: CSV encoding.
 * - internal/app, internal/domain: Service reads and models.
 */

package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/coreledger/ledger-service/internal/app"
	"github.com/coreledger/ledger-service/internal/domain"
)

// Default file names produced by ExportAll.
const (
	AccountsFile     = "accounts.csv"
	TransactionsFile = "transactions.csv"
	SummaryFile      = "summary.csv"
)

// Exporter renders ledger state as CSV.
type Exporter struct {
	service *app.Service
}

// NewExporter creates an Exporter over the given service.
func NewExporter(service *app.Service) *Exporter {
	return &Exporter{service: service}
}

// WriteAccounts writes the account register, one row per account, ordered by
// name.
func (e *Exporter) WriteAccounts(ctx context.Context, w io.Writer) error {
	accounts, err := e.service.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "balance", "created_at"}); err != nil {
		return fmt.Errorf("failed to write accounts header: %w", err)
	}
	for _, account := range accounts {
		record := []string{
			account.ID.String(),
			account.Name,
			account.Balance.String(),
			account.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write account row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTransactions writes the full journal, newest first. Absent endpoints
// (the outside world on deposits and withdrawals) render as empty cells.
func (e *Exporter) WriteTransactions(ctx context.Context, w io.Writer) error {
	transactions, err := e.service.RecentTransactions(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "type", "from_account_id", "to_account_id", "amount", "description", "created_at"}); err != nil {
		return fmt.Errorf("failed to write transactions header: %w", err)
	}
	for _, txn := range transactions {
		record := []string{
			txn.ID.String(),
			string(txn.Type),
			uuidCell(txn.FromAccountID),
			uuidCell(txn.ToAccountID),
			txn.Amount.String(),
			txn.Description,
			txn.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes a single-row summary of the ledger.
func (e *Exporter) WriteSummary(ctx context.Context, w io.Writer) error {
	snapshot, err := e.service.DashboardSnapshot(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to build summary: %w", err)
	}

	counts := make(map[domain.TransactionType]int64)
	for _, tc := range snapshot.TransactionCounts {
		counts[tc.Type] = tc.Count
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"generated_at", "total_accounts", "total_balance", "deposits", "withdrawals", "transfers"}); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	record := []string{
		snapshot.GeneratedAt.UTC().Format(time.RFC3339),
		strconv.Itoa(snapshot.TotalAccounts),
		snapshot.TotalBalance.String(),
		strconv.FormatInt(counts[domain.TypeDeposit], 10),
		strconv.FormatInt(counts[domain.TypeWithdrawal], 10),
		strconv.FormatInt(counts[domain.TypeTransfer], 10),
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("failed to write summary row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// ExportAll writes accounts.csv, transactions.csv and summary.csv into dir,
// creating the directory if needed.
func (e *Exporter) ExportAll(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	files := []struct {
		name  string
		write func(context.Context, io.Writer) error
	}{
		{AccountsFile, e.WriteAccounts},
		{TransactionsFile, e.WriteTransactions},
		{SummaryFile, e.WriteSummary},
	}

	for _, f := range files {
		if err := e.writeFile(ctx, filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeFile(ctx context.Context, path string, write func(context.Context, io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(ctx, file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func uuidCell(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
