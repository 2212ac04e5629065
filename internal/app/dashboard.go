/**
 * @description
 * This file builds the read-only dashboard snapshot the notification and
 * export collaborators consume: all accounts, the total system balance,
 * per-type transaction counts and the most recent transactions. The snapshot
 * uses only the service's read methods; it is pulled by collaborators after a
 * mutation succeeds, never pushed by the core.
 */

package app

import (
	"context"
	"time"

	"github.com/coreledger/ledger-service/internal/domain"
)

// TypeCount pairs a transaction type with how many records carry it.
type TypeCount struct {
	Type  domain.TransactionType `json:"type"`
	Count int64                  `json:"count"`
}

// DashboardSnapshot is the aggregate view pushed to dashboard subscribers.
type DashboardSnapshot struct {
	GeneratedAt        time.Time            `json:"generated_at"`
	TotalAccounts      int                  `json:"total_accounts"`
	TotalBalance       domain.Money         `json:"total_balance"`
	TransactionCounts  []TypeCount          `json:"transaction_counts"`
	Accounts           []domain.Account     `json:"accounts"`
	RecentTransactions []domain.Transaction `json:"recent_transactions"`
}

// DashboardSnapshot assembles the current dashboard view. recentLimit bounds
// the transaction feed; a non-positive limit includes everything.
func (s *Service) DashboardSnapshot(ctx context.Context, recentLimit int) (*DashboardSnapshot, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	total := domain.ZeroMoney()
	for i := range accounts {
		total = total.Add(accounts[i].Balance)
	}

	counts, err := s.repo.CountTransactionsByType(ctx)
	if err != nil {
		return nil, err
	}
	typeCounts := make([]TypeCount, 0, len(counts))
	for _, txType := range []domain.TransactionType{domain.TypeDeposit, domain.TypeWithdrawal, domain.TypeTransfer} {
		if n, ok := counts[txType]; ok {
			typeCounts = append(typeCounts, TypeCount{Type: txType, Count: n})
		}
	}

	recent, err := s.repo.ListRecentTransactions(ctx, recentLimit)
	if err != nil {
		return nil, err
	}

	return &DashboardSnapshot{
		GeneratedAt:        time.Now().UTC(),
		TotalAccounts:      len(accounts),
		TotalBalance:       total,
		TransactionCounts:  typeCounts,
		Accounts:           accounts,
		RecentTransactions: recent,
	}, nil
}
