/**
 * @description
 * This file contains the core business logic of the ledger. The `Service`
 * struct composes account and transaction operations into atomic use-cases:
 * deposit, withdraw, transfer, account creation and deletion. It is the sole
 * component that spans multiple rows per operation and it owns the invariant
 * that the system-wide balance changes only through deposits and withdrawals,
 * never through transfers.
 *
 * Every mutating use-case runs inside one store.Repository.Atomic unit: all
 * its reads and writes become visible together or not at all. No balances are
 * cached in memory — every read goes to the store.
 *
 * @dependencies
 * - github.com/google/uuid: Account and transaction identifiers.
 * - internal/domain, internal/store: Entities, typed errors, and data access.
 */

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreledger/ledger-service/internal/domain"
	"github.com/coreledger/ledger-service/internal/store"
	"github.com/google/uuid"
)

// Service provides the high-level ledger operations.
type Service struct {
	repo store.Repository
}

// NewService creates a ledger service bound to the given store. The store
// handle is injected here and never reached for through globals.
func NewService(repo store.Repository) *Service {
	return &Service{repo: repo}
}

// CreateAccount creates a new account. When the initial balance is positive a
// synthetic opening-deposit transaction is recorded in the same atomic unit,
// so the audit trail explains every unit of balance in the system.
func (s *Service) CreateAccount(ctx context.Context, name string, initialBalance domain.Money) (*domain.Account, error) {
	account, err := domain.NewAccount(name, initialBalance)
	if err != nil {
		return nil, err
	}

	err = s.repo.Atomic(ctx, func(r store.Repository) error {
		if err := r.CreateAccount(ctx, account); err != nil {
			return err
		}
		if account.Balance.IsPositive() {
			opening, err := domain.NewTransaction(nil, &account.ID, account.Balance, domain.TypeDeposit,
				fmt.Sprintf("Initial deposit for account '%s'", account.Name))
			if err != nil {
				return err
			}
			return r.CreateTransaction(ctx, opening)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Deposit adds amount to the account and records a deposit transaction,
// returning the new balance. Load, mutate, persist and record all run in one
// atomic unit.
func (s *Service) Deposit(ctx context.Context, accountID uuid.UUID, amount domain.Money, description string) (domain.Money, error) {
	var newBalance domain.Money
	err := s.repo.Atomic(ctx, func(r store.Repository) error {
		account, err := r.FindAccountByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		balance, err := account.Deposit(amount)
		if err != nil {
			return err
		}
		if err := r.UpdateAccountBalance(ctx, account.ID, balance); err != nil {
			return err
		}
		txn, err := domain.NewTransaction(nil, &account.ID, amount, domain.TypeDeposit,
			defaultDescription(description, "Deposit to "+account.Name))
		if err != nil {
			return err
		}
		if err := r.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		newBalance = balance
		return nil
	})
	if err != nil {
		return domain.Money{}, err
	}
	return newBalance, nil
}

// Withdraw removes amount from the account and records a withdrawal
// transaction, returning the new balance. A withdrawal that would take the
// balance negative fails with InsufficientFunds and leaves it unchanged.
func (s *Service) Withdraw(ctx context.Context, accountID uuid.UUID, amount domain.Money, description string) (domain.Money, error) {
	var newBalance domain.Money
	err := s.repo.Atomic(ctx, func(r store.Repository) error {
		account, err := r.FindAccountByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		balance, err := account.Withdraw(amount)
		if err != nil {
			return err
		}
		if err := r.UpdateAccountBalance(ctx, account.ID, balance); err != nil {
			return err
		}
		txn, err := domain.NewTransaction(&account.ID, nil, amount, domain.TypeWithdrawal,
			defaultDescription(description, "Withdrawal from "+account.Name))
		if err != nil {
			return err
		}
		if err := r.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		newBalance = balance
		return nil
	})
	if err != nil {
		return domain.Money{}, err
	}
	return newBalance, nil
}

// Transfer moves amount between two distinct accounts and records a single
// transfer-typed transaction, returning both new balances. The source is
// validated and debited before the destination is credited, so a failed debit
// never leaves a partial credit; any failure aborts the whole unit.
func (s *Service) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount domain.Money, description string) (domain.Money, domain.Money, error) {
	if fromID == toID {
		return domain.Money{}, domain.Money{}, domain.ErrSameAccount
	}

	var fromBalance, toBalance domain.Money
	err := s.repo.Atomic(ctx, func(r store.Repository) error {
		// Lock rows in a stable order so concurrent opposite-direction
		// transfers cannot deadlock.
		firstID, secondID := fromID, toID
		if strings.Compare(secondID.String(), firstID.String()) < 0 {
			firstID, secondID = secondID, firstID
		}
		first, err := r.FindAccountByIDForUpdate(ctx, firstID)
		if err != nil {
			return err
		}
		second, err := r.FindAccountByIDForUpdate(ctx, secondID)
		if err != nil {
			return err
		}

		from, to := first, second
		if from.ID != fromID {
			from, to = second, first
		}

		debited, err := from.Withdraw(amount)
		if err != nil {
			return err
		}
		credited, err := to.Deposit(amount)
		if err != nil {
			return err
		}

		if err := r.UpdateAccountBalance(ctx, from.ID, debited); err != nil {
			return err
		}
		if err := r.UpdateAccountBalance(ctx, to.ID, credited); err != nil {
			return err
		}

		txn, err := domain.NewTransaction(&from.ID, &to.ID, amount, domain.TypeTransfer,
			defaultDescription(description, fmt.Sprintf("Transfer from %s to %s", from.Name, to.Name)))
		if err != nil {
			return err
		}
		if err := r.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		fromBalance = debited
		toBalance = credited
		return nil
	})
	if err != nil {
		return domain.Money{}, domain.Money{}, err
	}
	return fromBalance, toBalance, nil
}

// GetAccount retrieves an account by id.
func (s *Service) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	return s.repo.FindAccountByID(ctx, accountID)
}

// GetAccountByName retrieves an account by its unique name.
func (s *Service) GetAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	return s.repo.FindAccountByName(ctx, strings.TrimSpace(name))
}

// GetBalance returns the current balance of an account.
func (s *Service) GetBalance(ctx context.Context, accountID uuid.UUID) (domain.Money, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return domain.Money{}, err
	}
	return account.Balance, nil
}

// GetAccountTransactions returns the account's history newest-first. The
// account's existence is checked at call time; the history itself is
// append-only and survives account deletion.
func (s *Service) GetAccountTransactions(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	if _, err := s.repo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.FindTransactionsByAccountID(ctx, accountID)
}

// ListAccounts returns all accounts ordered by name.
func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// RecentTransactions returns the newest transactions across all accounts;
// limit <= 0 returns everything.
func (s *Service) RecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	return s.repo.ListRecentTransactions(ctx, limit)
}

// TotalSystemBalance sums all current balances. It is a derived quantity used
// as an invariant check: transfers never change it.
func (s *Service) TotalSystemBalance(ctx context.Context) (domain.Money, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return domain.Money{}, err
	}
	total := domain.ZeroMoney()
	for i := range accounts {
		total = total.Add(accounts[i].Balance)
	}
	return total, nil
}

// DeleteAccount removes an account whose balance is zero. Its transaction
// records are retained as the append-only audit trail.
func (s *Service) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	return s.repo.Atomic(ctx, func(r store.Repository) error {
		if _, err := r.FindAccountByIDForUpdate(ctx, accountID); err != nil {
			return err
		}
		existed, err := r.DeleteAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if !existed {
			return store.ErrAccountNotFound
		}
		return nil
	})
}

func defaultDescription(description, fallback string) string {
	if strings.TrimSpace(description) == "" {
		return fallback
	}
	return description
}
