/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the ledger needs. Defining an interface decouples the business logic
 * from the storage engine: the Postgres implementation backs production and
 * the in-memory implementation backs tests and demo mode.
 *
 * Atomic is the storage transaction wrapper: every multi-row ledger use-case
 * runs inside one Atomic call and is made visible together or not at all.
 */

package store

import (
	"context"
	"errors"

	"github.com/coreledger/ledger-service/internal/domain"
	"github.com/google/uuid"
)

var (
	// ErrAccountNotFound reports a lookup for an account id or name that does
	// not exist in the store.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateName reports an account creation colliding with an existing
	// name. Uniqueness is enforced by the store itself, not just application
	// logic, so concurrent creates cannot race past the check.
	ErrDuplicateName = errors.New("account name already exists")

	// ErrNonZeroBalance reports a deletion attempted on an account whose
	// balance is not exactly zero.
	ErrNonZeroBalance = errors.New("cannot delete account with non-zero balance")

	// ErrTransactionNotFound reports a lookup for a transaction id that does
	// not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Repository defines the set of methods for interacting with the store.
type Repository interface {
	// Atomic runs fn inside one storage transaction. Every read and write fn
	// performs through the Repository it receives is isolated from concurrent
	// atomic units; a non-nil error from fn aborts the whole unit. Nested
	// calls join the enclosing unit.
	Atomic(ctx context.Context, fn func(Repository) error) error

	// Account methods
	// CreateAccount inserts the account and assigns its ID and CreatedAt.
	CreateAccount(ctx context.Context, account *domain.Account) error
	FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// FindAccountByIDForUpdate is FindAccountByID plus a row lock when called
	// inside an atomic unit, so the balance read cannot go stale before the
	// matching UpdateAccountBalance.
	FindAccountByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	FindAccountByName(ctx context.Context, name string) (*domain.Account, error)
	// ListAccounts returns all accounts ordered by name, ties broken by id.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	// UpdateAccountBalance persists a new balance. Negative balances are
	// rejected here as defense-in-depth even though callers validate first.
	UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance domain.Money) error
	// DeleteAccount removes the account row if its balance is zero, reporting
	// whether a row existed. Transaction rows referencing it are retained.
	DeleteAccount(ctx context.Context, id uuid.UUID) (bool, error)

	// Transaction methods
	// CreateTransaction inserts the record and assigns its ID and CreatedAt.
	CreateTransaction(ctx context.Context, txn *domain.Transaction) error
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// FindTransactionsByAccountID returns every transaction where the account
	// is either party, newest first (created_at desc, then id desc).
	FindTransactionsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
	// ListRecentTransactions returns transactions newest first. A limit <= 0
	// means no limit.
	ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	// CountTransactionsByType returns the number of transactions per type.
	CountTransactionsByType(ctx context.Context) (map[domain.TransactionType]int64, error)
}
