/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. Balances and amounts are stored as NUMERIC(20,2) and move across
 * the driver boundary as decimal strings, never as binary floats. The schema
 * carries UNIQUE and CHECK constraints as defense-in-depth; the application
 * enforces the same invariants inside every atomic unit.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreledger/ledger-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for a unique-constraint breach.
const uniqueViolation = "23505"

// querier is the subset of pgx operations shared by *pgxpool.Pool and pgx.Tx,
// letting every query method run either directly on the pool or inside an
// atomic unit.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository is a concrete implementation of the Repository interface
// for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
	q  querier
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db, q: db}
}

// Migrate creates the accounts and transactions tables with their constraints
// and indexes. The foreign-key relationship from transactions to accounts is
// deliberately soft: accounts may be deleted once their balance reaches zero
// while the audit rows remain.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			balance NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			from_account_id UUID,
			to_account_id UUID,
			amount NUMERIC(20,2) NOT NULL CHECK (amount > 0),
			type TEXT NOT NULL CHECK (type IN ('deposit', 'withdrawal', 'transfer')),
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_from_account ON transactions (from_account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_to_account ON transactions (to_account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions (created_at DESC, id DESC)`,
	}
	for _, stmt := range statements {
		if _, err := r.q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// Atomic runs fn inside a serializable database transaction. A nested call
// joins the enclosing transaction instead of opening a second one.
func (r *PostgresRepository) Atomic(ctx context.Context, fn func(Repository) error) error {
	if _, inTx := r.q.(pgx.Tx); inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresRepository{db: r.db, q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateAccount inserts a new account, assigning its id and creation time.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	id := uuid.New()
	query := `
		INSERT INTO accounts (id, name, balance)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.q.QueryRow(ctx, query, id, account.Name, account.Balance.String()).Scan(&account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	account.ID = id
	return nil
}

// FindAccountByID retrieves an account by its id.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, name, balance::text, created_at FROM accounts WHERE id = $1`
	return r.scanAccount(r.q.QueryRow(ctx, query, id))
}

// FindAccountByIDForUpdate retrieves an account by its id, locking the row
// until the enclosing atomic unit completes.
func (r *PostgresRepository) FindAccountByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, name, balance::text, created_at FROM accounts WHERE id = $1 FOR UPDATE`
	return r.scanAccount(r.q.QueryRow(ctx, query, id))
}

// FindAccountByName retrieves an account by its unique name.
func (r *PostgresRepository) FindAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	query := `SELECT id, name, balance::text, created_at FROM accounts WHERE name = $1`
	return r.scanAccount(r.q.QueryRow(ctx, query, name))
}

// ListAccounts returns all accounts ordered by name, ties broken by id.
func (r *PostgresRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT id, name, balance::text, created_at FROM accounts ORDER BY name ASC, id ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var (
			account    domain.Account
			balanceStr string
		)
		if err := rows.Scan(&account.ID, &account.Name, &balanceStr, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		balance, err := domain.ParseMoney(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored balance %q: %w", balanceStr, err)
		}
		account.Balance = balance
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account rows: %w", err)
	}
	return accounts, nil
}

// UpdateAccountBalance persists a new balance for the account.
func (r *PostgresRepository) UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance domain.Money) error {
	if balance.IsNegative() {
		return domain.ErrNegativeBalance
	}
	result, err := r.q.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, balance.String(), id)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// DeleteAccount removes an account if its balance is zero, reporting whether a
// row existed. Transaction records referencing the account are retained.
func (r *PostgresRepository) DeleteAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	var balanceStr string
	err := r.q.QueryRow(ctx, `SELECT balance::text FROM accounts WHERE id = $1`, id).Scan(&balanceStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read balance before delete: %w", err)
	}
	balance, err := domain.ParseMoney(balanceStr)
	if err != nil {
		return false, fmt.Errorf("failed to parse stored balance %q: %w", balanceStr, err)
	}
	if !balance.IsZero() {
		return false, ErrNonZeroBalance
	}

	result, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// CreateTransaction inserts an audit record, assigning its id and creation
// time. No business validation happens here; the entity constructor already
// did it.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	id := uuid.New()
	query := `
		INSERT INTO transactions (id, from_account_id, to_account_id, amount, type, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.q.QueryRow(ctx, query,
		id, txn.FromAccountID, txn.ToAccountID, txn.Amount.String(), string(txn.Type), txn.Description,
	).Scan(&txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	txn.ID = id
	return nil
}

// FindTransactionByID retrieves a single transaction by its id.
func (r *PostgresRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, from_account_id, to_account_id, amount::text, type, description, created_at
		FROM transactions
		WHERE id = $1
	`
	txn, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return txn, nil
}

// FindTransactionsByAccountID returns every transaction where the account is
// either party, newest first.
func (r *PostgresRepository) FindTransactionsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT id, from_account_id, to_account_id, amount::text, type, description, created_at
		FROM transactions
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListRecentTransactions returns transactions newest first; limit <= 0 returns
// all of them.
func (r *PostgresRepository) ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT id, from_account_id, to_account_id, amount::text, type, description, created_at
		FROM transactions
		ORDER BY created_at DESC, id DESC
	`
	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.q.Query(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = r.q.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// CountTransactionsByType returns the number of transactions per type.
func (r *PostgresRepository) CountTransactionsByType(ctx context.Context) (map[domain.TransactionType]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT type, COUNT(*) FROM transactions GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.TransactionType]int64)
	for rows.Next() {
		var (
			txType string
			count  int64
		)
		if err := rows.Scan(&txType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan transaction count: %w", err)
		}
		counts[domain.TransactionType(txType)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction counts: %w", err)
	}
	return counts, nil
}

func (r *PostgresRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account    domain.Account
		balanceStr string
	)
	err := row.Scan(&account.ID, &account.Name, &balanceStr, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	balance, err := domain.ParseMoney(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored balance %q: %w", balanceStr, err)
	}
	account.Balance = balance
	return &account, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn       domain.Transaction
		amountStr string
		txType    string
	)
	err := row.Scan(&txn.ID, &txn.FromAccountID, &txn.ToAccountID, &amountStr, &txType, &txn.Description, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	amount, err := domain.ParseMoney(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", amountStr, err)
	}
	txn.Amount = amount
	txn.Type = domain.TransactionType(txType)
	return &txn, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction rows: %w", err)
	}
	return transactions, nil
}

// Compile-time check: PostgresRepository implements the Repository interface.
var _ Repository = (*PostgresRepository)(nil)
