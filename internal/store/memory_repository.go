/**
 * @description
 * This file provides an in-memory implementation of the `Repository`
 * interface. It backs the test suite and the demo store driver, and is
 * thread-safe: a mutex serializes all access, and Atomic snapshots the whole
 * state so a failed unit rolls back to exactly what was visible before it
 * started.
 */

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coreledger/ledger-service/internal/domain"
	"github.com/google/uuid"
)

// memoryState holds all rows. Transactions keep insertion order, which is the
// tie-break for equal creation times.
type memoryState struct {
	accounts     map[uuid.UUID]domain.Account
	nameIndex    map[string]uuid.UUID
	transactions []domain.Transaction
}

func newMemoryState() *memoryState {
	return &memoryState{
		accounts:  make(map[uuid.UUID]domain.Account),
		nameIndex: make(map[string]uuid.UUID),
	}
}

func (s *memoryState) clone() *memoryState {
	copied := &memoryState{
		accounts:     make(map[uuid.UUID]domain.Account, len(s.accounts)),
		nameIndex:    make(map[string]uuid.UUID, len(s.nameIndex)),
		transactions: make([]domain.Transaction, len(s.transactions)),
	}
	for id, account := range s.accounts {
		copied.accounts[id] = account
	}
	for name, id := range s.nameIndex {
		copied.nameIndex[name] = id
	}
	copy(copied.transactions, s.transactions)
	return copied
}

// MemoryRepository is a mutex-guarded in-memory store.
type MemoryRepository struct {
	mu    sync.Mutex
	state *memoryState
}

// NewMemoryRepository creates an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{state: newMemoryState()}
}

// Atomic serializes the unit against all other access and rolls the state
// back to a pre-unit snapshot if fn fails. fn receives an unlocked view so it
// can call repository methods without deadlocking on the outer mutex.
func (m *MemoryRepository) Atomic(ctx context.Context, fn func(Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(&memoryTxRepo{state: m.state}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *MemoryRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createAccount(account)
}

func (m *MemoryRepository) FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.findAccountByID(id)
}

func (m *MemoryRepository) FindAccountByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	// The mutex already gives an atomic unit exclusive access.
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.findAccountByID(id)
}

func (m *MemoryRepository) FindAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.findAccountByName(name)
}

func (m *MemoryRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.listAccounts()
}

func (m *MemoryRepository) UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance domain.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.updateAccountBalance(id, balance)
}

func (m *MemoryRepository) DeleteAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.deleteAccount(id)
}

func (m *MemoryRepository) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createTransaction(txn)
}

func (m *MemoryRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.findTransactionByID(id)
}

func (m *MemoryRepository) FindTransactionsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.findTransactionsByAccountID(accountID)
}

func (m *MemoryRepository) ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.listRecentTransactions(limit)
}

func (m *MemoryRepository) CountTransactionsByType(ctx context.Context) (map[domain.TransactionType]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.countTransactionsByType()
}

// memoryTxRepo is the view handed to a function running inside Atomic. The
// outer mutex is already held, so methods touch the state directly, and a
// nested Atomic joins the enclosing unit.
type memoryTxRepo struct {
	state *memoryState
}

func (t *memoryTxRepo) Atomic(ctx context.Context, fn func(Repository) error) error {
	return fn(t)
}

func (t *memoryTxRepo) CreateAccount(ctx context.Context, account *domain.Account) error {
	return t.state.createAccount(account)
}

func (t *memoryTxRepo) FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return t.state.findAccountByID(id)
}

func (t *memoryTxRepo) FindAccountByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return t.state.findAccountByID(id)
}

func (t *memoryTxRepo) FindAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	return t.state.findAccountByName(name)
}

func (t *memoryTxRepo) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return t.state.listAccounts()
}

func (t *memoryTxRepo) UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance domain.Money) error {
	return t.state.updateAccountBalance(id, balance)
}

func (t *memoryTxRepo) DeleteAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	return t.state.deleteAccount(id)
}

func (t *memoryTxRepo) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	return t.state.createTransaction(txn)
}

func (t *memoryTxRepo) FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return t.state.findTransactionByID(id)
}

func (t *memoryTxRepo) FindTransactionsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	return t.state.findTransactionsByAccountID(accountID)
}

func (t *memoryTxRepo) ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	return t.state.listRecentTransactions(limit)
}

func (t *memoryTxRepo) CountTransactionsByType(ctx context.Context) (map[domain.TransactionType]int64, error) {
	return t.state.countTransactionsByType()
}

func (s *memoryState) createAccount(account *domain.Account) error {
	if _, exists := s.nameIndex[account.Name]; exists {
		return ErrDuplicateName
	}
	account.ID = uuid.New()
	account.CreatedAt = time.Now().UTC()
	s.accounts[account.ID] = *account
	s.nameIndex[account.Name] = account.ID
	return nil
}

func (s *memoryState) findAccountByID(id uuid.UUID) (*domain.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	// Return a copy so callers cannot mutate stored state through the entity.
	return &account, nil
}

func (s *memoryState) findAccountByName(name string) (*domain.Account, error) {
	id, ok := s.nameIndex[name]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return s.findAccountByID(id)
}

func (s *memoryState) listAccounts() ([]domain.Account, error) {
	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Name != accounts[j].Name {
			return accounts[i].Name < accounts[j].Name
		}
		return strings.Compare(accounts[i].ID.String(), accounts[j].ID.String()) < 0
	})
	return accounts, nil
}

func (s *memoryState) updateAccountBalance(id uuid.UUID, balance domain.Money) error {
	if balance.IsNegative() {
		return domain.ErrNegativeBalance
	}
	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.Balance = balance
	s.accounts[id] = account
	return nil
}

func (s *memoryState) deleteAccount(id uuid.UUID) (bool, error) {
	account, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	if !account.Balance.IsZero() {
		return false, ErrNonZeroBalance
	}
	delete(s.accounts, id)
	delete(s.nameIndex, account.Name)
	return true, nil
}

func (s *memoryState) createTransaction(txn *domain.Transaction) error {
	txn.ID = uuid.New()
	txn.CreatedAt = time.Now().UTC()
	s.transactions = append(s.transactions, *txn)
	return nil
}

func (s *memoryState) findTransactionByID(id uuid.UUID) (*domain.Transaction, error) {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			txn := s.transactions[i]
			return &txn, nil
		}
	}
	return nil, ErrTransactionNotFound
}

func (s *memoryState) findTransactionsByAccountID(accountID uuid.UUID) ([]domain.Transaction, error) {
	var result []domain.Transaction
	// Walk backwards: insertion order is creation order, so this yields
	// newest-first with a deterministic tie-break.
	for i := len(s.transactions) - 1; i >= 0; i-- {
		txn := s.transactions[i]
		if (txn.FromAccountID != nil && *txn.FromAccountID == accountID) ||
			(txn.ToAccountID != nil && *txn.ToAccountID == accountID) {
			result = append(result, txn)
		}
	}
	return result, nil
}

func (s *memoryState) listRecentTransactions(limit int) ([]domain.Transaction, error) {
	var result []domain.Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, s.transactions[i])
	}
	return result, nil
}

func (s *memoryState) countTransactionsByType() (map[domain.TransactionType]int64, error) {
	counts := make(map[domain.TransactionType]int64)
	for i := range s.transactions {
		counts[s.transactions[i].Type]++
	}
	return counts, nil
}

// Compile-time checks: both views implement the Repository interface.
var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*memoryTxRepo)(nil)
)
