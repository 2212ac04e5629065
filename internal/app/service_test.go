package app

import (
	"context"
	"errors"
	"testing"

	"github.com/coreledger/ledger-service/internal/domain"
	"github.com/coreledger/ledger-service/internal/store"
	"github.com/google/uuid"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(store.NewMemoryRepository())
}

func mustCreate(t *testing.T, s *Service, name, balance string) *domain.Account {
	t.Helper()
	account, err := s.CreateAccount(context.Background(), name, domain.MustMoney(balance))
	if err != nil {
		t.Fatalf("CreateAccount(%q) failed: %v", name, err)
	}
	return account
}

// failingRepo wraps a real repository and fails selected operations, inside
// and outside atomic units, to exercise abort paths.
type failingRepo struct {
	store.Repository
	failCreateTransaction bool
	failUpdateBalance     bool
}

var errStoreBroken = errors.New("store broken")

func (f *failingRepo) Atomic(ctx context.Context, fn func(store.Repository) error) error {
	return f.Repository.Atomic(ctx, func(r store.Repository) error {
		return fn(&failingRepo{
			Repository:            r,
			failCreateTransaction: f.failCreateTransaction,
			failUpdateBalance:     f.failUpdateBalance,
		})
	})
}

func (f *failingRepo) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	if f.failCreateTransaction {
		return errStoreBroken
	}
	return f.Repository.CreateTransaction(ctx, txn)
}

func (f *failingRepo) UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance domain.Money) error {
	if f.failUpdateBalance {
		return errStoreBroken
	}
	return f.Repository.UpdateAccountBalance(ctx, id, balance)
}

func TestCreateAccountRecordsOpeningDeposit(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	alice := mustCreate(t, service, "Alice", "100.00")
	if alice.Balance.String() != "100.00" {
		t.Fatalf("balance = %s, want 100.00", alice.Balance)
	}

	history, err := service.GetAccountTransactions(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d transactions, want 1 opening deposit", len(history))
	}
	opening := history[0]
	if opening.Type != domain.TypeDeposit {
		t.Fatalf("opening type = %s, want deposit", opening.Type)
	}
	if opening.Description != "Initial deposit for account 'Alice'" {
		t.Fatalf("opening description = %q", opening.Description)
	}
	if opening.FromAccountID != nil || opening.ToAccountID == nil || *opening.ToAccountID != alice.ID {
		t.Fatal("opening deposit has wrong endpoints")
	}

	// Zero opening balance leaves the journal empty.
	bob := mustCreate(t, service, "Bob", "0.00")
	history, err = service.GetAccountTransactions(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("zero-balance creation wrote %d transactions", len(history))
	}
}

func TestCreateAccountValidation(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	mustCreate(t, service, "Alice", "0.00")

	if _, err := service.CreateAccount(ctx, "  ", domain.ZeroMoney()); !errors.Is(err, domain.ErrEmptyAccountName) {
		t.Fatalf("empty name error = %v, want ErrEmptyAccountName", err)
	}
	if _, err := service.CreateAccount(ctx, "Bob", domain.MustMoney("-1.00")); !errors.Is(err, domain.ErrNegativeBalance) {
		t.Fatalf("negative balance error = %v, want ErrNegativeBalance", err)
	}
	if _, err := service.CreateAccount(ctx, "Alice", domain.ZeroMoney()); !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("duplicate name error = %v, want ErrDuplicateName", err)
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	alice := mustCreate(t, service, "Alice", "10.00")

	balance, err := service.Deposit(ctx, alice.ID, domain.MustMoney("5.25"), "")
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if balance.String() != "15.25" {
		t.Fatalf("balance = %s, want 15.25", balance)
	}

	balance, err = service.Withdraw(ctx, alice.ID, domain.MustMoney("0.25"), "coffee")
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if balance.String() != "15.00" {
		t.Fatalf("balance = %s, want 15.00", balance)
	}

	history, err := service.GetAccountTransactions(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	// Newest first: withdrawal, deposit, opening deposit.
	if len(history) != 3 {
		t.Fatalf("got %d transactions, want 3", len(history))
	}
	if history[0].Type != domain.TypeWithdrawal || history[0].Description != "coffee" {
		t.Fatalf("history[0] = %s %q", history[0].Type, history[0].Description)
	}
	if history[1].Type != domain.TypeDeposit || history[1].Description != "Deposit to Alice" {
		t.Fatalf("history[1] = %s %q", history[1].Type, history[1].Description)
	}

	if _, err := service.Deposit(ctx, uuid.New(), domain.MustMoney("1.00"), ""); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("deposit to unknown account error = %v, want ErrAccountNotFound", err)
	}
	if _, err := service.Withdraw(ctx, alice.ID, domain.ZeroMoney(), ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("zero withdrawal error = %v, want ErrInvalidAmount", err)
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	alice := mustCreate(t, service, "Alice", "10.00")

	_, err := service.Withdraw(ctx, alice.ID, domain.MustMoney("10.01"), "")
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("overdraw error = %v, want ErrInsufficientFunds", err)
	}

	// The failed withdrawal left no trace.
	balance, err := service.GetBalance(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance.String() != "10.00" {
		t.Fatalf("balance = %s, want 10.00", balance)
	}
	history, err := service.GetAccountTransactions(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d transactions, want only the opening deposit", len(history))
	}
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	alice := mustCreate(t, service, "Alice", "100.00")
	bob := mustCreate(t, service, "Bob", "50.00")

	fromBalance, toBalance, err := service.Transfer(ctx, alice.ID, bob.ID, domain.MustMoney("30.00"), "")
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if fromBalance.String() != "70.00" || toBalance.String() != "80.00" {
		t.Fatalf("balances = %s / %s, want 70.00 / 80.00", fromBalance, toBalance)
	}

	// One transfer record visible from both sides.
	for _, id := range []uuid.UUID{alice.ID, bob.ID} {
		history, err := service.GetAccountTransactions(ctx, id)
		if err != nil {
			t.Fatalf("GetAccountTransactions failed: %v", err)
		}
		if history[0].Type != domain.TypeTransfer {
			t.Fatalf("history[0].Type = %s, want transfer", history[0].Type)
		}
		if history[0].Description != "Transfer from Alice to Bob" {
			t.Fatalf("description = %q", history[0].Description)
		}
	}

	if _, _, err := service.Transfer(ctx, alice.ID, alice.ID, domain.MustMoney("1.00"), ""); !errors.Is(err, domain.ErrSameAccount) {
		t.Fatalf("self transfer error = %v, want ErrSameAccount", err)
	}
	if _, _, err := service.Transfer(ctx, alice.ID, bob.ID, domain.MustMoney("1000.00"), ""); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("overdraw transfer error = %v, want ErrInsufficientFunds", err)
	}
	if _, _, err := service.Transfer(ctx, alice.ID, uuid.New(), domain.MustMoney("1.00"), ""); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("transfer to unknown account error = %v, want ErrAccountNotFound", err)
	}
}

func TestTransferConservesTotalBalance(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	alice := mustCreate(t, service, "Alice", "123.45")
	bob := mustCreate(t, service, "Bob", "876.55")

	before, err := service.TotalSystemBalance(ctx)
	if err != nil {
		t.Fatalf("TotalSystemBalance failed: %v", err)
	}

	for _, amount := range []string{"0.01", "99.99", "123.45"} {
		if _, _, err := service.Transfer(ctx, alice.ID, bob.ID, domain.MustMoney(amount), ""); err != nil {
			t.Fatalf("Transfer(%s) failed: %v", amount, err)
		}
	}
	if _, _, err := service.Transfer(ctx, bob.ID, alice.ID, domain.MustMoney("200.00"), ""); err != nil {
		t.Fatalf("Transfer back failed: %v", err)
	}

	after, err := service.TotalSystemBalance(ctx)
	if err != nil {
		t.Fatalf("TotalSystemBalance failed: %v", err)
	}
	if !after.Equal(before) {
		t.Fatalf("total changed: before %s, after %s", before, after)
	}
}

func TestTransferAtomicityUnderStoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{Repository: store.NewMemoryRepository()}
	service := NewService(repo)

	alice := mustCreate(t, service, "Alice", "100.00")
	bob := mustCreate(t, service, "Bob", "50.00")

	// The journal write fails after both balances were updated; the whole
	// unit must roll back.
	repo.failCreateTransaction = true
	_, _, err := service.Transfer(ctx, alice.ID, bob.ID, domain.MustMoney("30.00"), "")
	if !errors.Is(err, errStoreBroken) {
		t.Fatalf("Transfer error = %v, want errStoreBroken", err)
	}
	repo.failCreateTransaction = false

	aliceBalance, err := service.GetBalance(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	bobBalance, err := service.GetBalance(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if aliceBalance.String() != "100.00" || bobBalance.String() != "50.00" {
		t.Fatalf("balances after failed transfer = %s / %s", aliceBalance, bobBalance)
	}

	history, err := service.GetAccountTransactions(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("failed transfer left %d extra records", len(history)-1)
	}
}

func TestDepositAtomicityUnderStoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{Repository: store.NewMemoryRepository()}
	service := NewService(repo)
	alice := mustCreate(t, service, "Alice", "10.00")

	repo.failCreateTransaction = true
	if _, err := service.Deposit(ctx, alice.ID, domain.MustMoney("5.00"), ""); !errors.Is(err, errStoreBroken) {
		t.Fatalf("Deposit error = %v, want errStoreBroken", err)
	}
	repo.failCreateTransaction = false

	balance, err := service.GetBalance(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance.String() != "10.00" {
		t.Fatalf("balance after failed deposit = %s, want 10.00", balance)
	}
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	alice := mustCreate(t, service, "Alice", "10.00")

	if err := service.DeleteAccount(ctx, alice.ID); !errors.Is(err, store.ErrNonZeroBalance) {
		t.Fatalf("delete with balance error = %v, want ErrNonZeroBalance", err)
	}

	if _, err := service.Withdraw(ctx, alice.ID, domain.MustMoney("10.00"), ""); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if err := service.DeleteAccount(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	if _, err := service.GetAccount(ctx, alice.ID); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("lookup after delete error = %v, want ErrAccountNotFound", err)
	}
	if err := service.DeleteAccount(ctx, alice.ID); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("second delete error = %v, want ErrAccountNotFound", err)
	}

	// The audit trail outlives the account, but history lookups for a deleted
	// account report it missing.
	if _, err := service.GetAccountTransactions(ctx, alice.ID); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("history after delete error = %v, want ErrAccountNotFound", err)
	}
	all, err := service.RecentTransactions(ctx, 0)
	if err != nil {
		t.Fatalf("RecentTransactions failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("journal lost records on delete: %d, want 2", len(all))
	}
}

// The end-to-end scenario: two accounts, a deposit, a withdrawal and a
// transfer, with every intermediate balance checked exactly.
func TestLedgerEndToEnd(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	alice := mustCreate(t, service, "Alice", "1000.00")
	bob := mustCreate(t, service, "Bob", "500.00")

	balance, err := service.Deposit(ctx, alice.ID, domain.MustMoney("250.50"), "")
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if balance.String() != "1250.50" {
		t.Fatalf("alice after deposit = %s, want 1250.50", balance)
	}

	balance, err = service.Withdraw(ctx, bob.ID, domain.MustMoney("100.00"), "")
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if balance.String() != "400.00" {
		t.Fatalf("bob after withdrawal = %s, want 400.00", balance)
	}

	fromBalance, toBalance, err := service.Transfer(ctx, alice.ID, bob.ID, domain.MustMoney("300.25"), "")
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if fromBalance.String() != "950.25" {
		t.Fatalf("alice after transfer = %s, want 950.25", fromBalance)
	}
	if toBalance.String() != "700.25" {
		t.Fatalf("bob after transfer = %s, want 700.25", toBalance)
	}

	total, err := service.TotalSystemBalance(ctx)
	if err != nil {
		t.Fatalf("TotalSystemBalance failed: %v", err)
	}
	if total.String() != "1650.50" {
		t.Fatalf("total = %s, want 1650.50", total)
	}

	// Alice's history, newest first: transfer, deposit, opening deposit.
	history, err := service.GetAccountTransactions(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	wantTypes := []domain.TransactionType{domain.TypeTransfer, domain.TypeDeposit, domain.TypeDeposit}
	if len(history) != len(wantTypes) {
		t.Fatalf("got %d transactions, want %d", len(history), len(wantTypes))
	}
	for i, want := range wantTypes {
		if history[i].Type != want {
			t.Fatalf("history[%d].Type = %s, want %s", i, history[i].Type, want)
		}
	}
}
