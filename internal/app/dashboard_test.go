package app

import (
	"context"
	"testing"

	"github.com/coreledger/ledger-service/internal/domain"
)

func TestDashboardSnapshot(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	alice := mustCreate(t, service, "Alice", "100.00")
	bob := mustCreate(t, service, "Bob", "50.00")

	if _, err := service.Withdraw(ctx, bob.ID, domain.MustMoney("10.00"), ""); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if _, _, err := service.Transfer(ctx, alice.ID, bob.ID, domain.MustMoney("25.00"), ""); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	snapshot, err := service.DashboardSnapshot(ctx, 2)
	if err != nil {
		t.Fatalf("DashboardSnapshot failed: %v", err)
	}

	if snapshot.TotalAccounts != 2 {
		t.Fatalf("TotalAccounts = %d, want 2", snapshot.TotalAccounts)
	}
	if snapshot.TotalBalance.String() != "140.00" {
		t.Fatalf("TotalBalance = %s, want 140.00", snapshot.TotalBalance)
	}
	if snapshot.GeneratedAt.IsZero() {
		t.Fatal("GeneratedAt not set")
	}

	// Two opening deposits, one withdrawal, one transfer; ordered feed fixed
	// as deposit, withdrawal, transfer.
	wantCounts := []TypeCount{
		{Type: domain.TypeDeposit, Count: 2},
		{Type: domain.TypeWithdrawal, Count: 1},
		{Type: domain.TypeTransfer, Count: 1},
	}
	if len(snapshot.TransactionCounts) != len(wantCounts) {
		t.Fatalf("got %d type counts, want %d", len(snapshot.TransactionCounts), len(wantCounts))
	}
	for i, want := range wantCounts {
		if snapshot.TransactionCounts[i] != want {
			t.Fatalf("TransactionCounts[%d] = %+v, want %+v", i, snapshot.TransactionCounts[i], want)
		}
	}

	if len(snapshot.RecentTransactions) != 2 {
		t.Fatalf("RecentTransactions = %d entries, want limit of 2", len(snapshot.RecentTransactions))
	}
	if snapshot.RecentTransactions[0].Type != domain.TypeTransfer {
		t.Fatalf("newest = %s, want transfer", snapshot.RecentTransactions[0].Type)
	}

	if len(snapshot.Accounts) != 2 || snapshot.Accounts[0].Name != "Alice" {
		t.Fatalf("accounts not ordered by name: %+v", snapshot.Accounts)
	}
}

func TestDashboardSnapshotEmptyLedger(t *testing.T) {
	service := newTestService(t)

	snapshot, err := service.DashboardSnapshot(context.Background(), 10)
	if err != nil {
		t.Fatalf("DashboardSnapshot failed: %v", err)
	}
	if snapshot.TotalAccounts != 0 {
		t.Fatalf("TotalAccounts = %d, want 0", snapshot.TotalAccounts)
	}
	if !snapshot.TotalBalance.IsZero() {
		t.Fatalf("TotalBalance = %s, want 0.00", snapshot.TotalBalance)
	}
	if len(snapshot.TransactionCounts) != 0 {
		t.Fatalf("TransactionCounts = %v, want empty", snapshot.TransactionCounts)
	}
}
