package domain

import (
	"errors"
	"testing"
)

func TestNewAccount(t *testing.T) {
	cases := []struct {
		name     string
		accName  string
		balance  Money
		wantName string
		wantErr  error
	}{
		{name: "valid", accName: "Alice", balance: MustMoney("100.00"), wantName: "Alice"},
		{name: "trims whitespace", accName: "  Bob  ", balance: ZeroMoney(), wantName: "Bob"},
		{name: "zero balance ok", accName: "Carol", balance: ZeroMoney(), wantName: "Carol"},
		{name: "empty name", accName: "", balance: ZeroMoney(), wantErr: ErrEmptyAccountName},
		{name: "whitespace name", accName: "   ", balance: ZeroMoney(), wantErr: ErrEmptyAccountName},
		{name: "negative balance", accName: "Dave", balance: MustMoney("-0.01"), wantErr: ErrNegativeBalance},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			account, err := NewAccount(tc.accName, tc.balance)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("NewAccount(%q) error = %v, want %v", tc.accName, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewAccount(%q) failed: %v", tc.accName, err)
			}
			if account.Name != tc.wantName {
				t.Fatalf("name = %q, want %q", account.Name, tc.wantName)
			}
			if !account.Balance.Equal(tc.balance) {
				t.Fatalf("balance = %s, want %s", account.Balance, tc.balance)
			}
		})
	}
}

func TestAccountDeposit(t *testing.T) {
	account, err := NewAccount("Alice", MustMoney("10.00"))
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}

	balance, err := account.Deposit(MustMoney("2.50"))
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if balance.String() != "12.50" {
		t.Fatalf("balance = %s, want 12.50", balance)
	}

	if _, err := account.Deposit(ZeroMoney()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero deposit error = %v, want ErrInvalidAmount", err)
	}
	if _, err := account.Deposit(MustMoney("-1.00")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative deposit error = %v, want ErrInvalidAmount", err)
	}
	if account.Balance.String() != "12.50" {
		t.Fatalf("failed deposits must not change the balance, got %s", account.Balance)
	}
}

func TestAccountWithdraw(t *testing.T) {
	account, err := NewAccount("Bob", MustMoney("10.00"))
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}

	balance, err := account.Withdraw(MustMoney("4.00"))
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if balance.String() != "6.00" {
		t.Fatalf("balance = %s, want 6.00", balance)
	}

	// Withdrawing the full balance leaves exactly zero.
	if _, err := account.Withdraw(MustMoney("6.00")); err != nil {
		t.Fatalf("full withdrawal failed: %v", err)
	}
	if !account.Balance.IsZero() {
		t.Fatalf("balance = %s, want 0.00", account.Balance)
	}

	_, err = account.Withdraw(MustMoney("0.01"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("overdraw error = %v, want ErrInsufficientFunds", err)
	}
	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("overdraw error = %T, want *InsufficientFundsError", err)
	}
	if insufficient.Available.String() != "0.00" || insufficient.Requested.String() != "0.01" {
		t.Fatalf("error detail = available %s requested %s", insufficient.Available, insufficient.Requested)
	}
	if !account.Balance.IsZero() {
		t.Fatalf("failed withdrawal must not change the balance, got %s", account.Balance)
	}

	if _, err := account.Withdraw(ZeroMoney()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero withdrawal error = %v, want ErrInvalidAmount", err)
	}
}
