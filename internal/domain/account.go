/**
 * @description
 * This file defines the Account entity. An account holds a unique name and a
 * non-negative Money balance; the balance invariant is enforced at every
 * mutation point, not just at the API boundary. Accounts are mutated only
 * through Deposit and Withdraw — persistence is the repository's concern.
 */

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account represents a single ledger account.
// The ID is assigned by the store on creation and immutable afterwards.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Balance   Money     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAccount validates and builds an account ready for persistence. The name
// is trimmed and must be non-empty; the balance must be non-negative and is
// quantized to two digits as a normalization step.
func NewAccount(name string, balance Money) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyAccountName
	}
	if balance.IsNegative() {
		return nil, ErrNegativeBalance
	}
	return &Account{Name: name, Balance: balance}, nil
}

// Deposit adds amount to the balance and returns the new balance.
// Fails with ErrInvalidAmount if amount <= 0.
func (a *Account) Deposit(amount Money) (Money, error) {
	if !amount.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	return a.Balance, nil
}

// Withdraw subtracts amount from the balance and returns the new balance.
// Fails with ErrInvalidAmount if amount <= 0 and with *InsufficientFundsError
// if amount exceeds the balance; the balance is unchanged on failure.
func (a *Account) Withdraw(amount Money) (Money, error) {
	if !amount.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	if amount.Cmp(a.Balance) > 0 {
		return Money{}, &InsufficientFundsError{Available: a.Balance, Requested: amount}
	}
	a.Balance = a.Balance.Sub(amount)
	return a.Balance, nil
}
