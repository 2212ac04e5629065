/**
 * @description
 * This file defines the closed set of error kinds the ledger core can surface.
 * Callers classify failures with errors.Is / errors.As; the core never returns
 * a bare string error for a business-rule violation and never misclassifies
 * one kind as another.
 */

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmountFormat reports an amount string that does not parse as
	// a decimal value.
	ErrInvalidAmountFormat = errors.New("invalid amount format")

	// ErrEmptyAccountName reports an account name that is empty after trimming.
	ErrEmptyAccountName = errors.New("account name cannot be empty")

	// ErrNegativeBalance reports an attempt to construct or persist an account
	// with a negative balance.
	ErrNegativeBalance = errors.New("account balance cannot be negative")

	// ErrInvalidAmount reports a non-positive amount where a positive value is
	// required (deposits, withdrawals, transfers).
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSameAccount reports a transfer whose source and destination are the
	// same account.
	ErrSameAccount = errors.New("cannot transfer to the same account")

	// ErrInsufficientFunds is the match target for *InsufficientFundsError.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// InsufficientFundsError reports a withdrawal or transfer that exceeds the
// source account's balance. It carries both amounts for diagnostics and
// matches ErrInsufficientFunds under errors.Is.
type InsufficientFundsError struct {
	Available Money
	Requested Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s, requested %s", e.Available, e.Requested)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// InvalidTransactionError reports a structurally invalid transaction record
// (bad type, wrong from/to shape, non-positive amount). Seeing one in practice
// indicates a bug in the orchestrator, not bad user input.
type InvalidTransactionError struct {
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	return "invalid transaction: " + e.Reason
}
