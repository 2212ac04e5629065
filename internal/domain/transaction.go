/**
 * @description
 * This file defines the Transaction entity: one immutable, append-only audit
 * record per ledger mutation. Records are never updated or deleted, and they
 * outlive the accounts they reference — a deleted account leaves its
 * transaction rows behind with a dangling id.
 *
 * The from/to shape is fixed per type:
 *   deposit:    to only
 *   withdrawal: from only
 *   transfer:   both, distinct
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a ledger transaction.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeTransfer   TransactionType = "transfer"
)

// Transaction is a single audit-trail entry. The ID and CreatedAt are assigned
// by the store on insert.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	FromAccountID *uuid.UUID      `json:"from_account_id,omitempty"`
	ToAccountID   *uuid.UUID      `json:"to_account_id,omitempty"`
	Amount        Money           `json:"amount"`
	Type          TransactionType `json:"type"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewTransaction validates the amount and the per-type from/to shape and
// returns a record ready for insertion. Violations surface as
// *InvalidTransactionError: they indicate an orchestrator bug, not bad input.
func NewTransaction(from, to *uuid.UUID, amount Money, txType TransactionType, description string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, &InvalidTransactionError{Reason: "amount must be positive"}
	}

	switch txType {
	case TypeDeposit:
		if from != nil {
			return nil, &InvalidTransactionError{Reason: "deposit must not have a source account"}
		}
		if to == nil {
			return nil, &InvalidTransactionError{Reason: "deposit must have a destination account"}
		}
	case TypeWithdrawal:
		if from == nil {
			return nil, &InvalidTransactionError{Reason: "withdrawal must have a source account"}
		}
		if to != nil {
			return nil, &InvalidTransactionError{Reason: "withdrawal must not have a destination account"}
		}
	case TypeTransfer:
		if from == nil || to == nil {
			return nil, &InvalidTransactionError{Reason: "transfer must have both source and destination accounts"}
		}
		if *from == *to {
			return nil, &InvalidTransactionError{Reason: "transfer source and destination must differ"}
		}
	default:
		return nil, &InvalidTransactionError{Reason: "unknown transaction type " + string(txType)}
	}

	return &Transaction{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Type:          txType,
		Description:   description,
	}, nil
}
