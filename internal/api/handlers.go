/**
 * @description
 * This file contains the HTTP handlers for the ledger API. Handlers parse
 * incoming requests (amounts arrive as decimal strings), call the ledger
 * service, map the typed failure kinds to HTTP statuses and write JSON
 * responses. After every successful mutation the dashboard broadcaster is
 * asked to push a fresh snapshot.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: Service logic, models and
 *   typed errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/coreledger/ledger-service/internal/app"
	"github.com/coreledger/ledger-service/internal/domain"
	"github.com/coreledger/ledger-service/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// LedgerHandlers holds the application service and broadcaster the handlers
// use.
type LedgerHandlers struct {
	service     *app.Service
	broadcaster *DashboardBroadcaster
	recentLimit int
}

// NewLedgerHandlers creates a new instance of LedgerHandlers. broadcaster may
// be nil (CLI-style embedding without a push channel).
func NewLedgerHandlers(service *app.Service, broadcaster *DashboardBroadcaster, recentLimit int) *LedgerHandlers {
	return &LedgerHandlers{service: service, broadcaster: broadcaster, recentLimit: recentLimit}
}

type createAccountRequest struct {
	Name           string `json:"name"`
	InitialBalance string `json:"initial_balance"`
}

type amountRequest struct {
	AccountID   string `json:"account_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type transferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}

type balanceResponse struct {
	AccountID string       `json:"account_id"`
	Balance   domain.Money `json:"balance"`
}

type transferResponse struct {
	FromAccountID string       `json:"from_account_id"`
	ToAccountID   string       `json:"to_account_id"`
	FromBalance   domain.Money `json:"from_balance"`
	ToBalance     domain.Money `json:"to_balance"`
}

// DashboardHandler returns the full dashboard snapshot.
func (h *LedgerHandlers) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.DashboardSnapshot(r.Context(), h.recentLimit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

// ListAccountsHandler returns all accounts ordered by name.
func (h *LedgerHandlers) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

// CreateAccountHandler creates a new account, optionally with an opening
// balance.
func (h *LedgerHandlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	initial := domain.ZeroMoney()
	if req.InitialBalance != "" {
		parsed, err := domain.ParseMoney(req.InitialBalance)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		initial = parsed
	}

	account, err := h.service.CreateAccount(r.Context(), req.Name, initial)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.notifyDashboard()
	h.writeJSON(w, http.StatusCreated, account)
}

// GetAccountHandler returns a single account by id.
func (h *LedgerHandlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathAccountID(w, r)
	if !ok {
		return
	}
	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// GetBalanceHandler returns the current balance of an account.
func (h *LedgerHandlers) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathAccountID(w, r)
	if !ok {
		return
	}
	balance, err := h.service.GetBalance(r.Context(), accountID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balanceResponse{AccountID: accountID.String(), Balance: balance})
}

// AccountTransactionsHandler returns an account's history, newest first.
func (h *LedgerHandlers) AccountTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathAccountID(w, r)
	if !ok {
		return
	}
	transactions, err := h.service.GetAccountTransactions(r.Context(), accountID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	h.writeJSON(w, http.StatusOK, transactions)
}

// DeleteAccountHandler removes a zero-balance account.
func (h *LedgerHandlers) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathAccountID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(r.Context(), accountID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.notifyDashboard()
	w.WriteHeader(http.StatusNoContent)
}

// DepositHandler applies a deposit to an account.
func (h *LedgerHandlers) DepositHandler(w http.ResponseWriter, r *http.Request) {
	accountID, amount, req, ok := h.parseAmountRequest(w, r)
	if !ok {
		return
	}
	balance, err := h.service.Deposit(r.Context(), accountID, amount, req.Description)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.notifyDashboard()
	h.writeJSON(w, http.StatusOK, balanceResponse{AccountID: accountID.String(), Balance: balance})
}

// WithdrawalHandler applies a withdrawal to an account.
func (h *LedgerHandlers) WithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	accountID, amount, req, ok := h.parseAmountRequest(w, r)
	if !ok {
		return
	}
	balance, err := h.service.Withdraw(r.Context(), accountID, amount, req.Description)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.notifyDashboard()
	h.writeJSON(w, http.StatusOK, balanceResponse{AccountID: accountID.String(), Balance: balance})
}

// TransferHandler moves money between two accounts.
func (h *LedgerHandlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fromID, err := uuid.Parse(req.FromAccountID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid from_account_id")
		return
	}
	toID, err := uuid.Parse(req.ToAccountID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid to_account_id")
		return
	}
	amount, err := domain.ParseMoney(req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	fromBalance, toBalance, err := h.service.Transfer(r.Context(), fromID, toID, amount, req.Description)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.notifyDashboard()
	h.writeJSON(w, http.StatusOK, transferResponse{
		FromAccountID: fromID.String(),
		ToAccountID:   toID.String(),
		FromBalance:   fromBalance,
		ToBalance:     toBalance,
	})
}

func (h *LedgerHandlers) parseAmountRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, domain.Money, amountRequest, bool) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return uuid.Nil, domain.Money{}, req, false
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid account_id")
		return uuid.Nil, domain.Money{}, req, false
	}
	amount, err := domain.ParseMoney(req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return uuid.Nil, domain.Money{}, req, false
	}
	return accountID, amount, req, true
}

func (h *LedgerHandlers) pathAccountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid account id")
		return uuid.Nil, false
	}
	return accountID, true
}

func (h *LedgerHandlers) notifyDashboard() {
	if h.broadcaster != nil {
		h.broadcaster.Broadcast()
	}
}

// writeDomainError maps the ledger's failure kinds onto HTTP statuses. The
// mapping is exhaustive over the taxonomy; anything unclassified is a storage
// failure and becomes a 500.
func (h *LedgerHandlers) writeDomainError(w http.ResponseWriter, err error) {
	var invalidTxn *domain.InvalidTransactionError
	switch {
	case errors.Is(err, domain.ErrInvalidAmountFormat),
		errors.Is(err, domain.ErrEmptyAccountName),
		errors.Is(err, domain.ErrNegativeBalance),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount),
		errors.As(err, &invalidTxn):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrAccountNotFound),
		errors.Is(err, store.ErrTransactionNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateName):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, store.ErrNonZeroBalance):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("level=error component=api msg=\"request failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *LedgerHandlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("level=error component=api msg=\"response encoding failed\" err=%v", err)
	}
}

func (h *LedgerHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
