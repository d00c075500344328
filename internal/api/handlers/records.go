package handlers

import (
	"net/http"

	"github.com/dvloznov/wealthsense/internal/api/middleware"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountsHandler handles account endpoints of the current session.
type AccountsHandler struct{}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler() *AccountsHandler {
	return &AccountsHandler{}
}

type accountRequest struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
	Color   string          `json:"color"`
}

func (req accountRequest) account(id string) domain.Account {
	return domain.Account{ID: id, Name: req.Name, Type: req.Type, Balance: req.Balance, Color: req.Color}
}

// ListAccounts handles GET /api/accounts
func (h *AccountsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}
	accounts := s.Controller.Snapshot().Accounts
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// CreateAccount handles POST /api/accounts
func (h *AccountsHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}

	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := s.Controller.AddAccount(r.Context(), req.account(""))
	if err != nil {
		writeErr(w, r, "Failed to create account", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// UpdateAccount handles PUT /api/accounts/{id}
func (h *AccountsHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}

	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account := req.account(r.PathValue("id"))
	if err := s.Controller.UpdateAccount(r.Context(), account); err != nil {
		writeErr(w, r, "Failed to update account", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, account)
}

// DeleteAccount handles DELETE /api/accounts/{id}
func (h *AccountsHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}
	if err := s.Controller.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeErr(w, r, "Failed to delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransactionsHandler handles transaction endpoints of the current session.
type TransactionsHandler struct{}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler() *TransactionsHandler {
	return &TransactionsHandler{}
}

type transactionRequest struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Type        string          `json:"type"`
}

func (req transactionRequest) transaction(id string) (domain.Transaction, error) {
	typ, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		ID:          id,
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
		Type:        typ,
	}, nil
}

// ListTransactions handles GET /api/transactions. Entries carry the
// resolved account label and category icon.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}
	entries := s.Controller.Ledger()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": entries,
		"count":        len(entries),
	})
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := req.transaction("")
	if err != nil {
		writeErr(w, r, "Invalid transaction", err)
		return
	}

	created, err := s.Controller.AddTransaction(r.Context(), tx)
	if err != nil {
		writeErr(w, r, "Failed to create transaction", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := req.transaction(r.PathValue("id"))
	if err != nil {
		writeErr(w, r, "Invalid transaction", err)
		return
	}

	if err := s.Controller.UpdateTransaction(r.Context(), tx); err != nil {
		writeErr(w, r, "Failed to update transaction", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}
	if err := s.Controller.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeErr(w, r, "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
