package domain

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TransactionType tags a transaction as money coming in or going out.
// The tag, not the sign of the amount, decides how it contributes to totals.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

var (
	ErrMissingID       = errors.New("missing id")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrEmptyName       = errors.New("empty account name")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
)

// ParseTransactionType accepts "income"/"expense" in any case, with
// surrounding whitespace, and returns the canonical tag.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case TransactionIncome:
		return TransactionIncome, nil
	case TransactionExpense:
		return TransactionExpense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// Transaction is a single dated monetary event owned by one user.
// AccountID is a weak reference: it is not required to resolve.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id,omitempty"`
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"` // free text, usually YYYY-MM-DD
	Type        TransactionType `json:"type"`
}

// ParsedDate returns the transaction date when it is a valid YYYY-MM-DD string.
func (t Transaction) ParsedDate() (civil.Date, bool) {
	d, err := civil.ParseDate(strings.TrimSpace(t.Date))
	if err != nil || !d.IsValid() {
		return civil.Date{}, false
	}
	return d, true
}

// IsIncome reports whether the transaction counts toward income.
func (t Transaction) IsIncome() bool { return t.Type == TransactionIncome }

// IsExpense reports whether the transaction counts toward expense.
func (t Transaction) IsExpense() bool { return t.Type == TransactionExpense }

// Validate checks the invariants a transaction must hold before it is stored.
// The date is not validated.
func (t Transaction) Validate() error {
	if t.Type != TransactionIncome && t.Type != TransactionExpense {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// ValidateLoaded checks a transaction read back from storage. Besides the
// Validate invariants it must carry an ID.
func (t Transaction) ValidateLoaded() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	return t.Validate()
}
