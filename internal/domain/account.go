package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownAccountLabel is displayed for transactions whose account id does not
// resolve to a loaded account.
const UnknownAccountLabel = "Unknown account"

// AccountColors is the display palette handed out to new accounts.
var AccountColors = []string{
	"bg-blue-500",
	"bg-emerald-500",
	"bg-violet-500",
	"bg-orange-500",
	"bg-rose-500",
	"bg-slate-700",
}

// Account is a named store of value. Balance is signed and unit-less.
type Account struct {
	ID      string          `json:"id"`
	UserID  string          `json:"user_id,omitempty"`
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
	Color   string          `json:"color"`
}

// Validate checks the invariants an account must hold before it is stored.
func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// ValidateLoaded checks an account read back from storage. Only the ID is
// required; names written by older clients may be empty.
func (a Account) ValidateLoaded() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrMissingID
	}
	return nil
}

// NextAccountColor picks the palette entry for the n-th account (0-based).
func NextAccountColor(n int) string {
	if n < 0 {
		n = -n
	}
	return AccountColors[n%len(AccountColors)]
}

// FindAccount returns the account with the given id.
func FindAccount(accounts []Account, id string) (Account, bool) {
	for _, a := range accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// AccountLabel resolves an account id to its display name, falling back to
// UnknownAccountLabel.
func AccountLabel(accounts []Account, id string) string {
	if a, ok := FindAccount(accounts, id); ok {
		return a.Name
	}
	return UnknownAccountLabel
}
