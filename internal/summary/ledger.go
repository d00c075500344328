package summary

import (
	"sort"

	"github.com/dvloznov/wealthsense/internal/domain"
)

// Entry is a transaction annotated for display.
type Entry struct {
	domain.Transaction
	AccountName  string `json:"account_name"`
	CategoryIcon string `json:"category_icon,omitempty"`
}

// Ledger pairs every transaction with its account label and category icon.
// Unknown accounts resolve to domain.UnknownAccountLabel and unknown
// categories to no icon.
func Ledger(accounts []domain.Account, txs []domain.Transaction) []Entry {
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		if _, dup := names[a.ID]; !dup {
			names[a.ID] = a.Name
		}
	}

	entries := make([]Entry, 0, len(txs))
	for _, tx := range txs {
		name, ok := names[tx.AccountID]
		if !ok {
			name = domain.UnknownAccountLabel
		}
		entries = append(entries, Entry{
			Transaction:  tx,
			AccountName:  name,
			CategoryIcon: domain.CategoryIcon(tx.Category),
		})
	}
	return entries
}

// Recent returns up to n transactions, newest date first. Equal dates keep
// their input order and unparseable dates sort last.
func Recent(txs []domain.Transaction, n int) []domain.Transaction {
	if n <= 0 {
		return []domain.Transaction{}
	}

	sorted := make([]domain.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, okI := sorted[i].ParsedDate()
		dj, okJ := sorted[j].ParsedDate()
		switch {
		case okI && okJ:
			return di.After(dj)
		case okI:
			return true
		default:
			return false
		}
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
