// Package summary derives the dashboard figures from accounts and
// transactions. Every function is pure: inputs are only read, never mutated,
// and nothing here performs I/O.
package summary

import (
	"cloud.google.com/go/civil"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Range scopes income, expense and category figures to an inclusive date
// window. The zero Range applies no filter at all, which matches how the
// dashboard has always computed its "monthly" figures: over everything loaded.
// Either bound may be left zero to keep that side open.
type Range struct {
	From civil.Date
	To   civil.Date
}

// IsZero reports whether the range applies no filter.
func (r Range) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether tx falls inside the range. With a non-zero range,
// transactions whose date cannot be parsed are excluded.
func (r Range) Contains(tx domain.Transaction) bool {
	if r.IsZero() {
		return true
	}
	d, ok := tx.ParsedDate()
	if !ok {
		return false
	}
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// CategoryAmount is one row of the expense breakdown.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// AccountShare is an account's portion of the total balance, in percent.
type AccountShare struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Percent   decimal.Decimal `json:"percent"`
}

// Report bundles every figure the dashboard shows.
type Report struct {
	Range            Range            `json:"range"`
	TotalBalance     decimal.Decimal  `json:"total_balance"`
	Income           decimal.Decimal  `json:"income"`
	Expense          decimal.Decimal  `json:"expense"`
	NetFlow          decimal.Decimal  `json:"net_flow"`
	Categories       []CategoryAmount `json:"categories"`
	Shares           []AccountShare   `json:"shares"`
	TransactionCount int              `json:"transaction_count"`
}

// TotalBalance sums the balance of every account. No currency conversion is
// applied; an empty slice yields zero.
func TotalBalance(accounts []domain.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// Income sums the amounts of INCOME transactions inside r.
func Income(txs []domain.Transaction, r Range) decimal.Decimal {
	return sumByType(txs, r, domain.TransactionIncome)
}

// Expense sums the amounts of EXPENSE transactions inside r.
func Expense(txs []domain.Transaction, r Range) decimal.Decimal {
	return sumByType(txs, r, domain.TransactionExpense)
}

func sumByType(txs []domain.Transaction, r Range, typ domain.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == typ && r.Contains(tx) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// CategoryBreakdown groups EXPENSE transactions inside r by category label and
// sums each group. Rows come out in order of each label's first appearance,
// since callers assign chart colors by position.
func CategoryBreakdown(txs []domain.Transaction, r Range) []CategoryAmount {
	index := make(map[string]int)
	rows := []CategoryAmount{}
	for _, tx := range txs {
		if !tx.IsExpense() || !r.Contains(tx) {
			continue
		}
		i, seen := index[tx.Category]
		if !seen {
			index[tx.Category] = len(rows)
			rows = append(rows, CategoryAmount{Category: tx.Category, Amount: tx.Amount})
			continue
		}
		rows[i].Amount = rows[i].Amount.Add(tx.Amount)
	}
	return rows
}

// AccountShares reports each account's balance as a percentage of the total
// balance, in account order. When the total is zero the ratio is undefined and
// every share is reported as zero.
func AccountShares(accounts []domain.Account) []AccountShare {
	total := TotalBalance(accounts)
	shares := make([]AccountShare, 0, len(accounts))
	for _, a := range accounts {
		pct := decimal.Zero
		if !total.IsZero() {
			pct = a.Balance.Div(total).Mul(hundred)
		}
		shares = append(shares, AccountShare{
			AccountID: a.ID,
			Name:      a.Name,
			Balance:   a.Balance,
			Percent:   pct,
		})
	}
	return shares
}

// Build computes the full dashboard report.
func Build(accounts []domain.Account, txs []domain.Transaction, r Range) Report {
	income := Income(txs, r)
	expense := Expense(txs, r)

	count := 0
	for _, tx := range txs {
		if r.Contains(tx) {
			count++
		}
	}

	return Report{
		Range:            r,
		TotalBalance:     TotalBalance(accounts),
		Income:           income,
		Expense:          expense,
		NetFlow:          income.Sub(expense),
		Categories:       CategoryBreakdown(txs, r),
		Shares:           AccountShares(accounts),
		TransactionCount: count,
	}
}
