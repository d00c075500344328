package summary

import (
	"cloud.google.com/go/civil"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/shopspring/decimal"
)

// DayBucket holds the income and expense recorded on one calendar day.
type DayBucket struct {
	Date    civil.Date      `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// DailySeries buckets transactions by date for the days consecutive calendar
// days ending at end (inclusive), oldest first. Transactions with an
// unparseable date or outside the window are ignored.
func DailySeries(txs []domain.Transaction, end civil.Date, days int) []DayBucket {
	if days <= 0 {
		return []DayBucket{}
	}

	start := end.AddDays(-(days - 1))
	buckets := make([]DayBucket, days)
	for i := range buckets {
		buckets[i] = DayBucket{Date: start.AddDays(i), Income: decimal.Zero, Expense: decimal.Zero}
	}

	for _, tx := range txs {
		d, ok := tx.ParsedDate()
		if !ok || d.Before(start) || d.After(end) {
			continue
		}
		i := d.DaysSince(start)
		switch tx.Type {
		case domain.TransactionIncome:
			buckets[i].Income = buckets[i].Income.Add(tx.Amount)
		case domain.TransactionExpense:
			buckets[i].Expense = buckets[i].Expense.Add(tx.Amount)
		}
	}

	return buckets
}
