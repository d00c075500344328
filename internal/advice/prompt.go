package advice

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/summary"
)

// RecentSampleSize is how many recent transactions are shown to the model.
const RecentSampleSize = 10

// BuildPrompt assembles the advisor prompt from the aggregated figures and a
// sample of the most recent transactions.
func BuildPrompt(accounts []domain.Account, txs []domain.Transaction) (string, error) {
	report := summary.Build(accounts, txs, summary.Range{})

	recent, err := json.MarshalIndent(summary.Recent(txs, RecentSampleSize), "", "  ")
	if err != nil {
		return "", fmt.Errorf("BuildPrompt: marshal recent transactions: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a professional personal-finance advisor.\n")
	b.WriteString("Give concise, constructive advice based on the user's data below.\n\n")

	fmt.Fprintf(&b, "Total balance: %s\n", report.TotalBalance.StringFixed(2))
	fmt.Fprintf(&b, "Income: %s\n", report.Income.StringFixed(2))
	fmt.Fprintf(&b, "Expense: %s\n\n", report.Expense.StringFixed(2))

	b.WriteString("Expense by category:\n")
	if len(report.Categories) == 0 {
		b.WriteString("  (no expenses)\n")
	}
	for _, c := range report.Categories {
		label := c.Category
		if label == "" {
			label = "(uncategorized)"
		}
		fmt.Fprintf(&b, "  - %s: %s\n", label, c.Amount.StringFixed(2))
	}

	fmt.Fprintf(&b, "\nMost recent %d transactions (JSON):\n", RecentSampleSize)
	b.Write(recent)
	b.WriteString("\n\n")

	b.WriteString("Please cover:\n")
	b.WriteString("1. Is the spending structure healthy?\n")
	b.WriteString("2. Are any categories overspent?\n")
	b.WriteString("3. One concrete action plan.\n\n")
	b.WriteString("Answer in Markdown.\n")

	return b.String(), nil
}
