package summary

import (
	"testing"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/shopspring/decimal"
)

func TestLedgerResolvesLabels(t *testing.T) {
	accounts := domain.DemoAccounts()
	txs := []domain.Transaction{
		{ID: "t1", AccountID: "acc1", Category: "Food", Type: domain.TransactionExpense, Amount: decimal.NewFromInt(1)},
		{ID: "t2", AccountID: "gone", Category: "Groceries", Type: domain.TransactionExpense, Amount: decimal.NewFromInt(2)},
	}

	entries := Ledger(accounts, txs)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].AccountName != "Everyday Checking" || entries[0].CategoryIcon != "utensils" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].AccountName != domain.UnknownAccountLabel {
		t.Errorf("unknown account should use placeholder, got %q", entries[1].AccountName)
	}
	if entries[1].CategoryIcon != "" {
		t.Errorf("unknown category should have no icon, got %q", entries[1].CategoryIcon)
	}
	if entries[1].ID != "t2" {
		t.Errorf("entry must carry the transaction, got %+v", entries[1])
	}
}

func TestRecent(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "old", Date: "2024-01-01"},
		{ID: "bad", Date: "???"},
		{ID: "new", Date: "2024-03-01"},
		{ID: "mid-a", Date: "2024-02-01"},
		{ID: "mid-b", Date: "2024-02-01"},
	}

	got := Recent(txs, 4)
	wantIDs := []string{"new", "mid-a", "mid-b", "old"}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d, got %d", len(wantIDs), len(got))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("Recent()[%d] = %s, want %s", i, got[i].ID, id)
		}
	}

	if txs[0].ID != "old" {
		t.Error("Recent must not reorder its input")
	}
	if n := len(Recent(txs, 100)); n != len(txs) {
		t.Errorf("Recent with large n returned %d", n)
	}
}
