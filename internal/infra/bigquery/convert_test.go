package bigquery

import (
	"errors"
	"math/big"
	"testing"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestTransactionFromRow(t *testing.T) {
	tests := []struct {
		name    string
		row     TransactionRow
		want    domain.Transaction
		wantErr error
	}{
		{
			name: "lower-case direction is coerced",
			row: TransactionRow{
				TransactionID:   "t1",
				UserID:          "u1",
				AccountID:       "a1",
				Amount:          big.NewRat(30050, 100),
				Direction:       " expense ",
				CategoryName:    "Food",
				Description:     "Dinner",
				TransactionDate: "2024-02-10",
			},
			want: domain.Transaction{
				ID:          "t1",
				UserID:      "u1",
				AccountID:   "a1",
				Amount:      decimal.RequireFromString("300.5"),
				Category:    "Food",
				Description: "Dinner",
				Date:        "2024-02-10",
				Type:        domain.TransactionExpense,
			},
		},
		{
			name:    "unknown direction",
			row:     TransactionRow{TransactionID: "t2", Direction: "TRANSFER", Amount: big.NewRat(1, 1)},
			wantErr: domain.ErrInvalidType,
		},
		{
			name:    "negative amount",
			row:     TransactionRow{TransactionID: "t3", Direction: "INCOME", Amount: big.NewRat(-1, 1)},
			wantErr: domain.ErrNegativeAmount,
		},
		{
			name:    "missing id",
			row:     TransactionRow{Direction: "INCOME", Amount: big.NewRat(1, 1)},
			wantErr: domain.ErrMissingID,
		},
		{
			name: "null amount reads as zero",
			row:  TransactionRow{TransactionID: "t4", Direction: "Income"},
			want: domain.Transaction{ID: "t4", Amount: decimal.Zero, Type: domain.TransactionIncome},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transactionFromRow(&tt.row)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("transactionFromRow() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("transactionFromRow() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, decimalComparer); diff != "" {
				t.Errorf("transactionFromRow() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransactionToRowKeepsFreeTextDate(t *testing.T) {
	tx := domain.Transaction{
		ID:     "t1",
		Amount: decimal.RequireFromString("12.34"),
		Date:   "sometime in march",
		Type:   domain.TransactionIncome,
	}

	row := transactionToRow("u9", tx)
	if row.UserID != "u9" || row.TransactionDate != "sometime in march" || row.Direction != "INCOME" {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.Amount.Cmp(big.NewRat(1234, 100)) != 0 {
		t.Errorf("Amount = %s, want 12.34", row.Amount.FloatString(2))
	}

	back, err := transactionFromRow(row)
	if err != nil {
		t.Fatalf("transactionFromRow: %v", err)
	}
	if !back.Amount.Equal(tx.Amount) || back.Date != tx.Date {
		t.Errorf("conversion lost data: %+v", back)
	}
}

func TestRatFromDecimalFitsNumericScale(t *testing.T) {
	tests := []struct {
		in   string
		want *big.Rat
	}{
		{in: "12.34", want: big.NewRat(1234, 100)},
		{in: "0.123456789", want: big.NewRat(123456789, 1000000000)},
		{in: "0.1234567894", want: big.NewRat(123456789, 1000000000)},
		{in: "0.1234567895", want: big.NewRat(12345679, 100000000)},
		{in: "-1.0000000005", want: big.NewRat(-1000000001, 1000000000)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ratFromDecimal(decimal.RequireFromString(tt.in))
			if got.Cmp(tt.want) != 0 {
				t.Errorf("ratFromDecimal(%s) = %s, want %s", tt.in, got.FloatString(10), tt.want.FloatString(10))
			}
		})
	}
}

func TestAccountRowConversion(t *testing.T) {
	a := domain.Account{ID: "a1", Name: "Card", Type: "credit", Balance: decimal.RequireFromString("-250.75"), Color: "bg-rose-500"}

	row := accountToRow("u1", a)
	got, err := accountFromRow(row)
	if err != nil {
		t.Fatalf("accountFromRow: %v", err)
	}

	a.UserID = "u1"
	if diff := cmp.Diff(a, got, decimalComparer); diff != "" {
		t.Errorf("account mismatch (-want +got):\n%s", diff)
	}

	if _, err := accountFromRow(&AccountRow{AccountName: "no id"}); !errors.Is(err, domain.ErrMissingID) {
		t.Errorf("row without id: got %v", err)
	}
}

func TestDatasetTable(t *testing.T) {
	ds := Dataset{ProjectID: "proj", DatasetID: "finance"}
	if got := ds.table(accountsTable); got != "`proj.finance.accounts`" {
		t.Errorf("table() = %s", got)
	}
}
