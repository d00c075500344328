package bigquery

import (
	"fmt"
	"math/big"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/shopspring/decimal"
)

// numericScale is the number of fractional digits of the BigQuery NUMERIC type.
const numericScale = 9

// ratFromDecimal converts d for a NUMERIC column, rounding half away from
// zero to numericScale fractional digits.
func ratFromDecimal(d decimal.Decimal) *big.Rat {
	return d.Round(numericScale).Rat()
}

func decimalFromRat(r *big.Rat) (decimal.Decimal, error) {
	if r == nil {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(r.FloatString(numericScale))
	if err != nil {
		return decimal.Zero, fmt.Errorf("decimalFromRat: %w", err)
	}
	return d, nil
}

func accountToRow(userID string, a domain.Account) *AccountRow {
	return &AccountRow{
		AccountID:   a.ID,
		UserID:      userID,
		AccountName: a.Name,
		AccountType: a.Type,
		Balance:     ratFromDecimal(a.Balance),
		Color:       a.Color,
	}
}

// accountFromRow decodes and validates a stored account.
func accountFromRow(row *AccountRow) (domain.Account, error) {
	balance, err := decimalFromRat(row.Balance)
	if err != nil {
		return domain.Account{}, err
	}
	a := domain.Account{
		ID:      row.AccountID,
		UserID:  row.UserID,
		Name:    row.AccountName,
		Type:    row.AccountType,
		Balance: balance,
		Color:   row.Color,
	}
	if err := a.ValidateLoaded(); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

func transactionToRow(userID string, tx domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID:   tx.ID,
		UserID:          userID,
		AccountID:       tx.AccountID,
		Amount:          ratFromDecimal(tx.Amount),
		Direction:       string(tx.Type),
		CategoryName:    tx.Category,
		Description:     tx.Description,
		TransactionDate: tx.Date,
	}
}

// transactionFromRow decodes a stored transaction, coercing the direction
// tag case-insensitively, and validates it.
func transactionFromRow(row *TransactionRow) (domain.Transaction, error) {
	typ, err := domain.ParseTransactionType(row.Direction)
	if err != nil {
		return domain.Transaction{}, err
	}
	amount, err := decimalFromRat(row.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx := domain.Transaction{
		ID:          row.TransactionID,
		UserID:      row.UserID,
		AccountID:   row.AccountID,
		Amount:      amount,
		Category:    row.CategoryName,
		Description: row.Description,
		Date:        row.TransactionDate,
		Type:        typ,
	}
	if err := tx.ValidateLoaded(); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}
