package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
)

// UserRow represents a registered user in BigQuery.
type UserRow struct {
	UserID       string    `bigquery:"user_id"`       // REQUIRED
	Email        string    `bigquery:"email"`         // REQUIRED, normalized
	PasswordHash string    `bigquery:"password_hash"` // REQUIRED, bcrypt
	CreatedTS    time.Time `bigquery:"created_ts"`    // REQUIRED
}

// AccountRow represents an account record in BigQuery.
type AccountRow struct {
	AccountID   string   `bigquery:"account_id"`   // REQUIRED
	UserID      string   `bigquery:"user_id"`      // REQUIRED
	AccountName string   `bigquery:"account_name"` // NULLABLE
	AccountType string   `bigquery:"account_type"` // NULLABLE
	Balance     *big.Rat `bigquery:"balance"`      // NUMERIC, NULLABLE
	Color       string   `bigquery:"color"`        // NULLABLE

	CreatedTS bigquery.NullTimestamp `bigquery:"created_ts"` // default CURRENT_TIMESTAMP()
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"`
}

// TransactionRow represents a transaction record in BigQuery.
// TransactionDate is kept as free text: clients may write any date format.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	UserID    string `bigquery:"user_id"`    // REQUIRED
	AccountID string `bigquery:"account_id"` // NULLABLE, not enforced

	Amount    *big.Rat `bigquery:"amount"`    // NUMERIC, REQUIRED
	Direction string   `bigquery:"direction"` // INCOME | EXPENSE

	CategoryName    string `bigquery:"category_name"`    // NULLABLE
	Description     string `bigquery:"description"`      // NULLABLE
	TransactionDate string `bigquery:"transaction_date"` // STRING, NULLABLE

	CreatedTS bigquery.NullTimestamp `bigquery:"created_ts"`
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"`
}
