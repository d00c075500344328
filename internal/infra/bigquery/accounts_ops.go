package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/dvloznov/wealthsense/internal/store"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// ListAccountsWithClient retrieves every account of userID. Rows that fail
// validation are skipped with a warning.
func ListAccountsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string) ([]domain.Account, error) {
	log := logger.FromContext(ctx)

	q := client.Query(fmt.Sprintf(`
		SELECT
			account_id,
			user_id,
			account_name,
			account_type,
			balance,
			color,
			created_ts,
			updated_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts, account_id
	`, ds.table(accountsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccountsWithClient: reading query: %w", err)
	}

	accounts := []domain.Account{}
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccountsWithClient: iterating: %w", err)
		}

		a, err := accountFromRow(&row)
		if err != nil {
			log.Warn().Err(err).Str("account_id", row.AccountID).Msg("Skipping invalid account row")
			continue
		}
		accounts = append(accounts, a)
	}

	return accounts, nil
}

// InsertAccountWithClient stores a new account, generating its ID when empty.
func InsertAccountWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string, account domain.Account) (domain.Account, error) {
	if err := account.Validate(); err != nil {
		return domain.Account{}, fmt.Errorf("InsertAccountWithClient: %w", err)
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.UserID = userID
	row := accountToRow(userID, account)

	q := client.Query(fmt.Sprintf(`
		INSERT INTO %s (
			account_id, user_id, account_name, account_type,
			balance, color, created_ts
		)
		VALUES (
			@account_id, @user_id, @account_name, @account_type,
			@balance, @color, @created_ts
		)
	`, ds.table(accountsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: row.AccountID},
		{Name: "user_id", Value: row.UserID},
		{Name: "account_name", Value: row.AccountName},
		{Name: "account_type", Value: row.AccountType},
		{Name: "balance", Value: row.Balance},
		{Name: "color", Value: row.Color},
		{Name: "created_ts", Value: time.Now()},
	}

	if _, err := runDML(ctx, q); err != nil {
		return domain.Account{}, fmt.Errorf("InsertAccountWithClient: %w", err)
	}
	return account, nil
}

// UpdateAccountWithClient replaces every field of an account owned by userID.
func UpdateAccountWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string, account domain.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("UpdateAccountWithClient: %w", err)
	}
	row := accountToRow(userID, account)

	q := client.Query(fmt.Sprintf(`
		UPDATE %s
		SET account_name = @account_name,
			account_type = @account_type,
			balance = @balance,
			color = @color,
			updated_ts = @updated_ts
		WHERE account_id = @account_id
		  AND user_id = @user_id
	`, ds.table(accountsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: row.AccountID},
		{Name: "user_id", Value: row.UserID},
		{Name: "account_name", Value: row.AccountName},
		{Name: "account_type", Value: row.AccountType},
		{Name: "balance", Value: row.Balance},
		{Name: "color", Value: row.Color},
		{Name: "updated_ts", Value: time.Now()},
	}

	n, err := runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("UpdateAccountWithClient: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("UpdateAccountWithClient: account %s: %w", account.ID, store.ErrNotFound)
	}
	return nil
}

// DeleteAccountWithClient removes an account owned by userID. Transactions
// that reference it are left untouched.
func DeleteAccountWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID, accountID string) error {
	q := client.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE account_id = @account_id
		  AND user_id = @user_id
	`, ds.table(accountsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
		{Name: "user_id", Value: userID},
	}

	n, err := runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("DeleteAccountWithClient: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("DeleteAccountWithClient: account %s: %w", accountID, store.ErrNotFound)
	}
	return nil
}
