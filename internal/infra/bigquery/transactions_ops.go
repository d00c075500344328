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

// ListTransactionsWithClient retrieves every transaction of userID. Rows with
// a missing ID, an unknown direction or a negative amount are skipped with a
// warning.
func ListTransactionsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string) ([]domain.Transaction, error) {
	log := logger.FromContext(ctx)

	q := client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			user_id,
			account_id,
			amount,
			direction,
			category_name,
			description,
			transaction_date,
			created_ts,
			updated_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts, transaction_id
	`, ds.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsWithClient: query read: %w", err)
	}

	txs := []domain.Transaction{}
	skipped := 0
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsWithClient: iter next: %w", err)
		}

		tx, err := transactionFromRow(&row)
		if err != nil {
			skipped++
			log.Warn().Err(err).Str("transaction_id", row.TransactionID).Msg("Skipping invalid transaction row")
			continue
		}
		txs = append(txs, tx)
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("loaded", len(txs)).Str("user_id", userID).Msg("Some transactions failed validation")
	}
	return txs, nil
}

// InsertTransactionWithClient stores a new transaction, generating its ID
// when empty.
func InsertTransactionWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string, tx domain.Transaction) (domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, fmt.Errorf("InsertTransactionWithClient: %w", err)
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.UserID = userID
	row := transactionToRow(userID, tx)

	q := client.Query(fmt.Sprintf(`
		INSERT INTO %s (
			transaction_id, user_id, account_id,
			amount, direction, category_name,
			description, transaction_date, created_ts
		)
		VALUES (
			@transaction_id, @user_id, @account_id,
			@amount, @direction, @category_name,
			@description, @transaction_date, @created_ts
		)
	`, ds.table(transactionsTable)))
	q.Parameters = transactionParams(row, "created_ts")

	if _, err := runDML(ctx, q); err != nil {
		return domain.Transaction{}, fmt.Errorf("InsertTransactionWithClient: %w", err)
	}
	return tx, nil
}

// UpdateTransactionWithClient replaces every field of a transaction owned by userID.
func UpdateTransactionWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string, tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("UpdateTransactionWithClient: %w", err)
	}
	row := transactionToRow(userID, tx)

	q := client.Query(fmt.Sprintf(`
		UPDATE %s
		SET account_id = @account_id,
			amount = @amount,
			direction = @direction,
			category_name = @category_name,
			description = @description,
			transaction_date = @transaction_date,
			updated_ts = @updated_ts
		WHERE transaction_id = @transaction_id
		  AND user_id = @user_id
	`, ds.table(transactionsTable)))
	q.Parameters = transactionParams(row, "updated_ts")

	n, err := runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("UpdateTransactionWithClient: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("UpdateTransactionWithClient: transaction %s: %w", tx.ID, store.ErrNotFound)
	}
	return nil
}

// DeleteTransactionWithClient removes a transaction owned by userID.
func DeleteTransactionWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID, transactionID string) error {
	q := client.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE transaction_id = @transaction_id
		  AND user_id = @user_id
	`, ds.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: transactionID},
		{Name: "user_id", Value: userID},
	}

	n, err := runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("DeleteTransactionWithClient: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("DeleteTransactionWithClient: transaction %s: %w", transactionID, store.ErrNotFound)
	}
	return nil
}

// transactionParams binds every column of row plus a timestamp parameter
// named tsParam.
func transactionParams(row *TransactionRow, tsParam string) []bigquery.QueryParameter {
	return []bigquery.QueryParameter{
		{Name: "transaction_id", Value: row.TransactionID},
		{Name: "user_id", Value: row.UserID},
		{Name: "account_id", Value: row.AccountID},
		{Name: "amount", Value: row.Amount},
		{Name: "direction", Value: row.Direction},
		{Name: "category_name", Value: row.CategoryName},
		{Name: "description", Value: row.Description},
		{Name: "transaction_date", Value: row.TransactionDate},
		{Name: tsParam, Value: time.Now()},
	}
}
