// Package bigquery implements store.Store and store.UserDirectory on top of a
// BigQuery dataset holding users, accounts and transactions tables.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/store"
)

// Repository is the BigQuery implementation of store.Store and
// store.UserDirectory. It holds a shared client so every call reuses one
// connection.
type Repository struct {
	client *bigquery.Client
	ds     Dataset
}

// NewRepository creates a Repository for the given project and dataset.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	if projectID == "" || datasetID == "" {
		return nil, fmt.Errorf("NewRepository: project and dataset are required")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{
		client: client,
		ds:     Dataset{ProjectID: projectID, DatasetID: datasetID},
	}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ListAccounts delegates to ListAccountsWithClient with the shared client.
func (r *Repository) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	return ListAccountsWithClient(ctx, r.client, r.ds, userID)
}

// ListTransactions delegates to ListTransactionsWithClient with the shared client.
func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return ListTransactionsWithClient(ctx, r.client, r.ds, userID)
}

// CreateAccount delegates to InsertAccountWithClient with the shared client.
func (r *Repository) CreateAccount(ctx context.Context, userID string, account domain.Account) (domain.Account, error) {
	return InsertAccountWithClient(ctx, r.client, r.ds, userID, account)
}

// CreateTransaction delegates to InsertTransactionWithClient with the shared client.
func (r *Repository) CreateTransaction(ctx context.Context, userID string, tx domain.Transaction) (domain.Transaction, error) {
	return InsertTransactionWithClient(ctx, r.client, r.ds, userID, tx)
}

// UpdateAccount delegates to UpdateAccountWithClient with the shared client.
func (r *Repository) UpdateAccount(ctx context.Context, userID string, account domain.Account) error {
	return UpdateAccountWithClient(ctx, r.client, r.ds, userID, account)
}

// UpdateTransaction delegates to UpdateTransactionWithClient with the shared client.
func (r *Repository) UpdateTransaction(ctx context.Context, userID string, tx domain.Transaction) error {
	return UpdateTransactionWithClient(ctx, r.client, r.ds, userID, tx)
}

// DeleteAccount delegates to DeleteAccountWithClient with the shared client.
func (r *Repository) DeleteAccount(ctx context.Context, userID, accountID string) error {
	return DeleteAccountWithClient(ctx, r.client, r.ds, userID, accountID)
}

// DeleteTransaction delegates to DeleteTransactionWithClient with the shared client.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	return DeleteTransactionWithClient(ctx, r.client, r.ds, userID, transactionID)
}

// CreateUser delegates to InsertUserWithClient with the shared client.
func (r *Repository) CreateUser(ctx context.Context, user store.UserRecord) (store.UserRecord, error) {
	return InsertUserWithClient(ctx, r.client, r.ds, user)
}

// FindUserByEmail delegates to FindUserByEmailWithClient with the shared client.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	return FindUserByEmailWithClient(ctx, r.client, r.ds, email)
}

var (
	_ store.Store         = (*Repository)(nil)
	_ store.UserDirectory = (*Repository)(nil)
)
