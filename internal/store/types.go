// Package store defines the persistence contract for user-owned accounts and
// transactions, and for the user directory behind sign-in.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/wealthsense/internal/domain"
)

var (
	// ErrNotFound is returned when a record does not exist or is owned by
	// another user.
	ErrNotFound = errors.New("record not found")

	// ErrUserExists is returned by CreateUser when the email is already taken.
	ErrUserExists = errors.New("user already exists")
)

// Store provides per-user persistence for accounts and transactions.
// Every call is a single request: there is no retry, no pagination and no
// atomicity across calls.
type Store interface {
	// ListAccounts returns every account owned by userID.
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)

	// ListTransactions returns every transaction owned by userID.
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)

	// CreateAccount stores a new account for userID. An empty ID is replaced
	// with a generated one. The stored record is returned.
	CreateAccount(ctx context.Context, userID string, account domain.Account) (domain.Account, error)

	// CreateTransaction stores a new transaction for userID. An empty ID is
	// replaced with a generated one. The stored record is returned.
	CreateTransaction(ctx context.Context, userID string, tx domain.Transaction) (domain.Transaction, error)

	// UpdateAccount replaces the account with the same ID.
	UpdateAccount(ctx context.Context, userID string, account domain.Account) error

	// UpdateTransaction replaces the transaction with the same ID.
	UpdateTransaction(ctx context.Context, userID string, tx domain.Transaction) error

	// DeleteAccount removes an account. Transactions pointing at it are kept.
	DeleteAccount(ctx context.Context, userID, accountID string) error

	// DeleteTransaction removes a transaction.
	DeleteTransaction(ctx context.Context, userID, transactionID string) error

	// Close releases the underlying connection.
	Close() error
}

// UserRecord is a registered user with its bcrypt password hash.
type UserRecord struct {
	UID          string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile strips the credentials from the record.
func (u UserRecord) Profile() domain.UserProfile {
	return domain.UserProfile{UID: u.UID, Email: u.Email}
}

// UserDirectory stores registered users. Emails are compared after
// domain.NormalizeEmail.
type UserDirectory interface {
	// CreateUser stores a new user, assigning a UID when empty.
	CreateUser(ctx context.Context, user UserRecord) (UserRecord, error)

	// FindUserByEmail returns ErrNotFound when no user has that email.
	FindUserByEmail(ctx context.Context, email string) (UserRecord, error)
}
