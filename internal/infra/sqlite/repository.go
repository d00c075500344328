// Package sqlite implements store.Store and store.UserDirectory on a local
// SQLite file. Decimals are stored as TEXT so amounts round-trip exactly.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/dvloznov/wealthsense/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

// Repository is the SQLite implementation of store.Store and store.UserDirectory.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the database at dbPath and runs
// pending migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("NewRepository: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewRepository: ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewRepository: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListAccounts implements store.Store. Invalid rows are skipped with a warning.
func (r *Repository) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, balance, color
		FROM accounts
		WHERE user_id = ?
		ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: query: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var (
			a       domain.Account
			balance string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &balance, &a.Color); err != nil {
			return nil, fmt.Errorf("ListAccounts: scan: %w", err)
		}
		a.Balance, err = decimal.NewFromString(balance)
		if err == nil {
			err = a.ValidateLoaded()
		}
		if err != nil {
			log.Warn().Err(err).Str("account_id", a.ID).Msg("Skipping invalid account row")
			continue
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAccounts: iterating: %w", err)
	}

	return accounts, nil
}

// ListTransactions implements store.Store. Invalid rows are skipped with a warning.
func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, account_id, amount, direction, category, description, txn_date
		FROM transactions
		WHERE user_id = ?
		ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		var (
			tx        domain.Transaction
			amount    string
			direction string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.AccountID, &amount, &direction, &tx.Category, &tx.Description, &tx.Date); err != nil {
			return nil, fmt.Errorf("ListTransactions: scan: %w", err)
		}
		if err := decodeTransaction(&tx, amount, direction); err != nil {
			log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Skipping invalid transaction row")
			continue
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTransactions: iterating: %w", err)
	}

	return txs, nil
}

func decodeTransaction(tx *domain.Transaction, amount, direction string) error {
	typ, err := domain.ParseTransactionType(direction)
	if err != nil {
		return err
	}
	tx.Type = typ
	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", amount, err)
	}
	return tx.ValidateLoaded()
}

// CreateAccount implements store.Store.
func (r *Repository) CreateAccount(ctx context.Context, userID string, account domain.Account) (domain.Account, error) {
	if err := account.Validate(); err != nil {
		return domain.Account{}, fmt.Errorf("CreateAccount: %w", err)
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.UserID = userID

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, id, name, type, balance, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, account.ID, account.Name, account.Type, account.Balance.String(), account.Color, time.Now().UTC())
	if err != nil {
		return domain.Account{}, fmt.Errorf("CreateAccount: insert: %w", err)
	}
	return account, nil
}

// CreateTransaction implements store.Store.
func (r *Repository) CreateTransaction(ctx context.Context, userID string, tx domain.Transaction) (domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: %w", err)
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.UserID = userID

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, id, account_id, amount, direction, category, description, txn_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, tx.ID, tx.AccountID, tx.Amount.String(), string(tx.Type), tx.Category, tx.Description, tx.Date, time.Now().UTC())
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: insert: %w", err)
	}
	return tx, nil
}

// UpdateAccount implements store.Store.
func (r *Repository) UpdateAccount(ctx context.Context, userID string, account domain.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, type = ?, balance = ?, color = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		account.Name, account.Type, account.Balance.String(), account.Color, time.Now().UTC(), userID, account.ID)
	if err != nil {
		return fmt.Errorf("UpdateAccount: update: %w", err)
	}
	return expectOneRow(res, "UpdateAccount", account.ID)
}

// UpdateTransaction implements store.Store.
func (r *Repository) UpdateTransaction(ctx context.Context, userID string, tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, amount = ?, direction = ?, category = ?, description = ?, txn_date = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		tx.AccountID, tx.Amount.String(), string(tx.Type), tx.Category, tx.Description, tx.Date, time.Now().UTC(), userID, tx.ID)
	if err != nil {
		return fmt.Errorf("UpdateTransaction: update: %w", err)
	}
	return expectOneRow(res, "UpdateTransaction", tx.ID)
}

// DeleteAccount implements store.Store.
func (r *Repository) DeleteAccount(ctx context.Context, userID, accountID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE user_id = ? AND id = ?`, userID, accountID)
	if err != nil {
		return fmt.Errorf("DeleteAccount: delete: %w", err)
	}
	return expectOneRow(res, "DeleteAccount", accountID)
}

// DeleteTransaction implements store.Store.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, transactionID)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: delete: %w", err)
	}
	return expectOneRow(res, "DeleteTransaction", transactionID)
}

func expectOneRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %s: %w", op, id, store.ErrNotFound)
	}
	return nil
}

// CreateUser implements store.UserDirectory.
func (r *Repository) CreateUser(ctx context.Context, user store.UserRecord) (store.UserRecord, error) {
	user.Email = domain.NormalizeEmail(user.Email)

	_, err := r.FindUserByEmail(ctx, user.Email)
	if err == nil {
		return store.UserRecord{}, fmt.Errorf("CreateUser: %s: %w", user.Email, store.ErrUserExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.UserRecord{}, fmt.Errorf("CreateUser: %w", err)
	}

	if user.UID == "" {
		user.UID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (uid, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		user.UID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("CreateUser: insert: %w", err)
	}
	return user, nil
}

// FindUserByEmail implements store.UserDirectory.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	var u store.UserRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT uid, email, password_hash, created_at
		FROM users
		WHERE email = ?`, domain.NormalizeEmail(email)).
		Scan(&u.UID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.UserRecord{}, fmt.Errorf("FindUserByEmail: %w", store.ErrNotFound)
	}
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("FindUserByEmail: scan: %w", err)
	}
	return u, nil
}

var (
	_ store.Store         = (*Repository)(nil)
	_ store.UserDirectory = (*Repository)(nil)
)
