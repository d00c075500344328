// Package memory is an in-process implementation of store.Store and
// store.UserDirectory. It backs demo mode and tests; data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/store"
	"github.com/google/uuid"
)

// Store keeps records per user in insertion order and is safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string][]domain.Account
	transactions map[string][]domain.Transaction
	users        map[string]store.UserRecord // keyed by normalized email
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string][]domain.Account),
		transactions: make(map[string][]domain.Transaction),
		users:        make(map[string]store.UserRecord),
	}
}

// NewDemoStore creates a store seeded with the demo fixtures for domain.DemoUser.
func NewDemoStore() *Store {
	s := NewStore()
	s.Seed(domain.DemoUser.UID, domain.DemoAccounts(), domain.DemoTransactions())
	return s
}

// Seed replaces all records of userID.
func (s *Store) Seed(userID string, accounts []domain.Account, txs []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accCopy := make([]domain.Account, len(accounts))
	for i, a := range accounts {
		a.UserID = userID
		accCopy[i] = a
	}
	txCopy := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		tx.UserID = userID
		txCopy[i] = tx
	}
	s.accounts[userID] = accCopy
	s.transactions[userID] = txCopy
}

// ListAccounts implements store.Store.
func (s *Store) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Account, len(s.accounts[userID]))
	copy(result, s.accounts[userID])
	return result, nil
}

// ListTransactions implements store.Store.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transaction, len(s.transactions[userID]))
	copy(result, s.transactions[userID])
	return result, nil
}

// CreateAccount implements store.Store.
func (s *Store) CreateAccount(ctx context.Context, userID string, account domain.Account) (domain.Account, error) {
	if err := account.Validate(); err != nil {
		return domain.Account{}, fmt.Errorf("CreateAccount: %w", err)
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.UserID = userID

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[userID] = append(s.accounts[userID], account)
	return account, nil
}

// CreateTransaction implements store.Store.
func (s *Store) CreateTransaction(ctx context.Context, userID string, tx domain.Transaction) (domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: %w", err)
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.UserID = userID

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions[userID] = append(s.transactions[userID], tx)
	return tx, nil
}

// UpdateAccount implements store.Store.
func (s *Store) UpdateAccount(ctx context.Context, userID string, account domain.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}
	account.UserID = userID

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.accounts[userID] {
		if a.ID == account.ID {
			s.accounts[userID][i] = account
			return nil
		}
	}
	return fmt.Errorf("UpdateAccount: account %s: %w", account.ID, store.ErrNotFound)
}

// UpdateTransaction implements store.Store.
func (s *Store) UpdateTransaction(ctx context.Context, userID string, tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}
	tx.UserID = userID

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.transactions[userID] {
		if t.ID == tx.ID {
			s.transactions[userID][i] = tx
			return nil
		}
	}
	return fmt.Errorf("UpdateTransaction: transaction %s: %w", tx.ID, store.ErrNotFound)
}

// DeleteAccount implements store.Store.
func (s *Store) DeleteAccount(ctx context.Context, userID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.accounts[userID]
	for i, a := range list {
		if a.ID == accountID {
			s.accounts[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("DeleteAccount: account %s: %w", accountID, store.ErrNotFound)
}

// DeleteTransaction implements store.Store.
func (s *Store) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.transactions[userID]
	for i, t := range list {
		if t.ID == transactionID {
			s.transactions[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("DeleteTransaction: transaction %s: %w", transactionID, store.ErrNotFound)
}

// Close implements store.Store.
func (s *Store) Close() error {
	return nil
}

// CreateUser implements store.UserDirectory.
func (s *Store) CreateUser(ctx context.Context, user store.UserRecord) (store.UserRecord, error) {
	user.Email = domain.NormalizeEmail(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return store.UserRecord{}, fmt.Errorf("CreateUser: %s: %w", user.Email, store.ErrUserExists)
	}
	if user.UID == "" {
		user.UID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.Email] = user
	return user, nil
}

// FindUserByEmail implements store.UserDirectory.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[domain.NormalizeEmail(email)]
	if !ok {
		return store.UserRecord{}, fmt.Errorf("FindUserByEmail: %w", store.ErrNotFound)
	}
	return user, nil
}

var (
	_ store.Store         = (*Store)(nil)
	_ store.UserDirectory = (*Store)(nil)
)
