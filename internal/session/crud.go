package session

import (
	"context"
	"fmt"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/logger"
)

// Writes go through the active store first; the loaded collections change
// only when the store call succeeds. The lock is held across the store call
// so writes of one session apply in order.

// AddAccount stores a new account. An account without a color gets the next
// palette entry.
func (c *Controller) AddAccount(ctx context.Context, account domain.Account) (domain.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	uid, err := c.userLocked()
	if err != nil {
		return domain.Account{}, fmt.Errorf("AddAccount: %w", err)
	}
	if account.Color == "" {
		account.Color = domain.NextAccountColor(len(c.state.Accounts))
	}

	created, err := c.store.CreateAccount(ctx, uid, account)
	if err != nil {
		return domain.Account{}, c.failLocked(ctx, "AddAccount", err)
	}
	c.state.Accounts = append(c.state.Accounts, created)
	c.state.Notice = ""
	return created, nil
}

// UpdateAccount replaces an account.
func (c *Controller) UpdateAccount(ctx context.Context, account domain.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	uid, err := c.userLocked()
	if err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}
	account.UserID = uid

	if err := c.store.UpdateAccount(ctx, uid, account); err != nil {
		return c.failLocked(ctx, "UpdateAccount", err)
	}
	for i, a := range c.state.Accounts {
		if a.ID == account.ID {
			c.state.Accounts[i] = account
			break
		}
	}
	c.state.Notice = ""
	return nil
}

// DeleteAccount removes an account. Its transactions stay and display under
// domain.UnknownAccountLabel.
func (c *Controller) DeleteAccount(ctx context.Context, accountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	uid, err := c.userLocked()
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}

	if err := c.store.DeleteAccount(ctx, uid, accountID); err != nil {
		return c.failLocked(ctx, "DeleteAccount", err)
	}
	kept := c.state.Accounts[:0:0]
	for _, a := range c.state.Accounts {
		if a.ID != accountID {
			kept = append(kept, a)
		}
	}
	c.state.Accounts = kept
	c.state.Notice = ""
	return nil
}

// AddTransaction stores a new transaction.
func (c *Controller) AddTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	uid, err := c.userLocked()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("AddTransaction: %w", err)
	}

	created, err := c.store.CreateTransaction(ctx, uid, tx)
	if err != nil {
		return domain.Transaction{}, c.failLocked(ctx, "AddTransaction", err)
	}
	c.state.Transactions = append(c.state.Transactions, created)
	c.state.Notice = ""
	return created, nil
}

// UpdateTransaction replaces a transaction.
func (c *Controller) UpdateTransaction(ctx context.Context, tx domain.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	uid, err := c.userLocked()
	if err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}
	tx.UserID = uid

	if err := c.store.UpdateTransaction(ctx, uid, tx); err != nil {
		return c.failLocked(ctx, "UpdateTransaction", err)
	}
	for i, t := range c.state.Transactions {
		if t.ID == tx.ID {
			c.state.Transactions[i] = tx
			break
		}
	}
	c.state.Notice = ""
	return nil
}

// DeleteTransaction removes a transaction.
func (c *Controller) DeleteTransaction(ctx context.Context, transactionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	uid, err := c.userLocked()
	if err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}

	if err := c.store.DeleteTransaction(ctx, uid, transactionID); err != nil {
		return c.failLocked(ctx, "DeleteTransaction", err)
	}
	kept := c.state.Transactions[:0:0]
	for _, t := range c.state.Transactions {
		if t.ID != transactionID {
			kept = append(kept, t)
		}
	}
	c.state.Transactions = kept
	c.state.Notice = ""
	return nil
}

func (c *Controller) userLocked() (string, error) {
	if c.state.User == nil || c.store == nil {
		return "", ErrSignedOut
	}
	return c.state.User.UID, nil
}

// failLocked records a store failure as the session notice and wraps it.
func (c *Controller) failLocked(ctx context.Context, op string, err error) error {
	log := logger.FromContext(ctx)
	log.Error().Err(err).Str("op", op).Msg("Store operation failed")
	c.state.Notice = err.Error()
	return fmt.Errorf("%s: %w", op, err)
}
