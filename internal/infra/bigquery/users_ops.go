package bigquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/store"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// FindUserByEmailWithClient looks a user up by normalized email.
// Returns store.ErrNotFound if no user matches.
func FindUserByEmailWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, email string) (store.UserRecord, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT user_id, email, password_hash, created_ts
		FROM %s
		WHERE email = @email
		ORDER BY created_ts
		LIMIT 1
	`, ds.table(usersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "email", Value: domain.NormalizeEmail(email)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("FindUserByEmailWithClient: reading query: %w", err)
	}

	var row UserRow
	err = it.Next(&row)
	if err == iterator.Done {
		return store.UserRecord{}, fmt.Errorf("FindUserByEmailWithClient: %w", store.ErrNotFound)
	}
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("FindUserByEmailWithClient: iterating: %w", err)
	}

	return store.UserRecord{
		UID:          row.UserID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedTS,
	}, nil
}

// InsertUserWithClient registers a user unless the email is already taken.
// The existence check and the insert are two separate statements.
func InsertUserWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, user store.UserRecord) (store.UserRecord, error) {
	user.Email = domain.NormalizeEmail(user.Email)

	_, err := FindUserByEmailWithClient(ctx, client, ds, user.Email)
	if err == nil {
		return store.UserRecord{}, fmt.Errorf("InsertUserWithClient: %s: %w", user.Email, store.ErrUserExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.UserRecord{}, fmt.Errorf("InsertUserWithClient: finding existing user: %w", err)
	}

	if user.UID == "" {
		user.UID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	q := client.Query(fmt.Sprintf(`
		INSERT INTO %s (user_id, email, password_hash, created_ts)
		VALUES (@user_id, @email, @password_hash, @created_ts)
	`, ds.table(usersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: user.UID},
		{Name: "email", Value: user.Email},
		{Name: "password_hash", Value: user.PasswordHash},
		{Name: "created_ts", Value: user.CreatedAt},
	}

	if _, err := runDML(ctx, q); err != nil {
		return store.UserRecord{}, fmt.Errorf("InsertUserWithClient: %w", err)
	}
	return user, nil
}
