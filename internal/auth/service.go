// Package auth signs users in against a store.UserDirectory and notifies
// subscribers when the signed-in user of a session changes.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailInUse is returned when registering an email that already exists.
	ErrEmailInUse = errors.New("email already in use")
)

// Service verifies credentials and registers users.
type Service struct {
	users store.UserDirectory
	cost  int
}

// NewService creates a Service backed by users.
func NewService(users store.UserDirectory) *Service {
	return &Service{users: users, cost: bcrypt.DefaultCost}
}

// NewSession starts a signed-out session.
func (s *Service) NewSession() *Session {
	return &Session{svc: s, listeners: make(map[int]Listener)}
}

// Authenticate checks an email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.UserProfile, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.UserProfile{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("Authenticate: finding user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.UserProfile{}, ErrInvalidCredentials
	}
	return user.Profile(), nil
}

// Register creates a user with a bcrypt hash of password.
func (s *Service) Register(ctx context.Context, email, password string) (domain.UserProfile, error) {
	if err := domain.ValidateCredentials(email, password); err != nil {
		return domain.UserProfile{}, fmt.Errorf("Register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("Register: hashing password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, store.UserRecord{
		Email:        domain.NormalizeEmail(email),
		PasswordHash: string(hash),
	})
	if errors.Is(err, store.ErrUserExists) {
		return domain.UserProfile{}, ErrEmailInUse
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("Register: creating user: %w", err)
	}
	return user.Profile(), nil
}
