package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/wealthsense/internal/domain"
)

// Mode selects where a session's data comes from.
type Mode string

const (
	// ModeDemo serves fixture data from a private in-memory store.
	ModeDemo Mode = "DEMO"
	// ModeProduction authenticates a user and persists to the configured store.
	ModeProduction Mode = "PRODUCTION"
)

// FallbackNotice is set when production mode is requested but no production
// backend is configured.
const FallbackNotice = "Production mode needs a configured data backend. Switched back to demo mode."

var (
	// ErrSignedOut is returned by data operations when no user is signed in.
	ErrSignedOut = errors.New("no user is signed in")

	// ErrNotProduction is returned by sign-in and registration outside
	// production mode.
	ErrNotProduction = errors.New("operation requires production mode")

	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("unknown mode")
)

// ParseMode accepts "demo" or "production" in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeDemo:
		return ModeDemo, nil
	case ModeProduction:
		return ModeProduction, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// State is the observable state of one client session.
type State struct {
	Mode         Mode                 `json:"mode"`
	User         *domain.UserProfile  `json:"user"`
	Accounts     []domain.Account     `json:"accounts"`
	Transactions []domain.Transaction `json:"transactions"`
	Notice       string               `json:"notice,omitempty"`
}

func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.Accounts = append([]domain.Account{}, s.Accounts...)
	out.Transactions = append([]domain.Transaction{}, s.Transactions...)
	return out
}
