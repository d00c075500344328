package domain

import (
	"fmt"
	"strings"
)

// UserProfile mirrors the signed-in user for the lifetime of a session.
type UserProfile struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials checks registration input.
func ValidateCredentials(email, password string) error {
	e := NormalizeEmail(email)
	if e == "" || !strings.Contains(e, "@") {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if len(password) < 6 {
		return ErrPasswordTooWeak
	}
	return nil
}
