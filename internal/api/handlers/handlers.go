// Package handlers implements the JSON HTTP API over session controllers.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dvloznov/wealthsense/internal/api/middleware"
	"github.com/dvloznov/wealthsense/internal/auth"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/export"
	"github.com/dvloznov/wealthsense/internal/jobs"
	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/dvloznov/wealthsense/internal/session"
	"github.com/dvloznov/wealthsense/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusFor maps domain and collaborator errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSignedOut),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrNotProduction),
		errors.Is(err, auth.ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, export.ErrExportDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrUnknownMode),
		errors.Is(err, domain.ErrMissingID),
		errors.Is(err, domain.ErrInvalidType),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordTooWeak):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeErr logs server-side failures and writes the error message.
func writeErr(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg(msg)
	}
	middleware.WriteError(w, status, err.Error())
}

// controller returns the session controller bound by the Auth middleware.
func controller(w http.ResponseWriter, r *http.Request) (*middleware.Session, bool) {
	s, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Missing session")
		return nil, false
	}
	return s, true
}
