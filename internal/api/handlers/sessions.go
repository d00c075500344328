package handlers

import (
	"context"
	"net/http"

	"github.com/dvloznov/wealthsense/internal/api/middleware"
	"github.com/dvloznov/wealthsense/internal/auth"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/session"
)

// SessionsHandler handles session lifecycle, mode and auth endpoints.
type SessionsHandler struct {
	sessions    *session.Registry
	tokens      *auth.TokenIssuer
	defaultMode session.Mode
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(sessions *session.Registry, tokens *auth.TokenIssuer, defaultMode session.Mode) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, tokens: tokens, defaultMode: defaultMode}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateSession handles POST /api/sessions
func (h *SessionsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, c, err := h.sessions.Create(r.Context(), h.defaultMode)
	if err != nil {
		writeErr(w, r, "Failed to create session", err)
		return
	}

	token, err := h.tokens.Issue(id)
	if err != nil {
		h.sessions.Drop(id)
		writeErr(w, r, "Failed to issue token", err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": id,
		"token":      token,
		"state":      c.Snapshot(),
	})
}

// GetSession handles GET /api/session
func (h *SessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, s.Controller.Snapshot())
}

// DeleteSession handles DELETE /api/session
func (h *SessionsHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}
	h.sessions.Drop(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

// SwitchMode handles POST /api/session/mode
func (h *SessionsHandler) SwitchMode(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}

	var req struct {
		Mode string `json:"mode"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		writeErr(w, r, "Invalid mode", err)
		return
	}
	if err := s.Controller.SwitchMode(r.Context(), mode); err != nil {
		writeErr(w, r, "Failed to switch mode", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, s.Controller.Snapshot())
}

// Login handles POST /api/session/login
func (h *SessionsHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, (*session.Controller).SignIn)
}

// Register handles POST /api/session/register
func (h *SessionsHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, (*session.Controller).Register)
}

func (h *SessionsHandler) authenticate(w http.ResponseWriter, r *http.Request, op func(*session.Controller, context.Context, string, string) (domain.UserProfile, error)) {
	s, ok := controller(w, r)
	if !ok {
		return
	}

	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := op(s.Controller, r.Context(), req.Email, req.Password); err != nil {
		writeErr(w, r, "Authentication failed", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, s.Controller.Snapshot())
}

// Logout handles POST /api/session/logout
func (h *SessionsHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}
	s.Controller.SignOut(r.Context())
	middleware.WriteJSON(w, http.StatusOK, s.Controller.Snapshot())
}
