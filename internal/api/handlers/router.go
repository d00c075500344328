package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/wealthsense/internal/api/middleware"
	"github.com/dvloznov/wealthsense/internal/auth"
	"github.com/dvloznov/wealthsense/internal/export"
	"github.com/dvloznov/wealthsense/internal/jobs"
	"github.com/dvloznov/wealthsense/internal/session"
	"github.com/rs/zerolog"
)

// Deps are the collaborators of the API.
type Deps struct {
	Sessions    *session.Registry
	Tokens      *auth.TokenIssuer
	DefaultMode session.Mode
	Publisher   jobs.Publisher
	JobStore    jobs.JobStore
	Exporter    *export.Exporter
	Log         zerolog.Logger
}

// IsPublic reports whether a request may skip bearer authentication.
func IsPublic(r *http.Request) bool {
	switch {
	case r.URL.Path == "/health":
		return true
	case r.URL.Path == "/api/sessions" && r.Method == http.MethodPost:
		return true
	case r.URL.Path == "/api/categories" && r.Method == http.MethodGet:
		return true
	}
	return false
}

// NewRouter registers every endpoint and wraps the mux in the middleware
// chain: Recovery, Logger, RequestID, CORS, Auth.
func NewRouter(d Deps) http.Handler {
	sessionsHandler := NewSessionsHandler(d.Sessions, d.Tokens, d.DefaultMode)
	accountsHandler := NewAccountsHandler()
	transactionsHandler := NewTransactionsHandler()
	dashboardHandler := NewDashboardHandler()
	jobsHandler := NewJobsHandler(d.Publisher, d.JobStore, d.Exporter)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/sessions", sessionsHandler.CreateSession)
	mux.HandleFunc("GET /api/session", sessionsHandler.GetSession)
	mux.HandleFunc("DELETE /api/session", sessionsHandler.DeleteSession)
	mux.HandleFunc("POST /api/session/mode", sessionsHandler.SwitchMode)
	mux.HandleFunc("POST /api/session/login", sessionsHandler.Login)
	mux.HandleFunc("POST /api/session/register", sessionsHandler.Register)
	mux.HandleFunc("POST /api/session/logout", sessionsHandler.Logout)

	mux.HandleFunc("GET /api/accounts", accountsHandler.ListAccounts)
	mux.HandleFunc("POST /api/accounts", accountsHandler.CreateAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", accountsHandler.UpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", accountsHandler.DeleteAccount)

	mux.HandleFunc("GET /api/transactions", transactionsHandler.ListTransactions)
	mux.HandleFunc("POST /api/transactions", transactionsHandler.CreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", transactionsHandler.UpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", transactionsHandler.DeleteTransaction)

	mux.HandleFunc("GET /api/summary", dashboardHandler.Summary)
	mux.HandleFunc("GET /api/series", dashboardHandler.Series)
	mux.HandleFunc("GET /api/categories", dashboardHandler.Categories)
	mux.HandleFunc("POST /api/advice", dashboardHandler.Advice)

	mux.HandleFunc("POST /api/export", jobsHandler.Export)
	mux.HandleFunc("GET /api/jobs", jobsHandler.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", jobsHandler.GetJob)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"sessions": d.Sessions.Len(),
		})
	})

	return middleware.Chain(mux,
		middleware.Recovery(d.Log),
		middleware.Logger(d.Log),
		middleware.RequestID,
		middleware.CORS,
		middleware.Auth(d.Tokens, d.Sessions, IsPublic),
	)
}
