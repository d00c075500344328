package handlers

import (
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/wealthsense/internal/api/middleware"
	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/summary"
)

const (
	defaultSeriesDays = 7
	maxSeriesDays     = 366
)

// DashboardHandler serves the derived figures of the current session.
type DashboardHandler struct {
	now func() time.Time
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{now: time.Now}
}

// Summary handles GET /api/summary?from=&to=
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	rng, err := summary.ParseRange(query.Get("from"), query.Get("to"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date range, expected YYYY-MM-DD")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, s.Controller.Report(rng))
}

// Series handles GET /api/series?end=&days=. end defaults to today.
func (h *DashboardHandler) Series(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	end := civil.DateOf(h.now())
	if v := query.Get("end"); v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		end = d
	}

	days := defaultSeriesDays
	if v := query.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSeriesDays {
			middleware.WriteError(w, http.StatusBadRequest, "days must be between 1 and 366")
			return
		}
		days = n
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"end":  end,
		"days": s.Controller.Series(end, days),
	})
}

// Categories handles GET /api/categories
func (h *DashboardHandler) Categories(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": domain.Categories,
		"count":      len(domain.Categories),
	})
}

// Advice handles POST /api/advice
func (h *DashboardHandler) Advice(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}

	text, err := s.Controller.Advice(r.Context())
	if err != nil {
		writeErr(w, r, "Failed to generate advice", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"advice": text})
}
