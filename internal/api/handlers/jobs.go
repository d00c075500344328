package handlers

import (
	"net/http"
	"strconv"

	"github.com/dvloznov/wealthsense/internal/api/middleware"
	"github.com/dvloznov/wealthsense/internal/export"
	"github.com/dvloznov/wealthsense/internal/jobs"
	"github.com/dvloznov/wealthsense/internal/session"
)

// JobsHandler handles export and job endpoints.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	exporter  *export.Exporter
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore, exporter *export.Exporter) *JobsHandler {
	return &JobsHandler{
		publisher: publisher,
		store:     store,
		exporter:  exporter,
	}
}

func currentUID(s *middleware.Session) (string, error) {
	state := s.Controller.Snapshot()
	if state.User == nil {
		return "", session.ErrSignedOut
	}
	return state.User.UID, nil
}

// jobScope returns the filter selecting the jobs visible to s. Every demo
// session shares the demo user, so demo jobs are also scoped to the session.
func jobScope(s *middleware.Session) (jobs.JobFilter, error) {
	state := s.Controller.Snapshot()
	if state.User == nil {
		return jobs.JobFilter{}, session.ErrSignedOut
	}
	f := jobs.JobFilter{UserID: state.User.UID}
	if state.Mode == session.ModeDemo {
		f.SessionID = s.ID
	}
	return f, nil
}

func visible(job *jobs.ExportSnapshotJob, scope jobs.JobFilter) bool {
	if job.UserID != scope.UserID {
		return false
	}
	return scope.SessionID == "" || job.SessionID == scope.SessionID
}

// Export handles POST /api/export
func (h *JobsHandler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}
	if !h.exporter.Enabled() {
		writeErr(w, r, "Export disabled", export.ErrExportDisabled)
		return
	}
	uid, err := currentUID(s)
	if err != nil {
		writeErr(w, r, "Export requires a user", err)
		return
	}

	job := &jobs.ExportSnapshotJob{UserID: uid, SessionID: s.ID}
	if err := h.publisher.PublishExportSnapshot(r.Context(), job); err != nil {
		writeErr(w, r, "Failed to enqueue export job", err)
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(jobs.JobStatusPending),
	})
}

// GetJob handles GET /api/jobs/{id}. Jobs outside the caller's scope are
// reported as not found.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}
	scope, err := jobScope(s)
	if err != nil {
		writeErr(w, r, "Jobs require a user", err)
		return
	}

	jobID := r.PathValue("id")
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		writeErr(w, r, "Failed to get job", err)
		return
	}
	if !visible(job, scope) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	s, ok := controller(w, r)
	if !ok {
		return
	}
	filter, err := jobScope(s)
	if err != nil {
		writeErr(w, r, "Jobs require a user", err)
		return
	}

	query := r.URL.Query()
	filter.Status = jobs.JobStatus(query.Get("status"))

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		writeErr(w, r, "Failed to list jobs", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
