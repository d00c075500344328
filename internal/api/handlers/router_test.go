package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/wealthsense/internal/advice"
	"github.com/dvloznov/wealthsense/internal/auth"
	"github.com/dvloznov/wealthsense/internal/export"
	"github.com/dvloznov/wealthsense/internal/jobs"
	"github.com/dvloznov/wealthsense/internal/jobs/inmemory"
	"github.com/dvloznov/wealthsense/internal/session"
	"github.com/dvloznov/wealthsense/internal/store/memory"
	"github.com/rs/zerolog"
)

// mockStorage is a mock implementation of gcs.StorageService.
type mockStorage struct {
	WriteObjectFunc func(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
}

func (m *mockStorage) WriteObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	return m.WriteObjectFunc(ctx, bucketName, objectName, data, contentType)
}

func (m *mockStorage) ReadObject(ctx context.Context, gcsURI string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

type testServer struct {
	*httptest.Server
	t        *testing.T
	jobStore *inmemory.Store
}

func newTestServer(t *testing.T, defaultMode session.Mode, exporter *export.Exporter) *testServer {
	t.Helper()

	mem := memory.NewStore()
	backend := &session.Backend{Store: mem, Auth: auth.NewService(mem)}
	registry := session.NewRegistry(func() *session.Controller {
		return session.NewController(backend, advice.NewAdvisor(nil))
	}, time.Hour)

	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(8, 1, jobStore)
	ctx, cancel := context.WithCancel(context.Background())
	if exporter.Enabled() {
		if err := queue.Start(ctx, exporter.JobHandler(registry.Get)); err != nil {
			t.Fatalf("Start: %v", err)
		}
	}

	srv := httptest.NewServer(NewRouter(Deps{
		Sessions:    registry,
		Tokens:      auth.NewTokenIssuer("test-secret", time.Hour),
		DefaultMode: defaultMode,
		Publisher:   queue,
		JobStore:    jobStore,
		Exporter:    exporter,
		Log:         zerolog.Nop(),
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		_ = queue.Close()
	})

	return &testServer{Server: srv, t: t, jobStore: jobStore}
}

func (s *testServer) do(method, path, token string, body interface{}, out interface{}) int {
	s.t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, r)
	if err != nil {
		s.t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client().Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			s.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type sessionResponse struct {
	SessionID string        `json:"session_id"`
	Token     string        `json:"token"`
	State     session.State `json:"state"`
}

func (s *testServer) newSession() sessionResponse {
	s.t.Helper()
	var resp sessionResponse
	if code := s.do(http.MethodPost, "/api/sessions", "", nil, &resp); code != http.StatusCreated {
		s.t.Fatalf("create session: status %d", code)
	}
	return resp
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	s := newTestServer(t, session.ModeDemo, nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "categories", method: http.MethodGet, path: "/api/categories", want: http.StatusOK},
		{name: "no token", method: http.MethodGet, path: "/api/session", want: http.StatusUnauthorized},
		{name: "bad token", method: http.MethodGet, path: "/api/accounts", token: "garbage", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.do(tt.method, tt.path, tt.token, nil, nil); got != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, got, tt.want)
			}
		})
	}

	// A valid token for a dropped session is rejected.
	sess := s.newSession()
	if code := s.do(http.MethodDelete, "/api/session", sess.Token, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete session: %d", code)
	}
	if code := s.do(http.MethodGet, "/api/session", sess.Token, nil, nil); code != http.StatusUnauthorized {
		t.Errorf("dropped session: got %d", code)
	}
}

func TestDemoDashboard(t *testing.T) {
	s := newTestServer(t, session.ModeDemo, nil)
	sess := s.newSession()

	if sess.State.Mode != session.ModeDemo || sess.State.User == nil || len(sess.State.Accounts) != 2 {
		t.Fatalf("unexpected initial state: %+v", sess.State)
	}

	var report struct {
		TotalBalance string `json:"total_balance"`
		Income       string `json:"income"`
		Expense      string `json:"expense"`
		Categories   []struct {
			Category string `json:"category"`
			Amount   string `json:"amount"`
		} `json:"categories"`
	}
	if code := s.do(http.MethodGet, "/api/summary", sess.Token, nil, &report); code != http.StatusOK {
		t.Fatalf("summary: %d", code)
	}
	if report.TotalBalance != "62000" || report.Income != "35000" || report.Expense != "1850" {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(report.Categories) != 3 || report.Categories[0].Category != "Food" {
		t.Errorf("unexpected breakdown: %+v", report.Categories)
	}

	if code := s.do(http.MethodGet, "/api/summary?from=2024-02-11&to=2024-02-11", sess.Token, nil, &report); code != http.StatusOK {
		t.Fatalf("scoped summary: %d", code)
	}
	if report.Expense != "1200" {
		t.Errorf("scoped expense = %s, want 1200", report.Expense)
	}
	if code := s.do(http.MethodGet, "/api/summary?from=yesterday", sess.Token, nil, nil); code != http.StatusBadRequest {
		t.Errorf("bad range: got %d", code)
	}

	var series struct {
		Days []struct {
			Date    string `json:"date"`
			Expense string `json:"expense"`
		} `json:"days"`
	}
	if code := s.do(http.MethodGet, "/api/series?end=2024-02-12&days=3", sess.Token, nil, &series); code != http.StatusOK {
		t.Fatalf("series: %d", code)
	}
	if len(series.Days) != 3 || series.Days[2].Date != "2024-02-12" || series.Days[2].Expense != "500" {
		t.Errorf("unexpected series: %+v", series.Days)
	}
	if code := s.do(http.MethodGet, "/api/series?days=0", sess.Token, nil, nil); code != http.StatusBadRequest {
		t.Errorf("days=0: got %d", code)
	}

	var adv map[string]string
	if code := s.do(http.MethodPost, "/api/advice", sess.Token, nil, &adv); code != http.StatusOK {
		t.Fatalf("advice: %d", code)
	}
	if adv["advice"] != advice.NoCredentialMessage {
		t.Errorf("advice = %q", adv["advice"])
	}
}

func TestRecordEndpoints(t *testing.T) {
	s := newTestServer(t, session.ModeDemo, nil)
	sess := s.newSession()

	var acc struct {
		ID    string `json:"id"`
		Color string `json:"color"`
	}
	code := s.do(http.MethodPost, "/api/accounts", sess.Token, map[string]interface{}{"name": "Brokerage", "type": "investment", "balance": 1000}, &acc)
	if code != http.StatusCreated || acc.ID == "" || acc.Color == "" {
		t.Fatalf("create account: %d %+v", code, acc)
	}

	code = s.do(http.MethodPost, "/api/accounts", sess.Token, map[string]interface{}{"name": "  "}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("empty name: got %d", code)
	}

	code = s.do(http.MethodPut, "/api/accounts/"+acc.ID, sess.Token, map[string]interface{}{"name": "Brokerage", "balance": 1500}, nil)
	if code != http.StatusOK {
		t.Errorf("update account: %d", code)
	}
	code = s.do(http.MethodPut, "/api/accounts/missing", sess.Token, map[string]interface{}{"name": "x"}, nil)
	if code != http.StatusNotFound {
		t.Errorf("update missing account: %d", code)
	}

	var tx struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	code = s.do(http.MethodPost, "/api/transactions", sess.Token, map[string]interface{}{
		"account_id": acc.ID, "amount": "80.50", "category": "Food", "date": "2024-02-12", "type": "expense",
	}, &tx)
	if code != http.StatusCreated || tx.Type != "EXPENSE" {
		t.Fatalf("create transaction: %d %+v", code, tx)
	}

	code = s.do(http.MethodPost, "/api/transactions", sess.Token, map[string]interface{}{"amount": 1, "type": "refund"}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("bad type: got %d", code)
	}

	if code := s.do(http.MethodDelete, "/api/accounts/"+acc.ID, sess.Token, nil, nil); code != http.StatusNoContent {
		t.Errorf("delete account: %d", code)
	}

	var ledger struct {
		Transactions []struct {
			ID          string `json:"id"`
			AccountName string `json:"account_name"`
		} `json:"transactions"`
		Count int `json:"count"`
	}
	if code := s.do(http.MethodGet, "/api/transactions", sess.Token, nil, &ledger); code != http.StatusOK {
		t.Fatalf("list transactions: %d", code)
	}
	if ledger.Count != 5 {
		t.Fatalf("count = %d, want 5", ledger.Count)
	}
	if last := ledger.Transactions[4]; last.ID != tx.ID || last.AccountName != "Unknown account" {
		t.Errorf("orphaned entry = %+v", last)
	}

	if code := s.do(http.MethodDelete, "/api/transactions/"+tx.ID, sess.Token, nil, nil); code != http.StatusNoContent {
		t.Errorf("delete transaction: %d", code)
	}
}

func TestProductionAuthFlow(t *testing.T) {
	s := newTestServer(t, session.ModeDemo, nil)
	sess := s.newSession()

	creds := map[string]string{"email": "pat@example.com", "password": "secret1"}
	if code := s.do(http.MethodPost, "/api/session/login", sess.Token, creds, nil); code != http.StatusConflict {
		t.Errorf("login in demo: got %d", code)
	}

	var state session.State
	if code := s.do(http.MethodPost, "/api/session/mode", sess.Token, map[string]string{"mode": "production"}, &state); code != http.StatusOK {
		t.Fatalf("switch mode: %d", code)
	}
	if state.Mode != session.ModeProduction || state.User != nil {
		t.Fatalf("unexpected state after switch: %+v", state)
	}
	if code := s.do(http.MethodPost, "/api/session/mode", sess.Token, map[string]string{"mode": "staging"}, nil); code != http.StatusBadRequest {
		t.Errorf("unknown mode: got %d", code)
	}

	if code := s.do(http.MethodGet, "/api/accounts", sess.Token, nil, nil); code != http.StatusOK {
		t.Errorf("list while signed out: %d", code)
	}
	if code := s.do(http.MethodPost, "/api/accounts", sess.Token, map[string]interface{}{"name": "x"}, nil); code != http.StatusUnauthorized {
		t.Errorf("write while signed out: %d", code)
	}

	if code := s.do(http.MethodPost, "/api/session/register", sess.Token, map[string]string{"email": "bad", "password": "secret1"}, nil); code != http.StatusBadRequest {
		t.Errorf("invalid email: got %d", code)
	}
	if code := s.do(http.MethodPost, "/api/session/register", sess.Token, creds, &state); code != http.StatusOK {
		t.Fatalf("register: %d", code)
	}
	if state.User == nil || state.User.Email != "pat@example.com" {
		t.Errorf("expected signed in user, got %+v", state.User)
	}

	if code := s.do(http.MethodPost, "/api/session/logout", sess.Token, nil, &state); code != http.StatusOK || state.User != nil {
		t.Errorf("logout: %d %+v", code, state.User)
	}

	wrong := map[string]string{"email": "pat@example.com", "password": "wrong-password"}
	if code := s.do(http.MethodPost, "/api/session/login", sess.Token, wrong, nil); code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d", code)
	}
	if code := s.do(http.MethodPost, "/api/session/login", sess.Token, creds, &state); code != http.StatusOK || state.User == nil {
		t.Errorf("login: %d %+v", code, state.User)
	}
}

func TestExportJob(t *testing.T) {
	written := make(chan string, 1)
	exporter := export.NewExporter(&mockStorage{
		WriteObjectFunc: func(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
			written <- objectName
			return nil
		},
	}, "exports-bucket")

	s := newTestServer(t, session.ModeDemo, exporter)
	sess := s.newSession()

	var resp map[string]string
	if code := s.do(http.MethodPost, "/api/export", sess.Token, nil, &resp); code != http.StatusAccepted {
		t.Fatalf("export: %d", code)
	}
	jobID := resp["job_id"]

	select {
	case name := <-written:
		if !strings.HasPrefix(name, "exports/demo-user-123/") {
			t.Errorf("object name = %q", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot was never written")
	}

	var job jobs.ExportSnapshotJob
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.do(http.MethodGet, "/api/jobs/"+jobID, sess.Token, nil, &job)
		if job.Status == jobs.JobStatusCompleted {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if job.Status != jobs.JobStatusCompleted || !strings.HasPrefix(job.ObjectURI, "gs://exports-bucket/exports/") {
		t.Errorf("unexpected job: %+v", job)
	}

	var list struct {
		Count int `json:"count"`
	}
	if code := s.do(http.MethodGet, "/api/jobs", sess.Token, nil, &list); code != http.StatusOK || list.Count != 1 {
		t.Errorf("list jobs: %d count %d", code, list.Count)
	}

	// Demo sessions share the demo user but not their jobs.
	demo := s.newSession()
	if code := s.do(http.MethodGet, "/api/jobs/"+jobID, demo.Token, nil, nil); code != http.StatusNotFound {
		t.Errorf("other demo session's job: got %d", code)
	}
	var demoList struct {
		Count int `json:"count"`
	}
	if code := s.do(http.MethodGet, "/api/jobs", demo.Token, nil, &demoList); code != http.StatusOK || demoList.Count != 0 {
		t.Errorf("other demo session lists %d jobs (status %d)", demoList.Count, code)
	}

	// Jobs belong to the user that created them.
	other := s.newSession()
	var otherState session.State
	s.do(http.MethodPost, "/api/session/mode", other.Token, map[string]string{"mode": "production"}, &otherState)
	s.do(http.MethodPost, "/api/session/register", other.Token, map[string]string{"email": "o@example.com", "password": "secret1"}, &otherState)
	if code := s.do(http.MethodGet, "/api/jobs/"+jobID, other.Token, nil, nil); code != http.StatusNotFound {
		t.Errorf("foreign job: got %d", code)
	}
}

func TestExportDisabled(t *testing.T) {
	s := newTestServer(t, session.ModeDemo, nil)
	sess := s.newSession()

	if code := s.do(http.MethodPost, "/api/export", sess.Token, nil, nil); code != http.StatusServiceUnavailable {
		t.Errorf("export without bucket: got %d", code)
	}
}
