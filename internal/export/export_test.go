package export

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/jobs"
	"github.com/dvloznov/wealthsense/internal/session"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// mockStorage is a mock implementation of gcs.StorageService.
type mockStorage struct {
	WriteObjectFunc func(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
	ReadObjectFunc  func(ctx context.Context, gcsURI string) ([]byte, error)
}

func (m *mockStorage) WriteObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	return m.WriteObjectFunc(ctx, bucketName, objectName, data, contentType)
}

func (m *mockStorage) ReadObject(ctx context.Context, gcsURI string) ([]byte, error) {
	return m.ReadObjectFunc(ctx, gcsURI)
}

// memStorage keeps written objects keyed by gs:// URI.
func memStorage() (*mockStorage, map[string][]byte) {
	objects := map[string][]byte{}
	return &mockStorage{
		WriteObjectFunc: func(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
			objects["gs://"+bucketName+"/"+objectName] = data
			return nil
		},
		ReadObjectFunc: func(ctx context.Context, gcsURI string) ([]byte, error) {
			data, ok := objects[gcsURI]
			if !ok {
				return nil, errors.New("object not found")
			}
			return data, nil
		},
	}, objects
}

var exportedAt = time.Date(2024, 2, 12, 15, 4, 5, 0, time.UTC)

func TestObjectName(t *testing.T) {
	got := ObjectName("u1", time.Date(2024, 2, 12, 16, 4, 5, 0, time.FixedZone("CET", 3600)))
	if want := "exports/u1/20240212T150405Z.json"; got != want {
		t.Errorf("ObjectName() = %q, want %q", got, want)
	}
}

func TestExportDisabled(t *testing.T) {
	tests := []struct {
		name string
		e    *Exporter
	}{
		{name: "nil exporter", e: nil},
		{name: "no storage", e: NewExporter(nil, "bucket")},
		{name: "no bucket", e: NewExporter(&mockStorage{}, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.e.Enabled() {
				t.Fatal("expected exporter to be disabled")
			}
			if _, err := tt.e.Export(context.Background(), Snapshot{}); !errors.Is(err, ErrExportDisabled) {
				t.Errorf("Export: got %v", err)
			}
		})
	}
}

func TestExportAndLoad(t *testing.T) {
	ctx := context.Background()
	storage, objects := memStorage()
	e := NewExporter(storage, "wealth-exports")

	snap := NewSnapshot(domain.DemoUser, domain.DemoAccounts(), domain.DemoTransactions(), exportedAt)
	uri, err := e.Export(ctx, snap)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if want := "gs://wealth-exports/exports/demo-user-123/20240212T150405Z.json"; uri != want {
		t.Errorf("uri = %q, want %q", uri, want)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(objects[uri], &raw); err != nil {
		t.Fatalf("written object is not JSON: %v", err)
	}
	for _, key := range []string{"user", "accounts", "transactions", "report", "exported_at"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("snapshot JSON missing %q", key)
		}
	}

	loaded, err := e.Load(ctx, uri)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	decimalEqual := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff(snap.Transactions, loaded.Transactions, decimalEqual); diff != "" {
		t.Errorf("transactions mismatch (-want +got):\n%s", diff)
	}
	if !loaded.Report.TotalBalance.Equal(decimal.NewFromInt(62000)) {
		t.Errorf("TotalBalance = %s, want 62000", loaded.Report.TotalBalance)
	}
	if !loaded.ExportedAt.Equal(exportedAt) {
		t.Errorf("ExportedAt = %v", loaded.ExportedAt)
	}
}

func TestExportWriteFailure(t *testing.T) {
	boom := errors.New("permission denied")
	e := NewExporter(&mockStorage{
		WriteObjectFunc: func(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
			if contentType != "application/json" {
				t.Errorf("contentType = %q", contentType)
			}
			return boom
		},
	}, "b")

	if _, err := e.Export(context.Background(), Snapshot{User: domain.DemoUser, ExportedAt: exportedAt}); !errors.Is(err, boom) {
		t.Errorf("Export: got %v, want %v", err, boom)
	}
}

func TestJobHandler(t *testing.T) {
	ctx := context.Background()
	storage, objects := memStorage()
	e := NewExporter(storage, "b")
	e.now = func() time.Time { return exportedAt }

	c := session.NewController(nil, nil)
	if err := c.SwitchMode(ctx, session.ModeDemo); err != nil {
		t.Fatal(err)
	}
	lookup := func(id string) (*session.Controller, bool) {
		if id == "s1" {
			return c, true
		}
		return nil, false
	}
	handler := e.JobHandler(lookup)

	job := &jobs.ExportSnapshotJob{JobID: "j1", UserID: domain.DemoUser.UID, SessionID: "s1"}
	if err := handler(ctx, job); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if job.ObjectURI != "gs://b/exports/demo-user-123/20240212T150405Z.json" {
		t.Errorf("ObjectURI = %q", job.ObjectURI)
	}
	if _, ok := objects[job.ObjectURI]; !ok {
		t.Error("snapshot was not written")
	}

	tests := []struct {
		name string
		job  *jobs.ExportSnapshotJob
	}{
		{name: "unknown session", job: &jobs.ExportSnapshotJob{JobID: "j2", UserID: domain.DemoUser.UID, SessionID: "gone"}},
		{name: "user changed", job: &jobs.ExportSnapshotJob{JobID: "j3", UserID: "someone-else", SessionID: "s1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := handler(ctx, tt.job); !errors.Is(err, ErrSessionGone) {
				t.Errorf("handler: got %v, want ErrSessionGone", err)
			}
		})
	}
}
