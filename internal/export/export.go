// Package export writes point-in-time snapshots of a user's dashboard to
// object storage.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/gcs"
	"github.com/dvloznov/wealthsense/internal/gcsuploader"
	"github.com/dvloznov/wealthsense/internal/summary"
)

// ErrExportDisabled is returned when no bucket is configured.
var ErrExportDisabled = errors.New("export is disabled: no GCS bucket is configured")

const contentTypeJSON = "application/json"

// Snapshot is the exported document.
type Snapshot struct {
	User         domain.UserProfile   `json:"user"`
	Accounts     []domain.Account     `json:"accounts"`
	Transactions []domain.Transaction `json:"transactions"`
	Report       summary.Report       `json:"report"`
	ExportedAt   time.Time            `json:"exported_at"`
}

// NewSnapshot computes the unscoped report over accounts and txs.
func NewSnapshot(user domain.UserProfile, accounts []domain.Account, txs []domain.Transaction, now time.Time) Snapshot {
	return Snapshot{
		User:         user,
		Accounts:     accounts,
		Transactions: txs,
		Report:       summary.Build(accounts, txs, summary.Range{}),
		ExportedAt:   now.UTC(),
	}
}

// ObjectName returns the object path of a snapshot taken at t.
func ObjectName(uid string, t time.Time) string {
	return fmt.Sprintf("exports/%s/%s.json", uid, t.UTC().Format("20060102T150405Z"))
}

// Exporter writes snapshots to a bucket.
type Exporter struct {
	objects gcs.StorageService
	bucket  string
	now     func() time.Time
}

// NewExporter creates an exporter. A nil objects or empty bucket yields a
// disabled exporter.
func NewExporter(objects gcs.StorageService, bucket string) *Exporter {
	return &Exporter{objects: objects, bucket: bucket, now: time.Now}
}

// Enabled reports whether snapshots can be written. Safe on a nil receiver.
func (e *Exporter) Enabled() bool {
	return e != nil && e.objects != nil && e.bucket != ""
}

// Export serializes snap as indented JSON and writes it under
// exports/<uid>/. It returns the gs:// URI of the written object.
func (e *Exporter) Export(ctx context.Context, snap Snapshot) (string, error) {
	if !e.Enabled() {
		return "", ErrExportDisabled
	}
	if snap.ExportedAt.IsZero() {
		snap.ExportedAt = e.now().UTC()
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("Export: marshal snapshot: %w", err)
	}

	object := ObjectName(snap.User.UID, snap.ExportedAt)
	if err := e.objects.WriteObject(ctx, e.bucket, object, data, contentTypeJSON); err != nil {
		return "", fmt.Errorf("Export: %w", err)
	}

	return gcsuploader.ObjectURI(e.bucket, object), nil
}

// Load reads a previously exported snapshot.
func (e *Exporter) Load(ctx context.Context, uri string) (Snapshot, error) {
	if !e.Enabled() {
		return Snapshot{}, ErrExportDisabled
	}

	data, err := e.objects.ReadObject(ctx, uri)
	if err != nil {
		return Snapshot{}, fmt.Errorf("Load: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("Load: decode snapshot: %w", err)
	}
	return snap, nil
}
