package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/wealthsense/internal/jobs"
	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/dvloznov/wealthsense/internal/session"
)

// ErrSessionGone is returned when the session of an export job no longer
// exists or has changed user.
var ErrSessionGone = errors.New("session is no longer available")

// SessionLookup resolves an API session ID to its controller.
type SessionLookup func(sessionID string) (*session.Controller, bool)

// JobHandler returns a jobs.JobHandler that snapshots the job's session and
// exports it, recording the object URI on the job.
func (e *Exporter) JobHandler(lookup SessionLookup) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		exportJob, ok := job.(*jobs.ExportSnapshotJob)
		if !ok {
			return fmt.Errorf("export job handler: unexpected job type %s", job.GetType())
		}

		log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
			"job_id":     exportJob.JobID,
			"session_id": exportJob.SessionID,
		})

		c, ok := lookup(exportJob.SessionID)
		if !ok {
			return fmt.Errorf("export job %s: %w", exportJob.JobID, ErrSessionGone)
		}
		state := c.Snapshot()
		if state.User == nil || state.User.UID != exportJob.UserID {
			return fmt.Errorf("export job %s: %w", exportJob.JobID, ErrSessionGone)
		}

		snap := NewSnapshot(*state.User, state.Accounts, state.Transactions, e.now())
		uri, err := e.Export(ctx, snap)
		if err != nil {
			return err
		}

		exportJob.ObjectURI = uri
		log.Info().Str("object_uri", uri).Int("transactions", len(snap.Transactions)).Msg("Snapshot exported")
		return nil
	}
}
