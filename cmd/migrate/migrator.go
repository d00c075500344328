package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/wealthsense/internal/logger"
	"google.golang.org/api/iterator"
)

// migrator applies migrations to one dataset and records them in its
// schema_migrations table.
type migrator struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	appliedBy string
}

func newMigrator(ctx context.Context, projectID, datasetID, appliedBy string) (*migrator, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("newMigrator: %w", err)
	}
	return &migrator{client: client, projectID: projectID, datasetID: datasetID, appliedBy: appliedBy}, nil
}

func (m *migrator) Close() error {
	return m.client.Close()
}

func (m *migrator) table() string {
	return "`" + m.projectID + "." + m.datasetID + ".schema_migrations`"
}

// Run applies every pending migration in order and returns how many were
// applied, or in dry-run mode how many are pending. It stops at the first
// failure.
func (m *migrator) Run(ctx context.Context, migrations []Migration, dryRun bool) (int, error) {
	log := logger.FromContext(ctx)

	if err := m.ensureTable(ctx); err != nil {
		return 0, fmt.Errorf("Run: %w", err)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return 0, fmt.Errorf("Run: %w", err)
	}

	todo, changed := pending(migrations, applied)
	for _, v := range changed {
		log.Warn().Int("version", v).Msg("Applied migration file has changed since it was applied")
	}

	if dryRun {
		for _, mig := range todo {
			log.Info().Str("migration", mig.Filename).Msg("Pending")
		}
		return len(todo), nil
	}

	for i, mig := range todo {
		mlog := log.With().Str("migration", mig.Filename).Logger()
		mlog.Info().Msg("Applying")

		if err := m.exec(ctx, m.client.Query(mig.SQL)); err != nil {
			return i, fmt.Errorf("Run: apply %s: %w", mig.Filename, err)
		}
		if err := m.record(ctx, mig); err != nil {
			return i, fmt.Errorf("Run: record %s: %w", mig.Filename, err)
		}

		mlog.Info().Msg("Applied")
	}
	return len(todo), nil
}

func (m *migrator) ensureTable(ctx context.Context) error {
	q := m.client.Query(`
		CREATE TABLE IF NOT EXISTS ` + m.table() + ` (
			version    INT64 NOT NULL,
			name       STRING NOT NULL,
			applied_at TIMESTAMP NOT NULL,
			checksum   STRING,
			applied_by STRING
		)`)
	if err := m.exec(ctx, q); err != nil {
		return fmt.Errorf("ensureTable: %w", err)
	}
	return nil
}

func (m *migrator) applied(ctx context.Context) ([]AppliedMigration, error) {
	q := m.client.Query(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM ` + m.table() + `
		ORDER BY version ASC`)

	it, err := q.Read(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "Not found") {
			return nil, nil
		}
		return nil, fmt.Errorf("applied: %w", err)
	}

	var out []AppliedMigration
	for {
		var row struct {
			Version   int64               `bigquery:"version"`
			Name      string              `bigquery:"name"`
			AppliedAt time.Time           `bigquery:"applied_at"`
			Checksum  bigquery.NullString `bigquery:"checksum"`
			AppliedBy bigquery.NullString `bigquery:"applied_by"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("applied: iterate: %w", err)
		}
		out = append(out, AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}
	return out, nil
}

func (m *migrator) record(ctx context.Context, mig Migration) error {
	q := m.client.Query(`
		INSERT INTO ` + m.table() + `
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "version", Value: mig.Version},
		{Name: "name", Value: mig.Name},
		{Name: "checksum", Value: mig.Checksum},
		{Name: "applied_by", Value: m.appliedBy},
	}
	return m.exec(ctx, q)
}

func (m *migrator) exec(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
