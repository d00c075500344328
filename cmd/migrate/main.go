// Command migrate applies the BigQuery schema migrations under
// migrations/bigquery to a dataset.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/dvloznov/wealthsense/internal/config"
	"github.com/dvloznov/wealthsense/internal/logger"
)

func main() {
	cfg := config.Load()

	projectID := flag.String("project", cfg.GCPProjectID, "GCP project ID (or set GCP_PROJECT_ID env)")
	datasetID := flag.String("dataset", cfg.BQDataset, "BigQuery dataset ID (or set BQ_DATASET env)")
	appliedBy := flag.String("applied-by", "migrate-cli", "Name recorded for the applied migrations")
	dir := flag.String("migrations", "migrations/bigquery", "Path to migrations directory")
	dryRun := flag.Bool("dry-run", false, "List pending migrations without applying them")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall timeout")
	flag.Parse()

	log := logger.NewConsole(os.Stderr, logger.ParseLevel(cfg.LogLevel))

	if *projectID == "" {
		log.Fatal().Msg("-project flag is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	path, err := resolveDir(*dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to locate migrations")
	}

	migrations, err := readMigrations(os.DirFS(path), *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migrations")
	}
	log.Info().Int("count", len(migrations)).Str("dir", path).Msg("Found migration files")

	m, err := newMigrator(ctx, *projectID, *datasetID, *appliedBy)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer m.Close()

	applied, err := m.Run(ctx, migrations, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	switch {
	case *dryRun:
		log.Info().Int("pending", applied).Msg("Dry run finished")
	case applied == 0:
		log.Info().Msg("No new migrations to apply. Dataset is up to date.")
	default:
		log.Info().Int("applied", applied).Msg("Migrations applied")
	}
}

// resolveDir finds the migrations directory from the repository root or
// from cmd/migrate.
func resolveDir(dir string) (string, error) {
	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}
	alt := "../../" + dir
	if _, err := os.Stat(alt); err == nil {
		return alt, nil
	}
	return "", os.ErrNotExist
}
