// Package app wires configured infrastructure into the collaborators the
// commands share.
package app

import (
	"context"
	"fmt"

	"github.com/dvloznov/wealthsense/internal/advice"
	"github.com/dvloznov/wealthsense/internal/auth"
	"github.com/dvloznov/wealthsense/internal/config"
	"github.com/dvloznov/wealthsense/internal/export"
	"github.com/dvloznov/wealthsense/internal/gcsuploader"
	infraBQ "github.com/dvloznov/wealthsense/internal/infra/bigquery"
	"github.com/dvloznov/wealthsense/internal/infra/sqlite"
	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/dvloznov/wealthsense/internal/session"
	"github.com/dvloznov/wealthsense/internal/store"
)

// repository is a record store that also holds the user directory.
type repository interface {
	store.Store
	store.UserDirectory
}

// OpenBackend opens the production store selected by cfg. It returns a nil
// backend when production is not configured, so sessions fall back to demo
// mode. A configured backend that fails to open is an error.
func OpenBackend(ctx context.Context, cfg *config.Config) (*session.Backend, error) {
	log := logger.FromContext(ctx)

	if !cfg.ProductionConfigured() {
		log.Warn().Str("backend", cfg.DataBackend).Msg("Production backend not configured, sessions will run in demo mode")
		return nil, nil
	}

	var repo repository
	switch cfg.DataBackend {
	case config.BackendBigQuery:
		r, err := infraBQ.NewRepository(ctx, cfg.GCPProjectID, cfg.BQDataset)
		if err != nil {
			return nil, fmt.Errorf("OpenBackend: %w", err)
		}
		repo = r
	case config.BackendSQLite:
		r, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("OpenBackend: %w", err)
		}
		repo = r
	default:
		return nil, fmt.Errorf("OpenBackend: unknown backend %q", cfg.DataBackend)
	}

	log.Info().Str("backend", cfg.DataBackend).Msg("Production backend ready")
	return &session.Backend{Store: repo, Auth: auth.NewService(repo)}, nil
}

// CloseBackend releases the store of b. Safe on nil.
func CloseBackend(b *session.Backend) error {
	if b == nil || b.Store == nil {
		return nil
	}
	return b.Store.Close()
}

// NewAdvisor returns an advisor backed by Gemini, or a disabled advisor when
// no API key is configured.
func NewAdvisor(ctx context.Context, cfg *config.Config) (*advice.Advisor, error) {
	if cfg.GeminiAPIKey == "" {
		return advice.NewAdvisor(nil), nil
	}
	gen, err := advice.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("NewAdvisor: %w", err)
	}
	return advice.NewAdvisor(gen), nil
}

// NewExporter returns a GCS-backed exporter, or a disabled one when no
// bucket is configured. The returned close function is never nil.
func NewExporter(ctx context.Context, cfg *config.Config) (*export.Exporter, func() error, error) {
	noop := func() error { return nil }
	if !cfg.ExportEnabled() {
		return export.NewExporter(nil, ""), noop, nil
	}

	objects, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		return nil, noop, fmt.Errorf("NewExporter: %w", err)
	}
	return export.NewExporter(objects, cfg.GCSBucket), objects.Close, nil
}

// DefaultMode maps the configured app mode to a session mode.
func DefaultMode(cfg *config.Config) session.Mode {
	if cfg.AppMode == config.ModeProduction {
		return session.ModeProduction
	}
	return session.ModeDemo
}
