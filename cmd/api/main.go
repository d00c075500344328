package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/wealthsense/internal/api/handlers"
	"github.com/dvloznov/wealthsense/internal/app"
	"github.com/dvloznov/wealthsense/internal/auth"
	"github.com/dvloznov/wealthsense/internal/config"
	"github.com/dvloznov/wealthsense/internal/jobs/inmemory"
	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/dvloznov/wealthsense/internal/session"
)

func main() {
	cfg := config.Load()

	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	mode := flag.String("mode", cfg.AppMode, "Default mode of new sessions: demo or production")
	flag.Parse()
	cfg.Port = *port
	cfg.AppMode = *mode

	log := logger.NewConsole(os.Stderr, logger.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	backend, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data backend")
	}
	defer app.CloseBackend(backend)

	advisor, err := app.NewAdvisor(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create advice generator")
	}
	if !advisor.Enabled() {
		log.Warn().Msg("No GEMINI_API_KEY configured - advice will be disabled")
	}

	exporter, closeExporter, err := app.NewExporter(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exporter")
	}
	defer closeExporter()
	if !exporter.Enabled() {
		log.Warn().Msg("No GCS bucket configured - snapshot export will be disabled")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn().Msg("No JWT_SECRET configured - using a random secret, tokens will not survive a restart")
	}
	tokens := auth.NewTokenIssuer(secret, cfg.TokenTTL)

	registry := session.NewRegistry(func() *session.Controller {
		return session.NewController(backend, advisor)
	}, cfg.TokenTTL)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.JobWorkers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Int("workers", cfg.JobWorkers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, exporter.JobHandler(registry.Get)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	go registry.Run(workerCtx, time.Minute)

	handler := handlers.NewRouter(handlers.Deps{
		Sessions:    registry,
		Tokens:      tokens,
		DefaultMode: app.DefaultMode(cfg),
		Publisher:   jobQueue,
		JobStore:    jobStore,
		Exporter:    exporter,
		Log:         log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("default_mode", string(app.DefaultMode(cfg))).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight exports
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
