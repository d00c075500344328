// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModeDemo       = "demo"
	ModeProduction = "production"

	BackendBigQuery = "bigquery"
	BackendSQLite   = "sqlite"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Session defaults
	AppMode string

	// Storage backend used in production mode
	DataBackend  string
	GCPProjectID string
	BQDataset    string
	SQLiteDBPath string

	// Advice
	GeminiAPIKey string
	GeminiModel  string

	// API tokens
	JWTSecret string
	TokenTTL  time.Duration

	// Export
	GCSBucket string

	// Notion mirror
	NotionToken            string
	NotionAccountsDBID     string
	NotionTransactionsDBID string

	// Background jobs
	JobWorkers int
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AppMode: strings.ToLower(getEnv("APP_MODE", ModeDemo)),

		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", BackendSQLite)),
		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),
		BQDataset:    getEnv("BQ_DATASET", "wealthsense"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/wealthsense.db"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		GCSBucket: getEnv("GCS_BUCKET", ""),

		NotionToken:            getEnv("NOTION_TOKEN", ""),
		NotionAccountsDBID:     getEnv("NOTION_ACCOUNTS_DB_ID", ""),
		NotionTransactionsDBID: getEnv("NOTION_TRANSACTIONS_DB_ID", ""),

		JobWorkers: getEnvInt("JOB_WORKERS", 5),
	}
}

// Validate validates the configuration and returns an error if invalid.
// Missing production credentials are not an error: production sessions fall
// back to demo mode instead.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.AppMode != ModeDemo && c.AppMode != ModeProduction {
		errors = append(errors, fmt.Sprintf("invalid app mode '%s': must be one of [%s %s]", c.AppMode, ModeDemo, ModeProduction))
	}

	if c.DataBackend != BackendBigQuery && c.DataBackend != BackendSQLite {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendBigQuery, BackendSQLite))
	}

	if c.DataBackend == BackendBigQuery && c.GCPProjectID != "" && c.BQDataset == "" {
		errors = append(errors, "BigQuery dataset cannot be empty when a project is configured")
	}

	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if c.JobWorkers < 1 || c.JobWorkers > 64 {
		errors = append(errors, fmt.Sprintf("invalid job workers %d: must be between 1 and 64", c.JobWorkers))
	}

	if (c.NotionAccountsDBID != "" || c.NotionTransactionsDBID != "") && c.NotionToken == "" {
		errors = append(errors, "NOTION_TOKEN is required when a Notion database is configured")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ProductionConfigured reports whether the selected backend has what it
// needs to authenticate users and persist their data.
func (c *Config) ProductionConfigured() bool {
	switch c.DataBackend {
	case BackendBigQuery:
		return c.GCPProjectID != "" && c.BQDataset != ""
	case BackendSQLite:
		return c.SQLiteDBPath != ""
	}
	return false
}

// ExportEnabled reports whether snapshot export has a destination bucket.
func (c *Config) ExportEnabled() bool {
	return c.GCSBucket != ""
}

// NotionEnabled reports whether the Notion mirror can run.
func (c *Config) NotionEnabled() bool {
	return c.NotionToken != "" && (c.NotionAccountsDBID != "" || c.NotionTransactionsDBID != "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
