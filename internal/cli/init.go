// Package cli provides the initialization steps shared by cmd/finboard
// and cmd/finboard-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"finboard/internal/config"
	applog "finboard/internal/log"
	"finboard/internal/store/sqlite"
)

// SetupLogger initializes structured logging and installs it as the slog
// default so package-level slog calls share the same handler.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	cfg.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level})

	logger := applog.New(cfg)
	slog.SetDefault(logger.Logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Missing files are
// fine; production sets real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite repository, running migrations, or exits the
// process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *sqlite.Repository {
	repo, err := sqlite.NewRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			applog.FieldError, err.Error(), "path", dbPath)
		os.Exit(1)
	}
	return repo
}
