package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/cli"
	applog "finboard/internal/log"
	"finboard/internal/sheets"
	gsheet "finboard/internal/sheets/google"
	sheetsmem "finboard/internal/sheets/memory"
	"finboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting finboard-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var exporter sheets.Exporter
	if cfg.ExportEnabled() {
		client, err := gsheet.NewClient(context.Background(), gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			OAuthClientFile: cfg.GoogleOAuthClientFile,
			OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
			OAuthClientJSON: cfg.GoogleOAuthClientJSON,
			OAuthTokenJSON:  cfg.GoogleOAuthTokenJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets exporter initialized",
			applog.FieldSheetsRef, cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		// The worker still consumes events so the queue does not grow
		// unbounded; rows land in the in-memory exporter and are dropped.
		exporter = sheetsmem.New()
		logger.Warn("Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided, events will be drained only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exportWorker := worker.NewExportWorker(repo, exporter, cfg.ExportBatchSize)

	logger.Info("Performing startup export check...")
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", applog.FieldError, err.Error())
		// Keep running; the periodic loop retries.
	}

	go func() {
		if err := amqpClient.ConsumeTransactionEvents(ctx, exportWorker.HandleEvent); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Event consumption failed", applog.FieldError, err.Error())
			}
			cancel()
		}
	}()

	go exportWorker.RunPeriodic(ctx, cfg.ExportInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight handlers a moment to finish before the process exits.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
