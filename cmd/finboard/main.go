package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finboard/internal/advisor"
	"finboard/internal/amqp"
	"finboard/internal/auth"
	"finboard/internal/backend"
	"finboard/internal/cli"
	apphttp "finboard/internal/http"
	applog "finboard/internal/log"
	"finboard/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	st, err := backend.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer st.Close()
	logger.Info("Storage backend initialized", "backend", cfg.DataBackend)

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	var preparer *advisor.Preparer
	if cfg.AdvisorEnabled() {
		generator, err := advisor.NewGeminiGenerator(context.Background(), cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini generator", applog.FieldError, err.Error())
			os.Exit(1)
		}
		preparer = advisor.NewPreparer(st, st, st, generator)
		logger.Info("Advisor initialized", applog.FieldModel, cfg.GeminiModel)
	} else {
		logger.Info("Advisor disabled - no GEMINI_API_KEY provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Resolver:     auth.NewResolver(st),
		Transactions: services.NewTransactionService(st, publisher),
		Summaries:    services.NewSummaryService(st),
		Advisor:      preparer,
		Categories:   st,
		Logger:       logger.WithComponent(applog.ComponentHTTP),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting finboard server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
