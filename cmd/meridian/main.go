package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridian-crm/meridian-crm/internal/app"
	"github.com/meridian-crm/meridian-crm/internal/customers"
	"github.com/meridian-crm/meridian-crm/internal/interactions"
	"github.com/meridian-crm/meridian-crm/internal/observability"
	"github.com/meridian-crm/meridian-crm/internal/platform/db"
	"github.com/meridian-crm/meridian-crm/internal/reporting"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	customerRepo := customers.NewRepository(dbpool)
	customerService := customers.NewService(logger, customerRepo, auditLogger)
	customerHandler := customers.NewHandler(logger, customerService)

	interactionRepo := interactions.NewRepository(dbpool)
	interactionService := interactions.NewService(logger, interactionRepo, auditLogger)
	interactionHandler := interactions.NewHandler(logger, interactionService)

	reportingRepo := reporting.NewRepository(dbpool)
	reportingService := reporting.NewService(logger, reportingRepo)
	reportingHandler := reporting.NewHandler(logger, reportingService)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		CustomersHandler:    customerHandler,
		InteractionsHandler: interactionHandler,
		ReportingHandler:    reportingHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
