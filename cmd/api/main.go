package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tradepulse/backend/internal/api/handlers"
	"github.com/tradepulse/backend/internal/api/router"
	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/validator"
	"github.com/tradepulse/backend/internal/providers"
	"github.com/tradepulse/backend/internal/repository/runstore"
	"github.com/tradepulse/backend/internal/services"
	"github.com/tradepulse/backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	// Run-history store
	db, err := runstore.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open run-history store: %v", err)
	}
	defer db.Close()

	if err := runstore.Migrate(db); err != nil {
		log.Fatalf("failed to migrate run-history store: %v", err)
	}

	// Upstream customer-product API
	billing := providers.NewBillingClient(cfg.Upstream, log)

	// Services
	runRepo := runstore.NewRunRepository(db)
	reconService := services.NewReconService(billing, billing, runRepo, cfg.Recon, log)
	runService := services.NewRunService(runRepo, log)

	// Handlers
	val := validator.New()
	h := &router.Handlers{
		Health:         handlers.NewHealthHandler(db),
		Reconciliation: handlers.NewReconciliationHandler(reconService, cfg.Recon, log, val),
		Runs:           handlers.NewRunHandler(runService, log),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background scheduler
	var scheduler *worker.ReconScheduler
	if cfg.Worker.Enabled {
		scheduler = worker.NewReconScheduler(reconService, cfg.Worker, log)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("failed to start reconciliation scheduler: %v", err)
		}
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
		}).Info("Admin API listening")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.ErrorWithErr(err, "Forced shutdown")
	}

	log.Info("Server stopped")
}
