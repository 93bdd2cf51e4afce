package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/reconrun"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/services"
)

// ReconScheduler runs reconciliation on a cron schedule so the run
// history and metrics stay warm between console visits
type ReconScheduler struct {
	service   subscription.Service
	cfg       config.WorkerConfig
	scheduler *cron.Cron
	logger    *logger.Logger
}

// NewReconScheduler creates a new reconciliation scheduler
func NewReconScheduler(service subscription.Service, cfg config.WorkerConfig, log *logger.Logger) *ReconScheduler {
	return &ReconScheduler{
		service: service,
		cfg:     cfg,
		logger:  log,
	}
}

// Start validates the schedule and begins periodic reconciliation
func (s *ReconScheduler) Start() error {
	if _, err := cron.ParseStandard(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid worker schedule %q: %w", s.cfg.Schedule, err)
	}

	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc(s.cfg.Schedule, s.runOnce); err != nil {
		return fmt.Errorf("failed to schedule reconciliation: %w", err)
	}
	s.scheduler.Start()

	s.logger.WithFields(map[string]interface{}{
		"schedule": s.cfg.Schedule,
	}).Info("Reconciliation scheduler started")

	return nil
}

// Stop halts scheduling and waits for a running job to finish
func (s *ReconScheduler) Stop() {
	if s.scheduler == nil {
		return
	}
	<-s.scheduler.Stop().Done()
	s.logger.Info("Reconciliation scheduler stopped")
}

// runOnce performs one scheduled reconciliation of both views
func (s *ReconScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = services.WithTrigger(ctx, reconrun.TriggerScheduler)

	expired, err := s.service.ReconcileExpired(ctx, 0)
	if err != nil {
		s.logger.ErrorWithErr(err, "Scheduled expired reconciliation failed")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"rows":    len(expired.Rows),
			"source":  expired.Source,
			"partial": expired.Partial,
		}).Info("Scheduled expired reconciliation completed")
	}

	renewals, err := s.service.UpcomingRenewals(ctx, 0)
	if err != nil {
		s.logger.ErrorWithErr(err, "Scheduled renewal scan failed")
		return
	}
	s.logger.WithFields(map[string]interface{}{
		"rows":    len(renewals.Rows),
		"partial": renewals.Partial,
	}).Info("Scheduled renewal scan completed")
}
