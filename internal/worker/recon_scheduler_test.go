package worker

import (
	"context"
	"testing"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/reconrun"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/services"
)

type stubService struct {
	expiredCalls int
	renewalCalls int
	gotTrigger   string
}

func (s *stubService) ReconcileExpired(ctx context.Context, windowDays int) (*subscription.ExpiredResult, error) {
	s.expiredCalls++
	s.gotTrigger = services.TriggerFromContext(ctx)
	return &subscription.ExpiredResult{Source: subscription.SourceScan}, nil
}

func (s *stubService) UpcomingRenewals(ctx context.Context, windowDays int) (*subscription.RenewalResult, error) {
	s.renewalCalls++
	return &subscription.RenewalResult{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	s := NewReconScheduler(&stubService{}, config.WorkerConfig{Schedule: "not a cron"}, testLogger())
	if err := s.Start(); err == nil {
		t.Fatal("Start() accepted an invalid schedule")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewReconScheduler(&stubService{}, config.WorkerConfig{Schedule: "*/15 * * * *"}, testLogger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	s.Stop()

	// Stop on a never-started scheduler is a no-op
	idle := NewReconScheduler(&stubService{}, config.WorkerConfig{Schedule: "*/15 * * * *"}, testLogger())
	idle.Stop()
}

func TestSchedulerRunOnce(t *testing.T) {
	svc := &stubService{}
	s := NewReconScheduler(svc, config.WorkerConfig{Schedule: "*/15 * * * *"}, testLogger())

	s.runOnce()

	if svc.expiredCalls != 1 || svc.renewalCalls != 1 {
		t.Errorf("runOnce made %d expired and %d renewal calls, want 1 each",
			svc.expiredCalls, svc.renewalCalls)
	}
	if svc.gotTrigger != reconrun.TriggerScheduler {
		t.Errorf("trigger = %q, want %q", svc.gotTrigger, reconrun.TriggerScheduler)
	}
}
