package services

import (
	"context"

	"github.com/tradepulse/backend/internal/domain/reconrun"
	"github.com/tradepulse/backend/internal/pkg/logger"
)

// RunService exposes the reconciliation audit trail to the admin API
type RunService struct {
	repo   reconrun.Repository
	logger *logger.Logger
}

// NewRunService creates a new run-history service
func NewRunService(repo reconrun.Repository, log *logger.Logger) *RunService {
	return &RunService{repo: repo, logger: log}
}

// List retrieves recent runs, newest first
func (s *RunService) List(ctx context.Context, limit, offset int) ([]*reconrun.Run, int64, error) {
	return s.repo.List(ctx, limit, offset)
}

// Latest retrieves the most recent run of the given kind
func (s *RunService) Latest(ctx context.Context, kind string) (*reconrun.Run, error) {
	return s.repo.Latest(ctx, kind)
}
