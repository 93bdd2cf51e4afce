package services

import (
	"context"
	"sort"
	"time"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/reconrun"
	"github.com/tradepulse/backend/internal/domain/subscription"
	apperrors "github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/metrics"
)

// ReconService implements subscription.Service: the two-tier
// reconciliation of expired subscriptions and the companion upcoming-
// renewals query. All state is built fresh per call, so concurrent
// invocations are safe.
type ReconService struct {
	directory subscription.UserDirectory
	summary   subscription.SummarySource
	runs      reconrun.Repository
	cfg       config.ReconConfig
	logger    *logger.Logger
	now       func() time.Time
}

// NewReconService creates a new reconciliation service. summary and runs
// may be nil: a nil summary skips straight to the full scan, a nil runs
// repository disables the audit trail.
func NewReconService(
	directory subscription.UserDirectory,
	summary subscription.SummarySource,
	runs reconrun.Repository,
	cfg config.ReconConfig,
	log *logger.Logger,
) *ReconService {
	return &ReconService{
		directory: directory,
		summary:   summary,
		runs:      runs,
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
}

// ReconcileExpired answers "which subscriptions expired within the
// trailing window without being renewed". It prefers the cheap
// summarized source, cross-checks it against the active-entitlement
// index, and falls back to the authoritative full scan whenever the
// summary is empty, stale or unreachable. An empty summary is never
// reported as "no expirations" without the scan confirming it.
func (s *ReconService) ReconcileExpired(ctx context.Context, windowDays int) (*subscription.ExpiredResult, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.WindowDays
	}
	start := s.now()

	if result := s.trySummary(ctx, windowDays); result != nil {
		s.finishRun(ctx, reconrun.KindExpired, windowDays, start, result, nil)
		return result, nil
	}

	metrics.RecordSummaryFallback()

	rows, partial, err := s.scanExpired(ctx, windowDays)
	if err != nil {
		appErr := apperrors.ReconUnavailable(err)
		s.finishRun(ctx, reconrun.KindExpired, windowDays, start, nil, appErr)
		s.logger.ErrorWithErr(err, "Expired-subscription scan failed")
		return nil, appErr
	}

	result := &subscription.ExpiredResult{
		Rows:    rows,
		Source:  subscription.SourceScan,
		Partial: partial,
	}
	s.finishRun(ctx, reconrun.KindExpired, windowDays, start, result, nil)

	s.logger.WithFields(map[string]interface{}{
		"rows":        len(rows),
		"window_days": windowDays,
		"partial":     partial,
	}).Info("Expired subscriptions reconciled from full scan")

	return result, nil
}

// trySummary runs the cheap path. It returns nil whenever the fallback
// scan must run instead: missing source, transport error, unparseable
// payload, or a summary that is empty after the active-index filter.
func (s *ReconService) trySummary(ctx context.Context, windowDays int) *subscription.ExpiredResult {
	if s.summary == nil {
		return nil
	}

	rows, err := s.summary.ExpiredSummary(ctx, windowDays)
	if err != nil {
		s.logger.WithError(err).Warn("Summary source unavailable, falling back to scan")
		return nil
	}
	if len(rows) == 0 {
		return nil
	}

	index, err := s.buildActiveIndex(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Active-entitlement index failed, falling back to scan")
		return nil
	}

	filtered := make([]subscription.ExpiredRow, 0, len(rows))
	for _, row := range rows {
		// Identity is always re-derived locally; the summary's own
		// grouping is not trusted.
		row.Identity = subscription.CanonicalizeLabel(row.ProductLabel)
		row.Status = subscription.StatusExpired
		if index.Contains(row.Entitlement()) {
			// The summary has not observed this renewal yet.
			continue
		}
		filtered = append(filtered, row)
	}

	if len(filtered) == 0 {
		return nil
	}

	sortExpiredRows(filtered)

	s.logger.WithFields(map[string]interface{}{
		"rows":     len(filtered),
		"discards": len(rows) - len(filtered),
	}).Info("Expired subscriptions reconciled from summary source")

	return &subscription.ExpiredResult{
		Rows:   filtered,
		Source: subscription.SourceSummary,
	}
}

// UpcomingRenewals lists every raw purchase cycle with an end date
// inside [now, now+windowDays]. Cycles are deliberately not folded: the
// admin wants to see each cycle due soon, not one row per product.
func (s *ReconService) UpcomingRenewals(ctx context.Context, windowDays int) (*subscription.RenewalResult, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.RenewalDays
	}
	start := s.now()

	now := start
	horizon := now.Add(time.Duration(windowDays) * 24 * time.Hour)

	var rows []subscription.RenewalRow

	pager := newUserPager(s.directory, s.cfg.PageSize, s.cfg.MaxScanUsers)
	for {
		users, err := pager.Next(ctx)
		if err != nil {
			appErr := apperrors.ReconUnavailable(err)
			s.finishRun(ctx, reconrun.KindRenewals, windowDays, start, nil, appErr)
			s.logger.ErrorWithErr(err, "Upcoming-renewal scan failed")
			return nil, appErr
		}
		if users == nil {
			break
		}

		for _, u := range users {
			for _, p := range u.Purchases {
				if p.EndsAt == nil {
					continue
				}
				endsAt := *p.EndsAt
				if endsAt.Before(now) || endsAt.After(horizon) {
					continue
				}
				rows = append(rows, subscription.RenewalRow{
					UserID:       u.ID,
					UserEmail:    u.Email,
					UserName:     u.FullName,
					PurchaseID:   p.ID,
					ProductLabel: renewalLabel(p),
					Status:       p.Status,
					EndsAt:       endsAt,
				})
			}
		}
	}

	// Soonest expiry first
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].EndsAt.Before(rows[j].EndsAt)
	})

	result := &subscription.RenewalResult{
		Rows:    rows,
		Partial: pager.Truncated(),
	}
	s.finishRunRenewals(ctx, windowDays, start, result)

	return result, nil
}

func renewalLabel(p subscription.PurchaseRecord) string {
	if label := subscription.DisplayLabel(p); label != "" {
		return label
	}
	return subscription.UnknownLabel
}

// finishRun records the outcome of an expired reconciliation in the
// audit trail and in metrics.
func (s *ReconService) finishRun(
	ctx context.Context,
	kind string,
	windowDays int,
	start time.Time,
	result *subscription.ExpiredResult,
	runErr error,
) {
	duration := s.now().Sub(start)

	run := &reconrun.Run{
		Kind:       kind,
		WindowDays: windowDays,
		Trigger:    TriggerFromContext(ctx),
		DurationMS: duration.Milliseconds(),
	}

	status := "ok"
	source := ""
	if runErr != nil {
		status = "error"
		run.Error = runErr.Error()
	} else if result != nil {
		source = result.Source
		run.Source = result.Source
		run.Rows = len(result.Rows)
		run.Partial = result.Partial
	}

	metrics.RecordReconciliation(kind, source, status, duration)
	s.recordRun(ctx, run)
}

func (s *ReconService) finishRunRenewals(ctx context.Context, windowDays int, start time.Time, result *subscription.RenewalResult) {
	duration := s.now().Sub(start)

	run := &reconrun.Run{
		Kind:       reconrun.KindRenewals,
		Source:     subscription.SourceScan,
		WindowDays: windowDays,
		Rows:       len(result.Rows),
		Partial:    result.Partial,
		Trigger:    TriggerFromContext(ctx),
		DurationMS: duration.Milliseconds(),
	}

	metrics.RecordReconciliation(reconrun.KindRenewals, subscription.SourceScan, "ok", duration)
	s.recordRun(ctx, run)
}

func (s *ReconService) recordRun(ctx context.Context, run *reconrun.Run) {
	if s.runs == nil {
		return
	}
	// The audit trail must not block or fail the reconciliation result;
	// use a detached context so a cancelled request still records.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := s.runs.Create(recordCtx, run); err != nil {
		s.logger.ErrorWithErr(err, "Failed to record reconciliation run")
	}
}
