package services

import (
	"context"
	"sort"
	"time"

	"github.com/tradepulse/backend/internal/domain/subscription"
)

// scanExpired is the ground-truth pass: it walks the whole directory
// once and computes expired-without-renewal rows directly, with no
// separate index call. A product identity is only reported when no cycle
// at all covers now; otherwise a renewal exists and the identity is
// skipped entirely.
func (s *ReconService) scanExpired(ctx context.Context, windowDays int) ([]subscription.ExpiredRow, bool, error) {
	now := s.now()
	windowStart := now.Add(-time.Duration(windowDays) * 24 * time.Hour)

	seen := make(map[subscription.Entitlement]struct{})
	var rows []subscription.ExpiredRow

	pager := newUserPager(s.directory, s.cfg.PageSize, s.cfg.MaxScanUsers)
	for {
		users, err := pager.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if users == nil {
			break
		}

		for _, u := range users {
			for _, f := range subscription.Fold(u.Purchases, now, s.cfg.ClockSkew) {
				// An active winner means some cycle covers now;
				// the whole identity is renewed.
				if f.Status == subscription.StatusActive {
					continue
				}
				// Identity whose cycles all lack a parseable end
				// date cannot be time-windowed.
				if f.EndsAt == nil {
					continue
				}
				endsAt := *f.EndsAt
				if endsAt.Before(windowStart) || !endsAt.Before(now) {
					continue
				}

				key := subscription.Entitlement{UserID: u.ID, Identity: f.Identity}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				rows = append(rows, subscription.ExpiredRow{
					UserID:       u.ID,
					UserEmail:    u.Email,
					UserName:     u.FullName,
					Identity:     f.Identity,
					ProductLabel: f.ProductLabel,
					EndsAt:       endsAt,
					Status:       subscription.StatusExpired,
				})
			}
		}
	}

	sortExpiredRows(rows)

	return rows, pager.Truncated(), nil
}

// sortExpiredRows orders rows most recently expired first. The ordering
// is a contract with the admin view, not an accident of scan order.
func sortExpiredRows(rows []subscription.ExpiredRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].EndsAt.After(rows[j].EndsAt)
	})
}
