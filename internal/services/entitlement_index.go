package services

import (
	"context"

	"github.com/tradepulse/backend/internal/domain/subscription"
)

// buildActiveIndex scans the user directory and collects every
// (user, product identity) pair with at least one cycle still covering
// now. The index is only ever a validation filter for the summarized
// source: it catches summary rows whose renewal the summary has not yet
// observed. It is never the primary result.
func (s *ReconService) buildActiveIndex(ctx context.Context) (subscription.ActiveSet, error) {
	now := s.now()
	index := make(subscription.ActiveSet)

	pager := newUserPager(s.directory, s.cfg.PageSize, s.cfg.MaxScanUsers)
	for {
		users, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		if users == nil {
			break
		}

		for _, u := range users {
			for _, p := range u.Purchases {
				if subscription.IsActive(p.EndsAt, now, s.cfg.ClockSkew) {
					index[subscription.Entitlement{
						UserID:   u.ID,
						Identity: subscription.Canonicalize(p),
					}] = struct{}{}
				}
			}
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"entitlements": len(index),
		"users":        pager.Scanned(),
	}).Debug("Active-entitlement index built")

	return index, nil
}
