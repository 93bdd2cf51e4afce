package services

import (
	"context"

	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/metrics"
)

// userPager walks the upstream user directory one page at a time. The
// loop conditions live here so they stay independently testable: the
// directory total is read once from the first page and frozen, the scan
// stops at the user cap, and an empty page terminates defensively even
// when the frozen total promises more. Batches never overlap, so at most
// one page is resident.
type userPager struct {
	directory subscription.UserDirectory
	pageSize  int
	maxUsers  int

	page      int
	total     int
	scanned   int
	done      bool
	truncated bool
}

func newUserPager(directory subscription.UserDirectory, pageSize, maxUsers int) *userPager {
	return &userPager{
		directory: directory,
		pageSize:  pageSize,
		maxUsers:  maxUsers,
		page:      1,
		total:     -1,
	}
}

// Next returns the next batch of users to scan, or nil once the scan is
// complete. Cancellation is checked before each page request, so callers
// never observe a partially fetched page.
func (p *userPager) Next(ctx context.Context) ([]subscription.UserRecord, error) {
	if p.done {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		p.done = true
		return nil, err
	}

	page, err := p.directory.ListUsers(ctx, p.page, p.pageSize)
	if err != nil {
		p.done = true
		return nil, err
	}

	items := page.Items
	if len(items) == 0 {
		// Defensive exit: the total may promise pages the source
		// no longer has.
		p.done = true
		return nil, nil
	}

	if p.total < 0 {
		p.total = page.Total
	}

	if remaining := p.maxUsers - p.scanned; len(items) > remaining {
		items = items[:remaining]
		p.truncated = true
	}
	p.scanned += len(items)
	metrics.RecordPageFetched(len(items))

	p.page++
	if p.scanned >= p.maxUsers {
		if p.scanned < p.total {
			p.truncated = true
		}
		p.done = true
	} else if (p.page-1)*p.pageSize >= p.total {
		p.done = true
	}

	if p.truncated {
		metrics.RecordTruncatedScan()
	}

	return items, nil
}

// Truncated reports whether the user cap cut the scan short while the
// directory still had users left.
func (p *userPager) Truncated() bool {
	return p.truncated
}

// Scanned returns the number of users handed out so far
func (p *userPager) Scanned() int {
	return p.scanned
}
