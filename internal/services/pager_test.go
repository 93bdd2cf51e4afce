package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/testutil"
)

func makeUsers(n int) []subscription.UserRecord {
	users := make([]subscription.UserRecord, n)
	for i := range users {
		users[i] = subscription.UserRecord{
			ID:    int64(i + 1),
			Email: fmt.Sprintf("user%d@example.com", i+1),
		}
	}
	return users
}

func drainPager(t *testing.T, p *userPager) []subscription.UserRecord {
	t.Helper()
	var all []subscription.UserRecord
	for {
		batch, err := p.Next(context.Background())
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if batch == nil {
			return all
		}
		all = append(all, batch...)
	}
}

func TestPagerWalksAllPages(t *testing.T) {
	dir := &testutil.MockUserDirectory{Users: makeUsers(25)}
	pager := newUserPager(dir, 10, 1000)

	users := drainPager(t, pager)

	if len(users) != 25 {
		t.Errorf("scanned %d users, want 25", len(users))
	}
	if dir.Calls != 3 {
		t.Errorf("made %d page requests, want 3", dir.Calls)
	}
	if pager.Truncated() {
		t.Error("full walk reported truncated")
	}
}

func TestPagerExactPageBoundary(t *testing.T) {
	// 20 users at page size 10: exactly 2 pages, no trailing empty fetch
	dir := &testutil.MockUserDirectory{Users: makeUsers(20)}
	pager := newUserPager(dir, 10, 1000)

	users := drainPager(t, pager)

	if len(users) != 20 {
		t.Errorf("scanned %d users, want 20", len(users))
	}
	if dir.Calls != 2 {
		t.Errorf("made %d page requests, want 2", dir.Calls)
	}
}

func TestPagerStopsAtUserCap(t *testing.T) {
	dir := &testutil.MockUserDirectory{Users: makeUsers(30)}
	pager := newUserPager(dir, 10, 15)

	users := drainPager(t, pager)

	if len(users) != 15 {
		t.Errorf("scanned %d users, want 15 (cap)", len(users))
	}
	if !pager.Truncated() {
		t.Error("capped scan not reported truncated")
	}
	if dir.Calls != 2 {
		t.Errorf("made %d page requests, want 2", dir.Calls)
	}
}

func TestPagerCapSmallerThanOnePage(t *testing.T) {
	// Cap of 1 with 3 users on the first page: exactly one user is
	// handed out, mid-page.
	dir := &testutil.MockUserDirectory{Users: makeUsers(3)}
	pager := newUserPager(dir, 10, 1)

	users := drainPager(t, pager)

	if len(users) != 1 {
		t.Fatalf("scanned %d users, want exactly 1", len(users))
	}
	if users[0].ID != 1 {
		t.Errorf("scanned user %d, want user 1", users[0].ID)
	}
	if !pager.Truncated() {
		t.Error("capped scan not reported truncated")
	}
	if dir.Calls != 1 {
		t.Errorf("made %d page requests, want 1", dir.Calls)
	}
}

func TestPagerCapEqualsDirectory(t *testing.T) {
	// Cap exactly equal to the directory size is a complete scan
	dir := &testutil.MockUserDirectory{Users: makeUsers(10)}
	pager := newUserPager(dir, 5, 10)

	users := drainPager(t, pager)

	if len(users) != 10 {
		t.Errorf("scanned %d users, want 10", len(users))
	}
	if pager.Truncated() {
		t.Error("complete scan reported truncated")
	}
}

func TestPagerTotalFrozenFromFirstPage(t *testing.T) {
	// The directory claims 50 users but only has 12. The frozen total
	// drives the loop; the empty page 3 terminates it defensively.
	dir := &testutil.MockUserDirectory{Users: makeUsers(12), TotalOverride: 50}
	pager := newUserPager(dir, 5, 1000)

	users := drainPager(t, pager)

	if len(users) != 12 {
		t.Errorf("scanned %d users, want 12", len(users))
	}
	// Pages 1..3 have items, page 4 comes back empty and stops the walk
	if dir.Calls != 4 {
		t.Errorf("made %d page requests, want 4", dir.Calls)
	}
}

func TestPagerEmptyDirectory(t *testing.T) {
	dir := &testutil.MockUserDirectory{}
	pager := newUserPager(dir, 10, 1000)

	users := drainPager(t, pager)

	if len(users) != 0 {
		t.Errorf("scanned %d users, want 0", len(users))
	}
	if pager.Truncated() {
		t.Error("empty directory reported truncated")
	}
}

func TestPagerPropagatesErrors(t *testing.T) {
	upstreamErr := errors.New("upstream returned 502")
	dir := &testutil.MockUserDirectory{
		Users:      makeUsers(30),
		FailOnPage: 2,
		Err:        upstreamErr,
	}
	pager := newUserPager(dir, 10, 1000)

	if _, err := pager.Next(context.Background()); err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if _, err := pager.Next(context.Background()); !errors.Is(err, upstreamErr) {
		t.Fatalf("second page error = %v, want %v", err, upstreamErr)
	}

	// A failed pager stays done
	batch, err := pager.Next(context.Background())
	if batch != nil || err != nil {
		t.Errorf("Next() after failure = (%v, %v), want (nil, nil)", batch, err)
	}
}

func TestPagerHonorsCancellation(t *testing.T) {
	dir := &testutil.MockUserDirectory{Users: makeUsers(30)}
	pager := newUserPager(dir, 10, 1000)

	ctx, cancel := context.WithCancel(context.Background())

	if _, err := pager.Next(ctx); err != nil {
		t.Fatalf("first page failed: %v", err)
	}

	cancel()

	if _, err := pager.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Next() after cancel = %v, want context.Canceled", err)
	}
	if dir.Calls != 1 {
		t.Errorf("made %d page requests after cancel, want 1", dir.Calls)
	}
}
