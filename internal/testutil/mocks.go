// Package testutil provides hand-written mocks for the upstream sources
// and the run repository, shared across service and handler tests.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tradepulse/backend/internal/domain/reconrun"
	"github.com/tradepulse/backend/internal/domain/subscription"
)

// MockUserDirectory serves a fixed user slice through the paginated
// directory interface. Page requests slice into Users the way a real
// upstream would; FailOnPage injects an error on a specific page.
type MockUserDirectory struct {
	Users []subscription.UserRecord

	// TotalOverride reports a directory total different from len(Users),
	// simulating a source whose count and pages disagree.
	TotalOverride int

	// FailOnPage makes that page request fail (1-indexed; 0 disables)
	FailOnPage int
	Err        error

	Calls     int
	PagesSeen []int
}

func (m *MockUserDirectory) ListUsers(ctx context.Context, page, pageSize int) (*subscription.UserPage, error) {
	m.Calls++
	m.PagesSeen = append(m.PagesSeen, page)

	if m.FailOnPage != 0 && page == m.FailOnPage {
		return nil, m.Err
	}

	total := len(m.Users)
	if m.TotalOverride > 0 {
		total = m.TotalOverride
	}

	start := (page - 1) * pageSize
	if start >= len(m.Users) {
		return &subscription.UserPage{Page: page, PageSize: pageSize, Total: total}, nil
	}
	end := start + pageSize
	if end > len(m.Users) {
		end = len(m.Users)
	}

	return &subscription.UserPage{
		Items:    m.Users[start:end],
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// MockSummarySource returns fixed summary rows or a fixed error
type MockSummarySource struct {
	Rows  []subscription.ExpiredRow
	Err   error
	Calls int
}

func (m *MockSummarySource) ExpiredSummary(ctx context.Context, windowDays int) ([]subscription.ExpiredRow, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rows, nil
}

// MockRunRepository records runs in memory
type MockRunRepository struct {
	mu     sync.Mutex
	Runs   []*reconrun.Run
	nextID int64
}

func (m *MockRunRepository) Create(ctx context.Context, run *reconrun.Run) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	run.ID = m.nextID
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	m.Runs = append(m.Runs, run)
	return run.ID, nil
}

func (m *MockRunRepository) List(ctx context.Context, limit, offset int) ([]*reconrun.Run, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := int64(len(m.Runs))

	// Newest first
	var out []*reconrun.Run
	for i := len(m.Runs) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Runs[i])
	}
	return out, total, nil
}

func (m *MockRunRepository) Latest(ctx context.Context, kind string) (*reconrun.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.Runs) - 1; i >= 0; i-- {
		if m.Runs[i].Kind == kind {
			return m.Runs[i], nil
		}
	}
	return nil, errors.New("no run recorded")
}

// LastRun returns the most recently recorded run of any kind, or nil
func (m *MockRunRepository) LastRun() *reconrun.Run {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Runs) == 0 {
		return nil
	}
	return m.Runs[len(m.Runs)-1]
}
