package client

import (
	"context"
	"net/url"
	"strconv"
)

// ReconciliationService handles reconciliation-related API calls
type ReconciliationService struct {
	client *Client
}

// Expired retrieves subscriptions that expired without renewal inside
// the trailing window. windowDays <= 0 uses the server default.
func (s *ReconciliationService) Expired(ctx context.Context, windowDays int) (*ExpiredResult, error) {
	query := url.Values{}
	if windowDays > 0 {
		query.Set("window_days", strconv.Itoa(windowDays))
	}

	var result ExpiredResult
	if err := s.client.doRequest(ctx, "/api/v1/reconciliation/expired", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Renewals retrieves purchase cycles due to expire within the window
func (s *ReconciliationService) Renewals(ctx context.Context, windowDays int) (*RenewalsResult, error) {
	query := url.Values{}
	if windowDays > 0 {
		query.Set("window_days", strconv.Itoa(windowDays))
	}

	var result RenewalsResult
	if err := s.client.doRequest(ctx, "/api/v1/reconciliation/renewals", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Runs retrieves the reconciliation audit trail, newest first
func (s *ReconciliationService) Runs(ctx context.Context, page, pageSize int) (*RunPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}

	var result RunPage
	if err := s.client.doRequest(ctx, "/api/v1/reconciliation/runs", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LatestRun retrieves the most recent run of the given kind
// ("expired" or "renewals")
func (s *ReconciliationService) LatestRun(ctx context.Context, kind string) (*Run, error) {
	query := url.Values{}
	if kind != "" {
		query.Set("kind", kind)
	}

	var result Run
	if err := s.client.doRequest(ctx, "/api/v1/reconciliation/runs/latest", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
