package subscription

import "context"

// UserDirectory is the paginated upstream source of users and their
// purchases. Pages are 1-indexed; Total on the first page drives loop
// termination.
type UserDirectory interface {
	// ListUsers retrieves one page of users with their purchase cycles
	ListUsers(ctx context.Context, page, pageSize int) (*UserPage, error)
}

// SummarySource is the optional pre-aggregated expired-subscriptions
// endpoint. Best-effort: any error or unparseable payload is treated as
// "no summary available", never as a hard failure.
type SummarySource interface {
	// ExpiredSummary retrieves pre-aggregated expired rows for the window
	ExpiredSummary(ctx context.Context, windowDays int) ([]ExpiredRow, error)
}

// Service is the reconciliation engine consumed by the admin API
type Service interface {
	// ReconcileExpired computes products whose latest cycle expired inside
	// the trailing window with no newer cycle covering now
	ReconcileExpired(ctx context.Context, windowDays int) (*ExpiredResult, error)

	// UpcomingRenewals lists raw purchase cycles ending within the window
	UpcomingRenewals(ctx context.Context, windowDays int) (*RenewalResult, error)
}
