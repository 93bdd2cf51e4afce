package reconrun

import "context"

// Repository defines the interface for run-history data access
type Repository interface {
	// Create records a completed reconciliation run
	Create(ctx context.Context, run *Run) (int64, error)

	// List retrieves recent runs, newest first, with pagination
	List(ctx context.Context, limit, offset int) ([]*Run, int64, error)

	// Latest retrieves the most recent run of the given kind
	Latest(ctx context.Context, kind string) (*Run, error)
}
