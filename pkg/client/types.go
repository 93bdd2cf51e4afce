package client

import "time"

// ExpiredRow is one subscription that expired without renewal
type ExpiredRow struct {
	UserID      int64     `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	UserName    string    `json:"user_name"`
	Product     string    `json:"product"`
	ProductSlug string    `json:"product_slug"`
	EndsAt      time.Time `json:"ends_at"`
	Status      string    `json:"status"`
}

// ExpiredResult is the expirations payload with its provenance
type ExpiredResult struct {
	Items      []ExpiredRow `json:"items"`
	Source     string       `json:"source"`
	Partial    bool         `json:"partial"`
	WindowDays int          `json:"window_days"`
}

// RenewalRow is one purchase cycle due to expire soon
type RenewalRow struct {
	UserID     int64     `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	UserName   string    `json:"user_name"`
	PurchaseID int64     `json:"purchase_id"`
	Product    string    `json:"product"`
	Status     string    `json:"status"`
	EndsAt     time.Time `json:"ends_at"`
}

// RenewalsResult is the upcoming-renewals payload
type RenewalsResult struct {
	Items      []RenewalRow `json:"items"`
	Partial    bool         `json:"partial"`
	WindowDays int          `json:"window_days"`
}

// Run is one reconciliation audit-trail entry
type Run struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	Source     string    `json:"source,omitempty"`
	WindowDays int       `json:"window_days"`
	Rows       int       `json:"rows"`
	Partial    bool      `json:"partial"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Trigger    string    `json:"trigger"`
	CreatedAt  time.Time `json:"created_at"`
}

// RunPage is one page of the run history
type RunPage struct {
	Data       []Run `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}
