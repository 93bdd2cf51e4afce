package dto

import "time"

// ReconcileQuery carries the validated query parameters of the
// reconciliation endpoints
type ReconcileQuery struct {
	WindowDays int `json:"window_days" validate:"gte=1,lte=365"`
}

// ExpiredRowDTO is one expired-without-renewal row as presented to the
// admin console
type ExpiredRowDTO struct {
	UserID      int64     `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	UserName    string    `json:"user_name"`
	Product     string    `json:"product"`
	ProductSlug string    `json:"product_slug"`
	EndsAt      time.Time `json:"ends_at"`
	Status      string    `json:"status"`
}

// ExpiredResponse is the expirations payload. Source and partial let the
// console distinguish summary-backed results, scan-backed results and
// capped scans.
type ExpiredResponse struct {
	Items      []ExpiredRowDTO `json:"items"`
	Source     string          `json:"source"`
	Partial    bool            `json:"partial"`
	WindowDays int             `json:"window_days"`
}

// RenewalRowDTO is one upcoming-renewal row
type RenewalRowDTO struct {
	UserID     int64     `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	UserName   string    `json:"user_name"`
	PurchaseID int64     `json:"purchase_id"`
	Product    string    `json:"product"`
	Status     string    `json:"status"`
	EndsAt     time.Time `json:"ends_at"`
}

// RenewalsResponse is the upcoming-renewals payload
type RenewalsResponse struct {
	Items      []RenewalRowDTO `json:"items"`
	Partial    bool            `json:"partial"`
	WindowDays int             `json:"window_days"`
}

// RunDTO is one reconciliation audit-trail entry
type RunDTO struct {
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
