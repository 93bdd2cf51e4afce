package subscription

import "time"

// UserRecord is a customer as returned by the upstream product API,
// together with every purchase cycle on their account.
type UserRecord struct {
	ID        int64            `json:"id"`
	Email     string           `json:"email"`
	FullName  string           `json:"full_name"`
	Purchases []PurchaseRecord `json:"purchases"`
}

// PurchaseRecord is a single purchase cycle of one product. Product
// descriptors are inconsistent across origins: the catalog key and the
// free-text name may both be present and disagree, and the stored status
// string is advisory only. EndsAt is nil when the upstream value was
// missing or unparsable.
type PurchaseRecord struct {
	ID          int64      `json:"id"`
	ProductID   string     `json:"product_id"`
	ProductKey  string     `json:"product_key"`
	ProductName string     `json:"product_name"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"started_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// Derived statuses. Only the time comparison against the clock-skew
// boundary decides; PurchaseRecord.Status is never trusted.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// Result provenance
const (
	SourceSummary = "summary"
	SourceScan    = "scan"
)

// Entitlement identifies one (user, product identity) pair. Using a
// struct key instead of a formatted string rules out collisions between
// identities that happen to contain the separator.
type Entitlement struct {
	UserID   int64
	Identity ProductIdentity
}

// ActiveSet is the set of entitlements with at least one cycle still
// covering "now". Built fresh per reconciliation call.
type ActiveSet map[Entitlement]struct{}

// Contains reports whether the entitlement is currently active
func (s ActiveSet) Contains(e Entitlement) bool {
	_, ok := s[e]
	return ok
}

// FoldedPurchase is the single currently-relevant cycle of one product
// identity: the cycle with the latest end date, with a status derived
// from that date.
type FoldedPurchase struct {
	Identity     ProductIdentity `json:"identity"`
	ProductLabel string          `json:"product_label"`
	PurchaseID   int64           `json:"purchase_id"`
	EndsAt       *time.Time      `json:"ends_at"`
	Status       string          `json:"status"`
	Cycles       int             `json:"cycles"`
}

// ExpiredRow is one product that expired inside the lookback window
// without any newer cycle covering "now".
type ExpiredRow struct {
	UserID       int64           `json:"user_id"`
	UserEmail    string          `json:"user_email"`
	UserName     string          `json:"user_name"`
	Identity     ProductIdentity `json:"identity"`
	ProductLabel string          `json:"product_label"`
	EndsAt       time.Time       `json:"ends_at"`
	Status       string          `json:"status"`
}

// Entitlement returns the composite key of the row
func (r ExpiredRow) Entitlement() Entitlement {
	return Entitlement{UserID: r.UserID, Identity: r.Identity}
}

// RenewalRow is one raw purchase cycle due to expire soon. Renewals are
// deliberately not folded: the admin view shows each cycle due, not one
// row per product.
type RenewalRow struct {
	UserID       int64     `json:"user_id"`
	UserEmail    string    `json:"user_email"`
	UserName     string    `json:"user_name"`
	PurchaseID   int64     `json:"purchase_id"`
	ProductLabel string    `json:"product_label"`
	Status       string    `json:"status"`
	EndsAt       time.Time `json:"ends_at"`
}

// ExpiredResult is the outcome of an expired-without-renewal
// reconciliation. Source records which tier produced the rows so the
// console can show the completeness guarantee that applies. Partial is
// set when the scan hit the user cap before exhausting the directory.
type ExpiredResult struct {
	Rows    []ExpiredRow `json:"rows"`
	Source  string       `json:"source"`
	Partial bool         `json:"partial"`
}

// RenewalResult is the outcome of an upcoming-renewals query
type RenewalResult struct {
	Rows    []RenewalRow `json:"rows"`
	Partial bool         `json:"partial"`
}

// UserPage is one page of the upstream user directory
type UserPage struct {
	Items    []UserRecord `json:"items"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Total    int          `json:"total"`
}
