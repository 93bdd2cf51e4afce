package reconrun

import "time"

// Run is one recorded reconciliation invocation, kept as an audit trail
// for the admin console
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

// Run kinds
const (
	KindExpired  = "expired"
	KindRenewals = "renewals"
)

// Run triggers
const (
	TriggerAPI       = "api"
	TriggerScheduler = "scheduler"
	TriggerCLI       = "cli"
)
