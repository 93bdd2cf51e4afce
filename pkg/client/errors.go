package client

import "fmt"

// APIError represents an error returned by the admin API
type APIError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsUnavailable reports whether the error means reconciliation could not
// run at all, as opposed to an empty result
func (e *APIError) IsUnavailable() bool {
	return e.Code == "RECONCILIATION_UNAVAILABLE" || e.Code == "SERVICE_UNAVAILABLE"
}
