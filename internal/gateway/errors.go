package gateway

import (
	"errors"
	"fmt"
)

// ErrEmptySummary marks the backend quirk where a summarize request for
// a range entirely before the site's creation returns a null summary.
// Callers recover it into a valid empty result.
var ErrEmptySummary = errors.New("gateway: empty summary")

// APIError is a structured error body returned by the remote API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %s (%s, HTTP %d)", e.Message, e.Code, e.StatusCode)
}

// IsFeatureGated reports whether the error carries the backend's
// plan-restriction signal rather than a plain authorization failure.
func (e *APIError) IsFeatureGated() bool {
	switch e.Code {
	case "rest_api_restricted", "feature_gated":
		return true
	}
	return false
}
