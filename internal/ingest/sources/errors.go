package sources

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorCategory normalizes provider failures into a small taxonomy.
type ErrorCategory string

const (
	// ErrorTimeout indicates the provider took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the provider returned a malformed body.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues.
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorProviderOutage indicates the provider is unavailable.
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorRateLimited indicates the provider rejected us for volume.
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected internal error.
	ErrorInternal ErrorCategory = "internal"
)

// SourceError wraps an extraction failure with its normalized category and
// the area it occurred in, so callers can log and skip at area granularity.
type SourceError struct {
	Category   ErrorCategory
	Source     SourceName
	Area       string
	Message    string
	Underlying error
}

func (e *SourceError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("source %s [%s] area %q: %s: %v", e.Source, e.Category, e.Area, e.Message, e.Underlying)
	}
	return fmt.Sprintf("source %s [%s] area %q: %s", e.Source, e.Category, e.Area, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Underlying
}

// NewSourceError builds a categorized extraction error.
func NewSourceError(category ErrorCategory, source SourceName, area, message string, underlying error) *SourceError {
	return &SourceError{
		Category:   category,
		Source:     source,
		Area:       area,
		Message:    message,
		Underlying: underlying,
	}
}

// Category extracts the error category, defaulting to internal.
func Category(err error) ErrorCategory {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Category
	}
	return ErrorInternal
}

// categoryForStatus maps a non-success HTTP status to the taxonomy.
func categoryForStatus(code int) ErrorCategory {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrorAuthentication
	case code == http.StatusTooManyRequests:
		return ErrorRateLimited
	case code >= 500:
		return ErrorProviderOutage
	default:
		return ErrorBadData
	}
}

// categoryForTransport maps a client-side request error to the taxonomy.
func categoryForTransport(err error) ErrorCategory {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorTimeout
	}
	return ErrorProviderOutage
}
