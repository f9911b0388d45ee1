package generation

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by content generators
var (
	// ErrGenerationFailed is returned when generation fails for any general reason
	ErrGenerationFailed = errors.New("content generation failed")

	// ErrInvalidResponse is returned when the provider response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from content provider")

	// ErrContentBlocked is returned when the provider refuses the request due to safety filters
	ErrContentBlocked = errors.New("content blocked by provider safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during content generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// StatusError classifies a non-2xx provider response.
// Rate limiting, timeouts and server errors are transient; rejected
// credentials are a configuration problem; anything else is a plain failure.
func StatusError(provider string, status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s rejected credentials (status %d)", ErrInvalidConfig, provider, status)
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout || status >= 500:
		return fmt.Errorf("%w: %s returned status %d", ErrTransientFailure, provider, status)
	default:
		return fmt.Errorf("%w: %s returned status %d", ErrGenerationFailed, provider, status)
	}
}
