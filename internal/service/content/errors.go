package content

import (
	"errors"
	"fmt"

	"github.com/phrazzld/voca-api/internal/store"
)

var (
	// ErrInvalidKey is returned for keys that are empty after trimming or
	// longer than the cache's limit. It is always wrapped in a
	// *domain.ValidationError.
	ErrInvalidKey = errors.New("invalid content key")

	// ErrEntryNotFound is returned when no content is cached for a key.
	ErrEntryNotFound = fmt.Errorf("%w: content", store.ErrNotFound)

	// ErrExternalService wraps any failure of the content generator.
	ErrExternalService = errors.New("external content service failed")

	// ErrGeneratorNotConfigured is returned when the generator is missing
	// credentials or otherwise misconfigured.
	ErrGeneratorNotConfigured = errors.New("content generator is not configured")
)
