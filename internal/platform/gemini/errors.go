package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/voca-api/internal/generation"
	"google.golang.org/genai"
)

// ErrEmptyWord is returned when Generate is called without a word.
var ErrEmptyWord = errors.New("word cannot be empty")

// mapAPIError converts an error from the genai client into one of the
// generation error categories.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s", generation.StatusError("gemini", apiErr.Code), apiErr.Message)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: gemini request timed out", generation.ErrTransientFailure)
	}

	return fmt.Errorf("%w: gemini request: %v", generation.ErrGenerationFailed, err)
}
