package generation

import (
	"context"
	"fmt"
	"io"
)

// Content is binary media produced by a generator.
type Content struct {
	Data        []byte
	ContentType string
}

// ContentGenerator produces media for an already normalized key.
// Implementations make a single attempt bounded by their own timeout and
// report failures using the error categories in errors.go.
type ContentGenerator interface {
	Generate(ctx context.Context, key string) (*Content, error)
}

// GeneratorFunc adapts an ordinary function to ContentGenerator.
type GeneratorFunc func(ctx context.Context, key string) (*Content, error)

// Generate calls f(ctx, key).
func (f GeneratorFunc) Generate(ctx context.Context, key string) (*Content, error) {
	return f(ctx, key)
}

// NotConfigured returns a generator that always fails with ErrInvalidConfig.
// It stands in for a provider whose credentials are missing so the service
// can still start and report the problem per request.
func NotConfigured(provider, reason string) ContentGenerator {
	return GeneratorFunc(func(ctx context.Context, key string) (*Content, error) {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, provider, reason)
	})
}

// ReadBody reads a provider response body of at most limit bytes.
// A body longer than limit fails with ErrInvalidResponse rather than being
// cut short, and a failed read is reported as ErrTransientFailure.
func ReadBody(provider string, body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", ErrTransientFailure, provider, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s response exceeds %d bytes", ErrInvalidResponse, provider, limit)
	}
	return data, nil
}
