package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/voca-api/internal/generation"
)

// MockContentGenerator implements generation.ContentGenerator for testing
type MockContentGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, key string) (*generation.Content, error)

	// Default response values
	Data        []byte
	ContentType string
	Err         error

	mu   sync.Mutex
	keys []string
}

var _ generation.ContentGenerator = (*MockContentGenerator)(nil)

// Generate implements the generation.ContentGenerator interface
func (m *MockContentGenerator) Generate(ctx context.Context, key string) (*generation.Content, error) {
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, key)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	contentType := m.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &generation.Content{Data: m.Data, ContentType: contentType}, nil
}

// Calls returns how many times Generate was called.
func (m *MockContentGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

// Keys returns the keys passed to Generate, in call order.
func (m *MockContentGenerator) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}
