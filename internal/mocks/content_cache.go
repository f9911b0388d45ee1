package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/service/content"
)

// MockCache implements content.Cache for testing. Without GetOrGenerateFn
// it serves Entry, or Err when set.
type MockCache struct {
	CacheKind       domain.CacheKind
	GetOrGenerateFn func(ctx context.Context, rawKey string) (*domain.CacheEntry, error)
	Entry           *domain.CacheEntry
	Err             error

	mu   sync.Mutex
	keys []string
}

var _ content.Cache = (*MockCache)(nil)

// Kind implements content.Cache
func (m *MockCache) Kind() domain.CacheKind {
	return m.CacheKind
}

// NormalizeKey implements content.Cache
func (m *MockCache) NormalizeKey(rawKey string) (string, error) {
	return strings.TrimSpace(rawKey), nil
}

// GetOrGenerate implements content.Cache
func (m *MockCache) GetOrGenerate(ctx context.Context, rawKey string) (*domain.CacheEntry, error) {
	m.mu.Lock()
	m.keys = append(m.keys, rawKey)
	m.mu.Unlock()
	if m.GetOrGenerateFn != nil {
		return m.GetOrGenerateFn(ctx, rawKey)
	}
	return m.Entry, m.Err
}

// Lookup implements content.Cache
func (m *MockCache) Lookup(ctx context.Context, rawKey string) (*domain.CacheEntry, error) {
	if m.Entry == nil {
		return nil, content.ErrEntryNotFound
	}
	return m.Entry, nil
}

// AttachMetadata implements content.Cache
func (m *MockCache) AttachMetadata(ctx context.Context, rawKey, sourceURL string) error {
	if m.Entry == nil {
		return content.ErrEntryNotFound
	}
	m.Entry.SourceURL = sourceURL
	return nil
}

// Keys returns the keys passed to GetOrGenerate, in call order.
func (m *MockCache) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}
