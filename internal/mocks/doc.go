// Package mocks provides shared test doubles for interfaces used across
// packages: stores, services, the JWT service, password hashing, content
// generators, content caches and the quiz session engine.
//
// Most mocks follow one shape: a function field per method for custom
// behavior, default return values used when the function is nil, and call
// tracking guarded by a mutex so concurrent tests can assert on calls.
// TestifyMockUserStore uses testify/mock expectations instead.
//
//	gen := &mocks.MockContentGenerator{Data: []byte("audio")}
//	cache := content.NewAudioCache(entries, gen, 100, logger)
//	// ...
//	assert.Equal(t, 1, gen.Calls())
package mocks
