package credential

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryBackend keeps values in process memory. Values never expire.
type MemoryBackend struct {
	c *cache.Cache
}

// NewMemoryBackend returns an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{c: cache.New(cache.NoExpiration, 0)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.c.Set(key, value, cache.NoExpiration)
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.c.Delete(key)
	}
	return nil
}

// Len reports the number of stored keys.
func (m *MemoryBackend) Len() int {
	return m.c.ItemCount()
}
