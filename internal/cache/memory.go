package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process NumberCache used when Redis is not configured
// and in tests.
type MemoryCache struct {
	mu        sync.RWMutex
	value     string
	expiresAt time.Time
	present   bool
	now       func() time.Time
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

// WithClock overrides the time source.
func (m *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

func (m *MemoryCache) Get(_ context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.present {
		return "", false, nil
	}
	if !m.expiresAt.IsZero() && !m.now().Before(m.expiresAt) {
		return "", false, nil
	}
	return m.value, true, nil
}

func (m *MemoryCache) Set(_ context.Context, number string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.value = number
	m.present = true
	m.expiresAt = time.Time{}
	if ttl > 0 {
		m.expiresAt = m.now().Add(ttl)
	}
	return nil
}

func (m *MemoryCache) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.value = ""
	m.present = false
	m.expiresAt = time.Time{}
	return nil
}
