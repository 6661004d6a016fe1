package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store, used when no redis address is configured.
type Memory struct {
	mu      sync.Mutex
	entries map[string]localEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]localEntry{}, now: time.Now}
}

func (m *Memory) GetRaw(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, ErrMiss
	}
	return e.data, nil
}

func (m *Memory) SetRaw(_ context.Context, key string, data []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = localEntry{expires: m.now().Add(expiration), data: data}
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}
