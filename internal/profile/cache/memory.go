package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is a process-local Cache. Expired entries are dropped when read.
type Memory[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	now     func() time.Time
}

// MemoryOption configures a Memory cache.
type MemoryOption[K comparable, V any] func(*Memory[K, V])

// WithClock replaces time.Now for expiry checks.
func WithClock[K comparable, V any](now func() time.Time) MemoryOption[K, V] {
	return func(m *Memory[K, V]) { m.now = now }
}

// NewMemory creates an empty in-memory cache.
func NewMemory[K comparable, V any](opts ...MemoryOption[K, V]) *Memory[K, V] {
	m := &Memory[K, V]{entries: make(map[K]entry[V]), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return zero, false, nil
	}
	return e.value, true, nil
}

func (m *Memory[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry[V]{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory[K, V]) Delete(_ context.Context, key K) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
