package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	fragment  Fragment
	expires   time.Time
	namespace string
}

// MemoryStore is a process local Store. Keys are scoped by a namespace that
// Clear rotates; entries left in a previous namespace are evicted on the next
// write, expired entries when they are read.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	namespace string
	stale     bool
	ttl       time.Duration
	now       func() time.Time
}

type MemoryStoreOption func(*MemoryStore)

// WithTTL expires entries after ttl. Zero keeps entries until cleared.
func WithTTL(ttl time.Duration) MemoryStoreOption {
	return func(m *MemoryStore) {
		m.ttl = ttl
	}
}

func WithClock(now func() time.Time) MemoryStoreOption {
	return func(m *MemoryStore) {
		m.now = now
	}
}

func NewMemoryStore(options ...MemoryStoreOption) *MemoryStore {
	m := &MemoryStore{
		entries:   map[string]entry{},
		namespace: uuid.NewString(),
		now:       time.Now,
	}

	for _, option := range options {
		option(m)
	}

	return m
}

func (m *MemoryStore) Get(ctx context.Context, key string) (Fragment, bool, error) {
	m.mu.RLock()
	k := m.namespace + ":" + key
	e, ok := m.entries[k]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if m.expired(e) {
		m.mu.Lock()
		if current, ok := m.entries[k]; ok && m.expired(current) {
			delete(m.entries, k)
		}
		m.mu.Unlock()

		return nil, false, nil
	}

	return e.fragment.Clone(), true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, fragment Fragment) error {
	e := entry{fragment: fragment.Clone()}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stale {
		for k, existing := range m.entries {
			if existing.namespace != m.namespace {
				delete(m.entries, k)
			}
		}
		m.stale = false
	}

	e.namespace = m.namespace
	m.entries[m.namespace+":"+key] = e

	return nil
}

func (m *MemoryStore) expired(e entry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}

// Clear invalidates every entry by moving the store to a new namespace
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.namespace = uuid.NewString()
	m.stale = len(m.entries) > 0
}

// Len counts the entries stored in the current namespace
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		if e.namespace == m.namespace {
			n++
		}
	}

	return n
}
