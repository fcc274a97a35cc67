package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxEntries caps a Memory cache built by NewMemory.
	DefaultMaxEntries = 10000
	sweepInterval     = time.Minute
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is a process-local Cache used when Redis is not configured. Expired
// entries are swept on write at most once per minute, or whenever the cache is
// full. A full cache evicts the entry closest to expiry.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	lastSweep  time.Time
	now        func() time.Time
}

// NewMemory constructs an empty in-process cache holding at most
// DefaultMaxEntries keys.
func NewMemory() *Memory {
	return NewMemoryWithLimit(DefaultMaxEntries)
}

// NewMemoryWithLimit constructs an empty in-process cache holding at most
// maxEntries keys. A non-positive limit uses DefaultMaxEntries.
func NewMemoryWithLimit(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

var _ Cache = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return nil, false, nil
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry := memoryEntry{value: stored}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	_, exists := m.entries[key]
	full := !exists && len(m.entries) >= m.maxEntries
	if full || now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
	}
	if !exists && len(m.entries) >= m.maxEntries {
		m.evictOne()
	}

	m.entries[key] = entry
	return nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Len reports how many entries are held, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) sweep(now time.Time) {
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
	m.lastSweep = now
}

// evictOne drops the entry that expires first. Entries without a TTL go last.
func (m *Memory) evictOne() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for key, entry := range m.entries {
		if entry.expiresAt.IsZero() {
			if !found {
				victim, found = key, true
			}
			continue
		}
		if !found || soonest.IsZero() || entry.expiresAt.Before(soonest) {
			victim, soonest, found = key, entry.expiresAt, true
		}
	}
	if found {
		delete(m.entries, victim)
	}
}
