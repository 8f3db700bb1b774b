package store

import (
	"sync"
	"time"

	"go.trai.ch/stash/internal/core/domain"
)

// memoryTier is the process-local tier 1: a map guarded by an RWMutex
// with a short TTL. Expired entries are cleaned up lazily on read.
type memoryTier struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[domain.CacheKey]memoryEntry
}

type memoryEntry struct {
	entry    domain.CacheEntry
	storedAt time.Time
}

func newMemoryTier(ttl time.Duration) *memoryTier {
	return &memoryTier{
		ttl:     ttl,
		entries: make(map[domain.CacheKey]memoryEntry),
	}
}

func (m *memoryTier) get(key domain.CacheKey, now time.Time) (*domain.CacheEntry, bool) {
	m.mu.RLock()
	stored, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if now.Sub(stored.storedAt) > m.ttl {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}

	entry := stored.entry
	return &entry, true
}

func (m *memoryTier) put(key domain.CacheKey, entry domain.CacheEntry, now time.Time) {
	m.mu.Lock()
	m.entries[key] = memoryEntry{entry: entry, storedAt: now}
	m.mu.Unlock()
}

func (m *memoryTier) remove(key domain.CacheKey) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// removeOlderThan drops every entry created before the cutoff and
// returns how many were dropped.
func (m *memoryTier) removeOlderThan(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, stored := range m.entries {
		if stored.entry.CreatedAt.Before(cutoff) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}
