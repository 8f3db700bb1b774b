// Package store implements the tiered cache entry store: a process-local
// memory tier with a short TTL in front of a persisted disk tier with a
// long TTL, plus the statistics index.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
)

var _ ports.CacheStore = (*Store)(nil)

const (
	entriesDirName = "entries"
	indexFileName  = "index.json"
)

// Store implements ports.CacheStore. Failures below the port boundary are
// typed errors; here they turn into logged misses so callers never see
// them.
type Store struct {
	memory *memoryTier
	disk   *diskTier
	logger ports.Logger

	// mu guards the persisted side: entry blobs and the index document.
	// The memory tier carries its own lock.
	mu    sync.Mutex
	index *index
}

// New creates a Store rooted at settings.Dir. A malformed index is logged
// and treated as empty.
func New(settings domain.CacheSettings, logger ports.Logger) *Store {
	idx, err := newIndex(filepath.Join(settings.Dir, indexFileName))
	if err != nil {
		logger.Warn(err.Error(), "index")
	}
	return &Store{
		memory: newMemoryTier(settings.MemoryTTL),
		disk:   newDiskTier(filepath.Join(settings.Dir, entriesDirName), settings.DiskTTL),
		index:  idx,
		logger: logger,
	}
}

// Get returns the entry for a key and the tier that served it. A disk hit
// is promoted into the memory tier. Corrupted or expired disk entries are
// removed on the way out; every failure mode degrades to a miss.
func (s *Store) Get(key domain.CacheKey) (*domain.CacheEntry, domain.Tier, bool) {
	now := time.Now()

	if entry, ok := s.memory.get(key, now); ok {
		return entry, domain.TierMemory, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.disk.load(key, now)
	switch {
	case err == nil:
		s.memory.put(key, *entry, now)
		return entry, domain.TierDisk, true
	case errors.Is(err, domain.ErrEntryNotFound):
		return nil, domain.TierNone, false
	case errors.Is(err, domain.ErrEntryCorrupted):
		s.logger.Warn(fmt.Sprintf("removing corrupted entry for %s: %v", key.Operation(), err), "store")
		s.dropLocked(key)
		return nil, domain.TierNone, false
	case errors.Is(err, domain.ErrEntryExpired):
		s.dropLocked(key)
		return nil, domain.TierNone, false
	default:
		// Read failure, possibly transient. Miss without deleting.
		s.logger.Warn(fmt.Sprintf("cache read failed: %v", err), "store")
		return nil, domain.TierNone, false
	}
}

// Set writes the entry to the memory tier unconditionally and attempts to
// persist it. Disk and index failures are logged, never returned: the
// memory tier holds the value for the rest of the process lifetime.
func (s *Store) Set(key domain.CacheKey, entry domain.CacheEntry) {
	now := time.Now()
	s.memory.put(key, entry, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.disk.store(key, entry); err != nil {
		s.logger.Warn(fmt.Sprintf("failed to persist entry, keeping it in memory only: %v", err), "store")
		return
	}

	rec := domain.IndexRecord{
		Key:              key,
		Operation:        key.Operation(),
		CreatedAt:        entry.CreatedAt,
		ExecutionSeconds: entry.ExecutionSeconds,
	}
	if err := s.index.put(rec); err != nil {
		s.logger.Warn(err.Error(), "index")
	}
}

// Delete removes the entry from both tiers and the index. Best effort.
func (s *Store) Delete(key domain.CacheKey) {
	s.memory.remove(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(key)
}

// dropLocked removes the persisted blob and index record for a key.
// Callers hold s.mu.
func (s *Store) dropLocked(key domain.CacheKey) {
	s.memory.remove(key)
	if err := s.disk.remove(key); err != nil {
		s.logger.Warn(err.Error(), "store")
	}
	if err := s.index.delete(key); err != nil {
		s.logger.Warn(err.Error(), "index")
	}
}

// FindStale returns the newest persisted entry sharing the operation
// scope under a fingerprint other than current. Corrupted candidates are
// cleaned up and reported as not found.
func (s *Store) FindStale(scope string, current domain.Fingerprint) (*domain.CacheEntry, domain.CacheKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.index.findStale(scope, current)
	if !ok {
		return nil, "", false
	}

	entry, err := s.disk.load(key, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrEntryCorrupted) {
			s.logger.Warn(fmt.Sprintf("removing corrupted stale entry: %v", err), "store")
		}
		s.dropLocked(key)
		return nil, "", false
	}
	return entry, key, true
}

// Index returns a snapshot of all index records.
func (s *Store) Index() []domain.IndexRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.snapshot()
}
