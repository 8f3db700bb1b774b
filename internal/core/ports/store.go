package ports

import (
	"time"

	"go.trai.ch/stash/internal/core/domain"
)

// CacheStore defines the interface for the tiered entry store.
//
// Get never returns an error: every failure mode inside the store
// (corrupted blob, expired entry, unreadable index) degrades to a miss,
// with the reason logged through the store's Logger.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Get returns the entry for the key and the tier that served it, or
	// (nil, TierNone, false) on a miss. A disk hit is promoted into the
	// memory tier before returning.
	Get(key domain.CacheKey) (*domain.CacheEntry, domain.Tier, bool)

	// Set writes the entry to the memory tier unconditionally and
	// attempts to persist it. A disk write failure is logged and does
	// not fail the call; the memory tier still holds the value.
	Set(key domain.CacheKey, entry domain.CacheEntry)

	// Delete removes the entry from both tiers and the index. Best
	// effort and idempotent.
	Delete(key domain.CacheKey)

	// FindStale returns the newest persisted entry sharing the given
	// operation scope under a fingerprint other than current, along with
	// its key. Used by the differential resolver.
	FindStale(scope string, current domain.Fingerprint) (*domain.CacheEntry, domain.CacheKey, bool)

	// Index returns a snapshot of all index records.
	Index() []domain.IndexRecord

	// Sweep removes persisted entries and index records older than
	// maxAge and reports how many entries were removed. Per-item
	// deletion failures are skipped, not fatal.
	Sweep(maxAge time.Duration) (int, error)
}
