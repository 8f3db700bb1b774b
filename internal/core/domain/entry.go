package domain

import "time"

// Tier identifies which cache layer served a lookup.
type Tier string

const (
	// TierMemory is the process-local map with the short TTL.
	TierMemory Tier = "memory"
	// TierDisk is the persisted store with the long TTL.
	TierDisk Tier = "disk"
	// TierNone means no layer served the lookup.
	TierNone Tier = "none"
)

// CacheMode describes how a result was obtained.
type CacheMode string

const (
	// ModeFresh is a hit whose stored fingerprint matches the current one.
	ModeFresh CacheMode = "fresh"
	// ModeDifferential is a hit served from a stale entry after the
	// project fingerprint changed. The payload may not reflect the
	// current tree.
	ModeDifferential CacheMode = "differential"
	// ModeComputed means the analyzer ran and produced a new result.
	ModeComputed CacheMode = "computed"
)

// CacheEntry is one memoized result. Entries are immutable: a new Set for
// the same key overwrites the whole entry, it never patches one.
type CacheEntry struct {
	Fingerprint      Fingerprint `json:"fingerprint"`
	CreatedAt        time.Time   `json:"created_at"`
	Result           []byte      `json:"result"`
	ExecutionSeconds float64     `json:"execution_seconds,omitzero"`
}

// Age returns how old the entry is at the given instant.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// IndexRecord is the per-key metadata held in the index document, kept
// separate from the entry payloads. It serves statistics only; get/set
// correctness never depends on it.
type IndexRecord struct {
	Key              CacheKey  `json:"key"`
	Operation        string    `json:"operation"`
	CreatedAt        time.Time `json:"created_at"`
	ExecutionSeconds float64   `json:"execution_seconds,omitzero"`
}

// Result is what a lookup or a memoized computation hands back to the
// caller.
type Result struct {
	// Payload is the opaque analyzer output.
	Payload []byte
	// Mode says whether the payload is fresh, differential, or computed.
	Mode CacheMode
	// Tier is the layer that served a hit; TierNone for computed results.
	Tier Tier
	// Fingerprint is the project fingerprint the lookup ran under.
	Fingerprint Fingerprint
	// OldFingerprint and NewFingerprint are set on differential results
	// only: the fingerprint the stale entry was stored under and the one
	// observed now.
	OldFingerprint Fingerprint
	NewFingerprint Fingerprint
	// ExecutionSeconds is the recorded cost of the computation that
	// produced the payload (the original one for hits).
	ExecutionSeconds float64
}

// CacheStats aggregates the outcome sequence of one cache session plus
// the persisted index.
type CacheStats struct {
	TotalRequests int `json:"total_requests"`
	CacheHits     int `json:"cache_hits"`
	// HitRate is a percentage in [0, 100]; 0 when no requests were made.
	HitRate float64 `json:"hit_rate"`
	// TimeSavedSeconds sums the recorded execution times across all index
	// records: the cumulative original cost now avoidable, not the
	// wall-clock time saved this session.
	TimeSavedSeconds float64 `json:"time_saved_seconds"`
}
