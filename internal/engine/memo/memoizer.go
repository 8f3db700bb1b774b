// Package memo implements the cache-aware execution engine: fingerprint
// the project, look the key up in the tiered store, and only run the
// analyzer on a miss.
package memo

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces the real analysis result on a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Options tune a single Do call.
type Options struct {
	// Force skips the lookup and recomputes unconditionally. The outcome
	// is not recorded in the statistics.
	Force bool
	// Differential opts into serving a stale entry after a fingerprint
	// change, tagged with both fingerprints. Off, a fingerprint mismatch
	// invalidates the stale slot and counts as a miss.
	Differential bool
}

// Memoizer ties the fingerprinter, the store, and the statistics tracker
// together. Construct one per process and pass it around; there is no
// package-level instance.
type Memoizer struct {
	fingerprinter ports.Fingerprinter
	store         ports.CacheStore
	logger        ports.Logger

	tracker *Tracker
	group   singleflight.Group
}

// New creates a Memoizer with a fresh statistics tracker.
func New(fingerprinter ports.Fingerprinter, store ports.CacheStore, logger ports.Logger) *Memoizer {
	return &Memoizer{
		fingerprinter: fingerprinter,
		store:         store,
		logger:        logger,
		tracker:       NewTracker(),
	}
}

// Do returns the memoized result for an operation against the project
// rooted at root, computing and storing it on a miss. Concurrent calls
// for the same key share one computation.
func (m *Memoizer) Do(
	ctx context.Context,
	root, operation string,
	params map[string]string,
	opts Options,
	compute ComputeFunc,
) (*domain.Result, error) {
	fp, err := m.fingerprinter.Fingerprint(root)
	if err != nil {
		return nil, err
	}
	key := domain.NewCacheKey(fp, operation, params)

	if !opts.Force {
		if res, ok := m.lookup(key, fp, opts); ok {
			return res, nil
		}
	}

	payload, seconds, err := m.compute(ctx, key, compute)
	if err != nil {
		return nil, err
	}

	m.store.Set(key, domain.CacheEntry{
		Fingerprint:      fp,
		CreatedAt:        time.Now(),
		Result:           payload,
		ExecutionSeconds: seconds,
	})
	m.logger.Info(fmt.Sprintf("cached %s result (%.2fs)", operation, seconds), "memo")

	return &domain.Result{
		Payload:          payload,
		Mode:             domain.ModeComputed,
		Tier:             domain.TierNone,
		Fingerprint:      fp,
		ExecutionSeconds: seconds,
	}, nil
}

// lookup resolves a key against the store and records the outcome. A
// stale same-scope entry either becomes a differential hit or gets
// invalidated, depending on the options.
func (m *Memoizer) lookup(key domain.CacheKey, fp domain.Fingerprint, opts Options) (*domain.Result, bool) {
	if entry, tier, ok := m.store.Get(key); ok {
		m.tracker.Record(true)
		m.logger.Info(fmt.Sprintf("cache hit for %s from %s tier", key.Operation(), tier), "memo")
		return &domain.Result{
			Payload:          entry.Result,
			Mode:             domain.ModeFresh,
			Tier:             tier,
			Fingerprint:      fp,
			ExecutionSeconds: entry.ExecutionSeconds,
		}, true
	}

	stale, staleKey, ok := m.store.FindStale(key.Scope(), fp)
	if ok {
		if opts.Differential {
			m.tracker.Record(true)
			m.logger.Info(fmt.Sprintf("differential hit for %s (%s -> %s)",
				key.Operation(), stale.Fingerprint.Short(), fp.Short()), "memo")
			return &domain.Result{
				Payload:          stale.Result,
				Mode:             domain.ModeDifferential,
				Tier:             domain.TierDisk,
				Fingerprint:      fp,
				OldFingerprint:   stale.Fingerprint,
				NewFingerprint:   fp,
				ExecutionSeconds: stale.ExecutionSeconds,
			}, true
		}
		// The project changed under this operation; the stale slot is no
		// longer trustworthy.
		m.store.Delete(staleKey)
	}

	m.tracker.Record(false)
	return nil, false
}

type computed struct {
	payload []byte
	seconds float64
}

// compute runs the compute function, deduplicated per key.
func (m *Memoizer) compute(ctx context.Context, key domain.CacheKey, compute ComputeFunc) ([]byte, float64, error) {
	v, err, _ := m.group.Do(key.String(), func() (any, error) {
		start := time.Now()
		payload, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return computed{payload: payload, seconds: time.Since(start).Seconds()}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	c := v.(computed)
	return c.payload, c.seconds, nil
}

// Stats returns the session's hit/miss counters combined with the
// time-saved figure derived from the persisted index.
func (m *Memoizer) Stats() domain.CacheStats {
	hits, total := m.tracker.Counts()

	var saved float64
	for _, rec := range m.store.Index() {
		saved += rec.ExecutionSeconds
	}

	rate := 0.0
	if total > 0 {
		rate = float64(hits) / float64(total) * 100
	}

	return domain.CacheStats{
		TotalRequests:    total,
		CacheHits:        hits,
		HitRate:          rate,
		TimeSavedSeconds: saved,
	}
}
