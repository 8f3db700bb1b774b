package memo_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports/mocks"
	"go.trai.ch/stash/internal/engine/memo"
	"go.uber.org/mock/gomock"
)

const (
	fpOld = domain.Fingerprint("1111111111111111111111111111111111111111111111111111111111111111")
	fpNew = domain.Fingerprint("2222222222222222222222222222222222222222222222222222222222222222")
)

type fixture struct {
	fingerprinter *mocks.MockFingerprinter
	store         *mocks.MockCacheStore
	logger        *mocks.MockLogger
	memoizer      *memo.Memoizer
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &fixture{
		fingerprinter: mocks.NewMockFingerprinter(ctrl),
		store:         mocks.NewMockCacheStore(ctrl),
		logger:        mocks.NewMockLogger(ctrl),
	}
	f.logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	f.memoizer = memo.New(f.fingerprinter, f.store, f.logger)
	return f
}

func noCompute(t *testing.T) memo.ComputeFunc {
	return func(context.Context) ([]byte, error) {
		t.Fatal("compute must not run on a hit")
		return nil, nil
	}
}

func TestMemoizer_FreshHit(t *testing.T) {
	f := newFixture(t)

	key := domain.NewCacheKey(fpNew, "deps-report", nil)
	entry := &domain.CacheEntry{Fingerprint: fpNew, Result: []byte("cached"), ExecutionSeconds: 9}

	f.fingerprinter.EXPECT().Fingerprint("/proj").Return(fpNew, nil)
	f.store.EXPECT().Get(key).Return(entry, domain.TierMemory, true)

	res, err := f.memoizer.Do(context.Background(), "/proj", "deps-report", nil, memo.Options{}, noCompute(t))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if res.Mode != domain.ModeFresh {
		t.Errorf("expected a fresh result, got %s", res.Mode)
	}
	if res.Tier != domain.TierMemory {
		t.Errorf("expected the memory tier, got %s", res.Tier)
	}
	if string(res.Payload) != "cached" {
		t.Errorf("unexpected payload %q", res.Payload)
	}
	if res.ExecutionSeconds != 9 {
		t.Errorf("expected the original execution time, got %v", res.ExecutionSeconds)
	}
}

func TestMemoizer_MissComputesAndStores(t *testing.T) {
	f := newFixture(t)

	key := domain.NewCacheKey(fpNew, "deps-report", nil)

	f.fingerprinter.EXPECT().Fingerprint("/proj").Return(fpNew, nil)
	f.store.EXPECT().Get(key).Return(nil, domain.TierNone, false)
	f.store.EXPECT().FindStale(key.Scope(), fpNew).Return(nil, domain.CacheKey(""), false)
	f.store.EXPECT().Set(key, gomock.Any()).Do(func(_ domain.CacheKey, entry domain.CacheEntry) {
		if entry.Fingerprint != fpNew {
			t.Errorf("stored entry carries fingerprint %s", entry.Fingerprint)
		}
		if string(entry.Result) != "fresh result" {
			t.Errorf("stored entry carries payload %q", entry.Result)
		}
	})

	res, err := f.memoizer.Do(context.Background(), "/proj", "deps-report", nil, memo.Options{},
		func(context.Context) ([]byte, error) { return []byte("fresh result"), nil })
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if res.Mode != domain.ModeComputed {
		t.Errorf("expected a computed result, got %s", res.Mode)
	}
	if res.Tier != domain.TierNone {
		t.Errorf("computed results come from no tier, got %s", res.Tier)
	}
}

func TestMemoizer_StaleEntryInvalidatedByDefault(t *testing.T) {
	f := newFixture(t)

	key := domain.NewCacheKey(fpNew, "deps-report", nil)
	staleKey := domain.NewCacheKey(fpOld, "deps-report", nil)
	stale := &domain.CacheEntry{Fingerprint: fpOld, Result: []byte("stale")}

	f.fingerprinter.EXPECT().Fingerprint("/proj").Return(fpNew, nil)
	f.store.EXPECT().Get(key).Return(nil, domain.TierNone, false)
	f.store.EXPECT().FindStale(key.Scope(), fpNew).Return(stale, staleKey, true)
	f.store.EXPECT().Delete(staleKey)
	f.store.EXPECT().Set(key, gomock.Any())

	res, err := f.memoizer.Do(context.Background(), "/proj", "deps-report", nil, memo.Options{},
		func(context.Context) ([]byte, error) { return []byte("recomputed"), nil })
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if res.Mode != domain.ModeComputed {
		t.Errorf("a fingerprint mismatch is a miss without opt-in, got %s", res.Mode)
	}
}

func TestMemoizer_DifferentialHit(t *testing.T) {
	f := newFixture(t)

	key := domain.NewCacheKey(fpNew, "deps-report", nil)
	staleKey := domain.NewCacheKey(fpOld, "deps-report", nil)
	stale := &domain.CacheEntry{Fingerprint: fpOld, Result: []byte("stale payload"), ExecutionSeconds: 4}

	f.fingerprinter.EXPECT().Fingerprint("/proj").Return(fpNew, nil)
	f.store.EXPECT().Get(key).Return(nil, domain.TierNone, false)
	f.store.EXPECT().FindStale(key.Scope(), fpNew).Return(stale, staleKey, true)

	res, err := f.memoizer.Do(context.Background(), "/proj", "deps-report", nil,
		memo.Options{Differential: true}, noCompute(t))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if res.Mode != domain.ModeDifferential {
		t.Fatalf("expected a differential result, got %s", res.Mode)
	}
	if res.OldFingerprint != fpOld {
		t.Errorf("expected old fingerprint %s, got %s", fpOld, res.OldFingerprint)
	}
	if res.NewFingerprint != fpNew {
		t.Errorf("expected new fingerprint %s, got %s", fpNew, res.NewFingerprint)
	}
	if string(res.Payload) != "stale payload" {
		t.Errorf("unexpected payload %q", res.Payload)
	}
}

func TestMemoizer_ForceSkipsLookup(t *testing.T) {
	f := newFixture(t)

	key := domain.NewCacheKey(fpNew, "deps-report", nil)

	f.fingerprinter.EXPECT().Fingerprint("/proj").Return(fpNew, nil)
	f.store.EXPECT().Set(key, gomock.Any())

	res, err := f.memoizer.Do(context.Background(), "/proj", "deps-report", nil,
		memo.Options{Force: true},
		func(context.Context) ([]byte, error) { return []byte("forced"), nil })
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if res.Mode != domain.ModeComputed {
		t.Errorf("expected a computed result, got %s", res.Mode)
	}

	// Forced runs do not count as hits or misses.
	f.store.EXPECT().Index().Return(nil)
	stats := f.memoizer.Stats()
	if stats.TotalRequests != 0 {
		t.Errorf("expected no recorded outcomes, got %d", stats.TotalRequests)
	}
}

func TestMemoizer_ConcurrentCallsComputeOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		const callers = 8
		key := domain.NewCacheKey(fpNew, "deps-report", nil)

		f.fingerprinter.EXPECT().Fingerprint("/proj").Return(fpNew, nil).Times(callers)
		f.store.EXPECT().Get(key).Return(nil, domain.TierNone, false).Times(callers)
		f.store.EXPECT().FindStale(key.Scope(), fpNew).Return(nil, domain.CacheKey(""), false).Times(callers)
		f.store.EXPECT().Set(key, gomock.Any()).Times(callers)

		var computes atomic.Int32
		gate := make(chan struct{})

		var wg sync.WaitGroup
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := f.memoizer.Do(context.Background(), "/proj", "deps-report", nil, memo.Options{},
					func(context.Context) ([]byte, error) {
						computes.Add(1)
						<-gate
						return []byte("shared"), nil
					})
				if err != nil {
					t.Errorf("Do failed: %v", err)
					return
				}
				if string(res.Payload) != "shared" {
					t.Errorf("unexpected payload %q", res.Payload)
				}
			}()
		}

		// All callers are past the lookup and parked on the shared flight
		// before the computation is released.
		synctest.Wait()
		close(gate)
		wg.Wait()

		if got := computes.Load(); got != 1 {
			t.Errorf("expected one computation for %d concurrent calls, got %d", callers, got)
		}
	})
}

func TestMemoizer_ComputeFailure(t *testing.T) {
	f := newFixture(t)

	key := domain.NewCacheKey(fpNew, "deps-report", nil)
	computeErr := errors.New("analyzer exploded")

	f.fingerprinter.EXPECT().Fingerprint("/proj").Return(fpNew, nil)
	f.store.EXPECT().Get(key).Return(nil, domain.TierNone, false)
	f.store.EXPECT().FindStale(key.Scope(), fpNew).Return(nil, domain.CacheKey(""), false)

	_, err := f.memoizer.Do(context.Background(), "/proj", "deps-report", nil, memo.Options{},
		func(context.Context) ([]byte, error) { return nil, computeErr })
	if !errors.Is(err, computeErr) {
		t.Errorf("expected the compute error, got %v", err)
	}
}

func TestMemoizer_FingerprintFailure(t *testing.T) {
	f := newFixture(t)

	fpErr := errors.New("root vanished")
	f.fingerprinter.EXPECT().Fingerprint("/proj").Return(domain.Fingerprint(""), fpErr)

	_, err := f.memoizer.Do(context.Background(), "/proj", "deps-report", nil, memo.Options{}, noCompute(t))
	if !errors.Is(err, fpErr) {
		t.Errorf("expected the fingerprint error, got %v", err)
	}
}

func TestMemoizer_ParamsDistinguishKeys(t *testing.T) {
	f := newFixture(t)

	params := map[string]string{"mode": "full"}
	key := domain.NewCacheKey(fpNew, "deps-report", params)

	f.fingerprinter.EXPECT().Fingerprint("/proj").Return(fpNew, nil)
	f.store.EXPECT().Get(key).Return(nil, domain.TierNone, false)
	f.store.EXPECT().FindStale(key.Scope(), fpNew).Return(nil, domain.CacheKey(""), false)
	f.store.EXPECT().Set(key, gomock.Any())

	if _, err := f.memoizer.Do(context.Background(), "/proj", "deps-report", params, memo.Options{},
		func(context.Context) ([]byte, error) { return []byte("x"), nil }); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
}
