package store_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.trai.ch/stash/internal/adapters/store"
	"go.trai.ch/stash/internal/core/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, string) {}
func (nopLogger) Warn(string, string) {}
func (nopLogger) Error(error, string) {}

const (
	fpOne = domain.Fingerprint("1111111111111111111111111111111111111111111111111111111111111111")
	fpTwo = domain.Fingerprint("2222222222222222222222222222222222222222222222222222222222222222")
)

func testSettings(dir string) domain.CacheSettings {
	return domain.CacheSettings{
		Dir:        dir,
		MemoryTTL:  time.Minute,
		DiskTTL:    7 * 24 * time.Hour,
		MaxAgeDays: 30,
	}
}

func entryPath(dir string, key domain.CacheKey) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(dir, "entries", hex.EncodeToString(sum[:])+".json")
}

func newEntry(fp domain.Fingerprint, payload string, execSeconds float64) domain.CacheEntry {
	return domain.CacheEntry{
		Fingerprint:      fp,
		CreatedAt:        time.Now(),
		Result:           []byte(payload),
		ExecutionSeconds: execSeconds,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := store.New(testSettings(dir), nopLogger{})
	key := domain.NewCacheKey(fpOne, "deps-report", nil)

	s.Set(key, newEntry(fpOne, `{"deps": 12}`, 4.2))

	got, tier, ok := s.Get(key)
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if tier != domain.TierMemory {
		t.Errorf("expected the memory tier to serve, got %s", tier)
	}
	if string(got.Result) != `{"deps": 12}` {
		t.Errorf("payload changed through the cache: %s", got.Result)
	}
	if got.ExecutionSeconds != 4.2 {
		t.Errorf("expected execution time 4.2, got %v", got.ExecutionSeconds)
	}
}

func TestStore_DiskHitPromotes(t *testing.T) {
	dir := t.TempDir()
	key := domain.NewCacheKey(fpOne, "deps-report", nil)

	writer := store.New(testSettings(dir), nopLogger{})
	writer.Set(key, newEntry(fpOne, "payload", 1))

	// A fresh instance has an empty memory tier, so the first hit comes
	// from disk and gets promoted.
	reader := store.New(testSettings(dir), nopLogger{})
	_, tier, ok := reader.Get(key)
	if !ok || tier != domain.TierDisk {
		t.Fatalf("expected a disk hit, got ok=%v tier=%s", ok, tier)
	}

	_, tier, ok = reader.Get(key)
	if !ok || tier != domain.TierMemory {
		t.Errorf("expected a memory hit after promotion, got ok=%v tier=%s", ok, tier)
	}
}

func TestStore_MemoryTTLFallsThroughToDisk(t *testing.T) {
	dir := t.TempDir()
	settings := testSettings(dir)
	settings.MemoryTTL = -time.Second // every memory entry is already expired

	s := store.New(settings, nopLogger{})
	key := domain.NewCacheKey(fpOne, "op", nil)
	s.Set(key, newEntry(fpOne, "payload", 1))

	_, tier, ok := s.Get(key)
	if !ok || tier != domain.TierDisk {
		t.Errorf("expected the disk tier once memory expired, got ok=%v tier=%s", ok, tier)
	}
}

func TestStore_DiskTTLExpiry(t *testing.T) {
	dir := t.TempDir()
	settings := testSettings(dir)
	settings.MemoryTTL = -time.Second

	s := store.New(settings, nopLogger{})
	key := domain.NewCacheKey(fpOne, "op", nil)

	entry := newEntry(fpOne, "payload", 1)
	entry.CreatedAt = time.Now().Add(-8 * 24 * time.Hour) // past the 7 day disk TTL
	s.Set(key, entry)

	if _, _, ok := s.Get(key); ok {
		t.Fatal("expected a miss for an entry past the disk TTL")
	}
	if _, err := os.Stat(entryPath(dir, key)); !os.IsNotExist(err) {
		t.Error("expected the expired blob to be removed at read time")
	}
}

func TestStore_CorruptedEntrySelfHeals(t *testing.T) {
	dir := t.TempDir()
	key := domain.NewCacheKey(fpOne, "op", nil)

	writer := store.New(testSettings(dir), nopLogger{})
	writer.Set(key, newEntry(fpOne, "payload", 1))

	path := entryPath(dir, key)
	if err := os.WriteFile(path, []byte("{garbage"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	reader := store.New(testSettings(dir), nopLogger{})
	if _, _, ok := reader.Get(key); ok {
		t.Fatal("expected a miss for a corrupted entry")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected the corrupted blob to be deleted")
	}

	// The next lookup is a plain not-found miss, not another warning.
	if _, _, ok := reader.Get(key); ok {
		t.Error("expected a miss after self-heal")
	}
}

func TestStore_SetSurvivesDiskWriteFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are ignored when running as root")
	}

	dir := t.TempDir()
	settings := testSettings(dir)
	// Make the cache root read-only so the entries directory cannot be
	// created.
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	s := store.New(settings, nopLogger{})
	key := domain.NewCacheKey(fpOne, "op", nil)
	s.Set(key, newEntry(fpOne, "payload", 1))

	// The memory tier still serves the value.
	got, tier, ok := s.Get(key)
	if !ok || tier != domain.TierMemory {
		t.Fatalf("expected a memory hit despite the disk failure, got ok=%v tier=%s", ok, tier)
	}
	if string(got.Result) != "payload" {
		t.Errorf("unexpected payload %q", got.Result)
	}
}

func TestStore_Delete(t *testing.T) {
	dir := t.TempDir()
	s := store.New(testSettings(dir), nopLogger{})
	key := domain.NewCacheKey(fpOne, "op", nil)
	s.Set(key, newEntry(fpOne, "payload", 1))

	s.Delete(key)

	if _, _, ok := s.Get(key); ok {
		t.Error("expected a miss after Delete")
	}
	if _, err := os.Stat(entryPath(dir, key)); !os.IsNotExist(err) {
		t.Error("expected the blob to be removed")
	}
	if len(s.Index()) != 0 {
		t.Error("expected the index record to be removed")
	}
}

func TestStore_FindStale(t *testing.T) {
	dir := t.TempDir()
	s := store.New(testSettings(dir), nopLogger{})
	params := map[string]string{"mode": "full"}

	oldKey := domain.NewCacheKey(fpOne, "impact", params)
	s.Set(oldKey, newEntry(fpOne, "old payload", 9))

	newKey := domain.NewCacheKey(fpTwo, "impact", params)

	entry, key, ok := s.FindStale(newKey.Scope(), fpTwo)
	if !ok {
		t.Fatal("expected a stale candidate")
	}
	if key != oldKey {
		t.Errorf("expected the old key %s, got %s", oldKey, key)
	}
	if entry.Fingerprint != fpOne {
		t.Errorf("expected the stale entry's fingerprint, got %s", entry.Fingerprint)
	}

	// Same fingerprint means nothing is stale.
	if _, _, ok := s.FindStale(oldKey.Scope(), fpOne); ok {
		t.Error("an entry under the current fingerprint is not stale")
	}

	// A different scope never matches.
	if _, _, ok := s.FindStale("other-op", fpTwo); ok {
		t.Error("expected no candidate for an unrelated scope")
	}
}

func TestStore_IndexRecordsMetadata(t *testing.T) {
	dir := t.TempDir()
	s := store.New(testSettings(dir), nopLogger{})

	key := domain.NewCacheKey(fpOne, "deps-report", map[string]string{"mode": "full"})
	s.Set(key, newEntry(fpOne, "payload", 3.5))

	records := s.Index()
	if len(records) != 1 {
		t.Fatalf("expected 1 index record, got %d", len(records))
	}
	rec := records[0]
	if rec.Key != key {
		t.Errorf("expected key %s, got %s", key, rec.Key)
	}
	if rec.Operation != "deps-report" {
		t.Errorf("expected operation deps-report, got %q", rec.Operation)
	}
	if rec.ExecutionSeconds != 3.5 {
		t.Errorf("expected execution time 3.5, got %v", rec.ExecutionSeconds)
	}
}

func TestStore_MalformedIndexTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.json"), []byte("not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s := store.New(testSettings(dir), nopLogger{})
	if len(s.Index()) != 0 {
		t.Fatal("expected an empty index")
	}

	// The index rebuilds incrementally from here.
	key := domain.NewCacheKey(fpOne, "op", nil)
	s.Set(key, newEntry(fpOne, "payload", 1))
	if len(s.Index()) != 1 {
		t.Error("expected the index to rebuild after a Set")
	}
}
