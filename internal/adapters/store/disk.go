package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/zerr"
)

// diskTier is the persisted tier 2: one JSON blob per cache key under the
// entries directory, named by the SHA-256 of the key so any key is
// filesystem-safe.
//
// Helpers return typed errors (ErrEntryNotFound, ErrEntryCorrupted,
// ErrEntryExpired); the tiered boundary decides what becomes a miss.
type diskTier struct {
	dir string
	ttl time.Duration
}

func newDiskTier(dir string, ttl time.Duration) *diskTier {
	return &diskTier{dir: filepath.Clean(dir), ttl: ttl}
}

// entryPath returns the blob path for a key.
func (d *diskTier) entryPath(key domain.CacheKey) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(d.dir, hex.EncodeToString(sum[:])+".json")
}

// load reads, validates and TTL-checks the entry for a key.
func (d *diskTier) load(key domain.CacheKey, now time.Time) (*domain.CacheEntry, error) {
	path := d.entryPath(key)

	//nolint:gosec // Path is derived from a hash, not caller input
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read cache entry"), "key", key.String())
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrEntryCorrupted, err.Error()), "key", key.String())
	}
	if entry.Fingerprint == "" || entry.CreatedAt.IsZero() {
		return nil, zerr.With(zerr.Wrap(domain.ErrEntryCorrupted, "missing required fields"), "key", key.String())
	}

	if entry.Age(now) > d.ttl {
		return nil, domain.ErrEntryExpired
	}

	return &entry, nil
}

// store persists the entry for a key.
func (d *diskTier) store(key domain.CacheKey, entry domain.CacheEntry) error {
	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create entries directory")
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache entry")
	}

	//nolint:gosec // Path is derived from a hash, not caller input
	if err := os.WriteFile(d.entryPath(key), data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write cache entry"), "key", key.String())
	}
	return nil
}

// remove deletes the blob for a key. Removing an absent blob is not an
// error.
func (d *diskTier) remove(key domain.CacheKey) error {
	if err := os.Remove(d.entryPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove cache entry"), "key", key.String())
	}
	return nil
}
